package service

import (
	"context"
	"path/filepath"
	"testing"

	nexoradb "github.com/nexora/nexora/pkg/db"
)

func newTestMemoryService(t *testing.T) *MemoryService {
	t.Helper()
	database, err := nexoradb.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	svc := NewMemoryService(database)
	if err := svc.AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return svc
}

func TestCreateMemory_Idempotent(t *testing.T) {
	svc := newTestMemoryService(t)
	ctx := context.Background()

	req := nexoradb.CreateMemoryRequest{
		Type:    nexoradb.MemoryTypePreference,
		Content: "Prefiere reuniones por la mañana",
	}
	first, err := svc.CreateMemory(ctx, "u1", req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Importance != 5 {
		t.Errorf("default importance = %d, want 5", first.Importance)
	}
	if first.Metadata["source"] != nexoradb.MemorySourceExplicit {
		t.Errorf("default source = %v", first.Metadata["source"])
	}

	second, err := svc.CreateMemory(ctx, "u1", req)
	if err != nil {
		t.Fatalf("duplicate create: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("duplicate created new row: %s vs %s", second.ID, first.ID)
	}
	if second.AccessCount != first.AccessCount+1 {
		t.Errorf("access count = %d, want %d", second.AccessCount, first.AccessCount+1)
	}

	stats, err := svc.GetMemoryStats(ctx, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 1 {
		t.Fatalf("total = %d, want 1", stats.Total)
	}
}

func TestCreateMemory_InvalidType(t *testing.T) {
	svc := newTestMemoryService(t)
	_, err := svc.CreateMemory(context.Background(), "u1", nexoradb.CreateMemoryRequest{
		Type:    "nonsense",
		Content: "x",
	})
	if err == nil {
		t.Fatal("expected error for invalid type")
	}
}

func TestSearchMemories_OrderAndFilter(t *testing.T) {
	svc := newTestMemoryService(t)
	ctx := context.Background()

	seed := []nexoradb.CreateMemoryRequest{
		{Type: nexoradb.MemoryTypeContact, Content: "Ana García trabaja en Acme", Importance: 9},
		{Type: nexoradb.MemoryTypePreference, Content: "Ana prefiere email antes que llamadas", Importance: 4},
		{Type: nexoradb.MemoryTypeProject, Content: "Proyecto Acme entrega en abril", Importance: 7},
	}
	for _, req := range seed {
		if _, err := svc.CreateMemory(ctx, "u1", req); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	hits, err := svc.SearchMemories(ctx, "u1", "ana", "", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Importance < hits[1].Importance {
		t.Errorf("hits not ordered by importance: %d then %d", hits[0].Importance, hits[1].Importance)
	}

	typed, err := svc.SearchMemories(ctx, "u1", "", string(nexoradb.MemoryTypeProject), 10)
	if err != nil {
		t.Fatalf("typed search: %v", err)
	}
	if len(typed) != 1 || typed[0].Type != nexoradb.MemoryTypeProject {
		t.Fatalf("typed search wrong: %+v", typed)
	}
}

func TestGetRelevantMemories_DedupesAndCaps(t *testing.T) {
	svc := newTestMemoryService(t)
	ctx := context.Background()

	// One memory that is both high importance and context relevant.
	if _, err := svc.CreateMemory(ctx, "u1", nexoradb.CreateMemoryRequest{
		Type: nexoradb.MemoryTypeContact, Content: "Carlos dirige ventas", Importance: 9,
	}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 12; i++ {
		content := "Dato número " + string(rune('a'+i))
		if _, err := svc.CreateMemory(ctx, "u1", nexoradb.CreateMemoryRequest{
			Type: nexoradb.MemoryTypePersonal, Content: content, Importance: 8,
		}); err != nil {
			t.Fatal(err)
		}
	}

	relevant, err := svc.GetRelevantMemories(ctx, "u1", "carlos", 10)
	if err != nil {
		t.Fatalf("relevant: %v", err)
	}
	if len(relevant) > 10 {
		t.Fatalf("cap exceeded: %d", len(relevant))
	}
	seen := make(map[string]bool)
	for _, m := range relevant {
		if seen[m.ID] {
			t.Fatalf("duplicate memory in result: %s", m.ID)
		}
		seen[m.ID] = true
	}
	for i := 1; i < len(relevant); i++ {
		if relevant[i-1].Importance < relevant[i].Importance {
			t.Fatalf("not sorted by importance at %d", i)
		}
	}
}

func TestDeleteMemory_SoftDelete(t *testing.T) {
	svc := newTestMemoryService(t)
	ctx := context.Background()

	mem, err := svc.CreateMemory(ctx, "u1", nexoradb.CreateMemoryRequest{
		Type: nexoradb.MemoryTypeDecision, Content: "Cambiar de proveedor en junio",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteMemory(ctx, "u1", mem.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	hits, err := svc.SearchMemories(ctx, "u1", "proveedor", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Fatalf("soft-deleted memory still searchable: %+v", hits)
	}

	// Export still includes it.
	exported, err := svc.ExportMemories(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(exported) != 1 {
		t.Fatalf("export missing inactive memory: %d", len(exported))
	}
}

func TestDeleteMemoryByContent(t *testing.T) {
	svc := newTestMemoryService(t)
	ctx := context.Background()

	if _, err := svc.CreateMemory(ctx, "u1", nexoradb.CreateMemoryRequest{
		Type: nexoradb.MemoryTypePreference, Content: "No agendar nada los viernes por la tarde",
	}); err != nil {
		t.Fatal(err)
	}

	deleted, err := svc.DeleteMemoryByContent(ctx, "u1", "viernes")
	if err != nil {
		t.Fatal(err)
	}
	if !deleted {
		t.Fatal("expected deletion")
	}

	deleted, err = svc.DeleteMemoryByContent(ctx, "u1", "inexistente")
	if err != nil {
		t.Fatal(err)
	}
	if deleted {
		t.Fatal("deleted something that should not match")
	}
}

func TestFindContact(t *testing.T) {
	svc := newTestMemoryService(t)
	ctx := context.Background()

	if _, err := svc.CreateMemory(ctx, "u1", nexoradb.CreateMemoryRequest{
		Type:     nexoradb.MemoryTypeContact,
		Content:  "María López, directora financiera",
		Metadata: nexoradb.JSONMap{"email": "maria@acme.com", "company": "Acme"},
	}); err != nil {
		t.Fatal(err)
	}

	byName, err := svc.FindContact(ctx, "u1", "maría")
	if err != nil {
		t.Fatalf("find by name: %v", err)
	}
	if byName.Metadata["email"] != "maria@acme.com" {
		t.Errorf("wrong contact: %+v", byName)
	}

	byCompany, err := svc.FindContact(ctx, "u1", "acme")
	if err != nil {
		t.Fatalf("find by company: %v", err)
	}
	if byCompany.ID != byName.ID {
		t.Errorf("company lookup found different row")
	}

	if _, err := svc.FindContact(ctx, "u1", "nadie"); err != ErrMemoryNotFound {
		t.Errorf("expected ErrMemoryNotFound, got %v", err)
	}
}

func TestGetPreferences(t *testing.T) {
	svc := newTestMemoryService(t)
	ctx := context.Background()

	if _, err := svc.CreateMemory(ctx, "u1", nexoradb.CreateMemoryRequest{
		Type: nexoradb.MemoryTypePreference, Content: "Resumen diario a las 8",
		Metadata: nexoradb.JSONMap{"category": "briefing"},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateMemory(ctx, "u1", nexoradb.CreateMemoryRequest{
		Type: nexoradb.MemoryTypePreference, Content: "Tono informal en emails",
		Metadata: nexoradb.JSONMap{"category": "email"},
	}); err != nil {
		t.Fatal(err)
	}

	all, err := svc.GetPreferences(ctx, "u1", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 preferences, got %d", len(all))
	}

	filtered, err := svc.GetPreferences(ctx, "u1", "briefing")
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 1 || filtered[0].Metadata["category"] != "briefing" {
		t.Fatalf("filter wrong: %+v", filtered)
	}
}
