package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	nexoradb "github.com/nexora/nexora/pkg/db"
	"github.com/nexora/nexora/pkg/models"
	"github.com/nexora/nexora/pkg/provider"
)

type fakeSelector struct {
	p provider.Provider
}

func (f *fakeSelector) GetAvailableProvider() provider.Provider { return f.p }

// loopingProvider always asks for another tool call.
type loopingProvider struct {
	chatCalls     int
	continueCalls int
}

func (p *loopingProvider) Name() string       { return "looping" }
func (p *loopingProvider) IsConfigured() bool { return true }

func (p *loopingProvider) Chat(ctx context.Context, system string, messages []provider.Message, tools []*schema.ToolInfo) (*provider.Response, error) {
	p.chatCalls++
	return &provider.Response{
		ToolCalls:  []provider.ToolCall{{ID: "c1", Name: "find_tasks", Arguments: "{}"}},
		StopReason: provider.StopToolUse,
	}, nil
}

func (p *loopingProvider) ContinueWithToolResults(ctx context.Context, system string, messages []provider.Message, calls []provider.ToolCall, results []provider.ToolResult, tools []*schema.ToolInfo) (*provider.Response, error) {
	p.continueCalls++
	return &provider.Response{
		ToolCalls:  []provider.ToolCall{{ID: "c2", Name: "find_tasks", Arguments: "{}"}},
		StopReason: provider.StopToolUse,
	}, nil
}

// capturingProvider records the history it was given and answers.
type capturingProvider struct {
	history []provider.Message
	reply   string
}

func (p *capturingProvider) Name() string       { return "capturing" }
func (p *capturingProvider) IsConfigured() bool { return true }

func (p *capturingProvider) Chat(ctx context.Context, system string, messages []provider.Message, tools []*schema.ToolInfo) (*provider.Response, error) {
	p.history = messages
	return &provider.Response{Content: p.reply, StopReason: provider.StopEnd}, nil
}

func (p *capturingProvider) ContinueWithToolResults(ctx context.Context, system string, messages []provider.Message, calls []provider.ToolCall, results []provider.ToolResult, tools []*schema.ToolInfo) (*provider.Response, error) {
	return &provider.Response{Content: p.reply, StopReason: provider.StopEnd}, nil
}

type fakeTasks struct {
	models.TaskService
	briefing *models.Briefing
}

func (f *fakeTasks) GetTodaysBriefing(ctx context.Context, userID string) (*models.Briefing, error) {
	return f.briefing, nil
}

func newTestAgentService(t *testing.T, selector ProviderSelector, domain models.Domain) *AgentService {
	t.Helper()
	database, err := nexoradb.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	memory := NewMemoryService(database)
	if err := memory.AutoMigrate(); err != nil {
		t.Fatalf("migrate memory: %v", err)
	}
	svc := NewAgentService(database, selector, memory, domain)
	if err := svc.AutoMigrate(); err != nil {
		t.Fatalf("migrate agent: %v", err)
	}
	svc.retryDelay = 0
	return svc
}

func TestChat_ToolLoopIsBounded(t *testing.T) {
	p := &loopingProvider{}
	svc := newTestAgentService(t, &fakeSelector{p: p}, models.NewUnconnectedDomain())

	resp, err := svc.Chat(context.Background(), "u1", models.ChatRequest{Message: "haz algo"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if p.continueCalls != 5 {
		t.Fatalf("continue calls = %d, want 5", p.continueCalls)
	}
	if resp.Message == "" {
		t.Fatal("expected a reply even when the loop never settles")
	}
}

func TestChat_NoProviderFallsBack(t *testing.T) {
	svc := newTestAgentService(t, &fakeSelector{p: nil}, models.NewUnconnectedDomain())

	resp, err := svc.Chat(context.Background(), "u1", models.ChatRequest{Message: "cualquier cosa"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Message == "" {
		t.Fatal("fallback must always produce a reply")
	}
	if resp.ConversationID == "" {
		t.Fatal("reply missing conversation ID")
	}

	// Both turns persisted.
	conv, err := svc.GetConversation(context.Background(), "u1", resp.ConversationID)
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(conv.Messages))
	}
	if conv.Messages[0].Role != nexoradb.RoleUser || conv.Messages[1].Role != nexoradb.RoleAssistant {
		t.Fatalf("roles wrong: %s, %s", conv.Messages[0].Role, conv.Messages[1].Role)
	}
}

func TestChat_HistoryWindowIsTwenty(t *testing.T) {
	p := &capturingProvider{reply: "ok"}
	svc := newTestAgentService(t, &fakeSelector{p: p}, models.NewUnconnectedDomain())
	ctx := context.Background()

	conv := &nexoradb.Conversation{ID: uuid.New().String(), UserID: "u1", IsPrimary: true, Title: "t"}
	if err := svc.db.Create(conv).Error; err != nil {
		t.Fatal(err)
	}
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		msg := &nexoradb.Message{
			ID:             uuid.New().String(),
			ConversationID: conv.ID,
			Role:           nexoradb.RoleUser,
			Content:        "mensaje " + string(rune('a'+i)),
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		if err := svc.db.Create(msg).Error; err != nil {
			t.Fatal(err)
		}
	}

	resp, err := svc.Chat(ctx, "u1", models.ChatRequest{Message: "el más nuevo", ConversationID: conv.ID})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Message != "ok" {
		t.Fatalf("reply = %q", resp.Message)
	}
	if len(p.history) != 20 {
		t.Fatalf("history window = %d, want 20", len(p.history))
	}
	if p.history[len(p.history)-1].Content != "el más nuevo" {
		t.Fatalf("window does not end with the new message: %q", p.history[len(p.history)-1].Content)
	}
	// Chronological order.
	if p.history[0].Content >= p.history[1].Content {
		t.Fatalf("history not chronological: %q then %q", p.history[0].Content, p.history[1].Content)
	}
}

func TestChat_FreshGreeting(t *testing.T) {
	svc := newTestAgentService(t, &fakeSelector{p: nil}, models.NewUnconnectedDomain())
	svc.fallback.now = func() time.Time {
		return time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	}

	resp, err := svc.Chat(context.Background(), "u1", models.ChatRequest{Message: "hola"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !strings.Contains(resp.Message, "Buenos días") {
		t.Fatalf("morning greeting missing: %q", resp.Message)
	}
	if resp.ConversationID == "" {
		t.Fatal("greeting missing conversation ID")
	}
	if len(resp.Suggestions) == 0 || len(resp.Suggestions) > 3 {
		t.Fatalf("suggestions count = %d", len(resp.Suggestions))
	}

	svc.fallback.now = func() time.Time {
		return time.Date(2026, 3, 10, 22, 0, 0, 0, time.Local)
	}
	resp, err = svc.Chat(context.Background(), "u1", models.ChatRequest{Message: "hola"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Message, "Buenas noches") {
		t.Fatalf("night greeting missing: %q", resp.Message)
	}
}

func TestChat_BriefingFallbackCounts(t *testing.T) {
	domain := models.NewUnconnectedDomain()
	domain.Tasks = &fakeTasks{briefing: &models.Briefing{
		Summary: models.BriefingSummary{High: 2, Medium: 2, Low: 1, Total: 5},
		Tasks: models.BriefingTasks{
			High:   []models.Task{{ID: "t1", Title: "Llamar a cliente"}, {ID: "t2", Title: "Enviar propuesta"}},
			Medium: []models.Task{{ID: "t3", Title: "Revisar presupuesto"}, {ID: "t4", Title: "Planificar semana"}},
			Low:    []models.Task{{ID: "t5", Title: "Ordenar escritorio"}},
		},
	}}
	svc := newTestAgentService(t, &fakeSelector{p: nil}, domain)

	resp, err := svc.Chat(context.Background(), "u1", models.ChatRequest{Message: "¿Qué tengo pendiente hoy?"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !strings.Contains(resp.Message, "Tienes 5 tareas") {
		t.Errorf("missing total: %q", resp.Message)
	}
	if !strings.Contains(resp.Message, "HIGH (2)") {
		t.Errorf("missing high count: %q", resp.Message)
	}
	if !strings.Contains(resp.Message, "MEDIUM (2)") {
		t.Errorf("missing medium count: %q", resp.Message)
	}
	if len(resp.Actions) != 1 || resp.Actions[0].Type != "show_task" {
		t.Errorf("expected show_task action, got %+v", resp.Actions)
	}
	if resp.Actions[0].Data["taskId"] != "t1" {
		t.Errorf("action targets wrong task: %+v", resp.Actions[0].Data)
	}
}

func TestConversationLifecycle(t *testing.T) {
	svc := newTestAgentService(t, &fakeSelector{p: nil}, models.NewUnconnectedDomain())
	ctx := context.Background()

	first, err := svc.Chat(ctx, "u1", models.ChatRequest{Message: "esta conversación tiene un título bastante largo que debería recortarse a cincuenta"})
	if err != nil {
		t.Fatal(err)
	}

	convs, err := svc.ListConversations(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(convs))
	}
	if got := len([]rune(convs[0].Title)); got > nexoradb.ConversationTitleMaxLen {
		t.Fatalf("title length = %d, want <= %d", got, nexoradb.ConversationTitleMaxLen)
	}

	// Second message reuses the primary conversation.
	second, err := svc.Chat(ctx, "u1", models.ChatRequest{Message: "otra cosa"})
	if err != nil {
		t.Fatal(err)
	}
	if second.ConversationID != first.ConversationID {
		t.Fatalf("primary conversation not reused: %s vs %s", second.ConversationID, first.ConversationID)
	}

	if err := svc.DeleteConversation(ctx, "u1", first.ConversationID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetConversation(ctx, "u1", first.ConversationID); err != ErrConversationNotFound {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
	if err := svc.DeleteConversation(ctx, "u1", first.ConversationID); err != ErrConversationNotFound {
		t.Fatalf("double delete: %v", err)
	}
}
