package tools

import (
	"testing"

	"github.com/cloudwego/eino/components/tool"
)

func registerCatalogFixtures() {
	Register(ToolDefinition{
		ID:          "echo_test",
		Name:        "echo",
		Description: "Echo back the input.",
		Category:    CategoryTasks,
	}, func(tc *ToolContext) tool.InvokableTool {
		return newEchoTool()
	})
	Register(ToolDefinition{
		ID:          "failing_test",
		Name:        "failing",
		Description: "Always fails.",
		Category:    CategoryEmail,
		Dangerous:   true,
		Confirm:     true,
	}, func(tc *ToolContext) tool.InvokableTool {
		return newFailingTool(nil)
	})
}

func TestRegistry_DefinitionsAndLookup(t *testing.T) {
	registerCatalogFixtures()

	if !IsRegistered("echo_test") {
		t.Fatal("echo_test should be registered")
	}
	if IsRegistered("missing_test") {
		t.Fatal("missing_test should not be registered")
	}

	def, ok := GetToolDefinition("failing_test")
	if !ok {
		t.Fatal("failing_test definition missing")
	}
	if !def.Dangerous || !def.Confirm || def.Category != CategoryEmail {
		t.Fatalf("definition wrong: %+v", def)
	}

	if _, ok := GetToolDefinition("missing_test"); ok {
		t.Fatal("lookup of unknown id should fail")
	}
}

func TestRegistry_ListByCategory(t *testing.T) {
	registerCatalogFixtures()

	emailTools := ListToolsByCategory(CategoryEmail)
	found := false
	for _, def := range emailTools {
		if def.Category != CategoryEmail {
			t.Fatalf("wrong category in result: %+v", def)
		}
		if def.ID == "failing_test" {
			found = true
		}
	}
	if !found {
		t.Fatal("failing_test not listed under email category")
	}

	if defs := ListToolsByCategory("no_such_category"); len(defs) != 0 {
		t.Fatalf("unknown category returned %d tools", len(defs))
	}
}
