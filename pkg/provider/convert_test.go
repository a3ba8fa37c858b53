package provider

import (
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestToSchemaMessages_PrependsSystem(t *testing.T) {
	msgs := toSchemaMessages("be helpful", []Message{
		{Role: "user", Content: "hola"},
		{Role: "assistant", Content: "hola, ¿qué tal?"},
	})

	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Role != schema.System || msgs[0].Content != "be helpful" {
		t.Errorf("system message wrong: %+v", msgs[0])
	}
	if msgs[1].Role != schema.User || msgs[2].Role != schema.Assistant {
		t.Errorf("roles wrong: %s, %s", msgs[1].Role, msgs[2].Role)
	}
}

func TestAppendToolTurn(t *testing.T) {
	base := toSchemaMessages("", []Message{{Role: "user", Content: "qué eventos tengo"}})
	calls := []ToolCall{{ID: "call-1", Name: "get_today_events", Arguments: "{}"}}
	results := []ToolResult{{ToolCallID: "call-1", Name: "get_today_events", Content: `{"events":[]}`}}

	history := appendToolTurn(base, calls, results)
	if len(history) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(history))
	}

	assistant := history[1]
	if assistant.Role != schema.Assistant || len(assistant.ToolCalls) != 1 {
		t.Fatalf("assistant tool turn wrong: %+v", assistant)
	}
	if assistant.ToolCalls[0].Function.Name != "get_today_events" {
		t.Errorf("tool call name = %s", assistant.ToolCalls[0].Function.Name)
	}

	toolMsg := history[2]
	if toolMsg.Role != schema.Tool || toolMsg.ToolCallID != "call-1" {
		t.Fatalf("tool result message wrong: %+v", toolMsg)
	}
}

func TestParseResponse_ToolCallsGovernStopReason(t *testing.T) {
	msg := &schema.Message{
		Role:    schema.Assistant,
		Content: "",
		ToolCalls: []schema.ToolCall{{
			ID:       "abc",
			Function: schema.FunctionCall{Name: "find_tasks", Arguments: "{}"},
		}},
		ResponseMeta: &schema.ResponseMeta{FinishReason: "stop"},
	}

	resp := parseResponse(msg)
	if resp.StopReason != StopToolUse {
		t.Errorf("stop reason = %s, want %s", resp.StopReason, StopToolUse)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "find_tasks" {
		t.Errorf("tool calls wrong: %+v", resp.ToolCalls)
	}
}

func TestParseResponse_MaxTokens(t *testing.T) {
	for _, finish := range []string{"max_tokens", "length", "MAX_TOKENS"} {
		msg := &schema.Message{
			Role:         schema.Assistant,
			Content:      "truncated",
			ResponseMeta: &schema.ResponseMeta{FinishReason: finish},
		}
		if resp := parseResponse(msg); resp.StopReason != StopMaxTokens {
			t.Errorf("finish %q: stop reason = %s, want %s", finish, resp.StopReason, StopMaxTokens)
		}
	}
}

func TestParseResponse_PlainEnd(t *testing.T) {
	msg := &schema.Message{Role: schema.Assistant, Content: "listo"}
	resp := parseResponse(msg)
	if resp.StopReason != StopEnd || resp.Content != "listo" {
		t.Errorf("got %+v", resp)
	}
}

func TestSynthesizeToolCallIDs(t *testing.T) {
	calls := []ToolCall{
		{Name: "a"},
		{ID: "keep-me", Name: "b"},
		{Name: "c"},
	}
	synthesizeToolCallIDs("gemini", calls)

	if calls[1].ID != "keep-me" {
		t.Errorf("existing ID overwritten: %s", calls[1].ID)
	}
	for i, idx := range map[int]string{0: "-0", 2: "-2"} {
		if !strings.HasPrefix(calls[i].ID, "gemini-") || !strings.HasSuffix(calls[i].ID, idx) {
			t.Errorf("call %d ID = %q", i, calls[i].ID)
		}
	}
	if calls[0].ID == calls[2].ID {
		t.Errorf("IDs not unique: %s", calls[0].ID)
	}
}
