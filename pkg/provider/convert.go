package provider

import (
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
)

// toSchemaMessages converts a neutral conversation into eino messages,
// prepending the system prompt when present.
func toSchemaMessages(system string, messages []Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages)+1)
	if system != "" {
		out = append(out, &schema.Message{Role: schema.System, Content: system})
	}
	for _, m := range messages {
		role := schema.User
		if m.Role == "assistant" {
			role = schema.Assistant
		}
		out = append(out, &schema.Message{Role: role, Content: m.Content})
	}
	return out
}

// appendToolTurn appends the assistant turn that requested the tool
// calls plus one tool message per result.
func appendToolTurn(history []*schema.Message, calls []ToolCall, results []ToolResult) []*schema.Message {
	schemaCalls := make([]schema.ToolCall, 0, len(calls))
	for _, c := range calls {
		schemaCalls = append(schemaCalls, schema.ToolCall{
			ID:   c.ID,
			Type: "function",
			Function: schema.FunctionCall{
				Name:      c.Name,
				Arguments: c.Arguments,
			},
		})
	}
	history = append(history, &schema.Message{
		Role:      schema.Assistant,
		ToolCalls: schemaCalls,
	})
	for _, r := range results {
		history = append(history, &schema.Message{
			Role:       schema.Tool,
			ToolCallID: r.ToolCallID,
			Content:    r.Content,
		})
	}
	return history
}

// parseResponse normalizes an eino reply. The presence of tool calls
// governs the stop reason regardless of what the vendor reported.
func parseResponse(msg *schema.Message) *Response {
	resp := &Response{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	if len(resp.ToolCalls) > 0 {
		resp.StopReason = StopToolUse
		return resp
	}
	finish := ""
	if msg.ResponseMeta != nil {
		finish = msg.ResponseMeta.FinishReason
	}
	switch finish {
	case "max_tokens", "length", "MAX_TOKENS":
		resp.StopReason = StopMaxTokens
	default:
		resp.StopReason = StopEnd
	}
	return resp
}

// synthesizeToolCallIDs fills in IDs for backends that omit them.
func synthesizeToolCallIDs(prefix string, calls []ToolCall) {
	now := time.Now().UnixMilli()
	for i := range calls {
		if calls[i].ID == "" {
			calls[i].ID = fmt.Sprintf("%s-%d-%d", prefix, now, i)
		}
	}
}
