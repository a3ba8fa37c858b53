// Package provider abstracts the AI chat backends behind a single
// vendor-neutral interface. Adapters exist for Claude, Gemini, OpenAI
// compatible endpoints and Ollama; the registry picks the active one
// and walks a fallback order when it fails.
package provider

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/schema"
)

// Stop reasons normalized across backends.
const (
	StopEnd       = "end"
	StopToolUse   = "tool_use"
	StopMaxTokens = "max_tokens"
	StopError     = "error"
)

// ErrNotConfigured is returned by Chat when the provider lacks credentials.
var ErrNotConfigured = errors.New("provider not configured")

// Message is one turn of a conversation, vendor neutral.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // raw JSON
}

// ToolResult is the outcome of executing a requested tool call.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
}

// Response is a normalized model reply.
type Response struct {
	Content    string
	ToolCalls  []ToolCall
	StopReason string
}

// Provider is a chat backend. Implementations must be safe for
// concurrent use.
type Provider interface {
	Name() string
	IsConfigured() bool

	// Chat sends the conversation and returns the model reply. Tools may
	// be nil when tool use is not wanted for the turn.
	Chat(ctx context.Context, system string, messages []Message, tools []*schema.ToolInfo) (*Response, error)

	// ContinueWithToolResults resends the conversation plus the
	// assistant tool-call turn and its results, letting the model
	// produce the next reply.
	ContinueWithToolResults(ctx context.Context, system string, messages []Message, calls []ToolCall, results []ToolResult, tools []*schema.ToolInfo) (*Response, error)
}
