package models

// MaxChatMessageLen bounds user chat input.
const MaxChatMessageLen = 2000

// ChatRequest is the body of POST /api/agent/chat.
type ChatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// AgentAction is a client-side action suggested by the assistant.
type AgentAction struct {
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data,omitempty"`
}

// AgentResponse is the assistant's reply to a chat turn.
type AgentResponse struct {
	Message        string        `json:"message"`
	ConversationID string        `json:"conversation_id"`
	Actions        []AgentAction `json:"actions,omitempty"`
	Suggestions    []string      `json:"suggestions,omitempty"`
}

// ProviderStatus describes one AI backend for GET /api/agent/providers/status.
type ProviderStatus struct {
	Configured bool   `json:"configured"`
	IsDefault  bool   `json:"is_default"`
	APIKey     string `json:"api_key,omitempty"` // masked, never the full secret
}
