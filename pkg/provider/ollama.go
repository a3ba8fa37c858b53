package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ollama"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/nexora/nexora/pkg/config"
)

// Ollama is the local model backend. It only participates in fallback
// when named explicitly in the configured order.
type Ollama struct {
	baseURL string
	model   string
}

func NewOllama(cfg *config.AppConfig) *Ollama {
	return &Ollama{
		baseURL: cfg.OllamaBaseURL(),
		model:   cfg.OllamaModel(),
	}
}

func (p *Ollama) Name() string { return "ollama" }

func (p *Ollama) IsConfigured() bool { return p.baseURL != "" && p.model != "" }

func (p *Ollama) newChatModel(ctx context.Context) (einoModel.ToolCallingChatModel, error) {
	chatModel, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
		BaseURL: p.baseURL,
		Model:   p.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama model: %w", err)
	}
	return chatModel, nil
}

func (p *Ollama) Chat(ctx context.Context, system string, messages []Message, tools []*schema.ToolInfo) (*Response, error) {
	return p.generate(ctx, toSchemaMessages(system, messages), tools)
}

func (p *Ollama) ContinueWithToolResults(ctx context.Context, system string, messages []Message, calls []ToolCall, results []ToolResult, tools []*schema.ToolInfo) (*Response, error) {
	history := appendToolTurn(toSchemaMessages(system, messages), calls, results)
	return p.generate(ctx, history, tools)
}

func (p *Ollama) generate(ctx context.Context, history []*schema.Message, tools []*schema.ToolInfo) (*Response, error) {
	if !p.IsConfigured() {
		return nil, ErrNotConfigured
	}
	chatModel, err := p.newChatModel(ctx)
	if err != nil {
		return nil, err
	}
	if len(tools) > 0 {
		chatModel, err = chatModel.WithTools(tools)
		if err != nil {
			return nil, fmt.Errorf("failed to bind tools: %w", err)
		}
	}
	msg, err := chatModel.Generate(ctx, history)
	if err != nil {
		return nil, fmt.Errorf("ollama generation failed: %w", err)
	}
	return parseResponse(msg), nil
}
