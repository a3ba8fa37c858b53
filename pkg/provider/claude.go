package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/claude"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/nexora/nexora/pkg/config"
)

// Claude is the Anthropic chat backend.
type Claude struct {
	apiKey    string
	model     string
	maxTokens int
}

func NewClaude(cfg *config.AppConfig) *Claude {
	return &Claude{
		apiKey:    cfg.AnthropicAPIKey(),
		model:     cfg.AnthropicModel(),
		maxTokens: cfg.MaxTokens(),
	}
}

func (p *Claude) Name() string { return "claude" }

func (p *Claude) IsConfigured() bool { return p.apiKey != "" }

func (p *Claude) newChatModel(ctx context.Context) (einoModel.ToolCallingChatModel, error) {
	chatModel, err := claude.NewChatModel(ctx, &claude.Config{
		APIKey:    p.apiKey,
		Model:     p.model,
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Claude model: %w", err)
	}
	return chatModel, nil
}

func (p *Claude) Chat(ctx context.Context, system string, messages []Message, tools []*schema.ToolInfo) (*Response, error) {
	return p.generate(ctx, toSchemaMessages(system, messages), tools)
}

func (p *Claude) ContinueWithToolResults(ctx context.Context, system string, messages []Message, calls []ToolCall, results []ToolResult, tools []*schema.ToolInfo) (*Response, error) {
	history := appendToolTurn(toSchemaMessages(system, messages), calls, results)
	return p.generate(ctx, history, tools)
}

func (p *Claude) generate(ctx context.Context, history []*schema.Message, tools []*schema.ToolInfo) (*Response, error) {
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
		return nil, fmt.Errorf("claude generation failed: %w", err)
	}
	return parseResponse(msg), nil
}
