package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/nexora/nexora/pkg/config"
)

// OpenAI is the OpenAI compatible chat backend.
type OpenAI struct {
	apiKey    string
	model     string
	baseURL   string
	maxTokens int
}

func NewOpenAI(cfg *config.AppConfig) *OpenAI {
	return &OpenAI{
		apiKey:    cfg.OpenAIAPIKey(),
		model:     cfg.OpenAIModel(),
		baseURL:   cfg.OpenAIBaseURL(),
		maxTokens: cfg.MaxTokens(),
	}
}

func (p *OpenAI) Name() string { return "openai" }

func (p *OpenAI) IsConfigured() bool { return p.apiKey != "" }

func (p *OpenAI) newChatModel(ctx context.Context) (einoModel.ToolCallingChatModel, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:   p.baseURL,
		APIKey:    p.apiKey,
		Model:     p.model,
		MaxTokens: &p.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI model: %w", err)
	}
	return chatModel, nil
}

func (p *OpenAI) Chat(ctx context.Context, system string, messages []Message, tools []*schema.ToolInfo) (*Response, error) {
	return p.generate(ctx, toSchemaMessages(system, messages), tools)
}

func (p *OpenAI) ContinueWithToolResults(ctx context.Context, system string, messages []Message, calls []ToolCall, results []ToolResult, tools []*schema.ToolInfo) (*Response, error) {
	history := appendToolTurn(toSchemaMessages(system, messages), calls, results)
	return p.generate(ctx, history, tools)
}

func (p *OpenAI) generate(ctx context.Context, history []*schema.Message, tools []*schema.ToolInfo) (*Response, error) {
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
		return nil, fmt.Errorf("openai generation failed: %w", err)
	}
	return parseResponse(msg), nil
}
