package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/nexora/nexora/pkg/config"
)

// Gemini is the Google chat backend. On generation failure it retries
// with a couple of known-good model variants since model names rotate
// between API versions.
type Gemini struct {
	apiKey    string
	model     string
	maxTokens int
}

func NewGemini(cfg *config.AppConfig) *Gemini {
	return &Gemini{
		apiKey:    cfg.GeminiAPIKey(),
		model:     cfg.GeminiModel(),
		maxTokens: cfg.MaxTokens(),
	}
}

func (p *Gemini) Name() string { return "gemini" }

func (p *Gemini) IsConfigured() bool { return p.apiKey != "" }

func (p *Gemini) modelVariants() []string {
	variants := []string{p.model, "gemini-1.5-flash", "gemini-1.5-pro"}
	seen := make(map[string]bool, len(variants))
	out := variants[:0]
	for _, v := range variants {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func (p *Gemini) newChatModel(ctx context.Context, model string) (einoModel.ToolCallingChatModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:    client,
		Model:     model,
		MaxTokens: &p.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini model: %w", err)
	}
	return chatModel, nil
}

func (p *Gemini) Chat(ctx context.Context, system string, messages []Message, tools []*schema.ToolInfo) (*Response, error) {
	return p.generate(ctx, toSchemaMessages(system, messages), tools)
}

func (p *Gemini) ContinueWithToolResults(ctx context.Context, system string, messages []Message, calls []ToolCall, results []ToolResult, tools []*schema.ToolInfo) (*Response, error) {
	history := appendToolTurn(toSchemaMessages(system, messages), calls, results)
	return p.generate(ctx, history, tools)
}

func (p *Gemini) generate(ctx context.Context, history []*schema.Message, tools []*schema.ToolInfo) (*Response, error) {
	if !p.IsConfigured() {
		return nil, ErrNotConfigured
	}
	var lastErr error
	for _, variant := range p.modelVariants() {
		chatModel, err := p.newChatModel(ctx, variant)
		if err != nil {
			lastErr = err
			continue
		}
		if len(tools) > 0 {
			chatModel, err = chatModel.WithTools(tools)
			if err != nil {
				lastErr = fmt.Errorf("failed to bind tools: %w", err)
				continue
			}
		}
		msg, err := chatModel.Generate(ctx, history)
		if err != nil {
			lastErr = err
			continue
		}
		resp := parseResponse(msg)
		// Gemini does not return call IDs; synthesize stable ones so
		// tool results can be correlated on the next turn.
		synthesizeToolCallIDs("gemini", resp.ToolCalls)
		return resp, nil
	}
	return nil, fmt.Errorf("gemini generation failed: %w", lastErr)
}
