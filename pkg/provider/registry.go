package provider

import (
	"log/slog"

	"github.com/nexora/nexora/pkg/config"
	"github.com/nexora/nexora/pkg/models"
	"github.com/nexora/nexora/pkg/utils"
)

// Registry holds the known providers and resolves which one serves a
// request. Selection order is the configured default first, then the
// fallback order, skipping anything unconfigured.
type Registry struct {
	providers   map[string]Provider
	keys        map[string]string // provider name -> raw API key, masked on output
	defaultName string
	fallback    []string
	logger      *slog.Logger
}

func NewRegistry(cfg *config.AppConfig) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		keys: map[string]string{
			"gemini": cfg.GeminiAPIKey(),
			"claude": cfg.AnthropicAPIKey(),
			"openai": cfg.OpenAIAPIKey(),
		},
		defaultName: cfg.DefaultProviderName(),
		fallback:    cfg.FallbackProviderOrder(),
		logger:      utils.GetLogger(),
	}
	for _, p := range []Provider{
		NewGemini(cfg),
		NewClaude(cfg),
		NewOpenAI(cfg),
		NewOllama(cfg),
	} {
		r.providers[p.Name()] = p
	}
	return r
}

// Get returns the named provider or nil.
func (r *Registry) Get(name string) Provider {
	return r.providers[name]
}

// GetAvailableProvider returns the first configured provider in
// selection order, or nil when none is usable.
func (r *Registry) GetAvailableProvider() Provider {
	if p := r.providers[r.defaultName]; p != nil && p.IsConfigured() {
		return p
	}
	for _, name := range r.fallback {
		if name == r.defaultName {
			continue
		}
		if p := r.providers[name]; p != nil && p.IsConfigured() {
			r.logger.Info("Default AI provider unavailable, using fallback", "default", r.defaultName, "using", name)
			return p
		}
	}
	return nil
}

// Status reports configuration state for every registered provider.
func (r *Registry) Status() map[string]models.ProviderStatus {
	status := make(map[string]models.ProviderStatus, len(r.providers))
	for name, p := range r.providers {
		status[name] = models.ProviderStatus{
			Configured: p.IsConfigured(),
			IsDefault:  name == r.defaultName,
			APIKey:     utils.MaskSensitiveString(r.keys[name]),
		}
	}
	return status
}
