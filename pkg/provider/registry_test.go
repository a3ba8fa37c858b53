package provider

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
)

type fakeProvider struct {
	name       string
	configured bool
}

func (f *fakeProvider) Name() string       { return f.name }
func (f *fakeProvider) IsConfigured() bool { return f.configured }
func (f *fakeProvider) Chat(context.Context, string, []Message, []*schema.ToolInfo) (*Response, error) {
	return &Response{Content: "ok", StopReason: StopEnd}, nil
}
func (f *fakeProvider) ContinueWithToolResults(context.Context, string, []Message, []ToolCall, []ToolResult, []*schema.ToolInfo) (*Response, error) {
	return &Response{Content: "ok", StopReason: StopEnd}, nil
}

func newTestRegistry(defaultName string, fallback []string, providers ...Provider) *Registry {
	r := &Registry{
		providers:   make(map[string]Provider),
		keys:        make(map[string]string),
		defaultName: defaultName,
		fallback:    fallback,
		logger:      slog.Default(),
	}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

func TestGetAvailableProvider_PrefersDefault(t *testing.T) {
	r := newTestRegistry("gemini", []string{"gemini", "claude", "openai"},
		&fakeProvider{name: "gemini", configured: true},
		&fakeProvider{name: "claude", configured: true},
	)

	p := r.GetAvailableProvider()
	if p == nil || p.Name() != "gemini" {
		t.Fatalf("expected gemini, got %v", p)
	}
}

func TestGetAvailableProvider_WalksFallbackOrder(t *testing.T) {
	r := newTestRegistry("gemini", []string{"gemini", "claude", "openai"},
		&fakeProvider{name: "gemini", configured: false},
		&fakeProvider{name: "claude", configured: false},
		&fakeProvider{name: "openai", configured: true},
	)

	p := r.GetAvailableProvider()
	if p == nil || p.Name() != "openai" {
		t.Fatalf("expected openai, got %v", p)
	}
}

func TestGetAvailableProvider_NoneConfigured(t *testing.T) {
	r := newTestRegistry("gemini", []string{"gemini", "claude", "openai"},
		&fakeProvider{name: "gemini", configured: false},
		&fakeProvider{name: "claude", configured: false},
	)

	if p := r.GetAvailableProvider(); p != nil {
		t.Fatalf("expected nil provider, got %s", p.Name())
	}
}

func TestStatus(t *testing.T) {
	r := newTestRegistry("claude", []string{"claude", "openai"},
		&fakeProvider{name: "claude", configured: true},
		&fakeProvider{name: "openai", configured: false},
	)

	status := r.Status()
	if len(status) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(status))
	}
	if !status["claude"].Configured || !status["claude"].IsDefault {
		t.Errorf("claude status wrong: %+v", status["claude"])
	}
	if status["openai"].Configured || status["openai"].IsDefault {
		t.Errorf("openai status wrong: %+v", status["openai"])
	}
}

func TestStatus_MasksAPIKeys(t *testing.T) {
	r := newTestRegistry("claude", []string{"claude"},
		&fakeProvider{name: "claude", configured: true},
		&fakeProvider{name: "ollama", configured: true},
	)
	r.keys["claude"] = "sk-ant-REDACTED"

	status := r.Status()
	if got := status["claude"].APIKey; got != "sk-a****alue" {
		t.Errorf("masked key = %q", got)
	}
	if strings.Contains(status["claude"].APIKey, "verysecret") {
		t.Error("masked key leaks the secret")
	}
	if status["ollama"].APIKey != "" {
		t.Errorf("keyless provider should report no key, got %q", status["ollama"].APIKey)
	}
}
