package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFile_ReturnsDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, path, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path == "" {
		t.Fatalf("expected config path")
	}
	if got := cfg.Host(); got != DefaultHost {
		t.Fatalf("cfg.Host() = %q, want %q", got, DefaultHost)
	}
	if got := cfg.Port(); got != DefaultPort {
		t.Fatalf("cfg.Port() = %d, want %d", got, DefaultPort)
	}
}

func TestEnsureDefaultConfig_CreatesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := EnsureDefaultConfig()
	if err != nil {
		t.Fatalf("EnsureDefaultConfig() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to exist at %s: %v", path, err)
	}

	cfg, gotPath, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if filepath.Clean(gotPath) != filepath.Clean(path) {
		t.Fatalf("Load() path = %s, want %s", gotPath, path)
	}
	if got := cfg.DefaultProviderName(); got != DefaultProvider {
		t.Fatalf("cfg.DefaultProviderName() = %q, want %q", got, DefaultProvider)
	}
}

func TestLoad_ParsesServerAndAI(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".nexora")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	content := "server:\n  host: 0.0.0.0\n  port: 9090\nai:\n  default_provider: claude\n  fallback_order: claude,openai,claude\n"
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Host(); got != "0.0.0.0" {
		t.Fatalf("cfg.Host() = %q, want %q", got, "0.0.0.0")
	}
	if got := cfg.Port(); got != 9090 {
		t.Fatalf("cfg.Port() = %d, want %d", got, 9090)
	}
	if got := cfg.DefaultProviderName(); got != "claude" {
		t.Fatalf("cfg.DefaultProviderName() = %q, want %q", got, "claude")
	}
	order := cfg.FallbackProviderOrder()
	if len(order) != 2 || order[0] != "claude" || order[1] != "openai" {
		t.Fatalf("cfg.FallbackProviderOrder() = %v, want [claude openai]", order)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("GEMINI_API_KEY", "env-key")

	configDir := filepath.Join(home, ".nexora")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	content := "ai:\n  default_provider: claude\n  gemini_api_key: file-key\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.DefaultProviderName(); got != "openai" {
		t.Fatalf("cfg.DefaultProviderName() = %q, want %q", got, "openai")
	}
	if got := cfg.GeminiAPIKey(); got != "env-key" {
		t.Fatalf("cfg.GeminiAPIKey() = %q, want %q", got, "env-key")
	}
}

func TestArchiveDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.ArchiveHour(); got != DefaultArchiveHour {
		t.Fatalf("cfg.ArchiveHour() = %d, want %d", got, DefaultArchiveHour)
	}
	if got := cfg.ArchiveAfterDays(); got != DefaultArchiveAfterDays {
		t.Fatalf("cfg.ArchiveAfterDays() = %d, want %d", got, DefaultArchiveAfterDays)
	}
	if got := cfg.ArchiveMinMessages(); got != DefaultArchiveMinMessages {
		t.Fatalf("cfg.ArchiveMinMessages() = %d, want %d", got, DefaultArchiveMinMessages)
	}
}
