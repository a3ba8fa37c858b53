package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is read from a YAML file under the user's home directory.
// All fields are optional; defaults are applied by the accessor methods.
//
// Example (~/.nexora/config.yaml):
//
// server:
//   host: 127.0.0.1
//   port: 8090
// ai:
//   default_provider: gemini
//   fallback_order: gemini,claude,openai
// archive:
//   hour: 3
//
// Secrets (API keys) are normally supplied through environment variables
// (ANTHROPIC_API_KEY, GEMINI_API_KEY, OPENAI_API_KEY); values in the file
// are a fallback for local setups.
//
// Notes:
// - If the config file does not exist, Load returns defaults without error.
// - If the config file exists but cannot be parsed, Load returns an error.
// - Port must be between 1 and 65535.

type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	AI       AIConfig       `yaml:"ai"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Redis    RedisConfig    `yaml:"redis"`
}

type ServerConfig struct {
	Host *string `yaml:"host"`
	Port *int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path *string `yaml:"path"`
}

type AIConfig struct {
	DefaultProvider *string `yaml:"default_provider"`
	FallbackOrder   *string `yaml:"fallback_order"`
	MaxTokens       *int    `yaml:"max_tokens"`

	AnthropicAPIKey *string `yaml:"anthropic_api_key"`
	AnthropicModel  *string `yaml:"anthropic_model"`
	GeminiAPIKey    *string `yaml:"gemini_api_key"`
	GeminiModel     *string `yaml:"gemini_model"`
	OpenAIAPIKey    *string `yaml:"openai_api_key"`
	OpenAIModel     *string `yaml:"openai_model"`
	OpenAIBaseURL   *string `yaml:"openai_base_url"`
	OllamaBaseURL   *string `yaml:"ollama_base_url"`
	OllamaModel     *string `yaml:"ollama_model"`

	// Optional embedding model for semantic memory search. When unset,
	// memory search is keyword-only.
	EmbeddingAPIKey *string `yaml:"embedding_api_key"`
	EmbeddingModel  *string `yaml:"embedding_model"`
}

type ArchiveConfig struct {
	Enabled     *bool `yaml:"enabled"`
	Hour        *int  `yaml:"hour"`
	AfterDays   *int  `yaml:"after_days"`
	MinMessages *int  `yaml:"min_messages"`
}

type RedisConfig struct {
	Addr     *string `yaml:"addr"`
	Password *string `yaml:"password"`
	DB       *int    `yaml:"db"`
}

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8090

	DefaultProvider      = "gemini"
	DefaultFallbackOrder = "gemini,claude,openai"
	DefaultMaxTokens     = 1024

	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultGeminiModel    = "gemini-1.5-flash"
	DefaultOpenAIModel    = "gpt-4o-mini"

	DefaultArchiveHour        = 3
	DefaultArchiveAfterDays   = 30
	DefaultArchiveMinMessages = 10
)

// DefaultPaths returns the config dir and config file path.
func DefaultPaths() (configDir string, configFile string, err error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("get user home dir: %w", err)
	}
	configDir = filepath.Join(home, ".nexora")
	configFile = filepath.Join(configDir, "config.yaml")
	return configDir, configFile, nil
}

// Load reads ~/.nexora/config.yaml.
// If the file doesn't exist, it returns a default config and nil error.
func Load() (*AppConfig, string, error) {
	_, configFile, err := DefaultPaths()
	if err != nil {
		return nil, "", err
	}

	cfg := &AppConfig{}
	// Defaults are applied by the accessor methods.

	b, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, configFile, nil
		}
		return nil, "", fmt.Errorf("read config file %s: %w", configFile, err)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, "", fmt.Errorf("parse yaml config %s: %w", configFile, err)
	}

	// Validate
	host := cfg.Host()
	if strings.TrimSpace(host) == "" {
		return nil, "", fmt.Errorf("invalid server.host (empty) in %s", configFile)
	}

	port := cfg.Port()
	if port < 1 || port > 65535 {
		return nil, "", fmt.Errorf("invalid server.port %d in %s", port, configFile)
	}

	return cfg, configFile, nil
}

// EnsureDefaultConfig writes a default config file if it doesn't already exist.
// It is safe to call on startup.
func EnsureDefaultConfig() (string, error) {
	configDir, configFile, err := DefaultPaths()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configFile); err == nil {
		return configFile, nil
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("create config dir %s: %w", configDir, err)
	}

	defaultCfg := AppConfig{
		Server:  ServerConfig{Host: ptr(DefaultHost), Port: ptr(DefaultPort)},
		AI:      AIConfig{DefaultProvider: ptr(DefaultProvider), FallbackOrder: ptr(DefaultFallbackOrder)},
		Archive: ArchiveConfig{Hour: ptr(DefaultArchiveHour)},
	}
	b, err := yaml.Marshal(&defaultCfg)
	if err != nil {
		return "", fmt.Errorf("marshal default config: %w", err)
	}

	// Write with restrictive permissions.
	if err := os.WriteFile(configFile, b, 0o600); err != nil {
		return "", fmt.Errorf("write default config file %s: %w", configFile, err)
	}

	return configFile, nil
}

func (c *AppConfig) Host() string {
	if c == nil || c.Server.Host == nil {
		return DefaultHost
	}
	v := strings.TrimSpace(*c.Server.Host)
	if v == "" {
		return DefaultHost
	}
	return v
}

func (c *AppConfig) Port() int {
	if c == nil || c.Server.Port == nil {
		return DefaultPort
	}
	return *c.Server.Port
}

// DatabasePath returns the sqlite file path, defaulting to a file next to
// the config.
func (c *AppConfig) DatabasePath() string {
	if c != nil && c.Database.Path != nil && *c.Database.Path != "" {
		return *c.Database.Path
	}
	configDir, _, err := DefaultPaths()
	if err != nil {
		return "nexora.db"
	}
	return filepath.Join(configDir, "nexora.db")
}

// envOr returns the value of the environment variable if set, then the
// config value, then the fallback.
func envOr(envKey string, v *string, fallback string) string {
	if s := strings.TrimSpace(os.Getenv(envKey)); s != "" {
		return s
	}
	if v != nil && strings.TrimSpace(*v) != "" {
		return strings.TrimSpace(*v)
	}
	return fallback
}

func (c *AppConfig) DefaultProviderName() string {
	if c == nil {
		return DefaultProvider
	}
	return strings.ToLower(envOr("AI_PROVIDER", c.AI.DefaultProvider, DefaultProvider))
}

// FallbackProviderOrder returns the configured fallback order, de-duplicated.
func (c *AppConfig) FallbackProviderOrder() []string {
	raw := DefaultFallbackOrder
	if c != nil {
		raw = envOr("AI_PROVIDER_FALLBACK", c.AI.FallbackOrder, DefaultFallbackOrder)
	}
	seen := make(map[string]bool)
	var order []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		order = append(order, name)
	}
	return order
}

func (c *AppConfig) MaxTokens() int {
	if c == nil || c.AI.MaxTokens == nil || *c.AI.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return *c.AI.MaxTokens
}

func (c *AppConfig) AnthropicAPIKey() string {
	if c == nil {
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return envOr("ANTHROPIC_API_KEY", c.AI.AnthropicAPIKey, "")
}

func (c *AppConfig) AnthropicModel() string {
	if c == nil {
		return DefaultAnthropicModel
	}
	return envOr("ANTHROPIC_MODEL", c.AI.AnthropicModel, DefaultAnthropicModel)
}

func (c *AppConfig) GeminiAPIKey() string {
	if c == nil {
		return os.Getenv("GEMINI_API_KEY")
	}
	return envOr("GEMINI_API_KEY", c.AI.GeminiAPIKey, "")
}

func (c *AppConfig) GeminiModel() string {
	if c == nil {
		return DefaultGeminiModel
	}
	return envOr("GEMINI_MODEL", c.AI.GeminiModel, DefaultGeminiModel)
}

func (c *AppConfig) OpenAIAPIKey() string {
	if c == nil {
		return os.Getenv("OPENAI_API_KEY")
	}
	return envOr("OPENAI_API_KEY", c.AI.OpenAIAPIKey, "")
}

func (c *AppConfig) OpenAIModel() string {
	if c == nil {
		return DefaultOpenAIModel
	}
	return envOr("OPENAI_MODEL", c.AI.OpenAIModel, DefaultOpenAIModel)
}

func (c *AppConfig) OpenAIBaseURL() string {
	if c == nil {
		return os.Getenv("OPENAI_BASE_URL")
	}
	return envOr("OPENAI_BASE_URL", c.AI.OpenAIBaseURL, "")
}

func (c *AppConfig) OllamaBaseURL() string {
	if c == nil {
		return os.Getenv("OLLAMA_BASE_URL")
	}
	return envOr("OLLAMA_BASE_URL", c.AI.OllamaBaseURL, "")
}

func (c *AppConfig) OllamaModel() string {
	if c == nil {
		return os.Getenv("OLLAMA_MODEL")
	}
	return envOr("OLLAMA_MODEL", c.AI.OllamaModel, "")
}

func (c *AppConfig) EmbeddingAPIKey() string {
	if c == nil {
		return os.Getenv("EMBEDDING_API_KEY")
	}
	return envOr("EMBEDDING_API_KEY", c.AI.EmbeddingAPIKey, "")
}

func (c *AppConfig) EmbeddingModel() string {
	if c == nil {
		return "text-embedding-3-small"
	}
	return envOr("EMBEDDING_MODEL", c.AI.EmbeddingModel, "text-embedding-3-small")
}

func (c *AppConfig) ArchiveEnabled() bool {
	if c == nil || c.Archive.Enabled == nil {
		return true
	}
	return *c.Archive.Enabled
}

func (c *AppConfig) ArchiveHour() int {
	if c == nil || c.Archive.Hour == nil {
		return DefaultArchiveHour
	}
	h := *c.Archive.Hour
	if h < 0 || h > 23 {
		return DefaultArchiveHour
	}
	return h
}

func (c *AppConfig) ArchiveAfterDays() int {
	if c == nil || c.Archive.AfterDays == nil || *c.Archive.AfterDays <= 0 {
		return DefaultArchiveAfterDays
	}
	return *c.Archive.AfterDays
}

func (c *AppConfig) ArchiveMinMessages() int {
	if c == nil || c.Archive.MinMessages == nil || *c.Archive.MinMessages <= 0 {
		return DefaultArchiveMinMessages
	}
	return *c.Archive.MinMessages
}

func (c *AppConfig) RedisAddr() string {
	if c == nil {
		return os.Getenv("REDIS_ADDR")
	}
	return envOr("REDIS_ADDR", c.Redis.Addr, "")
}

func (c *AppConfig) RedisPassword() string {
	if c == nil {
		return os.Getenv("REDIS_PASSWORD")
	}
	return envOr("REDIS_PASSWORD", c.Redis.Password, "")
}

func (c *AppConfig) RedisDB() int {
	if c == nil || c.Redis.DB == nil {
		return 0
	}
	return *c.Redis.DB
}

func ptr[T any](v T) *T { return &v }
