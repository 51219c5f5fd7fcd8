package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	ai "github.com/spetersoncode/tablebridge"
	"github.com/spetersoncode/tablebridge/finder"
	"github.com/spetersoncode/tablebridge/server"
)

const (
	openRouterBaseURL    = "https://openrouter.ai/api/v1"
	openRouterModel      = "gemini-2.5-flash"
	openRouterAppName    = "A2UI Restaurant Agent"
	openRouterReferer    = "A2UI.org"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
)

// Config holds the process configuration loaded from environment variables.
type Config struct {
	// Server
	Host          string
	Port          string
	PublicBaseURL string
	LogLevel      string // debug, info, warn, error
	CORSOrigins   []string
	StaticDir     string
	EnableAGUI    bool

	// Provider selection. Empty means the first provider with a key, in
	// the order openrouter, openai, gemini, anthropic.
	Provider string

	// API keys and models
	OpenRouterKey     string
	OpenRouterModel   string
	OpenRouterAppName string
	OpenRouterReferer string
	OpenAIKey         string
	OpenAIBaseURL     string
	OpenAIModel       string
	GeminiKey         string
	GeminiModel       string
	AnthropicKey      string
	AnthropicModel    string

	// Agent config
	MaxSteps      int
	UIRetries     int
	StreamTimeout time.Duration
	TaskTTL       time.Duration
	SessionTTL    time.Duration
}

// LoadConfig loads configuration from environment variables.
// It loads a .env file if present (silent fail if not found).
func LoadConfig() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Host:              getEnvOrDefault("HOST", "localhost"),
		Port:              getEnvOrDefault("PORT", "10002"),
		PublicBaseURL:     os.Getenv("PUBLIC_BASE_URL"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		CORSOrigins:       getEnvListOrDefault("CORS_ORIGINS", server.DefaultCORSOrigins),
		StaticDir:         os.Getenv("STATIC_DIR"),
		EnableAGUI:        getEnvBoolOrDefault("AGUI_ENABLED", true),
		Provider:          strings.ToLower(os.Getenv("LLM_PROVIDER")),
		OpenRouterKey:     os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   getEnvOrDefault("OPENROUTER_MODEL", openRouterModel),
		OpenRouterAppName: getEnvOrDefault("OPENROUTER_APP_NAME", openRouterAppName),
		OpenRouterReferer: getEnvOrDefault("OPENROUTER_REFERER", openRouterReferer),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     getEnvOrDefault("OPENAI_BASE_URL", defaultOpenAIBaseURL),
		OpenAIModel:       os.Getenv("OPENAI_MODEL"),
		GeminiKey:         getEnvOrDefault("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		GeminiModel:       os.Getenv("GEMINI_MODEL"),
		AnthropicKey:      os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:    os.Getenv("ANTHROPIC_MODEL"),
		MaxSteps:          getEnvIntOrDefault("MAX_STEPS", 10),
		UIRetries:         getEnvIntOrDefault("UI_RETRIES", finder.DefaultUIRetries),
		StreamTimeout:     getEnvDurationOrDefault("STREAM_TIMEOUT", 0),
		TaskTTL:           getEnvDurationOrDefault("TASK_TTL", 24*time.Hour),
		SessionTTL:        getEnvDurationOrDefault("SESSION_TTL", 24*time.Hour),
	}

	if cfg.Provider == "" {
		cfg.Provider = string(cfg.detectProvider())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// detectProvider returns the first provider with a key, or "".
func (c *Config) detectProvider() ai.Provider {
	switch {
	case c.OpenRouterKey != "":
		return ai.ProviderOpenRouter
	case c.OpenAIKey != "":
		return ai.ProviderOpenAI
	case c.GeminiKey != "":
		return ai.ProviderGemini
	case c.AnthropicKey != "":
		return ai.ProviderAnthropic
	}
	return ""
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("no LLM API key found: set one of OPENROUTER_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY or ANTHROPIC_API_KEY")
	}

	p, ok := ai.ParseProvider(c.Provider)
	if !ok {
		return fmt.Errorf("unknown provider: %s (must be openrouter, openai, gemini, or anthropic)", c.Provider)
	}
	switch p {
	case ai.ProviderOpenRouter:
		if c.OpenRouterKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required for openrouter provider")
		}
	case ai.ProviderOpenAI:
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for openai provider")
		}
	case ai.ProviderGemini:
		if c.GeminiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for gemini provider")
		}
	case ai.ProviderAnthropic:
		if c.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for anthropic provider")
		}
	}

	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid PORT %q: %w", c.Port, err)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("MAX_STEPS must be at least 1, got %d", c.MaxSteps)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ProviderName returns the validated provider.
func (c *Config) ProviderName() ai.Provider {
	p, _ := ai.ParseProvider(c.Provider)
	return p
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// PublicURL returns PublicBaseURL, defaulting to the listen address.
func (c *Config) PublicURL() string {
	if c.PublicBaseURL != "" {
		return strings.TrimSuffix(c.PublicBaseURL, "/")
	}
	host := c.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, c.Port)
}

// SetAddr overrides Host and Port with a host:port address.
func (c *Config) SetAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	if _, err := strconv.Atoi(port); err != nil {
		return fmt.Errorf("invalid port in %q: %w", addr, err)
	}
	c.Host, c.Port = host, port
	return nil
}

// Level returns the slog level for LogLevel.
func (c *Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (must be debug, info, warn, or error)", s)
	}
	return level, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma-separated value, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
