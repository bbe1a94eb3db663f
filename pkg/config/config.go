// Package config provides centralized configuration management for the restaurant assistant.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable viper consults, so
// `menu.path` is read from RESTAURANT_MENU_PATH.
const EnvPrefix = "RESTAURANT"

// Config holds the complete configuration for both the client and the server.
type Config struct {
	Menu       MenuConfig       `mapstructure:"menu"`
	Transcript TranscriptConfig `mapstructure:"transcript"`
	Prompt     PromptConfig     `mapstructure:"prompt"`
	Log        LogConfig        `mapstructure:"log"`
	Model      ModelConfig      `mapstructure:"model"`
	Agent      AgentConfig      `mapstructure:"agent"`
	Server     ServerConfig     `mapstructure:"server"`
}

// MenuConfig locates the flat-file menu the server answers orders from.
type MenuConfig struct {
	Path string `mapstructure:"path"`
	// Reload re-reads the file on every order instead of once at startup.
	Reload bool `mapstructure:"reload"`
}

// TranscriptConfig locates the append-only audit log shared by client and server.
type TranscriptConfig struct {
	Path string `mapstructure:"path"`
	// MaxBytes caps the file size; zero keeps the log unbounded.
	MaxBytes int64 `mapstructure:"max_bytes"`
}

// PromptConfig locates the system prompt file.
type PromptConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ModelConfig describes the hosted chat model the client talks to.
type ModelConfig struct {
	Provider    string  `mapstructure:"provider"` // "openai" or "anthropic"
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Name        string  `mapstructure:"name"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int64   `mapstructure:"max_tokens"`
}

// AgentConfig bounds a single conversational turn.
type AgentConfig struct {
	MaxSteps int           `mapstructure:"max_steps"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ServerConfig tells the client how to launch the tool server subprocess.
type ServerConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
	Env     []string `mapstructure:"env"`
}

// Providers supported by the client.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Model names used when model.name is left empty.
const (
	DefaultOpenAIModel    = "deepseek-chat"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
)

// DefaultModelName returns the model a provider falls back to.
func DefaultModelName(provider string) string {
	if provider == ProviderAnthropic {
		return DefaultAnthropicModel
	}

	return DefaultOpenAIModel
}

/*
NewViper returns a viper instance with every key defaulted and environment
lookup enabled. Commands bind their flags onto it before calling Load.
*/
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("menu.path", "menu.txt")
	v.SetDefault("menu.reload", false)
	v.SetDefault("transcript.path", "call.txt")
	v.SetDefault("transcript.max_bytes", 0)
	v.SetDefault("prompt.path", "restaurant_prompt.txt")
	v.SetDefault("log.level", "info")

	v.SetDefault("model.provider", ProviderOpenAI)
	v.SetDefault("model.base_url", "")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.name", "")
	v.SetDefault("model.temperature", 0.0)
	v.SetDefault("model.max_tokens", 1024)

	v.SetDefault("agent.max_steps", 3)
	v.SetDefault("agent.timeout", "0s")

	v.SetDefault("server.command", "restaurant-server")
	v.SetDefault("server.args", []string{})
	v.SetDefault("server.env", []string{})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider SDKs conventionally read these; accept them as fallbacks.
	_ = v.BindEnv(
		"model.api_key",
		EnvPrefix+"_MODEL_API_KEY",
		"OPENAI_API_KEY",
		"ANTHROPIC_API_KEY",
		"DEEPSEEK_API_KEY",
	)

	return v
}

// Load reads an optional config file into v and decodes the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if v == nil {
		v = NewViper()
	}

	if file != "" {
		v.SetConfigFile(file)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Model.Name == "" {
		cfg.Model.Name = DefaultModelName(cfg.Model.Provider)
	}

	return cfg, nil
}

// Validate checks the settings both processes depend on.
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.Menu.Path) == "" {
		errors = append(errors, "menu.path is required")
	}

	if strings.TrimSpace(c.Transcript.Path) == "" {
		errors = append(errors, "transcript.path is required")
	}

	if c.Transcript.MaxBytes < 0 {
		errors = append(errors, "transcript.max_bytes must not be negative")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

// ValidateClient additionally checks what the client needs to reach the
// model and start the server.
func (c *Config) ValidateClient() error {
	var errors []string

	if err := c.Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	switch c.Model.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		errors = append(errors, fmt.Sprintf("unsupported model.provider %q", c.Model.Provider))
	}

	if c.Model.APIKey == "" {
		errors = append(errors, "model.api_key is required for the chat model")
	}

	if c.Model.Name == "" {
		errors = append(errors, "model.name is required")
	}

	if c.Agent.MaxSteps < 1 {
		errors = append(errors, "agent.max_steps must be at least 1")
	}

	if c.Agent.Timeout < 0 {
		errors = append(errors, "agent.timeout must not be negative")
	}

	if strings.TrimSpace(c.Server.Command) == "" {
		errors = append(errors, "server.command is required")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}
