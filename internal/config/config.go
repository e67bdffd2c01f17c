package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/contentduet/duet/internal/mcp"
	"github.com/contentduet/duet/internal/providers"
)

// Config holds server-side defaults: address, model/temperature
// presets, and optional MCP servers. API keys are deliberately not
// part of it; they arrive per request from the UI or, for the CLI,
// from environment variables.
type Config struct {
	Server    ServerConfig       `yaml:"server"`
	Reactive  AgentConfig        `yaml:"reactive"`
	Proactive AgentConfig        `yaml:"proactive"`
	Search    SearchConfig       `yaml:"search"`
	MCP       []mcp.ServerConfig `yaml:"mcp,omitempty"`
	Logging   LoggingConfig      `yaml:"logging"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type AgentConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

type SearchConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfigPath returns where the config file lives.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./duet.yaml"
	}
	return filepath.Join(home, ".duet", "config.yaml")
}

// Load reads the config file, falling back to defaults when it does
// not exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config YAML: %w", err)
	}
	return cfg, nil
}

// Save writes the config file, creating the directory if needed.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Reactive: AgentConfig{
			Model:       providers.DefaultModel(providers.ProviderGroq),
			Temperature: 0.3,
		},
		Proactive: AgentConfig{
			Model:       providers.DefaultModel(providers.ProviderGemini),
			Temperature: 0.7,
		},
		Search:  SearchConfig{Enabled: true},
		Logging: LoggingConfig{Level: "info"},
	}
}

// EnvAPIKey looks up the environment key for a provider ("groq" ->
// GROQ_API_KEY). CLI convenience only; the web UI always sends keys
// in the request.
func EnvAPIKey(provider string) string {
	return strings.TrimSpace(os.Getenv(strings.ToUpper(provider) + "_API_KEY"))
}
