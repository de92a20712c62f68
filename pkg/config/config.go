// Package config loads the console configuration. Every field has a
// working default: with no file and no API keys the console still runs,
// serving the pattern and template tiers offline.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	App       AppConfig                 `json:"app"`
	Gateways  map[string]GatewayConfig  `json:"gateways"`
	Providers map[string]ProviderConfig `json:"providers"`
	Memory    MemoryConfig              `json:"memory"`
	Resolver  ResolverConfig            `json:"resolver"`
	Executor  ExecutorConfig            `json:"executor"`
}

type AppConfig struct {
	Name      string `json:"name"`
	Workspace string `json:"workspace"`
}

type GatewayConfig struct {
	Token   string `json:"token"`
	Enabled bool   `json:"enabled"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
	Enabled bool   `json:"enabled"`
}

type MemoryConfig struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

type ResolverConfig struct {
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	LLMTimeoutSeconds   int     `json:"llm_timeout_seconds"`
	HistoryDepth        int     `json:"history_depth"`
}

type ExecutorConfig struct {
	ConfirmTimeoutSeconds int `json:"confirm_timeout_seconds"`
}

// Default returns the built-in configuration: local SQLite memory in the
// user's home, no gateways, no providers.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		App: AppConfig{
			Name:      "ubongo",
			Workspace: home,
		},
		Memory: MemoryConfig{
			Type: "sqlite",
			Path: filepath.Join(home, ".ubongo", "sessions.db"),
		},
		Resolver: ResolverConfig{
			ConfidenceThreshold: 0.7,
			LLMTimeoutSeconds:   20,
			HistoryDepth:        10,
		},
		Executor: ExecutorConfig{
			ConfirmTimeoutSeconds: 60,
		},
	}
}

// Load reads the config file at path, layering it over the defaults. A
// missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults restores zero-valued tuning knobs a partial file left out.
func (c *Config) fillDefaults() {
	def := Default()
	if c.App.Name == "" {
		c.App.Name = def.App.Name
	}
	if c.App.Workspace == "" {
		c.App.Workspace = def.App.Workspace
	}
	if c.Memory.Path == "" {
		c.Memory = def.Memory
	}
	if c.Resolver.ConfidenceThreshold <= 0 {
		c.Resolver.ConfidenceThreshold = def.Resolver.ConfidenceThreshold
	}
	if c.Resolver.LLMTimeoutSeconds <= 0 {
		c.Resolver.LLMTimeoutSeconds = def.Resolver.LLMTimeoutSeconds
	}
	if c.Resolver.HistoryDepth <= 0 {
		c.Resolver.HistoryDepth = def.Resolver.HistoryDepth
	}
	if c.Executor.ConfirmTimeoutSeconds <= 0 {
		c.Executor.ConfirmTimeoutSeconds = def.Executor.ConfirmTimeoutSeconds
	}
}

// DefaultProvider returns the first enabled provider.
func (c *Config) DefaultProvider() (string, ProviderConfig, bool) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p, true
		}
	}
	return "", ProviderConfig{}, false
}

// TelegramConfig returns the telegram gateway settings if enabled.
func (c *Config) TelegramConfig() (GatewayConfig, bool) {
	tg, ok := c.Gateways["telegram"]
	if ok && tg.Enabled && tg.Token != "" {
		return tg, true
	}
	return GatewayConfig{}, false
}
