package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Resolver.ConfidenceThreshold != 0.7 {
		t.Errorf("threshold = %v", cfg.Resolver.ConfidenceThreshold)
	}
	if cfg.Resolver.LLMTimeoutSeconds != 20 {
		t.Errorf("llm timeout = %d", cfg.Resolver.LLMTimeoutSeconds)
	}
	if _, _, ok := cfg.DefaultProvider(); ok {
		t.Error("defaults should not enable a provider")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"providers": {
			"openai": {"api_key": "sk-test", "model": "gpt-4o-mini", "enabled": true}
		},
		"resolver": {"confidence_threshold": 0.8}
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Resolver.ConfidenceThreshold != 0.8 {
		t.Errorf("threshold = %v, want the file's 0.8", cfg.Resolver.ConfidenceThreshold)
	}
	if cfg.Resolver.HistoryDepth != 10 {
		t.Errorf("history depth = %d, want default 10", cfg.Resolver.HistoryDepth)
	}
	name, p, ok := cfg.DefaultProvider()
	if !ok || name != "openai" || p.Model != "gpt-4o-mini" {
		t.Errorf("provider = %q %+v ok=%v", name, p, ok)
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestTelegramConfigRequiresToken(t *testing.T) {
	cfg := Default()
	cfg.Gateways = map[string]GatewayConfig{
		"telegram": {Enabled: true},
	}
	if _, ok := cfg.TelegramConfig(); ok {
		t.Error("enabled gateway without a token should be off")
	}
}
