package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
providers:
  finnhub:
    api_key: key-123
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Cache.FreshTTL != time.Hour {
		t.Errorf("fresh ttl = %v, want 1h", cfg.Cache.FreshTTL)
	}
	if cfg.Cache.StaleTTL != 24*time.Hour {
		t.Errorf("stale ttl = %v, want 24h", cfg.Cache.StaleTTL)
	}
	if cfg.Pipeline.ExchangeTZ != "America/New_York" {
		t.Errorf("exchange tz = %q", cfg.Pipeline.ExchangeTZ)
	}
	if cfg.Providers.Finnhub.IndexSymbol != "SPY" {
		t.Errorf("index symbol = %q, want SPY", cfg.Providers.Finnhub.IndexSymbol)
	}
}

func TestLoadRejectsMissingProviderKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "environment: test\n"))
	if err == nil {
		t.Fatal("expected validation error without any provider key")
	}
}

func TestLoadWithEnvOverridesBeforeValidation(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "env-key")

	cfg, err := LoadWithEnv(writeConfig(t, "environment: test\n"))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.Providers.Finnhub.APIKey != "env-key" {
		t.Errorf("api key = %q, want env-key", cfg.Providers.Finnhub.APIKey)
	}
}

func TestLoadWithEnvAllowlist(t *testing.T) {
	t.Setenv("TICKER_ALLOWLIST", "AAPL,MSFT")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if len(cfg.Pipeline.Allowlist) != 2 || cfg.Pipeline.Allowlist[0] != "AAPL" {
		t.Errorf("allowlist = %v", cfg.Pipeline.Allowlist)
	}
}

func validConfig() *Config {
	var c Config
	c.Environment = "test"
	c.Providers.Finnhub.APIKey = "key-123"
	c.applyDefaults()
	return &c
}

func TestValidateTTLOrdering(t *testing.T) {
	c := validConfig()
	c.Cache.FreshTTL = 24 * time.Hour
	c.Cache.StaleTTL = time.Hour
	if err := c.Validate(); err == nil {
		t.Fatal("expected error when fresh_ttl >= stale_ttl")
	}
}

func TestValidateAuditBrokers(t *testing.T) {
	c := validConfig()
	c.Audit.Enabled = true
	c.Audit.Brokers = nil
	if err := c.Validate(); err == nil {
		t.Fatal("expected error when audit enabled without brokers")
	}

	c.Audit.Brokers = []string{"localhost:9092"}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
