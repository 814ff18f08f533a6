package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type ProviderConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	IndexSymbol string        `yaml:"index_symbol"`
	MinInterval time.Duration `yaml:"min_interval"`
	Timeout     time.Duration `yaml:"timeout"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Providers struct {
		Finnhub      ProviderConfig `yaml:"finnhub"`
		Polygon      ProviderConfig `yaml:"polygon"`
		AlphaVantage ProviderConfig `yaml:"alphavantage"`
	} `yaml:"providers"`
	Cache struct {
		FreshTTL  time.Duration `yaml:"fresh_ttl"`
		StaleTTL  time.Duration `yaml:"stale_ttl"`
		Retention time.Duration `yaml:"retention"`
		Redis     struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Pipeline struct {
		RequestTimeout time.Duration `yaml:"request_timeout"`
		LookbackDays   int           `yaml:"lookback_days"`
		BackoffBase    time.Duration `yaml:"backoff_base"`
		BackoffCeiling time.Duration `yaml:"backoff_ceiling"`
		ExchangeTZ     string        `yaml:"exchange_tz"`
		Allowlist      []string      `yaml:"allowlist"`
	} `yaml:"pipeline"`
	Stream struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"stream"`
	Audit struct {
		Enabled bool     `yaml:"enabled"`
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"audit"`
	Archive struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		Table            string        `yaml:"table"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"archive"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML, overrides with environment variables,
// then validates. Secrets usually arrive via env, so validation has to run
// after the overrides.
func LoadWithEnv(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Providers.Finnhub.APIKey = v
	}
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		c.Providers.Polygon.APIKey = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		c.Providers.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Audit.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("TICKER_ALLOWLIST"); v != "" {
		c.Pipeline.Allowlist = strings.Split(v, ",")
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Cache.FreshTTL == 0 {
		c.Cache.FreshTTL = time.Hour
	}
	if c.Cache.StaleTTL == 0 {
		c.Cache.StaleTTL = 24 * time.Hour
	}
	if c.Cache.Retention == 0 {
		c.Cache.Retention = 7 * 24 * time.Hour
	}
	if c.Pipeline.RequestTimeout == 0 {
		c.Pipeline.RequestTimeout = 15 * time.Second
	}
	if c.Pipeline.LookbackDays == 0 {
		c.Pipeline.LookbackDays = 120
	}
	if c.Pipeline.ExchangeTZ == "" {
		c.Pipeline.ExchangeTZ = "America/New_York"
	}
	if c.Providers.Finnhub.IndexSymbol == "" {
		c.Providers.Finnhub.IndexSymbol = "SPY"
	}
	if c.Providers.Polygon.IndexSymbol == "" {
		c.Providers.Polygon.IndexSymbol = "SPY"
	}
	if c.Audit.Topic == "" {
		c.Audit.Topic = "finsight.audit"
	}
	if c.Archive.Table == "" {
		c.Archive.Table = "finsight.bars"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Providers.Finnhub.APIKey == "" && c.Providers.Polygon.APIKey == "" {
		return fmt.Errorf("at least one of providers.finnhub.api_key or providers.polygon.api_key is required")
	}
	if c.Cache.FreshTTL >= c.Cache.StaleTTL {
		return fmt.Errorf("cache.fresh_ttl must be shorter than cache.stale_ttl")
	}
	if c.Audit.Enabled && len(c.Audit.Brokers) == 0 {
		return fmt.Errorf("audit.brokers cannot be empty when audit is enabled")
	}
	if c.Archive.Enabled && c.Archive.Host == "" {
		return fmt.Errorf("archive.host is required when archive is enabled")
	}
	return nil
}
