package infra

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every application setting. Secrets may be overridden through
// environment variables after the file is loaded.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Trading struct {
		Mode string `yaml:"mode"` // MOCK | SIM | LIVE
	} `yaml:"trading"`

	Feed struct {
		WSURL      string   `yaml:"ws_url"`
		Symbols    []string `yaml:"symbols"`
		Strategies []string `yaml:"strategies"`
	} `yaml:"feed"`

	Broker struct {
		RestURL   string `yaml:"rest_url"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"broker"`

	Run struct {
		DefaultBidSize int64 `yaml:"default_bid_size"` // Millions
		DefaultOfrSize int64 `yaml:"default_ofr_size"` // Millions
		PricePrecision int   `yaml:"price_precision"`  // Display decimals
	} `yaml:"run"`

	User struct {
		Email    string `yaml:"email"`
		Firm     string `yaml:"firm"`
		IsBroker bool   `yaml:"is_broker"`
	} `yaml:"user"`

	UI struct {
		UpdateIntervalMS int `yaml:"update_interval_ms"`
	} `yaml:"ui"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file, applies environment overrides
// and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Feed.WSURL == "" || (!hasPrefix(c.Feed.WSURL, "ws://") && !hasPrefix(c.Feed.WSURL, "wss://")) {
		return fmt.Errorf("invalid feed WS URL: %s", c.Feed.WSURL)
	}
	if len(c.Feed.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	if len(c.Feed.Strategies) == 0 {
		return fmt.Errorf("at least one strategy is required")
	}

	if c.Run.DefaultBidSize <= 0 || c.Run.DefaultOfrSize <= 0 {
		return fmt.Errorf("default sizes must be positive (bid=%d, ofr=%d)",
			c.Run.DefaultBidSize, c.Run.DefaultOfrSize)
	}
	if c.Run.PricePrecision < 0 || c.Run.PricePrecision > 6 {
		return fmt.Errorf("price precision must be within 0..6, got %d", c.Run.PricePrecision)
	}

	if c.User.Email == "" {
		return fmt.Errorf("user email is required")
	}

	if c.UI.UpdateIntervalMS <= 0 {
		return fmt.Errorf("update interval must be positive")
	}

	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv replaces settings from environment variables when present.
// Environment variables take precedence over the file for secrets.
func overrideWithEnv(cfg *Config) {
	if cfg.Broker.SecretKey != "" {
		fmt.Println("⚠️  SECURITY WARNING: broker secret found in config file.")
		fmt.Println("   Recommendation: use environment variables instead:")
		fmt.Println("   - FXPODS_BROKER_KEY, FXPODS_BROKER_SECRET")
	}

	if key := os.Getenv("FXPODS_BROKER_KEY"); key != "" {
		cfg.Broker.AccessKey = key
	}
	if secret := os.Getenv("FXPODS_BROKER_SECRET"); secret != "" {
		cfg.Broker.SecretKey = secret
	}
	if email := os.Getenv("FXPODS_USER_EMAIL"); email != "" {
		cfg.User.Email = email
	}
}
