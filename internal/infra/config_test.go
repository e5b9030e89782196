package infra

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = "fx-pods"
	cfg.Trading.Mode = "MOCK"
	cfg.Feed.WSURL = "wss://feed.example.com/ws"
	cfg.Feed.Symbols = []string{"EURUSD"}
	cfg.Feed.Strategies = []string{"ATMF"}
	cfg.Run.DefaultBidSize = 10
	cfg.Run.DefaultOfrSize = 10
	cfg.Run.PricePrecision = 4
	cfg.User.Email = "trader@banka.com"
	cfg.User.Firm = "BANKA"
	cfg.UI.UpdateIntervalMS = 100
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing ws url", func(c *Config) { c.Feed.WSURL = "" }, true},
		{"http url", func(c *Config) { c.Feed.WSURL = "http://feed.example.com" }, true},
		{"plain ws allowed", func(c *Config) { c.Feed.WSURL = "ws://localhost:9000/ws" }, false},
		{"no symbols", func(c *Config) { c.Feed.Symbols = nil }, true},
		{"no strategies", func(c *Config) { c.Feed.Strategies = nil }, true},
		{"zero bid size", func(c *Config) { c.Run.DefaultBidSize = 0 }, true},
		{"negative ofr size", func(c *Config) { c.Run.DefaultOfrSize = -1 }, true},
		{"precision too high", func(c *Config) { c.Run.PricePrecision = 7 }, true},
		{"precision zero allowed", func(c *Config) { c.Run.PricePrecision = 0 }, false},
		{"missing email", func(c *Config) { c.User.Email = "" }, true},
		{"zero update interval", func(c *Config) { c.UI.UpdateIntervalMS = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	yaml := `
app:
  name: fx-pods
trading:
  mode: SIM
feed:
  ws_url: wss://feed.example.com/ws
  symbols: [EURUSD, GBPUSD]
  strategies: [ATMF]
run:
  default_bid_size: 10
  default_ofr_size: 15
  price_precision: 4
user:
  email: trader@banka.com
  firm: BANKA
ui:
  update_interval_ms: 100
logging:
  level: info
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Trading.Mode != "SIM" {
		t.Errorf("mode = %s", cfg.Trading.Mode)
	}
	if len(cfg.Feed.Symbols) != 2 {
		t.Errorf("symbols = %v", cfg.Feed.Symbols)
	}
	if cfg.Run.DefaultOfrSize != 15 {
		t.Errorf("default ofr size = %d", cfg.Run.DefaultOfrSize)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	yaml := `
feed:
  ws_url: ws://localhost/ws
  symbols: [EURUSD]
  strategies: [ATMF]
run:
  default_bid_size: 10
  default_ofr_size: 10
  price_precision: 4
user:
  email: file@banka.com
ui:
  update_interval_ms: 100
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FXPODS_BROKER_KEY", "env-key")
	t.Setenv("FXPODS_BROKER_SECRET", "env-secret")
	t.Setenv("FXPODS_USER_EMAIL", "env@banka.com")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Broker.AccessKey != "env-key" || cfg.Broker.SecretKey != "env-secret" {
		t.Error("broker credentials must come from the environment")
	}
	if cfg.User.Email != "env@banka.com" {
		t.Errorf("email = %s; environment must win", cfg.User.Email)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing file must error")
	}
}
