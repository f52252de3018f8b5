package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"MarketLens/internal/strategy"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.DataSource.Provider != "backend" || cfg.DataSource.BaseURL != "http://localhost:5001" {
		t.Errorf("data source = %+v", cfg.DataSource)
	}
	if cfg.DataSource.Timeout != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", cfg.DataSource.Timeout)
	}
	if cfg.DataSource.DefaultPeriod != "6M" {
		t.Errorf("default period = %q", cfg.DataSource.DefaultPeriod)
	}
	if !reflect.DeepEqual(cfg.Indicators, strategy.DefaultParams()) {
		t.Errorf("indicators = %+v, want defaults", cfg.Indicators)
	}
	if cfg.Predictor.Model != "random" || cfg.Predictor.Volatility != 0.15 {
		t.Errorf("predictor = %+v", cfg.Predictor)
	}
	if cfg.Telegram.Enabled() {
		t.Error("telegram should be disabled without credentials")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
  read_timeout: 5s
data_source:
  provider: yahoo
  timeout: 20s
cache:
  driver: none
  ttl: 2m
indicators:
  rsi_period: 10
  trend_long: 100
predictor:
  model: trend
schedule:
  symbols: [TCS, INFY]
telegram:
  bot_token: from-yaml
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")
	t.Setenv("SCHEDULE_SYMBOLS", "RELIANCE,HDFCBANK,ITC")
	t.Setenv("DATA_SOURCE_TIMEOUT", "7s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":9090" || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.DataSource.Provider != "yahoo" {
		t.Errorf("provider = %q", cfg.DataSource.Provider)
	}
	if cfg.DataSource.Timeout != 7*time.Second {
		t.Errorf("timeout = %v, want env override 7s", cfg.DataSource.Timeout)
	}
	if cfg.Cache.Driver != "none" || cfg.Cache.TTL != 2*time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Indicators.RSIPeriod != 10 || cfg.Indicators.TrendLong != 100 || cfg.Indicators.MACDSlow != 26 {
		t.Errorf("indicators = %+v", cfg.Indicators)
	}
	if cfg.Telegram.BotToken != "from-env" || cfg.Telegram.ChatID != "12345" {
		t.Errorf("telegram = %+v", cfg.Telegram)
	}
	if got := strings.Join(cfg.Schedule.Symbols, ","); got != "RELIANCE,HDFCBANK,ITC" {
		t.Errorf("symbols = %q", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, "data_source.provider"},
		{"backend url", func(c *Config) { c.DataSource.BaseURL = "" }, "base_url"},
		{"period", func(c *Config) { c.DataSource.DefaultPeriod = "2Y" }, "default_period"},
		{"cache driver", func(c *Config) { c.Cache.Driver = "memcached" }, "cache.driver"},
		{"indicators", func(c *Config) { c.Indicators.MACDFast = 30 }, "indicators"},
		{"model", func(c *Config) { c.Predictor.Model = "lstm" }, "predictor.model"},
		{"volatility", func(c *Config) { c.Predictor.Volatility = 2 }, "volatility"},
		{"cron", func(c *Config) {
			c.Schedule.Symbols = []string{"TCS"}
			c.Schedule.RefreshCron = "every minute"
		}, "refresh_cron"},
		{"telegram pair", func(c *Config) { c.Telegram.BotToken = "x" }, "telegram"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
