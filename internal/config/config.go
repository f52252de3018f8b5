package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"MarketLens/internal/model"
	"MarketLens/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	DataSource DataSourceConfig `yaml:"data_source" envconfig:"DATA_SOURCE"`
	Cache      CacheConfig      `yaml:"cache" envconfig:"CACHE"`
	Indicators strategy.Params  `yaml:"indicators" envconfig:"INDICATORS"`
	Predictor  PredictorConfig  `yaml:"predictor" envconfig:"PREDICTOR"`
	Schedule   ScheduleConfig   `yaml:"schedule" envconfig:"SCHEDULE"`
	Telegram   TelegramConfig   `yaml:"telegram" envconfig:"TELEGRAM"`
	Proxy      string           `yaml:"proxy" envconfig:"HTTPS_PROXY"`
}

type ServerConfig struct {
	Addr               string        `yaml:"addr" envconfig:"ADDR"`
	ReadTimeout        time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout       time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	MaxRequestBodySize int           `yaml:"max_request_body_size" envconfig:"MAX_REQUEST_BODY_SIZE"`
	MetricsSubsystem   string        `yaml:"metrics_subsystem" envconfig:"METRICS_SUBSYSTEM"`
	LogLevel           string        `yaml:"log_level" envconfig:"LOG_LEVEL"`
}

type DataSourceConfig struct {
	Provider      string        `yaml:"provider" envconfig:"PROVIDER"` // backend, yahoo or mock
	BaseURL       string        `yaml:"base_url" envconfig:"BACKEND_URL"`
	APIKey        string        `yaml:"api_key" envconfig:"API_KEY"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	DefaultPeriod string        `yaml:"default_period" envconfig:"DEFAULT_PERIOD"`
}

type CacheConfig struct {
	Driver        string        `yaml:"driver" envconfig:"DRIVER"` // sqlite, redis or none
	SQLitePath    string        `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	RedisAddr     string        `yaml:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" envconfig:"REDIS_DB"`
	TTL           time.Duration `yaml:"ttl" envconfig:"TTL"`
}

type PredictorConfig struct {
	Model         string  `yaml:"model" envconfig:"MODEL"` // random or trend
	Volatility    float64 `yaml:"volatility" envconfig:"VOLATILITY"`
	Seed          int64   `yaml:"seed" envconfig:"SEED"`
	TrendLookback int     `yaml:"trend_lookback" envconfig:"TREND_LOOKBACK"`
	TrendHorizon  int     `yaml:"trend_horizon" envconfig:"TREND_HORIZON"`
}

type ScheduleConfig struct {
	RefreshCron string   `yaml:"refresh_cron" envconfig:"REFRESH_CRON"`
	Symbols     []string `yaml:"symbols" envconfig:"SYMBOLS"`
	Period      string   `yaml:"period" envconfig:"PERIOD"`
	Workers     int      `yaml:"workers" envconfig:"WORKERS"`
}

type TelegramConfig struct {
	BotToken   string `yaml:"bot_token" envconfig:"BOT_TOKEN"`
	ChatID     string `yaml:"chat_id" envconfig:"CHAT_ID"`
	MaxRetries int    `yaml:"max_retries" envconfig:"MAX_RETRIES"`
}

// Enabled reports whether both bot credentials are present.
func (t TelegramConfig) Enabled() bool { return t.BotToken != "" && t.ChatID != "" }

// Load reads config from a YAML file, then applies environment variable overrides
// and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides, e.g. TELEGRAM_BOT_TOKEN or CACHE_DRIVER.
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.MaxRequestBodySize == 0 {
		c.Server.MaxRequestBodySize = 10 << 20
	}
	if c.Server.MetricsSubsystem == "" {
		c.Server.MetricsSubsystem = "marketlens"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "backend"
	}
	if c.DataSource.BaseURL == "" {
		c.DataSource.BaseURL = "http://localhost:5001"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 15 * time.Second
	}
	if c.DataSource.DefaultPeriod == "" {
		c.DataSource.DefaultPeriod = string(model.DefaultPeriod)
	}

	if c.Cache.Driver == "" {
		c.Cache.Driver = "sqlite"
	}
	if c.Cache.SQLitePath == "" {
		c.Cache.SQLitePath = "data/marketlens.db"
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = "localhost:6379"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}

	// Zero windows fall back to the standard parameter set one by one.
	def := strategy.DefaultParams()
	ind := &c.Indicators
	for _, f := range []struct {
		v   *int
		def int
	}{
		{&ind.RSIPeriod, def.RSIPeriod},
		{&ind.MACDFast, def.MACDFast},
		{&ind.MACDSlow, def.MACDSlow},
		{&ind.MACDSignal, def.MACDSignal},
		{&ind.BollingerPeriod, def.BollingerPeriod},
		{&ind.TrendShort, def.TrendShort},
		{&ind.TrendLong, def.TrendLong},
	} {
		if *f.v == 0 {
			*f.v = f.def
		}
	}
	if ind.BollingerStdDev == 0 {
		ind.BollingerStdDev = def.BollingerStdDev
	}

	if c.Predictor.Model == "" {
		c.Predictor.Model = "random"
	}
	if c.Predictor.Volatility == 0 {
		c.Predictor.Volatility = 0.15
	}
	if c.Predictor.TrendLookback == 0 {
		c.Predictor.TrendLookback = 30
	}
	if c.Predictor.TrendHorizon == 0 {
		c.Predictor.TrendHorizon = 5
	}

	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 */15 9-15 * * 1-5"
	}
	if c.Schedule.Period == "" {
		c.Schedule.Period = string(model.DefaultPeriod)
	}
	if c.Schedule.Workers == 0 {
		c.Schedule.Workers = 4
	}

	if c.Telegram.MaxRetries == 0 {
		c.Telegram.MaxRetries = 3
	}
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "backend":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the backend provider")
		}
	case "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.provider %q must be backend, yahoo or mock", c.DataSource.Provider)
	}
	if _, err := model.ParsePeriod(c.DataSource.DefaultPeriod); err != nil {
		return fmt.Errorf("data_source.default_period: %w", err)
	}

	switch c.Cache.Driver {
	case "sqlite":
		if c.Cache.SQLitePath == "" {
			return fmt.Errorf("cache.sqlite_path is required for the sqlite driver")
		}
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis driver")
		}
	case "none":
	default:
		return fmt.Errorf("cache.driver %q must be sqlite, redis or none", c.Cache.Driver)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}

	if err := c.Indicators.Validate(); err != nil {
		return fmt.Errorf("indicators: %w", err)
	}

	switch c.Predictor.Model {
	case "random", "trend":
	default:
		return fmt.Errorf("predictor.model %q must be random or trend", c.Predictor.Model)
	}
	if c.Predictor.Volatility <= 0 || c.Predictor.Volatility > 1 {
		return fmt.Errorf("predictor.volatility must be in (0, 1]")
	}
	if c.Predictor.TrendLookback < 2 || c.Predictor.TrendHorizon < 1 {
		return fmt.Errorf("predictor.trend_lookback must be at least 2 and trend_horizon at least 1")
	}

	if len(c.Schedule.Symbols) > 0 {
		if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).
			Parse(c.Schedule.RefreshCron); err != nil {
			return fmt.Errorf("schedule.refresh_cron: %w", err)
		}
		if _, err := model.ParsePeriod(c.Schedule.Period); err != nil {
			return fmt.Errorf("schedule.period: %w", err)
		}
	}
	if c.Schedule.Workers < 1 {
		return fmt.Errorf("schedule.workers must be positive")
	}

	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
