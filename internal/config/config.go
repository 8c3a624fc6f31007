package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"FXSignal/internal/collector"
)

// History backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

var instrumentPattern = regexp.MustCompile(`^[A-Z]{3}_[A-Z]{3}$`)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port        int      `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	OANDA struct {
		BaseURL      string  `yaml:"base_url"`
		APIKey       string  `yaml:"api_key"`
		AccountID    string  `yaml:"account_id"`
		// 0 keeps the default. A negative value disables rate limiting.
		RatePerSec   float64 `yaml:"rate_per_sec"`
		// 0 keeps the default. A negative value disables retries.
		MaxRetries   int     `yaml:"max_retries"`
		MockFallback bool    `yaml:"mock_fallback"`
	} `yaml:"oanda"`
	NewsAPI struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"newsapi"`
	Instruments []string `yaml:"instruments"`
	Engine      struct {
		RSIPeriod       int `yaml:"rsi_period"`
		BollingerPeriod int `yaml:"bollinger_period"`
		SRWindow        int `yaml:"sr_window"`
		MinBars         int `yaml:"min_bars"`
	} `yaml:"engine"`
	Fetch struct {
		Count       int    `yaml:"count"`
		Granularity string `yaml:"granularity"`
		Concurrency int    `yaml:"concurrency"`
	} `yaml:"fetch"`
	History struct {
		Backend    string `yaml:"backend"`
		MaxRecords int    `yaml:"max_records"`
		SQLitePath string `yaml:"sqlite_path"`
		Redis      struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Key      string `yaml:"key"`
		} `yaml:"redis"`
	} `yaml:"history"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads an optional .env file and the YAML config at path, then applies
// environment variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

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

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// loadDotEnv fills unset environment variables from file when it exists.
func loadDotEnv(file string) error {
	if _, err := os.Stat(file); err != nil {
		return nil
	}
	if err := godotenv.Load(file); err != nil {
		return fmt.Errorf("load %s: %w", file, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("OANDA_API_KEY", &c.OANDA.APIKey)
	setString("OANDA_ACCOUNT_ID", &c.OANDA.AccountID)
	setString("OANDA_BASE_URL", &c.OANDA.BaseURL)
	setString("NEWSAPI_KEY", &c.NewsAPI.APIKey)
	setString("HISTORY_BACKEND", &c.History.Backend)
	setString("SQLITE_PATH", &c.History.SQLitePath)
	setString("REDIS_ADDR", &c.History.Redis.Addr)
	setString("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	setString("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	setString("HTTPS_PROXY", &c.Proxy)
	setString("LOG_LEVEL", &c.Logging.Level)
	setString("CRON_SCAN", &c.Schedule.ScanCron)

	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SERVER_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("INSTRUMENTS"); v != "" {
		c.Instruments = splitList(v)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if len(c.Instruments) == 0 {
		c.Instruments = []string{"EUR_USD", "GBP_USD", "USD_JPY", "AUD_USD", "USD_CHF", "USD_CAD"}
	}
	for i, inst := range c.Instruments {
		c.Instruments[i] = strings.ToUpper(strings.TrimSpace(inst))
	}
	if c.OANDA.BaseURL == "" {
		c.OANDA.BaseURL = collector.DefaultOANDAURL
	}
	if c.OANDA.RatePerSec == 0 {
		c.OANDA.RatePerSec = 10
	}
	if c.OANDA.MaxRetries == 0 {
		c.OANDA.MaxRetries = 2
	}
	if c.Fetch.Count == 0 {
		c.Fetch.Count = collector.DefaultCount
	}
	if c.Fetch.Granularity == "" {
		c.Fetch.Granularity = collector.DefaultGranularity
	}
	if c.Fetch.Concurrency == 0 {
		c.Fetch.Concurrency = collector.DefaultConcurrency
	}
	if c.History.Backend == "" {
		c.History.Backend = BackendSQLite
	}
	if c.History.SQLitePath == "" {
		c.History.SQLitePath = "data/fxsignal.db"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "fxsignal.signals"
	}
	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 0 * * * *"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks that the configuration is usable. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	for _, inst := range c.Instruments {
		if !instrumentPattern.MatchString(inst) {
			errs = append(errs, fmt.Errorf("instrument %q must look like EUR_USD", inst))
		}
	}
	if c.Fetch.Count < 1 || c.Fetch.Count > 5000 {
		errs = append(errs, fmt.Errorf("fetch.count must be between 1 and 5000"))
	}
	if !collector.ValidGranularity(c.Fetch.Granularity) {
		errs = append(errs, fmt.Errorf("fetch.granularity %q is not supported", c.Fetch.Granularity))
	}
	if c.Engine.MinBars < 0 || c.Engine.RSIPeriod < 0 || c.Engine.BollingerPeriod < 0 || c.Engine.SRWindow < 0 {
		errs = append(errs, fmt.Errorf("engine windows must not be negative"))
	}
	if c.Engine.BollingerPeriod == 1 {
		errs = append(errs, fmt.Errorf("engine.bollinger_period must be at least 2"))
	}
	switch c.History.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.History.SQLitePath == "" {
			errs = append(errs, fmt.Errorf("history.sqlite_path is required for the sqlite backend"))
		}
	case BackendRedis:
		if c.History.Redis.Addr == "" {
			errs = append(errs, fmt.Errorf("history.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("history.backend %q must be memory, sqlite or redis", c.History.Backend))
	}
	if c.History.MaxRecords < 0 {
		errs = append(errs, fmt.Errorf("history.max_records must not be negative"))
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		errs = append(errs, fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together"))
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.ScanCron); err != nil {
		errs = append(errs, fmt.Errorf("schedule.scan_cron: %w", err))
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		errs = append(errs, fmt.Errorf("logging.format %q must be text or json", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// TelegramEnabled reports whether alerts and bot commands are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
