package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, []string{"EUR_USD", "GBP_USD", "USD_JPY", "AUD_USD", "USD_CHF", "USD_CAD"}, cfg.Instruments)
	assert.Equal(t, 100, cfg.Fetch.Count)
	assert.Equal(t, "H1", cfg.Fetch.Granularity)
	assert.Equal(t, BackendSQLite, cfg.History.Backend)
	assert.Equal(t, "0 0 * * * *", cfg.Schedule.ScanCron)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
oanda:
  api_key: from-file
  mock_fallback: true
instruments: [eur_usd, " gbp_usd "]
history:
  backend: memory
  max_records: 50
kafka:
  brokers: [localhost:9092]
logging:
  format: json
`)
	t.Setenv("OANDA_API_KEY", "from-env")
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.OANDA.APIKey)
	assert.True(t, cfg.OANDA.MockFallback)
	assert.Equal(t, []string{"EUR_USD", "GBP_USD"}, cfg.Instruments)
	assert.Equal(t, BackendMemory, cfg.History.Backend)
	assert.Equal(t, 50, cfg.History.MaxRecords)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.ErrorContains(t, err, "parse config")

	t.Setenv("SERVER_PORT", "eighty")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "SERVER_PORT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "instrument", mutate: func(c *Config) { c.Instruments = []string{"EURUSD"} }, wantErr: "EURUSD"},
		{name: "count", mutate: func(c *Config) { c.Fetch.Count = 6000 }, wantErr: "fetch.count"},
		{name: "granularity", mutate: func(c *Config) { c.Fetch.Granularity = "H2" }, wantErr: "fetch.granularity"},
		{name: "engine", mutate: func(c *Config) { c.Engine.RSIPeriod = -1 }, wantErr: "engine windows"},
		{name: "bollinger period", mutate: func(c *Config) { c.Engine.BollingerPeriod = 1 }, wantErr: "engine.bollinger_period"},
		{name: "backend", mutate: func(c *Config) { c.History.Backend = "mongo" }, wantErr: "history.backend"},
		{name: "redis addr", mutate: func(c *Config) { c.History.Backend = BackendRedis }, wantErr: "history.redis.addr"},
		{name: "telegram pair", mutate: func(c *Config) { c.Telegram.BotToken = "t" }, wantErr: "set together"},
		{name: "cron", mutate: func(c *Config) { c.Schedule.ScanCron = "every hour" }, wantErr: "schedule.scan_cron"},
		{name: "log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "logging.level"},
		{name: "log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Server.Port = -1
	cfg.Logging.Format = "xml"
	err := cfg.Validate()
	assert.ErrorContains(t, err, "server.port")
	assert.ErrorContains(t, err, "logging.format")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("FXSIGNAL_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("FXSIGNAL_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("FXSIGNAL_TEST_DOTENV"))

	require.NoError(t, loadDotEnv(file))
	assert.Equal(t, "loaded", os.Getenv("FXSIGNAL_TEST_DOTENV"))
	assert.NoError(t, loadDotEnv(filepath.Join(dir, "absent.env")))
}
