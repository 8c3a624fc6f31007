package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"FXSignal/internal/collector"
	"FXSignal/internal/config"
	"FXSignal/internal/logger"
	"FXSignal/internal/monitor"
	"FXSignal/internal/news"
	"FXSignal/internal/notifier"
	"FXSignal/internal/recorder"
	"FXSignal/internal/strategy"
)

const retryBackoff = 500 * time.Millisecond

// app holds the wired components shared by all commands.
type app struct {
	cfg       *config.Config
	logger    *logrus.Logger
	monitor   *monitor.Monitor
	history   recorder.Store
	collector *collector.Collector
	news      *news.Client
	telegram  *notifier.TelegramNotifier
	closers   []func() error
}

// loadConfig reads and validates the configuration, applying flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newApp(cfg *config.Config) (*app, error) {
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: log, monitor: monitor.New()}

	store, err := a.openHistory()
	if err != nil {
		return nil, err
	}
	a.history = store
	a.closers = append(a.closers, store.Close)

	var rec recorder.Recorder = store
	if len(cfg.Kafka.Brokers) > 0 {
		k := recorder.NewKafkaRecorder(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.closers = append(a.closers, k.Close)
		rec = recorder.NewFanoutRecorder(store, k)
		log.WithField("topic", cfg.Kafka.Topic).Info("publishing signals to kafka")
	}

	engine := strategy.NewEngine(strategy.Options{
		RSIPeriod:       cfg.Engine.RSIPeriod,
		BollingerPeriod: cfg.Engine.BollingerPeriod,
		SRWindow:        cfg.Engine.SRWindow,
		MinBars:         cfg.Engine.MinBars,
	})
	fetcher := a.newFetcher()
	log.Infof("data source: %s", fetcher.Name())

	c := collector.NewCollector(fetcher, engine, rec, a.monitor, log)
	c.Count = cfg.Fetch.Count
	c.Granularity = cfg.Fetch.Granularity
	c.Concurrency = cfg.Fetch.Concurrency
	a.collector = c

	a.news = news.NewClient(cfg.NewsAPI.BaseURL, cfg.NewsAPI.APIKey, cfg.Proxy, log)
	if cfg.TelegramEnabled() {
		a.telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
	}
	return a, nil
}

func (a *app) newFetcher() collector.Fetcher {
	cfg := a.cfg
	if useMock {
		return collector.NewMockFetcher()
	}
	if cfg.OANDA.APIKey == "" && cfg.OANDA.MockFallback {
		a.logger.Warn("oanda api key not configured, serving mock data")
		return collector.NewMockFetcher()
	}

	var f collector.Fetcher = collector.NewOANDAFetcher(cfg.OANDA.BaseURL, cfg.OANDA.APIKey, cfg.OANDA.AccountID, cfg.Proxy, cfg.OANDA.RatePerSec, a.logger)
	if cfg.OANDA.APIKey != "" && cfg.OANDA.MaxRetries > 0 {
		f = collector.WithRetry(f, cfg.OANDA.MaxRetries, retryBackoff, a.logger)
	}
	if cfg.OANDA.MockFallback {
		f = collector.WithFallback(f, collector.NewMockFetcher(), a.logger)
	}
	return f
}

func (a *app) openHistory() (recorder.Store, error) {
	h := a.cfg.History
	switch h.Backend {
	case config.BackendMemory:
		return recorder.NewMemoryRecorder(h.MaxRecords), nil
	case config.BackendRedis:
		return recorder.NewRedisRecorder(recorder.RedisConfig{
			Addr:     h.Redis.Addr,
			Password: h.Redis.Password,
			DB:       h.Redis.DB,
			Key:      h.Redis.Key,
		}, h.MaxRecords, a.logger)
	default:
		if dir := filepath.Dir(h.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create history dir: %w", err)
			}
		}
		return recorder.NewSQLiteRecorder(h.SQLitePath, h.MaxRecords, a.logger)
	}
}

// Close releases stores and writers in reverse order of creation.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
