package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"FXSignal/internal/model"
	"FXSignal/internal/monitor"
	"FXSignal/internal/recorder"
	"FXSignal/internal/strategy"
)

// Defaults for history requests.
const (
	DefaultCount       = 100
	DefaultGranularity = "H1"
	DefaultConcurrency = 4
)

// Analysis is the result of analysing one instrument.
type Analysis struct {
	Instrument  string        `json:"instrument"`
	Granularity string        `json:"granularity"`
	Price       float64       `json:"current_price"`
	Bars        int           `json:"bars_analysed"`
	Source      string        `json:"source"`
	Signal      *model.Signal `json:"analysis"`
}

// DashboardEntry is one instrument of a dashboard. Exactly one of Analysis and Error is set.
type DashboardEntry struct {
	Instrument string    `json:"instrument"`
	Analysis   *Analysis `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Collector orchestrates data fetching, signal generation and history recording.
type Collector struct {
	Fetcher     Fetcher
	Engine      *strategy.Engine
	Recorder    recorder.Recorder
	Monitor     *monitor.Monitor
	Count       int
	Granularity string
	Concurrency int
	logger      *logrus.Entry
}

// NewCollector creates a new Collector. rec and mon may be nil.
func NewCollector(fetcher Fetcher, engine *strategy.Engine, rec recorder.Recorder, mon *monitor.Monitor, logger *logrus.Logger) *Collector {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Collector{
		Fetcher:     fetcher,
		Engine:      engine,
		Recorder:    rec,
		Monitor:     mon,
		Count:       DefaultCount,
		Granularity: DefaultGranularity,
		Concurrency: DefaultConcurrency,
		logger:      logger.WithField("component", "collector"),
	}
}

// History fetches raw bars. Zero count or empty granularity use the collector defaults.
func (c *Collector) History(ctx context.Context, instrument string, count int, granularity string) ([]model.PriceBar, error) {
	if count <= 0 {
		count = c.Count
	}
	if granularity == "" {
		granularity = c.Granularity
	}
	bars, err := c.Fetcher.FetchHistory(ctx, instrument, count, granularity)
	if err != nil {
		c.Monitor.FetchFailed(instrument)
		return nil, fmt.Errorf("fetch %s: %w", instrument, err)
	}
	if len(bars) == 0 {
		c.Monitor.FetchFailed(instrument)
		return nil, fmt.Errorf("fetch %s: %w", instrument, ErrDataUnavailable)
	}
	return bars, nil
}

// Analyze fetches history for instrument, generates a signal and records it.
// A failed history write is logged and does not fail the analysis.
func (c *Collector) Analyze(ctx context.Context, instrument string) (*Analysis, error) {
	start := time.Now()
	bars, err := c.History(ctx, instrument, c.Count, c.Granularity)
	if err != nil {
		return nil, err
	}
	sig, err := c.Engine.GenerateSignal(bars)
	if err != nil {
		return nil, fmt.Errorf("analyse %s: %w", instrument, err)
	}
	price := bars[len(bars)-1].Close
	c.Monitor.SignalGenerated(instrument, sig.Direction, time.Since(start))

	if err := c.Recorder.RecordSignal(ctx, recorder.NewRecord(instrument, price, sig)); err != nil {
		c.logger.WithField("instrument", instrument).Warnf("record signal failed: %v", err)
	}

	return &Analysis{
		Instrument:  instrument,
		Granularity: c.Granularity,
		Price:       price,
		Bars:        len(bars),
		Source:      c.Fetcher.Name(),
		Signal:      sig,
	}, nil
}

// Dashboard analyses every instrument concurrently. A failing instrument yields an
// error entry and never affects the others. Entries keep the order of instruments.
func (c *Collector) Dashboard(ctx context.Context, instruments []string) []DashboardEntry {
	entries := make([]DashboardEntry, len(instruments))

	var g errgroup.Group
	if c.Concurrency > 0 {
		g.SetLimit(c.Concurrency)
	}
	for i, instrument := range instruments {
		g.Go(func() error {
			entries[i].Instrument = instrument
			a, err := c.Analyze(ctx, instrument)
			if err != nil {
				c.logger.WithField("instrument", instrument).Errorf("dashboard analysis failed: %v", err)
				entries[i].Error = err.Error()
				return nil
			}
			entries[i].Analysis = a
			return nil
		})
	}
	_ = g.Wait()
	return entries
}

// Quotes returns live prices when the fetcher can quote them.
func (c *Collector) Quotes(ctx context.Context, instruments []string) ([]model.Quote, error) {
	src, ok := c.Fetcher.(PriceSource)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no live prices", ErrDataUnavailable, c.Fetcher.Name())
	}
	quotes, err := src.LivePrices(ctx, instruments)
	if err != nil {
		return nil, fmt.Errorf("live prices: %w", err)
	}
	return quotes, nil
}
