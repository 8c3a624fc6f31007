package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"FXSignal/internal/collector"
	"FXSignal/internal/model"
	"FXSignal/internal/notifier"
	"FXSignal/internal/recorder"
)

// DefaultScanCron runs the dashboard scan at the top of every hour.
const DefaultScanCron = "0 0 * * * *"

const historyHours = 24

// Sender delivers a notification.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the periodic dashboard scan and answers bot commands.
type Scheduler struct {
	Cron        *cron.Cron
	Collector   *collector.Collector
	Notifier    Sender
	History     recorder.Store
	Instruments []string
	Ctx         context.Context
	logger      *logrus.Entry
}

// NewScheduler creates a new Scheduler. A nil history store disables /history.
func NewScheduler(ctx context.Context, col *collector.Collector, sender Sender, history recorder.Store, instruments []string, logger *logrus.Logger) *Scheduler {
	if history == nil {
		history = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Collector:   col,
		Notifier:    sender,
		History:     history,
		Instruments: instruments,
		Ctx:         ctx,
		logger:      logger.WithField("component", "scheduler"),
	}
}

// RegisterAll registers the dashboard scan.
func (s *Scheduler) RegisterAll(scanCron string) error {
	if scanCron == "" {
		scanCron = DefaultScanCron
	}
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunScanNow executes the scan immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	start := time.Now()
	entries := s.Collector.Dashboard(s.Ctx, s.Instruments)

	failed := 0
	for _, e := range entries {
		if e.Error != "" {
			failed++
		}
	}
	s.logger.WithFields(logrus.Fields{
		"instruments": len(entries),
		"failed":      failed,
		"took":        time.Since(start),
	}).Info("dashboard scan finished")

	if alert := notifier.FormatStrongAlert(entries); alert != "" {
		s.trySend(alert)
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	switch strings.ToLower(fields[0]) {
	case "/dashboard":
		return notifier.FormatDashboard(s.Collector.Dashboard(ctx, s.Instruments))
	case "/signal":
		if len(fields) < 2 {
			return "Usage: /signal EUR_USD"
		}
		instrument := strings.ToUpper(fields[1])
		a, err := s.Collector.Analyze(ctx, instrument)
		if err != nil {
			return fmt.Sprintf("❌ %s: %v", instrument, err)
		}
		return notifier.FormatSignal(a)
	case "/history":
		stats, err := s.historyStats(ctx)
		if err != nil {
			return fmt.Sprintf("❌ history: %v", err)
		}
		return notifier.FormatHistory(historyHours, stats)
	default:
		return notifier.HelpText
	}
}

// historyStats summarises the last day of signals per instrument, sorted by instrument.
func (s *Scheduler) historyStats(ctx context.Context) ([]model.SignalStats, error) {
	records, err := s.History.Recent(ctx, "", time.Now().Add(-historyHours*time.Hour))
	if err != nil {
		return nil, err
	}
	byInstrument := make(map[string][]model.SignalRecord)
	for _, r := range records {
		byInstrument[r.Instrument] = append(byInstrument[r.Instrument], r)
	}
	stats := make([]model.SignalStats, 0, len(byInstrument))
	for inst, recs := range byInstrument {
		stats = append(stats, recorder.Summarize(inst, historyHours, recs))
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Instrument < stats[j].Instrument })
	return stats, nil
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Errorf("send notification: %v", err)
	}
}
