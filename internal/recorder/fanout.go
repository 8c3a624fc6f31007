package recorder

import (
	"context"
	"errors"
	"time"

	"FXSignal/internal/model"
)

// FanoutRecorder writes every signal to a primary Store and to extra sinks.
// History reads are served by the primary.
type FanoutRecorder struct {
	Primary Store
	Sinks   []Recorder
}

// NewFanoutRecorder creates a FanoutRecorder. With no sinks it behaves as primary.
func NewFanoutRecorder(primary Store, sinks ...Recorder) *FanoutRecorder {
	return &FanoutRecorder{Primary: primary, Sinks: sinks}
}

// RecordSignal writes to every target even when one fails and joins the errors.
func (f *FanoutRecorder) RecordSignal(ctx context.Context, rec *model.SignalRecord) error {
	errs := []error{f.Primary.RecordSignal(ctx, rec)}
	for _, s := range f.Sinks {
		errs = append(errs, s.RecordSignal(ctx, rec))
	}
	return errors.Join(errs...)
}

func (f *FanoutRecorder) Recent(ctx context.Context, instrument string, since time.Time) ([]model.SignalRecord, error) {
	return f.Primary.Recent(ctx, instrument, since)
}

func (f *FanoutRecorder) Close() error {
	errs := []error{f.Primary.Close()}
	for _, s := range f.Sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
