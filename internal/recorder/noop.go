package recorder

import (
	"context"
	"time"

	"FXSignal/internal/model"
)

// NoopRecorder is a no-op Store used when history is disabled.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSignal(_ context.Context, _ *model.SignalRecord) error { return nil }
func (n *NoopRecorder) Recent(_ context.Context, _ string, _ time.Time) ([]model.SignalRecord, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
