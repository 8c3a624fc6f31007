package recorder

import (
	"context"
	"sync"
	"time"

	"FXSignal/internal/model"
)

// MemoryRecorder keeps the most recent signals in process memory.
type MemoryRecorder struct {
	mu      sync.RWMutex
	records []model.SignalRecord
	max     int
}

// NewMemoryRecorder creates a MemoryRecorder retaining at most max records.
func NewMemoryRecorder(max int) *MemoryRecorder {
	if max <= 0 {
		max = DefaultMaxRecords
	}
	return &MemoryRecorder{max: max}
}

func (m *MemoryRecorder) RecordSignal(_ context.Context, rec *model.SignalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, *rec)
	if over := len(m.records) - m.max; over > 0 {
		// copy so the evicted prefix can be collected
		kept := make([]model.SignalRecord, m.max)
		copy(kept, m.records[over:])
		m.records = kept
	}
	return nil
}

func (m *MemoryRecorder) Recent(_ context.Context, instrument string, since time.Time) ([]model.SignalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.SignalRecord
	for i := range m.records {
		if matches(&m.records[i], instrument, since) {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

// Len returns the number of retained records.
func (m *MemoryRecorder) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MemoryRecorder) Close() error { return nil }
