package recorder

import (
	"context"
	"time"

	"github.com/google/uuid"

	"FXSignal/internal/model"
)

// DefaultMaxRecords is the number of signals a Store retains before evicting the oldest.
const DefaultMaxRecords = 1000

// Recorder accepts generated signals. Writes are best-effort from the caller's view:
// a failed write must never fail the analysis that produced the signal.
type Recorder interface {
	RecordSignal(ctx context.Context, rec *model.SignalRecord) error
	Close() error
}

// Store is a Recorder that also serves the retained history, oldest first.
// An empty instrument matches every instrument.
type Store interface {
	Recorder
	Recent(ctx context.Context, instrument string, since time.Time) ([]model.SignalRecord, error)
}

// NewRecord wraps a signal into a history record stamped with the current time.
func NewRecord(instrument string, price float64, sig *model.Signal) *model.SignalRecord {
	return &model.SignalRecord{
		ID:         uuid.NewString(),
		Timestamp:  time.Now(),
		Instrument: instrument,
		Price:      price,
		Signal:     *sig,
	}
}

// Summarize counts the signals in records and averages their score.
func Summarize(instrument string, hours int, records []model.SignalRecord) model.SignalStats {
	stats := model.SignalStats{Instrument: instrument, Hours: hours}
	if len(records) == 0 {
		return stats
	}
	total := 0
	for _, r := range records {
		stats.TotalSignals++
		total += r.Signal.Score
		switch r.Signal.Direction {
		case model.DirectionBuy:
			stats.BuySignals++
		case model.DirectionSell:
			stats.SellSignals++
		default:
			stats.HoldSignals++
		}
	}
	stats.AverageScore = float64(total) / float64(stats.TotalSignals)
	return stats
}

func matches(rec *model.SignalRecord, instrument string, since time.Time) bool {
	if instrument != "" && rec.Instrument != instrument {
		return false
	}
	return rec.Timestamp.After(since)
}
