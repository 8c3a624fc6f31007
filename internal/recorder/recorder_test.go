package recorder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FXSignal/internal/model"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func sampleSignal(dir model.Direction, score int) *model.Signal {
	return &model.Signal{
		Direction: dir,
		Strength:  model.StrengthWeak,
		Score:     score,
		Indicators: model.IndicatorSet{
			RSI:               45.5,
			MACD:              model.MACD{MACD: 0.00048, Signal: 0.00032, Histogram: 0.00017},
			Bollinger:         model.Bollinger{Upper: 1.09, Middle: 1.085, Lower: 1.08, Position: 0.65},
			SupportResistance: model.SupportResistance{Support: 1.08, Resistance: 1.087, PctAboveSupport: 0.6, PctBelowResistance: 0.05},
		},
		GeneratedAt: time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord("EUR_USD", 1.0865, sampleSignal(model.DirectionBuy, 65))
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "EUR_USD", rec.Instrument)
	assert.Equal(t, 65, rec.Signal.Score)
	assert.WithinDuration(t, time.Now(), rec.Timestamp, time.Second)

	other := NewRecord("EUR_USD", 1.0865, sampleSignal(model.DirectionBuy, 65))
	assert.NotEqual(t, rec.ID, other.ID)
}

func TestSummarize(t *testing.T) {
	records := []model.SignalRecord{
		*NewRecord("EUR_USD", 1, sampleSignal(model.DirectionBuy, 65)),
		*NewRecord("EUR_USD", 1, sampleSignal(model.DirectionBuy, 80)),
		*NewRecord("EUR_USD", 1, sampleSignal(model.DirectionSell, 35)),
		*NewRecord("EUR_USD", 1, sampleSignal(model.DirectionHold, 50)),
	}
	stats := Summarize("EUR_USD", 24, records)
	assert.Equal(t, 4, stats.TotalSignals)
	assert.Equal(t, 2, stats.BuySignals)
	assert.Equal(t, 1, stats.SellSignals)
	assert.Equal(t, 1, stats.HoldSignals)
	assert.InDelta(t, 57.5, stats.AverageScore, 1e-9)

	empty := Summarize("GBP_USD", 24, nil)
	assert.Zero(t, empty.TotalSignals)
	assert.Zero(t, empty.AverageScore)
}

// exerciseStore checks the behaviour every Store must share.
func exerciseStore(t *testing.T, store Store, max int) {
	t.Helper()
	ctx := context.Background()
	since := time.Now().Add(-time.Hour)

	for i := 0; i < max+5; i++ {
		instrument := "EUR_USD"
		if i%2 == 1 {
			instrument = "GBP_USD"
		}
		rec := NewRecord(instrument, 1.0+float64(i)/1000, sampleSignal(model.DirectionBuy, i))
		require.NoError(t, store.RecordSignal(ctx, rec))
	}

	all, err := store.Recent(ctx, "", since)
	require.NoError(t, err)
	require.Len(t, all, max)
	// oldest evicted first
	assert.Equal(t, 5, all[0].Signal.Score)
	assert.Equal(t, max+4, all[len(all)-1].Signal.Score)

	eur, err := store.Recent(ctx, "EUR_USD", since)
	require.NoError(t, err)
	for _, r := range eur {
		assert.Equal(t, "EUR_USD", r.Instrument)
	}
	assert.NotEmpty(t, eur)

	future, err := store.Recent(ctx, "", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, future)

	last := all[len(all)-1]
	assert.Equal(t, model.DirectionBuy, last.Signal.Direction)
	assert.Equal(t, model.StrengthWeak, last.Signal.Strength)
	assert.Equal(t, 0.00017, last.Signal.Indicators.MACD.Histogram)
	assert.Equal(t, 1.087, last.Signal.Indicators.SupportResistance.Resistance)
}

func TestMemoryRecorder(t *testing.T) {
	store := NewMemoryRecorder(10)
	exerciseStore(t, store, 10)
	assert.Equal(t, 10, store.Len())
}

func TestMemoryRecorder_DefaultCap(t *testing.T) {
	store := NewMemoryRecorder(0)
	ctx := context.Background()
	for i := 0; i < DefaultMaxRecords+1; i++ {
		require.NoError(t, store.RecordSignal(ctx, NewRecord("USD_JPY", 150, sampleSignal(model.DirectionHold, 50))))
	}
	assert.Equal(t, DefaultMaxRecords, store.Len())
}

func TestSQLiteRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewSQLiteRecorder(path, 10, testLogger())
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store, 10)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestSQLiteRecorder_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := NewSQLiteRecorder(path, 10, testLogger())
	require.NoError(t, err)
	rec := NewRecord("EUR_USD", 1.0865, sampleSignal(model.DirectionSell, 30))
	require.NoError(t, store.RecordSignal(ctx, rec))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteRecorder(path, 10, testLogger())
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Recent(ctx, "EUR_USD", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID, got[0].ID)
	assert.Equal(t, 1.0865, got[0].Price)
	assert.Equal(t, model.DirectionSell, got[0].Signal.Direction)
	assert.True(t, got[0].Signal.GeneratedAt.Equal(rec.Signal.GeneratedAt))
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	block  bool
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaRecorder_PublishesEvent(t *testing.T) {
	w := &fakeWriter{}
	k := &KafkaRecorder{writer: w, topic: "signals"}

	rec := NewRecord("GBP_USD", 1.27, sampleSignal(model.DirectionBuy, 80))
	require.NoError(t, k.RecordSignal(context.Background(), rec))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "GBP_USD", string(w.msgs[0].Key))
	assert.Contains(t, string(w.msgs[0].Value), `"event_type":"SIGNAL_GENERATED"`)
	assert.Contains(t, string(w.msgs[0].Value), rec.ID)

	require.NoError(t, k.Close())
	assert.True(t, w.closed)
}

func TestKafkaRecorder_UnresponsiveBrokerTimesOut(t *testing.T) {
	k := &KafkaRecorder{writer: &fakeWriter{block: true}, topic: "signals", timeout: 50 * time.Millisecond}

	start := time.Now()
	err := k.RecordSignal(context.Background(), NewRecord("EUR_USD", 1.08, sampleSignal(model.DirectionHold, 50)))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	assert.Equal(t, DefaultPublishTimeout, NewKafkaRecorder([]string{"localhost:9092"}, "signals").timeout)
}

func TestFanoutRecorder_SinkFailureKeepsPrimary(t *testing.T) {
	primary := NewMemoryRecorder(10)
	failing := &KafkaRecorder{writer: &fakeWriter{err: errors.New("broker down")}}
	ok := &fakeWriter{}
	f := NewFanoutRecorder(primary, failing, &KafkaRecorder{writer: ok})

	err := f.RecordSignal(context.Background(), NewRecord("EUR_USD", 1.08, sampleSignal(model.DirectionHold, 50)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")

	assert.Equal(t, 1, primary.Len())
	assert.Len(t, ok.msgs, 1)

	recent, err := f.Recent(context.Background(), "", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Len(t, recent, 1)
	assert.NoError(t, f.Close())
}

func TestNoopRecorder(t *testing.T) {
	n := NewNoopRecorder()
	assert.NoError(t, n.RecordSignal(context.Background(), NewRecord("EUR_USD", 1, sampleSignal(model.DirectionHold, 50))))
	got, err := n.Recent(context.Background(), "", time.Time{})
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func ExampleSummarize() {
	stats := Summarize("EUR_USD", 24, []model.SignalRecord{
		{Signal: model.Signal{Direction: model.DirectionBuy, Score: 70}},
		{Signal: model.Signal{Direction: model.DirectionSell, Score: 30}},
	})
	fmt.Println(stats.TotalSignals, stats.BuySignals, stats.SellSignals, stats.AverageScore)
	// Output: 2 1 1 50
}
