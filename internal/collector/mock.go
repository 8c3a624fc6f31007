package collector

import (
	"context"
	"math"
	"time"

	"FXSignal/internal/model"
)

// defaultBasePrices seeds generated bars for the majors.
var defaultBasePrices = map[string]float64{
	"EUR_USD": 1.0850,
	"GBP_USD": 1.2700,
	"USD_JPY": 149.50,
	"AUD_USD": 0.6550,
	"USD_CHF": 0.8800,
	"USD_CAD": 1.3600,
}

// MockFetcher returns controllable fixed data for development and testing.
// Bars holds fixed data per instrument; other instruments get generated bars.
type MockFetcher struct {
	Bars       map[string][]model.PriceBar
	BasePrices map[string]float64
	Now        func() time.Time
}

// NewMockFetcher creates a MockFetcher generating bars around typical prices.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{BasePrices: defaultBasePrices, Now: time.Now}
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, instrument string, count int, granularity string) ([]model.PriceBar, error) {
	if bars, ok := m.Bars[instrument]; ok {
		if len(bars) > count {
			bars = bars[len(bars)-count:]
		}
		return bars, nil
	}
	base, ok := m.BasePrices[instrument]
	if !ok {
		base = 1.0
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	return generateMockBars(base, count, GranularityDuration(granularity), now()), nil
}

// generateMockBars produces a gentle oscillation around basePrice ending at end.
func generateMockBars(basePrice float64, count int, step time.Duration, end time.Time) []model.PriceBar {
	bars := make([]model.PriceBar, count)
	end = end.Truncate(step)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.002*math.Sin(float64(i)/4) + float64(i-count/2)*0.0001)
		bars[i] = model.PriceBar{
			Time:   end.Add(-time.Duration(count-i) * step),
			Open:   p * 0.9995,
			High:   p * 1.001,
			Low:    p * 0.999,
			Close:  p,
			Volume: 1000,
		}
	}
	return bars
}

var granularities = map[string]time.Duration{
	"S5":  5 * time.Second,
	"M1":  time.Minute,
	"M5":  5 * time.Minute,
	"M15": 15 * time.Minute,
	"M30": 30 * time.Minute,
	"H1":  time.Hour,
	"H4":  4 * time.Hour,
	"D":   24 * time.Hour,
	"W":   7 * 24 * time.Hour,
}

// ValidGranularity reports whether g is a supported candle granularity.
func ValidGranularity(g string) bool {
	_, ok := granularities[g]
	return ok
}

// GranularityDuration maps an OANDA granularity code to its bar length. Unknown codes map to one hour.
func GranularityDuration(granularity string) time.Duration {
	if d, ok := granularities[granularity]; ok {
		return d
	}
	return time.Hour
}
