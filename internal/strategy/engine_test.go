package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FXSignal/internal/model"
)

var goldenCloses = []float64{1.0800, 1.0820, 1.0810, 1.0830, 1.0850, 1.0840, 1.0860, 1.0850, 1.0870, 1.0865}

func barsFromCloses(closes []float64) []model.PriceBar {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 100,
		}
	}
	return bars
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestGenerateSignal_GoldenFixture(t *testing.T) {
	now := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	e := NewEngine(Options{Now: fixedClock(now)})

	sig, err := e.GenerateSignal(barsFromCloses(goldenCloses))
	require.NoError(t, err)

	assert.Equal(t, model.DirectionBuy, sig.Direction)
	assert.Equal(t, model.StrengthWeak, sig.Strength)
	assert.Equal(t, 65, sig.Score)
	assert.Equal(t, now, sig.GeneratedAt)

	// Ten closes are below both the RSI and Bollinger windows.
	assert.Equal(t, 50.0, sig.Indicators.RSI)
	assert.Equal(t, 0.5, sig.Indicators.Bollinger.Position)
	assert.InDelta(t, 0.00017, sig.Indicators.MACD.Histogram, 1e-12)
	assert.Equal(t, 1.08, sig.Indicators.SupportResistance.Support)
	assert.Equal(t, 1.087, sig.Indicators.SupportResistance.Resistance)
}

func TestGenerateSignal_Deterministic(t *testing.T) {
	calls := 0
	e := NewEngine(Options{Now: func() time.Time {
		calls++
		return time.Unix(int64(calls), 0)
	}})
	bars := barsFromCloses(goldenCloses)

	a, err := e.GenerateSignal(bars)
	require.NoError(t, err)
	b, err := e.GenerateSignal(bars)
	require.NoError(t, err)

	assert.Equal(t, a.Score, b.Score)
	assert.Equal(t, a.Direction, b.Direction)
	assert.Equal(t, a.Strength, b.Strength)
	assert.Equal(t, a.Indicators, b.Indicators)
	assert.NotEqual(t, a.GeneratedAt, b.GeneratedAt)
}

func TestGenerateSignal_InsufficientData(t *testing.T) {
	e := NewEngine(Options{})
	_, err := e.GenerateSignal(nil)
	assert.ErrorIs(t, err, ErrInsufficientData)

	strict := NewEngine(Options{MinBars: 20})
	_, err = strict.GenerateSignal(barsFromCloses(goldenCloses))
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Equal(t, 20, strict.MinBars())
}

func TestGenerateSignal_SingleBar(t *testing.T) {
	e := NewEngine(Options{})
	sig, err := e.GenerateSignal(barsFromCloses([]float64{1.1}))
	require.NoError(t, err)
	// flat MACD counts as bearish, everything else neutral
	assert.Equal(t, 35, sig.Score)
	assert.Equal(t, model.DirectionSell, sig.Direction)
	assert.Equal(t, model.StrengthWeak, sig.Strength)
}

func TestGenerateSignal_ConstantPrices(t *testing.T) {
	e := NewEngine(Options{})
	for _, v := range []float64{1.25, 1.2, 1.085, 1.27, 0.88, 1.36} {
		closes := make([]float64, 40)
		for i := range closes {
			closes[i] = v
		}
		sig, err := e.GenerateSignal(barsFromCloses(closes))
		require.NoError(t, err)
		bb := sig.Indicators.Bollinger
		assert.Equal(t, 50.0, sig.Indicators.RSI, "price %v", v)
		assert.Equal(t, bb.Upper, bb.Lower, "price %v", v)
		assert.Equal(t, 0.5, bb.Position, "price %v", v)
		assert.Equal(t, 35, sig.Score, "price %v", v)
	}
}

func TestGenerateSignal_SteadyDecline(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 1.30 - 0.002*float64(i)
	}
	e := NewEngine(Options{})
	sig, err := e.GenerateSignal(barsFromCloses(closes))
	require.NoError(t, err)
	// RSI 0 is oversold (+20), falling MACD is bearish (-15), the close sits
	// at the bottom of the band (+15).
	assert.Equal(t, 0.0, sig.Indicators.RSI)
	assert.Less(t, sig.Indicators.MACD.Histogram, 0.0)
	assert.Less(t, sig.Indicators.Bollinger.Position, 0.2)
	assert.Equal(t, 70, sig.Score)
	assert.Equal(t, model.DirectionBuy, sig.Direction)
}

func TestScore_RuleGrid(t *testing.T) {
	rsiValues := []float64{10, 50, 90}
	histograms := []float64{-0.001, 0, 0.001}
	positions := []float64{-0.4, 0.1, 0.5, 0.9, 1.6}

	for _, rsi := range rsiValues {
		for _, h := range histograms {
			for _, pos := range positions {
				ind := model.IndicatorSet{
					RSI:       rsi,
					MACD:      model.MACD{Histogram: h},
					Bollinger: model.Bollinger{Position: pos},
				}
				score := Score(ind)
				assert.GreaterOrEqual(t, score, 0)
				assert.LessOrEqual(t, score, 100)
			}
		}
	}
}

func TestScore_Extremes(t *testing.T) {
	bull := model.IndicatorSet{RSI: 20, MACD: model.MACD{Histogram: 0.01}, Bollinger: model.Bollinger{Position: 0.05}}
	assert.Equal(t, 100, Score(bull))

	bear := model.IndicatorSet{RSI: 80, MACD: model.MACD{Histogram: -0.01}, Bollinger: model.Bollinger{Position: 0.95}}
	assert.Equal(t, 0, Score(bear))

	zeroHistogram := model.IndicatorSet{RSI: 50, Bollinger: model.Bollinger{Position: 0.5}}
	assert.Equal(t, 35, Score(zeroHistogram))
}

func TestScore_Boundaries(t *testing.T) {
	tests := []struct {
		name string
		ind  model.IndicatorSet
		want int
	}{
		{"rsi 30 is neutral", model.IndicatorSet{RSI: 30, MACD: model.MACD{Histogram: 1}, Bollinger: model.Bollinger{Position: 0.5}}, 65},
		{"rsi 70 is neutral", model.IndicatorSet{RSI: 70, MACD: model.MACD{Histogram: 1}, Bollinger: model.Bollinger{Position: 0.5}}, 65},
		{"position 0.2 is neutral", model.IndicatorSet{RSI: 50, MACD: model.MACD{Histogram: 1}, Bollinger: model.Bollinger{Position: 0.2}}, 65},
		{"position 0.8 is neutral", model.IndicatorSet{RSI: 50, MACD: model.MACD{Histogram: 1}, Bollinger: model.Bollinger{Position: 0.8}}, 65},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.ind))
		})
	}
}

func TestClassify_Exhaustive(t *testing.T) {
	for score := 0; score <= 100; score++ {
		dir, strength := Classify(score)
		switch {
		case score > 75:
			assert.Equal(t, model.DirectionBuy, dir, "score %d", score)
			assert.Equal(t, model.StrengthStrong, strength, "score %d", score)
		case score > 60:
			assert.Equal(t, model.DirectionBuy, dir, "score %d", score)
			assert.Equal(t, model.StrengthWeak, strength, "score %d", score)
		case score < 25:
			assert.Equal(t, model.DirectionSell, dir, "score %d", score)
			assert.Equal(t, model.StrengthStrong, strength, "score %d", score)
		case score < 40:
			assert.Equal(t, model.DirectionSell, dir, "score %d", score)
			assert.Equal(t, model.StrengthWeak, strength, "score %d", score)
		default:
			assert.Equal(t, model.DirectionHold, dir, "score %d", score)
			assert.Equal(t, model.StrengthNeutral, strength, "score %d", score)
		}
	}
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		score    int
		dir      model.Direction
		strength model.Strength
	}{
		{100, model.DirectionBuy, model.StrengthStrong},
		{76, model.DirectionBuy, model.StrengthStrong},
		{75, model.DirectionBuy, model.StrengthWeak},
		{61, model.DirectionBuy, model.StrengthWeak},
		{60, model.DirectionHold, model.StrengthNeutral},
		{40, model.DirectionHold, model.StrengthNeutral},
		{39, model.DirectionSell, model.StrengthWeak},
		{25, model.DirectionSell, model.StrengthWeak},
		{24, model.DirectionSell, model.StrengthStrong},
		{0, model.DirectionSell, model.StrengthStrong},
	}
	for _, tt := range tests {
		dir, strength := Classify(tt.score)
		if dir != tt.dir || strength != tt.strength {
			t.Errorf("score %d: expected %s/%s, got %s/%s", tt.score, tt.dir, tt.strength, dir, strength)
		}
	}
}
