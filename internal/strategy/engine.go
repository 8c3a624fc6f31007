package strategy

import (
	"errors"
	"fmt"
	"time"

	"FXSignal/internal/calculator"
	"FXSignal/internal/model"
)

// ErrInsufficientData is returned when fewer bars than the engine minimum are given.
var ErrInsufficientData = errors.New("insufficient price data")

// Default indicator windows.
const (
	DefaultRSIPeriod       = 14
	DefaultBollingerPeriod = 20
	DefaultSRWindow        = 10
	DefaultMinBars         = 1
)

// Options configures an Engine. Zero fields take the defaults.
type Options struct {
	RSIPeriod       int
	BollingerPeriod int
	SRWindow        int
	// MinBars is the shortest bar sequence GenerateSignal accepts. Below each
	// indicator's own window, that indicator degrades to its neutral value.
	MinBars int
	Now     func() time.Time
}

// Engine computes indicators and signals from a bar sequence. It holds only
// immutable parameters and is safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine, filling unset options with defaults.
func NewEngine(opts Options) *Engine {
	if opts.RSIPeriod <= 0 {
		opts.RSIPeriod = DefaultRSIPeriod
	}
	if opts.BollingerPeriod <= 1 {
		opts.BollingerPeriod = DefaultBollingerPeriod
	}
	if opts.SRWindow <= 0 {
		opts.SRWindow = DefaultSRWindow
	}
	if opts.MinBars <= 0 {
		opts.MinBars = DefaultMinBars
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{opts: opts}
}

// MinBars returns the shortest accepted bar sequence.
func (e *Engine) MinBars() int { return e.opts.MinBars }

// ComputeIndicators computes RSI, MACD, Bollinger Bands and support/resistance at the last bar.
func (e *Engine) ComputeIndicators(bars []model.PriceBar) (model.IndicatorSet, error) {
	if len(bars) < e.opts.MinBars {
		return model.IndicatorSet{}, fmt.Errorf("%w: got %d bars, need %d", ErrInsufficientData, len(bars), e.opts.MinBars)
	}
	closes := model.Closes(bars)

	rsi, err := calculator.CalculateRSI(closes, e.opts.RSIPeriod)
	if err != nil {
		return model.IndicatorSet{}, fmt.Errorf("rsi: %w", err)
	}
	bb, err := calculator.CalculateBollinger(closes, e.opts.BollingerPeriod)
	if err != nil {
		return model.IndicatorSet{}, fmt.Errorf("bollinger: %w", err)
	}
	sr, err := calculator.CalculateSupportResistance(bars, e.opts.SRWindow)
	if err != nil {
		return model.IndicatorSet{}, fmt.Errorf("support/resistance: %w", err)
	}

	return model.IndicatorSet{
		RSI:               rsi,
		MACD:              calculator.CalculateMACD(closes),
		Bollinger:         bb,
		SupportResistance: sr,
	}, nil
}

// GenerateSignal computes all indicators and derives the composite signal.
func (e *Engine) GenerateSignal(bars []model.PriceBar) (*model.Signal, error) {
	ind, err := e.ComputeIndicators(bars)
	if err != nil {
		return nil, err
	}
	score := Score(ind)
	direction, strength := Classify(score)
	return &model.Signal{
		Direction:   direction,
		Strength:    strength,
		Score:       score,
		Indicators:  ind,
		GeneratedAt: e.opts.Now(),
	}, nil
}
