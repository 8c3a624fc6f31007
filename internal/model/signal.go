package model

import "time"

// Direction is the trade direction of a signal.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
	DirectionHold Direction = "HOLD"
)

// Strength qualifies a direction. HOLD is always NEUTRAL.
type Strength string

const (
	StrengthStrong  Strength = "STRONG"
	StrengthWeak    Strength = "WEAK"
	StrengthNeutral Strength = "NEUTRAL"
)

// Signal is the final output of the indicator engine.
type Signal struct {
	Direction   Direction    `json:"signal"`
	Strength    Strength     `json:"strength"`
	Score       int          `json:"score"`
	Indicators  IndicatorSet `json:"indicators"`
	GeneratedAt time.Time    `json:"timestamp"`
}

// Strong reports whether the signal is a STRONG BUY or SELL.
func (s *Signal) Strong() bool {
	return s.Strength == StrengthStrong
}
