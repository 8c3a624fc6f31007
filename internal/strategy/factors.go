package strategy

import "FXSignal/internal/model"

// NeutralScore is the starting point of every evaluation.
const NeutralScore = 50

// Signal thresholds on the clamped score.
const (
	buyAbove        = 60
	strongBuyAbove  = 75
	sellBelow       = 40
	strongSellBelow = 25
)

// scoreRSI: oversold (< 30) is bullish, overbought (> 70) bearish.
func scoreRSI(rsi float64) int {
	switch {
	case rsi < 30:
		return 20
	case rsi > 70:
		return -20
	default:
		return 0
	}
}

// scoreMACD has no neutral case: a zero histogram counts as bearish.
func scoreMACD(histogram float64) int {
	if histogram > 0 {
		return 15
	}
	return -15
}

// scoreBollinger: near the lower band is bullish, near the upper band bearish.
func scoreBollinger(position float64) int {
	switch {
	case position < 0.2:
		return 15
	case position > 0.8:
		return -15
	default:
		return 0
	}
}

// Score combines the indicator rules into a 0~100 score.
func Score(ind model.IndicatorSet) int {
	score := NeutralScore +
		scoreRSI(ind.RSI) +
		scoreMACD(ind.MACD.Histogram) +
		scoreBollinger(ind.Bollinger.Position)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Classify maps a score to a direction and strength.
func Classify(score int) (model.Direction, model.Strength) {
	switch {
	case score > buyAbove:
		if score > strongBuyAbove {
			return model.DirectionBuy, model.StrengthStrong
		}
		return model.DirectionBuy, model.StrengthWeak
	case score < sellBelow:
		if score < strongSellBelow {
			return model.DirectionSell, model.StrengthStrong
		}
		return model.DirectionSell, model.StrengthWeak
	default:
		return model.DirectionHold, model.StrengthNeutral
	}
}
