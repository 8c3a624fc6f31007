package calculator

import (
	"errors"
	"math"

	"FXSignal/internal/model"
)

// CalculateSupportResistance scans the most recent window bars and returns the lowest low
// as support and the highest high as resistance, with the last close's distance from each
// in percent. Uses every bar when fewer than window are given.
func CalculateSupportResistance(bars []model.PriceBar, window int) (model.SupportResistance, error) {
	if window <= 0 {
		return model.SupportResistance{}, errPeriod
	}
	if len(bars) == 0 {
		return model.SupportResistance{}, errors.New("no bars provided")
	}
	n := len(bars)
	start := n - window
	if start < 0 {
		start = 0
	}
	high := math.Inf(-1)
	low := math.Inf(1)
	for i := start; i < n; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	current := bars[n-1].Close

	sr := model.SupportResistance{
		Support:    Round(low, 5),
		Resistance: Round(high, 5),
	}
	if low != 0 {
		sr.PctAboveSupport = Round((current-low)/low*100, 2)
	}
	if current != 0 {
		sr.PctBelowResistance = Round((high-current)/current*100, 2)
	}
	return sr, nil
}
