package calculator

import (
	"errors"
	"math"
)

var errPeriod = errors.New("period must be positive")

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateStdDev computes the sample standard deviation (n-1 denominator) of the
// trailing period prices. A window of identical prices is exactly 0.
func CalculateStdDev(prices []float64, period int) (float64, error) {
	if period <= 1 {
		return 0, errors.New("period must be greater than 1")
	}
	mean, err := CalculateSMA(prices, period)
	if err != nil {
		return 0, err
	}
	window := prices[len(prices)-period:]
	if flat(window) {
		return 0, nil
	}
	var sq float64
	for _, p := range window {
		d := p - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(period-1)), nil
}

func flat(prices []float64) bool {
	for _, p := range prices[1:] {
		if p != prices[0] {
			return false
		}
	}
	return true
}

// EMASeries returns the exponential moving average of prices for every index, using
// alpha = 2/(span+1) from the first observation with normalised weights: each output is
// the (1-alpha)^i weighted mean of all prices seen so far.
func EMASeries(prices []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, errPeriod
	}
	decay := 1 - 2/(float64(span)+1)
	out := make([]float64, len(prices))
	var num, den float64
	for i, p := range prices {
		num = p + decay*num
		den = 1 + decay*den
		out[i] = num / den
	}
	return out, nil
}
