package calculator

import "FXSignal/internal/model"

// BandWidth is the number of standard deviations between the middle and outer bands.
const BandWidth = 2.0

// CalculateBollinger computes Bollinger Bands over the trailing period closes with a
// sample standard deviation. With fewer than period closes the bands collapse onto the
// last close. Bands are rounded to 5 decimals, the position to 3.
func CalculateBollinger(closes []float64, period int) (model.Bollinger, error) {
	if period <= 1 {
		return model.Bollinger{}, errPeriod
	}
	if len(closes) == 0 {
		return model.Bollinger{Position: 0.5}, nil
	}
	current := closes[len(closes)-1]
	if len(closes) < period {
		return model.Bollinger{
			Upper:    Round(current, 5),
			Middle:   Round(current, 5),
			Lower:    Round(current, 5),
			Position: 0.5,
		}, nil
	}

	middle, err := CalculateSMA(closes, period)
	if err != nil {
		return model.Bollinger{}, err
	}
	std, err := CalculateStdDev(closes, period)
	if err != nil {
		return model.Bollinger{}, err
	}
	upper := middle + BandWidth*std
	lower := middle - BandWidth*std

	bb := model.Bollinger{
		Upper:  Round(upper, 5),
		Middle: Round(middle, 5),
		Lower:  Round(lower, 5),
	}
	// reported bands that collapse always carry the fallback position
	if bb.Upper == bb.Lower {
		bb.Position = 0.5
	} else {
		bb.Position = Round(BandPosition(current, upper, lower), 3)
	}
	return bb, nil
}

// BandPosition returns where current sits between lower (0.0) and upper (1.0).
// It is not clamped. A zero-width band yields 0.5.
func BandPosition(current, upper, lower float64) float64 {
	if upper == lower {
		return 0.5
	}
	return (current - lower) / (upper - lower)
}
