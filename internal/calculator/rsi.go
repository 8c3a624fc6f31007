package calculator

// NeutralRSI is returned when the window is too short or completely flat.
const NeutralRSI = 50.0

// CalculateRSI computes the RSI using plain rolling means of gains and losses over the
// trailing period entries (no Wilder smoothing). The first close has no predecessor and
// counts as a zero change, so period closes are enough for a value.
//
// Returns NeutralRSI when there are fewer than period closes or when the window has
// neither gains nor losses, and 100 when it has gains but no losses.
func CalculateRSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod
	}
	n := len(closes)
	if n < period {
		return NeutralRSI, nil
	}

	var gain, loss float64
	for i := n - period; i < n; i++ {
		if i == 0 {
			continue
		}
		change := closes[i] - closes[i-1]
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	if avgLoss == 0 {
		if avgGain == 0 {
			return NeutralRSI, nil
		}
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return Round(100.0-100.0/(1.0+rs), 2), nil
}
