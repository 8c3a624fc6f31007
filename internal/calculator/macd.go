package calculator

import "FXSignal/internal/model"

// MACD spans.
const (
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// CalculateMACD computes the MACD line (EMA12 - EMA26), its EMA9 signal line and the
// histogram at the last close. Each output is rounded to 5 decimals. Empty input yields
// all zeros.
func CalculateMACD(closes []float64) model.MACD {
	if len(closes) == 0 {
		return model.MACD{}
	}
	fast, _ := EMASeries(closes, MACDFast)
	slow, _ := EMASeries(closes, MACDSlow)

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal, _ := EMASeries(line, MACDSignal)

	last := len(closes) - 1
	return model.MACD{
		MACD:      Round(line[last], 5),
		Signal:    Round(signal[last], 5),
		Histogram: Round(line[last]-signal[last], 5),
	}
}
