package model

// MACD holds the MACD line, its signal line and the histogram.
type MACD struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// Bollinger holds the bands and where the last close sits between them.
// Position is nominally 0.0 ~ 1.0 but leaves that range when price breaks a band.
type Bollinger struct {
	Upper    float64 `json:"upper"`
	Middle   float64 `json:"middle"`
	Lower    float64 `json:"lower"`
	Position float64 `json:"position"`
}

// SupportResistance holds recent extremes and the distance of the close from them in percent.
type SupportResistance struct {
	Support            float64 `json:"support"`
	Resistance         float64 `json:"resistance"`
	PctAboveSupport    float64 `json:"current_vs_support"`
	PctBelowResistance float64 `json:"current_vs_resistance"`
}

// IndicatorSet holds all computed technical indicators for a bar sequence.
type IndicatorSet struct {
	RSI               float64           `json:"rsi"`
	MACD              MACD              `json:"macd"`
	Bollinger         Bollinger         `json:"bollinger_bands"`
	SupportResistance SupportResistance `json:"support_resistance"`
}
