package model

import "time"

// PriceBar represents a single OHLC observation.
type PriceBar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds raw price data for one instrument.
type PriceSeries struct {
	Instrument  string     `json:"instrument"`
	Granularity string     `json:"granularity"`
	Bars        []PriceBar `json:"bars"`
	FetchedAt   time.Time  `json:"fetched_at"`
}

// Closes extracts the closing prices of bars in order.
func Closes(bars []PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Quote is a live bid/ask price.
type Quote struct {
	Instrument string    `json:"instrument"`
	Bid        float64   `json:"bid"`
	Ask        float64   `json:"ask"`
	Spread     float64   `json:"spread"`
	Tradeable  bool      `json:"tradeable"`
	Time       time.Time `json:"time"`
}
