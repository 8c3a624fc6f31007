package model

import "time"

// SignalRecord is one entry of the signal history.
type SignalRecord struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Instrument string    `json:"instrument"`
	Price      float64   `json:"price"`
	Signal     Signal    `json:"signal"`
}

// SignalStats summarises the recorded signals of an instrument over a window.
type SignalStats struct {
	Instrument   string  `json:"instrument"`
	Hours        int     `json:"hours"`
	TotalSignals int     `json:"total_signals"`
	BuySignals   int     `json:"buy_signals"`
	SellSignals  int     `json:"sell_signals"`
	HoldSignals  int     `json:"hold_signals"`
	AverageScore float64 `json:"average_score"`
}
