package model

import "time"

// Sentiment is a keyword-based news sentiment score in [-1, 1].
type Sentiment struct {
	Query     string    `json:"query"`
	Score     float64   `json:"score"`
	Articles  int       `json:"articles_scored"`
	FetchedAt time.Time `json:"fetched_at"`
}
