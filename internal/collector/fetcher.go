package collector

import (
	"context"
	"errors"

	"FXSignal/internal/model"
)

// ErrDataUnavailable is returned when a source is unreachable or returns no bars.
var ErrDataUnavailable = errors.New("price data unavailable")

// Fetcher defines the interface for fetching historical price bars.
// Bars are returned in chronological order.
type Fetcher interface {
	FetchHistory(ctx context.Context, instrument string, count int, granularity string) ([]model.PriceBar, error)
	Name() string
}

// PriceSource is implemented by fetchers that can also quote live prices.
type PriceSource interface {
	LivePrices(ctx context.Context, instruments []string) ([]model.Quote, error)
}
