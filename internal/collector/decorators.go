package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"FXSignal/internal/model"
)

// RetryFetcher retries a Fetcher with exponential backoff.
type RetryFetcher struct {
	Next       Fetcher
	MaxRetries int
	Backoff    time.Duration
	logger     *logrus.Entry
}

// WithRetry wraps next so that failed fetches are retried up to maxRetries times,
// waiting backoff, 2*backoff, 4*backoff... between attempts.
func WithRetry(next Fetcher, maxRetries int, backoff time.Duration, logger *logrus.Logger) *RetryFetcher {
	return &RetryFetcher{
		Next:       next,
		MaxRetries: maxRetries,
		Backoff:    backoff,
		logger:     logger.WithField("component", "retry"),
	}
}

func (r *RetryFetcher) Name() string { return r.Next.Name() }

func (r *RetryFetcher) FetchHistory(ctx context.Context, instrument string, count int, granularity string) ([]model.PriceBar, error) {
	var lastErr error
	for i := 0; i <= r.MaxRetries; i++ {
		bars, err := r.Next.FetchHistory(ctx, instrument, count, granularity)
		if err == nil {
			return bars, nil
		}
		lastErr = err
		if i == r.MaxRetries || ctx.Err() != nil {
			break
		}
		wait := r.Backoff * time.Duration(1<<uint(i))
		r.logger.WithFields(logrus.Fields{
			"instrument": instrument,
			"attempt":    i + 1,
			"retry_in":   wait,
		}).Warnf("fetch failed: %v", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("all %d attempts failed: %w", r.MaxRetries+1, lastErr)
}

// FallbackFetcher serves bars from Fallback whenever Primary reports ErrDataUnavailable.
type FallbackFetcher struct {
	Primary  Fetcher
	Fallback Fetcher
	logger   *logrus.Entry
}

// WithFallback wraps primary with a secondary source, typically a MockFetcher.
func WithFallback(primary, fallback Fetcher, logger *logrus.Logger) *FallbackFetcher {
	return &FallbackFetcher{
		Primary:  primary,
		Fallback: fallback,
		logger:   logger.WithField("component", "fallback"),
	}
}

func (f *FallbackFetcher) Name() string {
	return f.Primary.Name() + "+" + f.Fallback.Name()
}

func (f *FallbackFetcher) FetchHistory(ctx context.Context, instrument string, count int, granularity string) ([]model.PriceBar, error) {
	bars, err := f.Primary.FetchHistory(ctx, instrument, count, granularity)
	if err == nil {
		return bars, nil
	}
	if !errors.Is(err, ErrDataUnavailable) {
		return nil, err
	}
	f.logger.WithField("instrument", instrument).Warnf("%s unavailable, using %s data: %v", f.Primary.Name(), f.Fallback.Name(), err)
	return f.Fallback.FetchHistory(ctx, instrument, count, granularity)
}
