package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"FXSignal/internal/calculator"
	"FXSignal/internal/model"
)

type oandaPriceBucket struct {
	Price string `json:"price"`
}

type oandaPrice struct {
	Instrument string             `json:"instrument"`
	Time       time.Time          `json:"time"`
	Tradeable  bool               `json:"tradeable"`
	Bids       []oandaPriceBucket `json:"bids"`
	Asks       []oandaPriceBucket `json:"asks"`
}

// LivePrices returns the current top-of-book quote per instrument. Without an
// AccountID the first account of the token is used and remembered.
func (f *OANDAFetcher) LivePrices(ctx context.Context, instruments []string) ([]model.Quote, error) {
	if f.APIKey == "" {
		return nil, fmt.Errorf("%w: oanda api key not configured", ErrDataUnavailable)
	}
	accountID, err := f.account(ctx)
	if err != nil {
		return nil, err
	}

	var result struct {
		Prices []oandaPrice `json:"prices"`
	}
	path := fmt.Sprintf("/v3/accounts/%s/pricing?instruments=%s",
		url.PathEscape(accountID), url.QueryEscape(strings.Join(instruments, ",")))
	if err := f.getJSON(ctx, path, &result); err != nil {
		return nil, err
	}

	quotes := make([]model.Quote, 0, len(result.Prices))
	for _, p := range result.Prices {
		if len(p.Bids) == 0 || len(p.Asks) == 0 {
			continue
		}
		bid, err := strconv.ParseFloat(p.Bids[0].Price, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bid for %s: %v", ErrDataUnavailable, p.Instrument, err)
		}
		ask, err := strconv.ParseFloat(p.Asks[0].Price, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: ask for %s: %v", ErrDataUnavailable, p.Instrument, err)
		}
		quotes = append(quotes, newQuote(p.Instrument, bid, ask, p.Tradeable, p.Time))
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("%w: no prices for %s", ErrDataUnavailable, strings.Join(instruments, ","))
	}
	return quotes, nil
}

func (f *OANDAFetcher) account(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AccountID != "" {
		return f.AccountID, nil
	}
	var result struct {
		Accounts []struct {
			ID string `json:"id"`
		} `json:"accounts"`
	}
	if err := f.getJSON(ctx, "/v3/accounts", &result); err != nil {
		return "", err
	}
	if len(result.Accounts) == 0 {
		return "", fmt.Errorf("%w: token has no accounts", ErrDataUnavailable)
	}
	f.AccountID = result.Accounts[0].ID
	f.logger.WithField("account", f.AccountID).Info("resolved oanda account")
	return f.AccountID, nil
}

func (f *OANDAFetcher) getJSON(ctx context.Context, path string, v interface{}) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+f.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: oanda status %d, body: %s", ErrDataUnavailable, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrDataUnavailable, path, err)
	}
	return nil
}

func newQuote(instrument string, bid, ask float64, tradeable bool, ts time.Time) model.Quote {
	return model.Quote{
		Instrument: instrument,
		Bid:        bid,
		Ask:        ask,
		Spread:     calculator.Round(ask-bid, 5),
		Tradeable:  tradeable,
		Time:       ts,
	}
}

// LivePrices quotes the last generated close with a fixed spread of 2 pips.
func (m *MockFetcher) LivePrices(ctx context.Context, instruments []string) ([]model.Quote, error) {
	quotes := make([]model.Quote, 0, len(instruments))
	for _, inst := range instruments {
		bars, err := m.FetchHistory(ctx, inst, 1, DefaultGranularity)
		if err != nil {
			return nil, err
		}
		if len(bars) == 0 {
			continue
		}
		last := bars[len(bars)-1]
		half := pipSize(inst)
		quotes = append(quotes, newQuote(inst,
			calculator.Round(last.Close-half, 5), calculator.Round(last.Close+half, 5), true, last.Time))
	}
	return quotes, nil
}

func pipSize(instrument string) float64 {
	if strings.HasSuffix(instrument, "_JPY") {
		return 0.01
	}
	return 0.0001
}

// LivePrices delegates to the wrapped fetcher without retrying.
func (r *RetryFetcher) LivePrices(ctx context.Context, instruments []string) ([]model.Quote, error) {
	src, ok := r.Next.(PriceSource)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no live prices", ErrDataUnavailable, r.Next.Name())
	}
	return src.LivePrices(ctx, instruments)
}

// LivePrices falls back like FetchHistory does.
func (f *FallbackFetcher) LivePrices(ctx context.Context, instruments []string) ([]model.Quote, error) {
	if src, ok := f.Primary.(PriceSource); ok {
		quotes, err := src.LivePrices(ctx, instruments)
		if err == nil {
			return quotes, nil
		}
		if !errors.Is(err, ErrDataUnavailable) {
			return nil, err
		}
		f.logger.Warnf("%s live prices unavailable, using %s: %v", f.Primary.Name(), f.Fallback.Name(), err)
	}
	src, ok := f.Fallback.(PriceSource)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no live prices", ErrDataUnavailable, f.Fallback.Name())
	}
	return src.LivePrices(ctx, instruments)
}
