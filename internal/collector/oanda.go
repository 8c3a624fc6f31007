package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"FXSignal/internal/model"
)

// DefaultOANDAURL is the practice (demo) REST endpoint.
const DefaultOANDAURL = "https://api-fxpractice.oanda.com"

// OANDAFetcher implements Fetcher using the OANDA v3 REST API. It reads bid
// candles and drops the incomplete one still being formed.
type OANDAFetcher struct {
	BaseURL   string
	APIKey    string
	AccountID string
	Client    *http.Client
	limiter   *rate.Limiter
	logger    *logrus.Entry
	mu        sync.Mutex
}

// NewOANDAFetcher creates a new fetcher with optional proxy support. ratePerSec <= 0
// disables client-side rate limiting. accountID is only needed for live prices.
func NewOANDAFetcher(baseURL, apiKey, accountID, proxyURL string, ratePerSec float64, logger *logrus.Logger) *OANDAFetcher {
	if baseURL == "" {
		baseURL = DefaultOANDAURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}
	return &OANDAFetcher{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		AccountID: accountID,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		limiter: limiter,
		logger:  logger.WithField("component", "oanda"),
	}
}

func (f *OANDAFetcher) Name() string { return "oanda" }

type oandaOHLC struct {
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
}

type oandaCandle struct {
	Complete bool       `json:"complete"`
	Volume   float64    `json:"volume"`
	Time     time.Time  `json:"time"`
	Bid      *oandaOHLC `json:"bid,omitempty"`
	Mid      *oandaOHLC `json:"mid,omitempty"`
}

type oandaCandles struct {
	Instrument  string        `json:"instrument"`
	Granularity string        `json:"granularity"`
	Candles     []oandaCandle `json:"candles"`
}

func (f *OANDAFetcher) FetchHistory(ctx context.Context, instrument string, count int, granularity string) ([]model.PriceBar, error) {
	if f.APIKey == "" {
		return nil, fmt.Errorf("%w: oanda api key not configured", ErrDataUnavailable)
	}
	var result oandaCandles
	path := fmt.Sprintf("/v3/instruments/%s/candles?count=%d&granularity=%s&price=BA",
		url.PathEscape(instrument), count, url.QueryEscape(granularity))
	if err := f.getJSON(ctx, path, &result); err != nil {
		return nil, err
	}

	bars := make([]model.PriceBar, 0, len(result.Candles))
	for _, c := range result.Candles {
		if !c.Complete {
			continue
		}
		prices := c.Bid
		if prices == nil {
			prices = c.Mid
		}
		if prices == nil {
			continue
		}
		bar, err := parseOHLC(c.Time, c.Volume, prices)
		if err != nil {
			return nil, fmt.Errorf("%w: candle %s: %v", ErrDataUnavailable, c.Time.Format(time.RFC3339), err)
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no complete candles for %s", ErrDataUnavailable, instrument)
	}

	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	f.logger.WithFields(logrus.Fields{
		"instrument":  instrument,
		"granularity": granularity,
		"count":       len(bars),
	}).Debug("fetched candles")
	return bars, nil
}

func parseOHLC(ts time.Time, volume float64, p *oandaOHLC) (model.PriceBar, error) {
	var vals [4]float64
	for i, s := range []string{p.O, p.H, p.L, p.C} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.PriceBar{}, err
		}
		vals[i] = v
	}
	return model.PriceBar{
		Time:   ts,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: volume,
	}, nil
}
