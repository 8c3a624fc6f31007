// Package news scores forex news sentiment from NewsAPI article titles.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"FXSignal/internal/model"
)

const (
	// DefaultBaseURL is the NewsAPI v2 endpoint.
	DefaultBaseURL = "https://newsapi.org/v2"
	// DefaultQuery is used when no query is given.
	DefaultQuery = "forex"
	// MaxArticles is how many of the newest articles are scored.
	MaxArticles = 10
	lookback    = 24 * time.Hour
)

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("newsapi key not configured")
	// ErrUnavailable is returned when NewsAPI cannot be reached or answers with an error.
	ErrUnavailable = errors.New("news unavailable")
)

var (
	positiveWords = []string{"up", "rise", "gain", "bullish", "strong", "buy", "positive"}
	negativeWords = []string{"down", "fall", "drop", "bearish", "weak", "sell", "negative"}
)

// Client queries the NewsAPI everything endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Now     func() time.Time
	logger  *logrus.Entry
}

// NewClient creates a NewsAPI client with optional proxy support.
func NewClient(baseURL, apiKey, proxyURL string, logger *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
		Now:    time.Now,
		logger: logger.WithField("component", "news"),
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c != nil && c.APIKey != ""
}

type article struct {
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"publishedAt"`
}

type everythingResponse struct {
	Status   string    `json:"status"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Articles []article `json:"articles"`
}

// Titles returns the titles of articles matching query published in the last 24 hours, newest first.
func (c *Client) Titles(ctx context.Context, query string) ([]string, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if query == "" {
		query = DefaultQuery
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("from", c.Now().Add(-lookback).Format("2006-01-02"))
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var result everythingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode articles: %v", ErrUnavailable, err)
	}
	if result.Status == "error" {
		return nil, fmt.Errorf("%w: %s: %s", ErrUnavailable, result.Code, result.Message)
	}

	titles := make([]string, 0, len(result.Articles))
	for _, a := range result.Articles {
		titles = append(titles, a.Title)
	}
	return titles, nil
}

// Sentiment fetches recent articles for query and scores their titles.
func (c *Client) Sentiment(ctx context.Context, query string) (*model.Sentiment, error) {
	if query == "" {
		query = DefaultQuery
	}
	titles, err := c.Titles(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(titles) > MaxArticles {
		titles = titles[:MaxArticles]
	}
	score, scored := ScoreTitles(titles)
	c.logger.WithFields(logrus.Fields{
		"query":    query,
		"articles": len(titles),
		"scored":   scored,
	}).Debug("scored news sentiment")
	return &model.Sentiment{
		Query:     query,
		Score:     score,
		Articles:  scored,
		FetchedAt: c.Now(),
	}, nil
}

// ScoreTitles averages (positive-negative)/(positive+negative) over the titles that
// contain at least one keyword. A keyword counts once per title and matches as a
// case-insensitive substring. It returns 0 when no title carries a keyword.
func ScoreTitles(titles []string) (score float64, scored int) {
	var sum float64
	for _, title := range titles {
		t := strings.ToLower(title)
		pos := countKeywords(t, positiveWords)
		neg := countKeywords(t, negativeWords)
		if pos+neg == 0 {
			continue
		}
		sum += float64(pos-neg) / float64(pos+neg)
		scored++
	}
	if scored == 0 {
		return 0, 0
	}
	return sum / float64(scored), scored
}

func countKeywords(title string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(title, w) {
			n++
		}
	}
	return n
}
