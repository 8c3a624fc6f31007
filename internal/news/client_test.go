package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func TestScoreTitles(t *testing.T) {
	tests := []struct {
		name       string
		titles     []string
		wantScore  float64
		wantScored int
	}{
		{name: "no titles", titles: nil, wantScore: 0, wantScored: 0},
		{name: "no keywords", titles: []string{"ECB holds rates", "Markets await CPI"}, wantScore: 0, wantScored: 0},
		{name: "all positive", titles: []string{"Euro set to RISE on strong data"}, wantScore: 1, wantScored: 1},
		{name: "all negative", titles: []string{"Dollar bearish as yields fall"}, wantScore: -1, wantScored: 1},
		{name: "mixed title", titles: []string{"Gold gains while stocks drop"}, wantScore: 0, wantScored: 1},
		{
			name:       "averaged over scored titles",
			titles:     []string{"Pound rally looks strong", "Yen weak", "Quiet session"},
			wantScore:  0,
			wantScored: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, scored := ScoreTitles(tt.titles)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
			assert.Equal(t, tt.wantScored, scored)
		})
	}
}

func TestScoreTitles_KeywordCountsOnce(t *testing.T) {
	// "buy buy buy" is one positive keyword, "negative" one negative.
	score, scored := ScoreTitles([]string{"Buy buy buy despite negative print"})
	assert.Equal(t, 1, scored)
	assert.InDelta(t, 0, score, 1e-9)
}

func TestClient_Sentiment(t *testing.T) {
	var gotQuery, gotFrom, gotKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/everything", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		gotFrom = r.URL.Query().Get("from")
		gotKey = r.Header.Get("X-Api-Key")
		// Twelve articles; only the first ten are scored.
		fmt.Fprint(w, `{"status":"ok","articles":[
			{"title":"Euro rises on strong PMI"},
			{"title":"Dollar bullish"},
			{"title":"Nothing to see"},
			{"title":"Sterling weak"},
			{"title":"a"},{"title":"b"},{"title":"c"},{"title":"d"},{"title":"e"},{"title":"f"},
			{"title":"Yen falls sharply"},
			{"title":"Franc drops"}
		]}`)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "key", "", testLogger())
	c.Now = func() time.Time { return time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC) }

	s, err := c.Sentiment(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultQuery, gotQuery)
	assert.Equal(t, "2024-03-01", gotFrom)
	assert.Equal(t, "key", gotKey)

	assert.Equal(t, 3, s.Articles)
	assert.InDelta(t, 1.0/3.0, s.Score, 1e-9)
	assert.Equal(t, DefaultQuery, s.Query)
}

func TestClient_Errors(t *testing.T) {
	_, err := NewClient("", "", "", testLogger()).Sentiment(context.Background(), "forex")
	assert.ErrorIs(t, err, ErrNotConfigured)

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "http error", status: http.StatusUnauthorized, body: `{"status":"error","code":"apiKeyInvalid"}`},
		{name: "status error", status: http.StatusOK, body: `{"status":"error","code":"rateLimited","message":"too many requests"}`},
		{name: "bad json", status: http.StatusOK, body: `{"articles":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			_, err := NewClient(ts.URL, "key", "", testLogger()).Sentiment(context.Background(), "forex")
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}
