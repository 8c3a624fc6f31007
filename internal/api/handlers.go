package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"FXSignal/internal/collector"
	"FXSignal/internal/model"
	"FXSignal/internal/monitor"
	"FXSignal/internal/news"
	"FXSignal/internal/recorder"
	"FXSignal/internal/strategy"
)

const (
	maxCount     = 5000
	defaultHours = 24
	maxHours     = 24 * 30
)

var instrumentPattern = regexp.MustCompile(`^[A-Z]{3}_[A-Z]{3}$`)

// SentimentSource scores news sentiment for a query.
type SentimentSource interface {
	Configured() bool
	Sentiment(ctx context.Context, query string) (*model.Sentiment, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	collector   *collector.Collector
	history     recorder.Store
	news        SentimentSource
	monitor     *monitor.Monitor
	instruments []string
	logger      *logrus.Entry
}

// NewHandler creates a new Handler. news and mon may be nil.
func NewHandler(c *collector.Collector, history recorder.Store, src SentimentSource, mon *monitor.Monitor, instruments []string, logger *logrus.Logger) *Handler {
	if history == nil {
		history = recorder.NewNoopRecorder()
	}
	return &Handler{
		collector:   c,
		history:     history,
		news:        src,
		monitor:     mon,
		instruments: instruments,
		logger:      logger.WithField("component", "api"),
	}
}

type healthResponse struct {
	Status string `json:"status"`
	monitor.Stats
	Timestamp time.Time `json:"timestamp"`
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Stats:     h.monitor.Stats(),
		Timestamp: time.Now().UTC(),
	})
}

// GetForexData handles GET /forex/{instrument}
func (h *Handler) GetForexData(w http.ResponseWriter, r *http.Request) {
	instrument, ok := instrumentVar(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	count := collector.DefaultCount
	if raw := q.Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxCount {
			respondError(w, http.StatusBadRequest, "count must be between 1 and 5000")
			return
		}
		count = n
	}
	granularity := collector.DefaultGranularity
	if raw := q.Get("granularity"); raw != "" {
		if !collector.ValidGranularity(raw) {
			respondError(w, http.StatusBadRequest, "unsupported granularity: "+raw)
			return
		}
		granularity = raw
	}

	bars, err := h.collector.History(r.Context(), instrument, count, granularity)
	if err != nil {
		h.fail(w, instrument, err)
		return
	}
	respondJSON(w, http.StatusOK, model.PriceSeries{
		Instrument:  instrument,
		Granularity: granularity,
		Bars:        bars,
		FetchedAt:   time.Now().UTC(),
	})
}

type pricesResponse struct {
	Prices    []model.Quote `json:"prices"`
	Timestamp time.Time     `json:"timestamp"`
}

// GetPrices handles GET /prices
func (h *Handler) GetPrices(w http.ResponseWriter, r *http.Request) {
	instruments, ok := instrumentsParam(w, r, h.instruments)
	if !ok {
		return
	}
	quotes, err := h.collector.Quotes(r.Context(), instruments)
	if err != nil {
		h.fail(w, "", err)
		return
	}
	respondJSON(w, http.StatusOK, pricesResponse{Prices: quotes, Timestamp: time.Now().UTC()})
}

type analysisResponse struct {
	*collector.Analysis
	Sentiment *model.Sentiment `json:"sentiment,omitempty"`
}

// GetAnalysis handles GET /analysis/{instrument}
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	instrument, ok := instrumentVar(w, r)
	if !ok {
		return
	}
	a, err := h.collector.Analyze(r.Context(), instrument)
	if err != nil {
		h.fail(w, instrument, err)
		return
	}

	resp := analysisResponse{Analysis: a}
	if h.news != nil && h.news.Configured() {
		// News failures degrade the response, never fail it.
		s, err := h.news.Sentiment(r.Context(), strings.ReplaceAll(instrument, "_", " "))
		if err != nil {
			h.logger.WithField("instrument", instrument).Warnf("sentiment unavailable: %v", err)
		} else {
			resp.Sentiment = s
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

type dashboardResponse struct {
	Signals   []collector.DashboardEntry `json:"signals"`
	Timestamp time.Time                  `json:"timestamp"`
}

// GetDashboard handles GET /signals/dashboard
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	instruments, ok := instrumentsParam(w, r, h.instruments)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, dashboardResponse{
		Signals:   h.collector.Dashboard(r.Context(), instruments),
		Timestamp: time.Now().UTC(),
	})
}

type historyResponse struct {
	Instrument string               `json:"instrument,omitempty"`
	Hours      int                  `json:"hours"`
	Count      int                  `json:"count"`
	Signals    []model.SignalRecord `json:"signals"`
}

// GetHistory handles GET /signals/history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	instrument := strings.ToUpper(q.Get("instrument"))
	if instrument != "" && !instrumentPattern.MatchString(instrument) {
		respondError(w, http.StatusBadRequest, "invalid instrument: "+instrument)
		return
	}
	hours, ok := hoursParam(w, r)
	if !ok {
		return
	}

	records, err := h.history.Recent(r.Context(), instrument, time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		h.fail(w, instrument, err)
		return
	}
	if records == nil {
		records = []model.SignalRecord{}
	}
	respondJSON(w, http.StatusOK, historyResponse{
		Instrument: instrument,
		Hours:      hours,
		Count:      len(records),
		Signals:    records,
	})
}

// GetStats handles GET /signals/stats/{instrument}
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	instrument, ok := instrumentVar(w, r)
	if !ok {
		return
	}
	hours, ok := hoursParam(w, r)
	if !ok {
		return
	}
	records, err := h.history.Recent(r.Context(), instrument, time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		h.fail(w, instrument, err)
		return
	}
	respondJSON(w, http.StatusOK, recorder.Summarize(instrument, hours, records))
}

// GetSentiment handles GET /news/sentiment
func (h *Handler) GetSentiment(w http.ResponseWriter, r *http.Request) {
	if h.news == nil || !h.news.Configured() {
		respondError(w, http.StatusServiceUnavailable, news.ErrNotConfigured.Error())
		return
	}
	s, err := h.news.Sentiment(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, "", err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func (h *Handler) fail(w http.ResponseWriter, instrument string, err error) {
	status := statusFor(err)
	entry := h.logger.WithField("status", status)
	if instrument != "" {
		entry = entry.WithField("instrument", instrument)
	}
	if status >= http.StatusInternalServerError {
		entry.Errorf("request failed: %v", err)
	} else {
		entry.Warnf("request rejected: %v", err)
	}
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, strategy.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, collector.ErrDataUnavailable), errors.Is(err, news.ErrUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, news.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func instrumentVar(w http.ResponseWriter, r *http.Request) (string, bool) {
	instrument := strings.ToUpper(mux.Vars(r)["instrument"])
	if !instrumentPattern.MatchString(instrument) {
		respondError(w, http.StatusBadRequest, "invalid instrument: "+instrument)
		return "", false
	}
	return instrument, true
}

// instrumentsParam parses the comma separated instruments query, falling back to defaults
// when it names no instrument.
func instrumentsParam(w http.ResponseWriter, r *http.Request, defaults []string) ([]string, bool) {
	raw := r.URL.Query().Get("instruments")
	if raw == "" {
		return defaults, true
	}
	var instruments []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !instrumentPattern.MatchString(s) {
			respondError(w, http.StatusBadRequest, "invalid instrument: "+s)
			return nil, false
		}
		instruments = append(instruments, s)
	}
	if len(instruments) == 0 {
		return defaults, true
	}
	return instruments, true
}

func hoursParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("hours")
	if raw == "" {
		return defaultHours, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxHours {
		respondError(w, http.StatusBadRequest, "hours must be between 1 and 720")
		return 0, false
	}
	return n, true
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
