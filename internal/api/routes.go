package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler, corsOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(handler.trackingMiddleware)

	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	r.HandleFunc("/forex/{instrument}", handler.GetForexData).Methods("GET")
	r.HandleFunc("/prices", handler.GetPrices).Methods("GET")
	r.HandleFunc("/analysis/{instrument}", handler.GetAnalysis).Methods("GET")

	signals := r.PathPrefix("/signals").Subrouter()
	signals.HandleFunc("/dashboard", handler.GetDashboard).Methods("GET")
	signals.HandleFunc("/history", handler.GetHistory).Methods("GET")
	signals.HandleFunc("/stats/{instrument}", handler.GetStats).Methods("GET")

	r.HandleFunc("/news/sentiment", handler.GetSentiment).Methods("GET")
	if handler.monitor != nil {
		r.Handle("/metrics", handler.monitor.Handler()).Methods("GET")
	}

	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	return handlers.CORS(
		handlers.AllowedOrigins(corsOrigins),
		handlers.AllowedMethods([]string{"GET", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)
}

// trackingMiddleware counts requests per route template and logs them.
func (h *Handler) trackingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		h.monitor.TrackRequest(route)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		h.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapped.statusCode,
			"duration": time.Since(start),
		}).Debug("HTTP request")
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Server wraps the HTTP listener.
type Server struct {
	httpServer *http.Server
	logger     *logrus.Entry
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, handler http.Handler, logger *logrus.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger.WithField("component", "http"),
	}
}

// Start blocks serving HTTP until Stop is called.
func (s *Server) Start() error {
	s.logger.WithField("address", s.httpServer.Addr).Info("Starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}
