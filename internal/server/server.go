package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"gridmix/internal/config"
	"gridmix/internal/fetchers"
	"gridmix/internal/logger"
	"gridmix/internal/reports"
)

// Server serves the dashboard and its data over HTTP
type Server struct {
	Config      *config.Config
	Builder     *reports.Builder
	HTMLBuilder *reports.HTMLBuilder
	log         *logger.Logger
}

// NewServer creates a new server reading data from source
func NewServer(cfg *config.Config, source fetchers.Source) *Server {
	return &Server{
		Config:      cfg,
		Builder:     reports.NewBuilder(source, reports.SettingsFromConfig(cfg)),
		HTMLBuilder: reports.NewHTMLBuilder(),
		log:         logger.For(logger.ComponentServer),
	}
}

// SetupRoutes configures HTTP routes for the server
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/api/generation", s.HandleGeneration)
	mux.HandleFunc("/api/summary", s.HandleSummary)

	// root last, it is the catch-all
	mux.HandleFunc("/", s.HandleRoot)

	return s.logRequests(mux)
}

// HTTPServer wraps the routes in an http.Server listening on the configured port
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.Config.Port,
		Handler:      s.SetupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}

// requestIDHeader carries the id echoed back on every response
const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("Request served", logger.Fields{
			"request_id":  requestID,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}
