package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gridmix/internal/config"
	"gridmix/internal/logger"
	"gridmix/internal/models"
	"gridmix/internal/series"
)

// HandleRoot builds the dashboard and serves it as one HTML page. Section
// failures are shown on the page; the response is still 200.
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dash := s.Builder.Build(r.Context())
	page, err := s.HTMLBuilder.BuildCompleteHTML(dash, nil)
	if err != nil {
		s.log.Error("Failed to render dashboard", err)
		http.Error(w, "Failed to render dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

// HandleHealth provides health check endpoint
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"version":     config.GetVersion(),
		"entity_code": s.Config.EntityCode,
		"mockup_mode": s.Config.MockupMode,
	}
	writeJSON(w, http.StatusOK, health)
}

// HandleGeneration serves the generation pivot table as JSON.
// Query parameters: granularity=monthly|annual, mode=raw|aggregate.
// Monthly data defaults to raw mode and annual data to aggregate mode.
func (s *Server) HandleGeneration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	granularity, ok := models.ParseGranularity(r.URL.Query().Get("granularity"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "granularity must be monthly or annual"})
		return
	}

	mode := series.ModeRaw
	if granularity == models.Annual {
		mode = series.ModeAggregate
	}
	if raw := r.URL.Query().Get("mode"); raw != "" {
		if mode, ok = series.ParseMode(raw); !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mode must be raw or aggregate"})
			return
		}
	}

	table, err := s.Builder.GenerationTable(r.Context(), granularity, mode)
	if err != nil {
		status := statusFor(err)
		s.log.Error("Generation table failed", err, logger.Fields{
			"granularity": granularity.String(),
			"status":      status,
		})
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, table)
}

// HandleSummary serves the annual summary as JSON.
// Query parameters: years=N limits the window, year=YYYY selects one entry.
func (s *Server) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var years, year int
	var err error
	if raw := r.URL.Query().Get("years"); raw != "" {
		if years, err = strconv.Atoi(raw); err != nil || years < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "years must be a positive number"})
			return
		}
	}
	rawYear := r.URL.Query().Get("year")
	if rawYear != "" {
		if year, err = strconv.Atoi(rawYear); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "year must be a number"})
			return
		}
	}

	summaries, err := s.Builder.AnnualSummary(r.Context(), years)
	if err != nil {
		status := statusFor(err)
		s.log.Error("Annual summary failed", err, logger.Fields{"status": status})
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	if rawYear == "" {
		writeJSON(w, http.StatusOK, summaries)
		return
	}
	entry, ok := models.FindYear(summaries, year)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("no data for year %d", year)})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// statusFor maps pipeline errors to HTTP status codes
func statusFor(err error) int {
	var fetchErr *models.FetchError
	var schemaErr *models.SchemaError
	switch {
	case errors.As(err, &fetchErr), errors.As(err, &schemaErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
