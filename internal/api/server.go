// Package api exposes a read-only HTTP view of the experiment store: run and
// metric listings as JSON plus rendered chart pages.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/exptrack/internal/chart"
	"github.com/banshee-data/exptrack/internal/db"
	"github.com/banshee-data/exptrack/internal/monitoring"
	"github.com/banshee-data/exptrack/internal/series"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server serves the read-only view over one experiment store.
type Server struct {
	db *db.DB
}

// NewServer creates a Server backed by the given store.
func NewServer(db *db.DB) *Server {
	return &Server{db: db}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration through
// the monitoring logger.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the route table for the viewer.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/runs", s.listRuns)
	mux.HandleFunc("/api/run", s.showRun)
	mux.HandleFunc("/api/metrics", s.listMetricNames)
	mux.HandleFunc("/api/series", s.showSeries)
	mux.HandleFunc("/chart", s.chartPage)
	return mux
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// runParam parses the required integer query parameter naming a run id.
func runParam(r *http.Request, key string) (int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, fmt.Errorf("missing '%s' parameter", key)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid '%s' parameter", key)
	}
	return id, nil
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	runs, err := s.db.ListRuns(limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list runs: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(runs); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write runs")
	}
}

// runDetail is the /api/run response shape: the run plus its metric names.
type runDetail struct {
	db.Run
	Metrics []string `json:"metrics"`
}

func (s *Server) showRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id, err := runParam(r, "id")
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := s.db.GetRun(id)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get run: %v", err))
		return
	}
	if run == nil {
		s.writeJSONError(w, http.StatusNotFound, "Run not found")
		return
	}

	names, err := s.db.ListMetricNames(id)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list metrics: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(runDetail{Run: *run, Metrics: names}); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write run")
	}
}

func (s *Server) listMetricNames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	runID, err := runParam(r, "run")
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := s.db.GetRun(runID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get run: %v", err))
		return
	}
	if run == nil {
		s.writeJSONError(w, http.StatusNotFound, "Run not found")
		return
	}

	names, err := s.db.ListMetricNames(runID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list metrics: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(names); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write metric names")
	}
}

// loadSeries fetches the series named by the request's run/name/sma
// parameters, applying smoothing when sma > 1. It writes the error response
// itself and returns ok=false when the request cannot be served.
func (s *Server) loadSeries(w http.ResponseWriter, r *http.Request) (series.Series, int64, string, bool) {
	runID, err := runParam(r, "run")
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return nil, 0, "", false
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		s.writeJSONError(w, http.StatusBadRequest, "missing 'name' parameter")
		return nil, 0, "", false
	}

	window := 1
	if raw := r.URL.Query().Get("sma"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeJSONError(w, http.StatusBadRequest, "invalid 'sma' parameter")
			return nil, 0, "", false
		}
		window = parsed
	}

	data, err := s.db.GetMetricSeries(runID, name)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get series: %v", err))
		return nil, 0, "", false
	}
	if len(data) == 0 {
		s.writeJSONError(w, http.StatusNotFound, "No data for that metric")
		return nil, 0, "", false
	}

	if window > 1 {
		data = series.SmoothMovingAverage(data, window)
	}
	return data, runID, name, true
}

func (s *Server) showSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	data, _, _, ok := s.loadSeries(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write series")
	}
}

func (s *Server) chartPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	data, runID, name, ok := s.loadSeries(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	title := fmt.Sprintf("run=%d metric=%s", runID, name)
	if err := chart.RenderHTML(w, title, name, data); err != nil {
		monitoring.Logf("failed to render chart for run %d metric %s: %v", runID, name, err)
	}
}
