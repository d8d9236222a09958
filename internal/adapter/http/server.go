// Package http exposes the dashboard API: health and metrics endpoints plus
// the JSON case endpoints the visualization layer consumes.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/road-accident-insight/internal/aggregate"
	"github.com/couchcryptid/road-accident-insight/internal/config"
	"github.com/couchcryptid/road-accident-insight/internal/domain"
	"github.com/couchcryptid/road-accident-insight/internal/filter"
	"github.com/couchcryptid/road-accident-insight/internal/observability"
	"github.com/couchcryptid/road-accident-insight/internal/pipeline"
)

const queryDateLayout = "2006-01-02"

// DatasetSource supplies the cleaned dataset and reports readiness.
type DatasetSource interface {
	Load(path string) (domain.Table, pipeline.Diagnostics, error)
	CheckReadiness(ctx context.Context) error
}

// Server exposes the dashboard HTTP API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	metrics    *observability.Metrics

	source      DatasetSource
	datasetPath string

	maxMapPoints int
	sampleSeed   int64
}

// NewServer creates an HTTP server with health, metrics, and case routes.
func NewServer(cfg *config.Config, source DatasetSource, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:       logger,
		metrics:      metrics,
		source:       source,
		datasetPath:  cfg.DatasetPath,
		maxMapPoints: cfg.MaxMapPoints,
		sampleSeed:   cfg.SampleSeed,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(source))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/diagnostics", s.handleDiagnostics)
	mux.HandleFunc("GET /api/cases", s.handleCatalog)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/cases/{id}", s.handleCase)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker DatasetSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, _ *http.Request) {
	_, diag, err := s.source.Load(s.datasetPath)
	if err != nil {
		s.logger.Error("dataset load failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "dataset unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, diag)
}

type catalogResponse struct {
	Cases  []aggregate.CaseInfo       `json:"cases"`
	Colors map[domain.Severity]string `json:"severity_colors"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		Cases:  aggregate.Catalog,
		Colors: aggregate.SeverityColors,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	spec, err := parseSpec(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	subset, ok := s.filteredTable(w, spec)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, aggregate.Summarize(subset))
}

type caseResponse struct {
	Case    aggregate.CaseID  `json:"case"`
	Summary aggregate.Summary `json:"summary"`
	NoData  bool              `json:"no_data,omitempty"`
	Result  any               `json:"result"`
}

func (s *Server) handleCase(w http.ResponseWriter, r *http.Request) {
	id := aggregate.CaseID(r.PathValue("id"))
	fn, ok := aggregate.Registry[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown case: " + string(id)})
		return
	}

	spec, err := parseSpec(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	spec.Case = id

	subset, ok := s.filteredTable(w, spec)
	if !ok {
		s.metrics.AggregationRequests.WithLabelValues(string(id), "error").Inc()
		return
	}

	opts := spec.Options()
	opts.MaxMapPoints = s.maxMapPoints
	opts.SampleSeed = s.sampleSeed

	start := time.Now()
	result := fn(subset, opts)
	s.metrics.AggregationDuration.WithLabelValues(string(id)).Observe(time.Since(start).Seconds())
	s.metrics.AggregationRequests.WithLabelValues(string(id), "ok").Inc()

	writeJSON(w, http.StatusOK, caseResponse{
		Case:    id,
		Summary: aggregate.Summarize(subset),
		NoData:  len(subset) == 0,
		Result:  result,
	})
}

// filteredTable loads the dataset and applies spec, writing the error
// response itself when the load fails.
func (s *Server) filteredTable(w http.ResponseWriter, spec filter.Spec) (domain.Table, bool) {
	table, _, err := s.source.Load(s.datasetPath)
	if err != nil {
		s.logger.Error("dataset load failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "dataset unavailable"})
		return nil, false
	}

	start := time.Now()
	subset := filter.Apply(table, spec)
	s.metrics.FilterDuration.Observe(time.Since(start).Seconds())
	return subset, true
}

func parseSpec(r *http.Request) (filter.Spec, error) {
	q := r.URL.Query()
	var spec filter.Spec

	var err error
	if spec.From, err = parseQueryDate(q.Get("from"), "from"); err != nil {
		return filter.Spec{}, err
	}
	if spec.To, err = parseQueryDate(q.Get("to"), "to"); err != nil {
		return filter.Spec{}, err
	}

	for _, v := range q["severity"] {
		sev, err := parseSeverity(v)
		if err != nil {
			return filter.Spec{}, err
		}
		spec.Severities = append(spec.Severities, sev)
	}

	spec.Areas = q["area"]
	spec.Districts = q["district"]
	spec.Weather = q["weather"]
	spec.Light = q["light"]
	spec.RoadTypes = q["road_type"]
	spec.VehicleTypes = q["vehicle_type"]

	for _, v := range q["speed"] {
		speed, err := strconv.Atoi(v)
		if err != nil {
			return filter.Spec{}, &badParamError{param: "speed", value: v}
		}
		spec.SpeedLimits = append(spec.SpeedLimits, speed)
	}

	if v := q.Get("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return filter.Spec{}, &badParamError{param: "top_n", value: v}
		}
		spec.TopN = n
	}

	return spec, nil
}

type badParamError struct {
	param string
	value string
}

func (e *badParamError) Error() string {
	return "invalid " + e.param + " parameter: " + strconv.Quote(e.value)
}

func parseQueryDate(v, param string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(queryDateLayout, v)
	if err != nil {
		return nil, &badParamError{param: param, value: v}
	}
	return &t, nil
}

func parseSeverity(v string) (domain.Severity, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "fatal":
		return domain.SeverityFatal, nil
	case "serious":
		return domain.SeveritySerious, nil
	case "slight":
		return domain.SeveritySlight, nil
	case "unknown":
		return domain.SeverityUnknown, nil
	}
	return "", &badParamError{param: "severity", value: v}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
