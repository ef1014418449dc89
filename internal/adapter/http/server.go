package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/tsunami-risk-service/internal/adapter/modelserver"
	"github.com/couchcryptid/tsunami-risk-service/internal/domain"
	"github.com/couchcryptid/tsunami-risk-service/internal/features"
	"github.com/couchcryptid/tsunami-risk-service/internal/pipeline"
)

// maxBodyBytes bounds prediction request bodies. A (24, 32) sample is about
// 10 KB of JSON, so this admits batches of several hundred samples.
const maxBodyBytes = 8 << 20

// StationDirectory lists regions and their stations.
type StationDirectory interface {
	Regions() []string
	Stations(region string) ([]domain.Station, error)
}

// TelemetryAggregator collects per-station telemetry for a region.
type TelemetryAggregator interface {
	Aggregate(ctx context.Context, region string) ([]domain.SourceResult, error)
}

// Predictor scores caller-supplied tensors.
type Predictor interface {
	Loaded() bool
	Predict(ctx context.Context, req pipeline.PredictRequest) (pipeline.PredictResponse, error)
	BatchPredict(ctx context.Context, req pipeline.BatchRequest) (pipeline.BatchResponse, error)
}

// QuakeAssessor scores recent regional earthquakes.
type QuakeAssessor interface {
	Assess(ctx context.Context, region string, q pipeline.EarthquakeQuery) (pipeline.QuakeReport, error)
}

// Services are the components the HTTP layer exposes.
type Services struct {
	Stations  StationDirectory
	Telemetry TelemetryAggregator
	Predictor Predictor
	Quakes    QuakeAssessor
	Metadata  modelserver.Metadata // nil when the metadata file could not be read
}

// Endpoints is the public route list, reported by /model-info and by the
// not-found handler.
var Endpoints = []string{
	"GET /health",
	"GET /model-info",
	"POST /predict",
	"POST /batch-predict",
	"GET /api/regions",
	"GET /api/regions/{region}/stations",
	"GET /api/regions/{region}/telemetry",
	"GET /api/regions/{region}/earthquakes",
}

// Server exposes the prediction API, regional telemetry and earthquake
// assessments, plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        Services
	logger     *slog.Logger
}

// NewServer creates the HTTP server and registers every route.
func NewServer(addr string, svc Services, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// Telemetry walks every station's provider chain sequentially.
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /model-info", s.handleModelInfo)
	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("POST /batch-predict", s.handleBatchPredict)
	mux.HandleFunc("GET /api/regions", s.handleRegions)
	mux.HandleFunc("GET /api/regions/{region}/stations", s.handleStations)
	mux.HandleFunc("GET /api/regions/{region}/telemetry", s.handleTelemetry)
	mux.HandleFunc("GET /api/regions/{region}/earthquakes", s.handleEarthquakes)
	mux.HandleFunc("/", s.handleNotFound)

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
	loaded := s.svc.Predictor.Loaded()
	status := "healthy"
	if !loaded {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       status,
		"model_loaded": loaded,
		"model_type":   s.svc.Metadata.ModelType(),
	})
}

func (s *Server) handleModelInfo(w http.ResponseWriter, _ *http.Request) {
	if s.svc.Metadata == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "model metadata not available"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"model":     s.svc.Metadata,
		"endpoints": Endpoints,
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req pipeline.PredictRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	resp, err := s.svc.Predictor.Predict(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBatchPredict(w http.ResponseWriter, r *http.Request) {
	var req pipeline.BatchRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	resp, err := s.svc.Predictor.BatchPredict(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"regions": s.svc.Stations.Regions()})
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	region := r.PathValue("region")
	stations, err := s.svc.Stations.Stations(region)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"region": region, "stations": stations})
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	region := r.PathValue("region")
	results, err := s.svc.Telemetry.Aggregate(r.Context(), region)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"region": region, "results": results})
}

func (s *Server) handleEarthquakes(w http.ResponseWriter, r *http.Request) {
	q, err := parseEarthquakeQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.svc.Quakes.Assess(r.Context(), r.PathValue("region"), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":               "Endpoint not found",
		"available_endpoints": Endpoints,
	})
}

// errBadRequest marks malformed bodies and query strings.
var errBadRequest = errors.New("bad request")

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid JSON body: %w", errBadRequest, err))
		return false
	}
	return true
}

// parseEarthquakeQuery overlays query parameters on the default window.
func parseEarthquakeQuery(r *http.Request) (pipeline.EarthquakeQuery, error) {
	q := pipeline.NewEarthquakeQuery()
	params := r.URL.Query()

	if v := params.Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, fmt.Errorf("%w: hours must be an integer", errBadRequest)
		}
		q.Hours = n
	}
	if v := params.Get("min_magnitude"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, fmt.Errorf("%w: min_magnitude must be a number", errBadRequest)
		}
		q.MinMagnitude = f
	}
	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, fmt.Errorf("%w: limit must be an integer", errBadRequest)
		}
		q.Limit = n
	}
	if v := params.Get("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, fmt.Errorf("%w: threshold must be a number", errBadRequest)
		}
		q.Threshold = &f
	}
	return q, nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrMissingField),
		errors.Is(err, pipeline.ErrInvalidRequest),
		errors.Is(err, features.ErrInvalidShape),
		errors.Is(err, features.ErrShapeMismatch),
		errors.Is(err, features.ErrEmptyBatch):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownRegion):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrClassifierUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
