package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/couchcryptid/heat-risk-service/internal/adapter/weather"
	"github.com/couchcryptid/heat-risk-service/internal/assessment"
	"github.com/couchcryptid/heat-risk-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

// Assessor runs assessments and camp summaries for the API routes.
type Assessor interface {
	Assess(ctx context.Context, sub domain.Submission) (domain.AssessedSubmission, error)
	AssessWithReading(ctx context.Context, sub domain.Submission, reading domain.EnvironmentReading) (domain.AssessedSubmission, error)
	CampSummary(ctx context.Context, camp string, date time.Time) (domain.CampSummary, error)
}

// Server exposes health, readiness, metrics and the assessment API.
type Server struct {
	httpServer *http.Server
	assessor   Assessor
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /v1 assessment routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, assessor Assessor, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		assessor: assessor,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/assessments", s.handleAssess)
	mux.HandleFunc("GET /v1/camps/{camp}/summary", s.handleCampSummary)

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

// assessmentRequest is a submission with an optional explicit reading that
// replaces the weather provider lookup.
type assessmentRequest struct {
	domain.Submission
	Reading *readingRequest `json:"reading,omitempty"`
}

// readingRequest keeps absent and null values distinguishable from zero.
type readingRequest struct {
	StationID           string    `json:"station_id"`
	ObservedAt          time.Time `json:"observed_at"`
	AirTemperatureC     *float64  `json:"air_temperature_c"`
	RelativeHumidityPct *float64  `json:"relative_humidity_pct"`
}

// reading maps missing values to NaN so the engine rejects them.
func (r readingRequest) reading() domain.EnvironmentReading {
	return domain.EnvironmentReading{
		StationID:           r.StationID,
		ObservedAt:          r.ObservedAt,
		AirTemperatureC:     valueOrNaN(r.AirTemperatureC),
		RelativeHumidityPct: valueOrNaN(r.RelativeHumidityPct),
	}
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}

	var (
		out domain.AssessedSubmission
		err error
	)
	if req.Reading != nil {
		out, err = s.assessor.AssessWithReading(r.Context(), req.Submission, req.Reading.reading())
	} else {
		out, err = s.assessor.Assess(r.Context(), req.Submission)
	}
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCampSummary(w http.ResponseWriter, r *http.Request) {
	camp := r.PathValue("camp")

	var date time.Time
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.Parse(time.DateOnly, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q: want YYYY-MM-DD", v))
			return
		}
		date = d
	}

	summary, err := s.assessor.CampSummary(r.Context(), camp, date)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, err.Error())
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var pe *weather.ProviderError
	switch {
	case errors.Is(err, assessment.ErrInvalidSubmission), errors.Is(err, domain.ErrInvalidObservation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownCamp):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMissingEnvironmentData), errors.Is(err, domain.ErrUnclassifiableWBGT):
		return http.StatusUnprocessableEntity
	case errors.Is(err, assessment.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &pe):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // response already committed
}
