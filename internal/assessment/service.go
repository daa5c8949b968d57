// Package assessment runs heat-risk assessments against live collaborators:
// it resolves the camp's weather station, fetches the reading, checks the
// soldier's medication record and hands the inputs to the domain engine.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/couchcryptid/heat-risk-service/internal/domain"
	"github.com/couchcryptid/heat-risk-service/internal/observability"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var (
	// ErrInvalidSubmission means a submission failed field validation.
	ErrInvalidSubmission = errors.New("invalid submission")

	// ErrStoreUnavailable means camp summaries were requested without a
	// configured submission store.
	ErrStoreUnavailable = errors.New("submission store not configured")
)

// SubmissionStore returns the latest submission of every soldier at a camp.
type SubmissionStore interface {
	LatestByCamp(ctx context.Context, camp string) ([]domain.Submission, error)
}

// Service assesses submissions and builds camp summaries.
type Service struct {
	stations    domain.CampStations
	weather     domain.WeatherProvider
	medications domain.MedicationChecker
	store       SubmissionStore
	validate    *validator.Validate
	clock       clockwork.Clock
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewService creates a Service. medications and store may be nil; medication
// is then taken as self-reported and camp summaries are unavailable.
func NewService(
	stations domain.CampStations,
	weather domain.WeatherProvider,
	medications domain.MedicationChecker,
	store SubmissionStore,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		stations:    stations,
		weather:     weather,
		medications: medications,
		store:       store,
		validate:    newValidator(),
		clock:       clockwork.NewRealClock(),
		metrics:     metrics,
		logger:      logger,
	}
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the submission's required fields and bounds.
func (s *Service) Validate(sub domain.Submission) error {
	err := s.validate.Struct(sub)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidSubmission, strings.Join(msgs, "; "))
}

// Reading fetches the latest reading for the camp's station on the given date.
func (s *Service) Reading(ctx context.Context, camp string, date time.Time) (domain.EnvironmentReading, error) {
	station, err := s.stations.StationFor(camp)
	if err != nil {
		return domain.EnvironmentReading{}, err
	}
	reading, err := s.weather.LatestReading(ctx, station, date)
	if err != nil {
		return domain.EnvironmentReading{}, fmt.Errorf("reading for %s: %w", camp, err)
	}
	return reading, nil
}

// Assess validates the submission, fetches the reading for its camp and
// submission date, and evaluates it.
func (s *Service) Assess(ctx context.Context, sub domain.Submission) (domain.AssessedSubmission, error) {
	sub, err := s.prepare(sub)
	if err != nil {
		return domain.AssessedSubmission{}, err
	}
	reading, err := s.Reading(ctx, sub.Camp, sub.SubmittedAt)
	if err != nil {
		s.recordError(err)
		return domain.AssessedSubmission{}, err
	}
	return s.evaluate(ctx, sub, reading)
}

// AssessWithReading evaluates the submission under a caller-supplied reading.
// The camp must still be known.
func (s *Service) AssessWithReading(ctx context.Context, sub domain.Submission, reading domain.EnvironmentReading) (domain.AssessedSubmission, error) {
	sub, err := s.prepare(sub)
	if err != nil {
		return domain.AssessedSubmission{}, err
	}
	station, err := s.stations.StationFor(sub.Camp)
	if err != nil {
		s.recordError(err)
		return domain.AssessedSubmission{}, err
	}
	if reading.StationID == "" {
		reading.StationID = station
	}
	return s.evaluate(ctx, sub, reading)
}

// CampSummary aggregates the latest submission of every soldier at the camp
// under the camp's current reading.
func (s *Service) CampSummary(ctx context.Context, camp string, date time.Time) (domain.CampSummary, error) {
	if _, err := s.stations.StationFor(camp); err != nil {
		return domain.CampSummary{}, err
	}
	if s.store == nil {
		return domain.CampSummary{}, ErrStoreUnavailable
	}
	if date.IsZero() {
		date = s.clock.Now()
	}

	reading, err := s.Reading(ctx, camp, date)
	if err != nil {
		return domain.CampSummary{}, err
	}
	subs, err := s.store.LatestByCamp(ctx, camp)
	if err != nil {
		return domain.CampSummary{}, fmt.Errorf("camp summary: %w", err)
	}

	summary, err := domain.SummarizeCamp(camp, reading, subs)
	if err != nil {
		return domain.CampSummary{}, err
	}
	s.logger.Debug("camp summary built",
		"camp", camp,
		"soldiers", summary.TotalSoldiers,
		"high_risk", summary.HighRiskCount,
		"failed", summary.FailedCount,
	)
	return summary, nil
}

// prepare fills in the submission ID and timestamp when absent and validates.
func (s *Service) prepare(sub domain.Submission) (domain.Submission, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = s.clock.Now()
	}
	if err := s.Validate(sub); err != nil {
		s.metrics.AssessmentErrors.WithLabelValues("invalid_submission").Inc()
		return sub, err
	}
	return sub, nil
}

func (s *Service) evaluate(ctx context.Context, sub domain.Submission, reading domain.EnvironmentReading) (domain.AssessedSubmission, error) {
	if s.medications != nil && sub.PatientID != "" {
		has, err := s.medications.HasMedication(ctx, sub.PatientID)
		if err != nil {
			// The record is informational; fall back to the self-report.
			s.logger.Warn("medication lookup failed", "patient_id", sub.PatientID, "error", err)
		} else {
			sub.Medication = sub.Medication || has
		}
	}

	result, err := domain.Assess(sub.Input(reading))
	if err != nil {
		s.recordError(err)
		return domain.AssessedSubmission{}, fmt.Errorf("assess submission %s: %w", sub.ID, err)
	}

	s.metrics.Assessments.WithLabelValues(result.Category.String(), string(result.Risk)).Inc()
	return domain.AssessedSubmission{Submission: sub, Reading: reading, Result: result}, nil
}

func (s *Service) recordError(err error) {
	s.metrics.AssessmentErrors.WithLabelValues(ErrorReason(err)).Inc()
}

// ErrorReason classifies an assessment error into a short metric label.
func ErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidSubmission):
		return "invalid_submission"
	case errors.Is(err, domain.ErrUnknownCamp):
		return "unknown_camp"
	case errors.Is(err, domain.ErrMissingEnvironmentData):
		return "missing_environment_data"
	case errors.Is(err, domain.ErrInvalidObservation):
		return "invalid_observation"
	case errors.Is(err, domain.ErrUnclassifiableWBGT):
		return "unclassifiable_wbgt"
	default:
		return "provider"
	}
}
