package domain

import (
	"context"
	"time"
)

// WeatherProvider supplies the latest station reading for a date.
type WeatherProvider interface {
	// LatestReading returns the most recent temperature and humidity for the
	// station on the given date. Implementations return an error wrapping
	// ErrMissingEnvironmentData when the station has no reading.
	LatestReading(ctx context.Context, stationID string, date time.Time) (EnvironmentReading, error)
}

// MedicationChecker reports whether a patient takes medication that impairs heat loss.
type MedicationChecker interface {
	HasMedication(ctx context.Context, patientID string) (bool, error)
}
