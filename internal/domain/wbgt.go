package domain

import (
	"fmt"
	"math"
)

// Globe temperature proxy constants. Solar load and wind speed are fixed.
const (
	globeIntercept    = 17.68
	globeTempCoef     = 0.993
	globeWindTerm     = 0.0737 * 2.5
	globeHumidityCoef = 0.754
)

// EstimateWBGT approximates the Wet Bulb Globe Temperature (°C) of a reading.
// It returns ErrMissingEnvironmentData when either value is NaN or infinite,
// or when the humidity is too negative for the wet-bulb approximation.
func EstimateWBGT(r EnvironmentReading) (float64, error) {
	t, rh := r.AirTemperatureC, r.RelativeHumidityPct
	if !isFinite(t) {
		return 0, fmt.Errorf("air temperature %v: %w", t, ErrMissingEnvironmentData)
	}
	if !isFinite(rh) {
		return 0, fmt.Errorf("relative humidity %v: %w", rh, ErrMissingEnvironmentData)
	}

	wbgt := 0.7*wetBulbTemperature(t, rh) + 0.2*globeTemperature(t, rh) + 0.1*t
	if !isFinite(wbgt) {
		return 0, fmt.Errorf("reading T=%v rh=%v is outside the approximation: %w", t, rh, ErrMissingEnvironmentData)
	}
	return wbgt, nil
}

// wetBulbTemperature is Stull's arctangent approximation with rh in percent.
func wetBulbTemperature(t, rh float64) float64 {
	return t*math.Atan(0.151977*math.Sqrt(rh+8.313659)) +
		math.Atan(t+rh) -
		math.Atan(rh-1.676331) +
		0.00391838*math.Pow(rh, 1.5)*math.Atan(0.023101*rh) -
		4.686035
}

func globeTemperature(t, rh float64) float64 {
	return globeIntercept + t*globeTempCoef - globeWindTerm - (globeHumidityCoef * rh / 100)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
