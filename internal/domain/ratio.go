package domain

import (
	"fmt"
	"math"
)

// recommendedRatios holds the minimum rest:work ratio per activity intensity,
// keyed by effective WBGT. Moderate and Heavy declare 29.9 as both the upper
// bound of their first row and the lower bound of their second; the first row
// wins there.
var recommendedRatios = map[ActivityIntensity]rangeTable[float64]{
	IntensityLight: {
		{Min: 0, Max: 29.9, Value: 0.25},
		{Min: 30.0, Max: 30.9, Value: 0.33},
		{Min: 31.0, Max: 31.9, Value: 0.5},
		{Min: 32.0, Max: 32.9, Value: 1.0},
		{Min: 33.0, Max: math.Inf(1), Value: 2.0},
	},
	IntensityModerate: {
		{Min: 0, Max: 29.9, Value: 0.5},
		{Min: 29.9, Max: 30.9, Value: 0.58},
		{Min: 31.0, Max: 31.9, Value: 0.75},
		{Min: 32.0, Max: 32.9, Value: 1.25},
		{Min: 33.0, Max: math.Inf(1), Value: 2.25},
	},
	IntensityHeavy: {
		{Min: 0, Max: 29.9, Value: 0.75},
		{Min: 29.9, Max: 30.9, Value: 0.83},
		{Min: 31.0, Max: 31.9, Value: 1.0},
		{Min: 32.0, Max: 32.9, Value: 1.5},
		{Min: 33.0, Max: math.Inf(1), Value: 2.5},
	},
}

// Ratio returns rest minutes divided by work minutes.
func (o WorkRestObservation) Ratio() (float64, error) {
	if !(o.WorkMinutes > 0) || math.IsInf(o.WorkMinutes, 0) {
		return 0, fmt.Errorf("work minutes %v must be positive: %w", o.WorkMinutes, ErrInvalidObservation)
	}
	if !(o.RestMinutes > 0) || math.IsInf(o.RestMinutes, 0) {
		return 0, fmt.Errorf("rest minutes %v must be positive: %w", o.RestMinutes, ErrInvalidObservation)
	}
	return o.RestMinutes / o.WorkMinutes, nil
}

// RecommendedRatio returns the minimum rest:work ratio for the intensity at
// the given effective WBGT.
func RecommendedRatio(intensity ActivityIntensity, wbgt float64) (float64, error) {
	table, ok := recommendedRatios[intensity]
	if !ok {
		return 0, fmt.Errorf("activity intensity %q: %w", intensity, ErrInvalidObservation)
	}
	recommended, ok := table.lookup(wbgt)
	if !ok {
		return 0, fmt.Errorf("wbgt %v for %s activity: %w", wbgt, intensity, ErrUnclassifiableWBGT)
	}
	return recommended, nil
}

// IsRatioWithinRecommended reports whether the observed rest:work ratio meets
// the recommended minimum for the intensity at the given effective WBGT.
func IsRatioWithinRecommended(intensity ActivityIntensity, wbgt, observed float64) (bool, error) {
	if math.IsNaN(observed) {
		return false, fmt.Errorf("observed ratio is NaN: %w", ErrInvalidObservation)
	}
	recommended, err := RecommendedRatio(intensity, wbgt)
	if err != nil {
		return false, err
	}
	return observed >= recommended, nil
}
