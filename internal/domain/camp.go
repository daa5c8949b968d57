package domain

import (
	"fmt"
	"maps"
	"slices"
)

// CampStations maps camp names to weather station identifiers.
type CampStations map[string]string

// DefaultCampStations returns the stations serving the supported camps.
func DefaultCampStations() CampStations {
	return CampStations{
		"Changi Camp":   "S24",
		"Clementi Camp": "S50",
	}
}

// StationFor resolves the station serving a camp.
func (s CampStations) StationFor(camp string) (string, error) {
	station, ok := s[camp]
	if !ok || station == "" {
		return "", fmt.Errorf("camp %q: %w", camp, ErrUnknownCamp)
	}
	return station, nil
}

// Camps returns the known camp names in sorted order.
func (s CampStations) Camps() []string {
	return slices.Sorted(maps.Keys(s))
}

// CampEntry is one soldier's latest submission assessed under the camp reading.
type CampEntry struct {
	Submission      Submission        `json:"submission"`
	HydrationOffset float64           `json:"hydration_offset"`
	UniformOffset   float64           `json:"uniform_offset"`
	Result          *AssessmentResult `json:"result,omitempty"`
	Error           string            `json:"error,omitempty"`
}

// CampSummary aggregates the latest submission of every soldier at a camp.
type CampSummary struct {
	Camp           string             `json:"camp"`
	Reading        EnvironmentReading `json:"reading"`
	WBGT           float64            `json:"wbgt"`
	Category       HeatRiskCategory   `json:"category"`
	TotalSoldiers  int                `json:"total_soldiers"`
	HighRiskCount  int                `json:"high_risk_count"`
	LowRiskCount   int                `json:"low_risk_count"`
	FailedCount    int                `json:"failed_count"`
	AvgWorkMinutes float64            `json:"avg_work_minutes"`
	AvgRestMinutes float64            `json:"avg_rest_minutes"`
	AvgRatio       float64            `json:"avg_ratio"`
	Entries        []CampEntry        `json:"entries"`
}

// SummarizeCamp assesses each submission under the camp's reading and
// aggregates the outcomes. Submissions that cannot be assessed are listed with
// their error and left out of the risk counts. An unusable reading fails the
// whole summary.
func SummarizeCamp(camp string, reading EnvironmentReading, subs []Submission) (CampSummary, error) {
	wbgt, err := EstimateWBGT(reading)
	if err != nil {
		return CampSummary{}, fmt.Errorf("camp %q: %w", camp, err)
	}

	summary := CampSummary{
		Camp:          camp,
		Reading:       reading,
		WBGT:          wbgt,
		Category:      ClassifyHeatRisk(wbgt),
		TotalSoldiers: len(subs),
		Entries:       make([]CampEntry, 0, len(subs)),
	}

	hydrations := make([]HydrationIndicator, len(subs))
	uniforms := make([]UniformLoad, len(subs))
	for i, sub := range subs {
		hydrations[i], uniforms[i] = sub.Hydration, sub.Uniform
	}
	hydrationOffsets, uniformOffsets := HydrationOffsets(hydrations), UniformOffsets(uniforms)

	var work, rest, ratio float64
	var ratios int
	for i, sub := range subs {
		work += sub.WorkMinutes
		rest += sub.RestMinutes
		if r, err := sub.Observation().Ratio(); err == nil {
			ratio += r
			ratios++
		}

		entry := CampEntry{
			Submission:      sub,
			HydrationOffset: hydrationOffsets[i],
			UniformOffset:   uniformOffsets[i],
		}
		result, err := Assess(sub.Input(reading))
		if err != nil {
			entry.Error = err.Error()
			summary.FailedCount++
			summary.Entries = append(summary.Entries, entry)
			continue
		}
		entry.Result = &result
		if result.Risk == RiskHigh {
			summary.HighRiskCount++
		} else {
			summary.LowRiskCount++
		}
		summary.Entries = append(summary.Entries, entry)
	}

	if n := len(subs); n > 0 {
		summary.AvgWorkMinutes = work / float64(n)
		summary.AvgRestMinutes = rest / float64(n)
	}
	if ratios > 0 {
		summary.AvgRatio = ratio / float64(ratios)
	}
	return summary, nil
}
