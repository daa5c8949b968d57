package domain

import "fmt"

// Assess runs one end-to-end evaluation: it estimates the WBGT from the
// reading, applies the hydration and uniform offsets, classifies the result
// and checks work/rest compliance.
//
// A work bout shorter than the category's minimum continuous activity is
// reported as low risk without consulting the ratio tables. Errors from WBGT
// estimation and ratio evaluation are returned as is; no partial result is
// produced.
func Assess(in AssessmentInput) (AssessmentResult, error) {
	raw, err := EstimateWBGT(in.Reading)
	if err != nil {
		return AssessmentResult{}, fmt.Errorf("estimate wbgt: %w", err)
	}

	ratio, err := in.Observation.Ratio()
	if err != nil {
		return AssessmentResult{}, err
	}

	effective := EffectiveWBGT(raw, in.Hydration, in.Uniform)
	result := AssessmentResult{
		WBGTRaw:       raw,
		WBGTEffective: effective,
		Category:      ClassifyHeatRisk(effective),
		AssessedAt:    clock.Now(),
	}

	if minutes, ok := MinActivityMinutes(effective); ok {
		result.MinActivityMinutes = &minutes
		if float64(minutes) > in.Observation.WorkMinutes {
			result.ShortActivity = true
			result.Risk = RiskLow
			return result, nil
		}
	}

	compliant, err := IsRatioWithinRecommended(in.Intensity, effective, ratio)
	if err != nil {
		return AssessmentResult{}, err
	}
	result.RatioChecked = true
	result.RatioCompliant = compliant
	result.Risk = RiskHigh
	if compliant {
		result.Risk = RiskLow
	}
	return result, nil
}
