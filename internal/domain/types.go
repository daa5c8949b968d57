package domain

import (
	"fmt"
	"time"
)

// HydrationIndicator is the self-reported urine colour.
type HydrationIndicator string

const (
	HydrationClear      HydrationIndicator = "Clear"
	HydrationPaleYellow HydrationIndicator = "Pale Yellow"
	HydrationDarkBrown  HydrationIndicator = "Dark Brown"
	HydrationDarkYellow HydrationIndicator = "Dark Yellow"
)

// UniformLoad is the kit worn during the activity.
type UniformLoad string

const (
	UniformPTKit           UniformLoad = "PT Kit"
	UniformFullBattleOrder UniformLoad = "Full Battle Order"
)

// ActivityIntensity selects the recommended work/rest table.
type ActivityIntensity string

const (
	IntensityLight    ActivityIntensity = "Light"
	IntensityModerate ActivityIntensity = "Moderate"
	IntensityHeavy    ActivityIntensity = "Heavy"
)

// RiskLevel is the binary outcome reported to soldiers and commanders.
type RiskLevel string

const (
	RiskLow  RiskLevel = "Low"
	RiskHigh RiskLevel = "High"
)

// HeatRiskCategory is the colour-coded heat category. Defined categories are
// ordered White < Green < Yellow < Red < Black.
type HeatRiskCategory int

const (
	CategoryUndefined HeatRiskCategory = iota
	CategoryWhite
	CategoryGreen
	CategoryYellow
	CategoryRed
	CategoryBlack
)

var categoryNames = [...]string{
	CategoryUndefined: "Undefined",
	CategoryWhite:     "White",
	CategoryGreen:     "Green",
	CategoryYellow:    "Yellow",
	CategoryRed:       "Red",
	CategoryBlack:     "Black",
}

func (c HeatRiskCategory) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return categoryNames[CategoryUndefined]
	}
	return categoryNames[c]
}

// MarshalText encodes the category as its colour name.
func (c HeatRiskCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a colour name. Unknown names are rejected.
func (c *HeatRiskCategory) UnmarshalText(text []byte) error {
	for i, name := range categoryNames {
		if name == string(text) {
			*c = HeatRiskCategory(i)
			return nil
		}
	}
	return fmt.Errorf("unknown heat risk category %q", text)
}

// EnvironmentReading is a station's temperature and humidity at a point in time.
type EnvironmentReading struct {
	StationID           string    `json:"station_id,omitempty"`
	ObservedAt          time.Time `json:"observed_at,omitzero"`
	AirTemperatureC     float64   `json:"air_temperature_c"`
	RelativeHumidityPct float64   `json:"relative_humidity_pct"`
}

// WorkRestObservation is one activity bout as reported by a soldier.
type WorkRestObservation struct {
	WorkMinutes float64 `json:"work_minutes"`
	RestMinutes float64 `json:"rest_minutes"`
}

// AssessmentInput carries everything the orchestrator needs for one evaluation.
type AssessmentInput struct {
	Reading     EnvironmentReading
	Hydration   HydrationIndicator
	Uniform     UniformLoad
	Intensity   ActivityIntensity
	Observation WorkRestObservation
}

// AssessmentResult is the outcome of one evaluation.
type AssessmentResult struct {
	WBGTRaw       float64          `json:"wbgt_raw"`
	WBGTEffective float64          `json:"wbgt_effective"`
	Category      HeatRiskCategory `json:"category"`

	// MinActivityMinutes is nil when the effective WBGT falls outside every band.
	MinActivityMinutes *int `json:"min_activity_minutes"`

	// ShortActivity is set when the work bout was shorter than
	// MinActivityMinutes; the ratio is then not evaluated.
	ShortActivity  bool      `json:"short_activity"`
	RatioChecked   bool      `json:"ratio_checked"`
	RatioCompliant bool      `json:"ratio_compliant"`
	Risk           RiskLevel `json:"risk"`
	AssessedAt     time.Time `json:"assessed_at"`
}

// Submission is a soldier's self-assessment as received from the client.
type Submission struct {
	ID          string             `json:"id"`
	SoldierID   string             `json:"soldier_id" validate:"required"`
	PatientID   string             `json:"patient_id,omitempty"`
	Camp        string             `json:"camp" validate:"required"`
	Hydration   HydrationIndicator `json:"hydration"`
	Uniform     UniformLoad        `json:"uniform"`
	Intensity   ActivityIntensity  `json:"intensity" validate:"required,oneof=Light Moderate Heavy"`
	WorkMinutes float64            `json:"work_minutes" validate:"gt=0,lte=720"`
	RestMinutes float64            `json:"rest_minutes" validate:"gt=0,lte=720"`
	Medication  bool               `json:"medication"`
	SubmittedAt time.Time          `json:"submitted_at"`
}

// Observation returns the work/rest bout of the submission.
func (s Submission) Observation() WorkRestObservation {
	return WorkRestObservation{WorkMinutes: s.WorkMinutes, RestMinutes: s.RestMinutes}
}

// Input builds the orchestrator input for the submission under the given reading.
func (s Submission) Input(reading EnvironmentReading) AssessmentInput {
	return AssessmentInput{
		Reading:     reading,
		Hydration:   s.Hydration,
		Uniform:     s.Uniform,
		Intensity:   s.Intensity,
		Observation: s.Observation(),
	}
}

// AssessedSubmission pairs a submission with the reading and result it was assessed under.
type AssessedSubmission struct {
	Submission Submission         `json:"submission"`
	Reading    EnvironmentReading `json:"reading"`
	Result     AssessmentResult   `json:"result"`
}
