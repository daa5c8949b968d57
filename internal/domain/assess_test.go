package domain

import (
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var assessedAt = time.Date(2026, time.June, 3, 14, 30, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(assessedAt))
	t.Cleanup(func() { SetClock(nil) })
}

func hotHumid() EnvironmentReading {
	return EnvironmentReading{StationID: "S24", AirTemperatureC: 31, RelativeHumidityPct: 70}
}

func TestAssess_ShortActivityIsLowRisk(t *testing.T) {
	freezeClock(t)

	result, err := Assess(AssessmentInput{
		Reading:     hotHumid(),
		Hydration:   HydrationDarkBrown,
		Uniform:     UniformFullBattleOrder,
		Intensity:   IntensityHeavy,
		Observation: WorkRestObservation{WorkMinutes: 10, RestMinutes: 1},
	})
	require.NoError(t, err)

	assert.InDelta(t, 31.219233, result.WBGTRaw, 1e-5)
	assert.InDelta(t, result.WBGTRaw+8, result.WBGTEffective, 1e-9)
	assert.Equal(t, CategoryBlack, result.Category)
	require.NotNil(t, result.MinActivityMinutes)
	assert.Equal(t, 15, *result.MinActivityMinutes)
	assert.True(t, result.ShortActivity)
	assert.False(t, result.RatioChecked)
	assert.Equal(t, RiskLow, result.Risk)
	assert.Equal(t, assessedAt, result.AssessedAt)
}

func TestAssess_HeavyBlackRatio(t *testing.T) {
	freezeClock(t)

	cases := []struct {
		name      string
		rest      float64
		compliant bool
		risk      RiskLevel
	}{
		{name: "exactly recommended", rest: 50, compliant: true, risk: RiskLow},
		{name: "above recommended", rest: 60, compliant: true, risk: RiskLow},
		{name: "below recommended", rest: 40, compliant: false, risk: RiskHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Assess(AssessmentInput{
				Reading:     hotHumid(),
				Hydration:   HydrationDarkBrown,
				Uniform:     UniformFullBattleOrder,
				Intensity:   IntensityHeavy,
				Observation: WorkRestObservation{WorkMinutes: 20, RestMinutes: tc.rest},
			})
			require.NoError(t, err)
			assert.False(t, result.ShortActivity)
			assert.True(t, result.RatioChecked)
			assert.Equal(t, tc.compliant, result.RatioCompliant)
			assert.Equal(t, tc.risk, result.Risk)
		})
	}
}

func TestAssess_ThresholdEqualToWorkChecksRatio(t *testing.T) {
	result, err := Assess(AssessmentInput{
		Reading:     hotHumid(),
		Hydration:   HydrationDarkBrown,
		Uniform:     UniformFullBattleOrder,
		Intensity:   IntensityLight,
		Observation: WorkRestObservation{WorkMinutes: 15, RestMinutes: 30},
	})
	require.NoError(t, err)
	assert.False(t, result.ShortActivity)
	assert.True(t, result.RatioChecked)
	assert.True(t, result.RatioCompliant)
}

func TestAssess_WhiteModerate(t *testing.T) {
	in := AssessmentInput{
		Reading:   EnvironmentReading{AirTemperatureC: 30, RelativeHumidityPct: 60},
		Hydration: HydrationClear,
		Uniform:   UniformPTKit,
		Intensity: IntensityModerate,
	}

	in.Observation = WorkRestObservation{WorkMinutes: 90, RestMinutes: 30}
	result, err := Assess(in)
	require.NoError(t, err)
	assert.Equal(t, CategoryWhite, result.Category)
	assert.Equal(t, 60, *result.MinActivityMinutes)
	assert.Equal(t, RiskHigh, result.Risk)

	in.Observation = WorkRestObservation{WorkMinutes: 90, RestMinutes: 45}
	result, err = Assess(in)
	require.NoError(t, err)
	assert.Equal(t, RiskLow, result.Risk)
}

func TestAssess_UnknownFactorsAddNothing(t *testing.T) {
	known, err := Assess(AssessmentInput{
		Reading:     hotHumid(),
		Hydration:   HydrationClear,
		Uniform:     UniformPTKit,
		Intensity:   IntensityLight,
		Observation: WorkRestObservation{WorkMinutes: 60, RestMinutes: 30},
	})
	require.NoError(t, err)

	unknown, err := Assess(AssessmentInput{
		Reading:     hotHumid(),
		Hydration:   "Amber",
		Uniform:     "Ceremonial",
		Intensity:   IntensityLight,
		Observation: WorkRestObservation{WorkMinutes: 60, RestMinutes: 30},
	})
	require.NoError(t, err)

	assert.Equal(t, known.WBGTEffective, unknown.WBGTEffective)
	assert.Equal(t, known.Category, unknown.Category)
}

func TestAssess_Errors(t *testing.T) {
	_, err := Assess(AssessmentInput{
		Reading:     EnvironmentReading{AirTemperatureC: math.NaN(), RelativeHumidityPct: 70},
		Intensity:   IntensityLight,
		Observation: WorkRestObservation{WorkMinutes: 10, RestMinutes: 10},
	})
	require.ErrorIs(t, err, ErrMissingEnvironmentData)

	_, err = Assess(AssessmentInput{
		Reading:     hotHumid(),
		Intensity:   IntensityLight,
		Observation: WorkRestObservation{WorkMinutes: 0, RestMinutes: 10},
	})
	require.ErrorIs(t, err, ErrInvalidObservation)

	_, err = Assess(AssessmentInput{
		Reading:     EnvironmentReading{AirTemperatureC: -10, RelativeHumidityPct: 0},
		Intensity:   IntensityLight,
		Observation: WorkRestObservation{WorkMinutes: 90, RestMinutes: 10},
	})
	require.ErrorIs(t, err, ErrUnclassifiableWBGT)

	_, err = Assess(AssessmentInput{
		Reading:     hotHumid(),
		Intensity:   "Extreme",
		Observation: WorkRestObservation{WorkMinutes: 90, RestMinutes: 10},
	})
	require.ErrorIs(t, err, ErrInvalidObservation)
}

func TestAssess_UnknownIntensityShortActivity(t *testing.T) {
	result, err := Assess(AssessmentInput{
		Reading:     hotHumid(),
		Intensity:   "Extreme",
		Observation: WorkRestObservation{WorkMinutes: 5, RestMinutes: 10},
	})
	require.NoError(t, err)
	assert.True(t, result.ShortActivity)
	assert.Equal(t, RiskLow, result.Risk)
}
