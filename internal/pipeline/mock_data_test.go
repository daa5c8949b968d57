package pipeline_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/heat-risk-service/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionTransformer_WithMockJSONData(t *testing.T) {
	transformer := newTestTransformer(t)
	subs := readMockSubmissions(t)
	require.Len(t, subs, 48)

	risks := map[domain.RiskLevel]int{}
	categories := map[domain.HeatRiskCategory]int{}
	short := 0

	for _, sub := range subs {
		raw := submissionEvent(t, sub.ID, sub)
		out, err := transformer.Transform(context.Background(), raw)
		require.NoError(t, err, sub.ID)

		station, err := domain.DefaultCampStations().StationFor(sub.Camp)
		require.NoError(t, err)
		reading := domain.EnvironmentReading{StationID: station, AirTemperatureC: 31, RelativeHumidityPct: 70}
		want, err := domain.Assess(sub.Input(reading))
		require.NoError(t, err)

		if diff := cmp.Diff(want, out.Result); diff != "" {
			t.Fatalf("%s: result mismatch (-want +got):\n%s", sub.ID, diff)
		}
		assert.Equal(t, sub.ID, out.Submission.ID)
		assert.Equal(t, reading, out.Reading)

		risks[out.Result.Risk]++
		categories[out.Result.Category]++
		if out.Result.ShortActivity {
			short++
		}
	}

	assert.Equal(t, map[domain.HeatRiskCategory]int{domain.CategoryYellow: 12, domain.CategoryBlack: 36}, categories)
	assert.Equal(t, 12, risks[domain.RiskLow])
	assert.Equal(t, 36, risks[domain.RiskHigh])
	assert.Equal(t, 12, short)
}

func readMockSubmissions(t *testing.T) []domain.Submission {
	t.Helper()

	path := filepath.Join("..", "..", "data", "mock", "submissions.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var subs []domain.Submission
	require.NoError(t, json.Unmarshal(data, &subs))
	return subs
}
