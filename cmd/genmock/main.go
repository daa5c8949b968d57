// Command genmock generates the mock submission fixture used by the pipeline
// and integration test suites. Optionally it also writes the assessments the
// engine produces for those submissions under a fixed reading, using the
// actual domain package so the output matches real pipeline behaviour.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/submissions.json \
//	  -assessed-out /tmp/assessed.json -temp 31 -humidity 70
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/couchcryptid/heat-risk-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var baseTime = time.Date(2024, time.June, 3, 6, 0, 0, 0, time.UTC)

var (
	camps       = []string{"Changi Camp", "Clementi Camp"}
	hydrations  = []domain.HydrationIndicator{domain.HydrationClear, domain.HydrationPaleYellow, domain.HydrationDarkYellow, domain.HydrationDarkBrown}
	uniforms    = []domain.UniformLoad{domain.UniformPTKit, domain.UniformFullBattleOrder}
	intensities = []domain.ActivityIntensity{domain.IntensityLight, domain.IntensityModerate, domain.IntensityHeavy}

	// work/rest minutes, cycled across submissions
	bouts = [][2]float64{{10, 5}, {15, 15}, {30, 10}, {45, 30}, {60, 15}, {60, 60}}
)

// soldiersPerCamp bounds how many distinct soldiers report at each camp, so
// that soldiers submit more than once and camp summaries see repeats.
const soldiersPerCamp = 6

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/mock/submissions.json", "output path for the submission fixture")
	assessedOut := flag.String("assessed-out", "", "optional output path for assessed submissions")
	temp := flag.Float64("temp", 31, "air temperature (°C) for -assessed-out")
	humidity := flag.Float64("humidity", 70, "relative humidity (%) for -assessed-out")
	flag.Parse()

	subs := generate()
	if err := writeJSON(*out, subs); err != nil {
		return fmt.Errorf("writing submission fixture: %w", err)
	}
	log.Printf("wrote %d submissions: %s", len(subs), *out)

	if *assessedOut == "" {
		return nil
	}

	// Fixed clock for reproducible AssessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(baseTime.Add(6 * time.Hour)))
	defer domain.SetClock(nil)

	assessed := make([]domain.AssessedSubmission, 0, len(subs))
	for _, sub := range subs {
		station, err := domain.DefaultCampStations().StationFor(sub.Camp)
		if err != nil {
			return err
		}
		reading := domain.EnvironmentReading{StationID: station, AirTemperatureC: *temp, RelativeHumidityPct: *humidity}
		result, err := domain.Assess(sub.Input(reading))
		if err != nil {
			return fmt.Errorf("assess %s: %w", sub.ID, err)
		}
		assessed = append(assessed, domain.AssessedSubmission{Submission: sub, Reading: reading, Result: result})
	}
	if err := writeJSON(*assessedOut, assessed); err != nil {
		return fmt.Errorf("writing assessed fixture: %w", err)
	}
	log.Printf("wrote %d assessments: %s", len(assessed), *assessedOut)

	printStats(assessed)
	return nil
}

// generate enumerates every camp, hydration, uniform and intensity
// combination. IDs are name-based UUIDs so the fixture is reproducible.
func generate() []domain.Submission {
	subs := make([]domain.Submission, 0, len(camps)*len(hydrations)*len(uniforms)*len(intensities))
	i := 0
	for c, camp := range camps {
		for _, h := range hydrations {
			for _, u := range uniforms {
				for _, in := range intensities {
					soldier := c*soldiersPerCamp + i%soldiersPerCamp + 1
					bout := bouts[i%len(bouts)]
					subs = append(subs, domain.Submission{
						ID:          uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "submission-%d", i+1)).String(),
						SoldierID:   fmt.Sprintf("S%04d", 1000+soldier),
						PatientID:   fmt.Sprintf("P-%03d", soldier),
						Camp:        camp,
						Hydration:   h,
						Uniform:     u,
						Intensity:   in,
						WorkMinutes: bout[0],
						RestMinutes: bout[1],
						Medication:  i%7 == 0,
						SubmittedAt: baseTime.Add(time.Duration(i) * 5 * time.Minute),
					})
					i++
				}
			}
		}
	}
	return subs
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(assessed []domain.AssessedSubmission) {
	categories := map[domain.HeatRiskCategory]int{}
	risks := map[domain.RiskLevel]int{}
	short := 0
	for _, a := range assessed {
		categories[a.Result.Category]++
		risks[a.Result.Risk]++
		if a.Result.ShortActivity {
			short++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(assessed))
	keys := make([]domain.HeatRiskCategory, 0, len(categories))
	for k := range categories {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Printf("Category %s: %d\n", k, categories[k])
	}
	fmt.Printf("Risk: low=%d, high=%d\n", risks[domain.RiskLow], risks[domain.RiskHigh])
	fmt.Printf("Short activity: %d\n", short)
}
