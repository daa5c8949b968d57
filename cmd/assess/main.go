// Command assess evaluates a single heat-risk assessment from the command
// line. The reading is either given directly with -temp and -humidity or,
// with -live, fetched from the weather provider for the camp's station.
//
// Usage:
//
//	go run ./cmd/assess -temp 31 -humidity 70 \
//	  -hydration "Pale Yellow" -uniform "Full Battle Order" \
//	  -intensity Moderate -work 45 -rest 30
//
//	go run ./cmd/assess -live -camp "Changi Camp" -intensity Heavy -work 30 -rest 10
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/heat-risk-service/internal/adapter/weather"
	"github.com/couchcryptid/heat-risk-service/internal/domain"
	"github.com/couchcryptid/heat-risk-service/internal/observability"
)

const defaultWeatherURL = "https://api.data.gov.sg/v1/environment"

type options struct {
	temp, humidity float64
	hydration      string
	uniform        string
	intensity      string
	work, rest     float64

	live       bool
	camp       string
	weatherURL string
	timeout    time.Duration
	asJSON     bool
}

func main() {
	var o options
	flag.Float64Var(&o.temp, "temp", math.NaN(), "air temperature (°C), required without -live")
	flag.Float64Var(&o.humidity, "humidity", math.NaN(), "relative humidity (%), required without -live")
	flag.StringVar(&o.hydration, "hydration", string(domain.HydrationClear), "urine colour: Clear, Pale Yellow, Dark Yellow, Dark Brown")
	flag.StringVar(&o.uniform, "uniform", string(domain.UniformPTKit), "uniform: PT Kit, Full Battle Order")
	flag.StringVar(&o.intensity, "intensity", string(domain.IntensityModerate), "activity intensity: Light, Moderate, Heavy")
	flag.Float64Var(&o.work, "work", 0, "work bout (minutes)")
	flag.Float64Var(&o.rest, "rest", 0, "rest bout (minutes)")
	flag.BoolVar(&o.live, "live", false, "fetch the reading for -camp from the weather provider")
	flag.StringVar(&o.camp, "camp", "", "camp name, required with -live")
	flag.StringVar(&o.weatherURL, "weather-url", defaultWeatherURL, "weather provider base URL")
	flag.DurationVar(&o.timeout, "timeout", 5*time.Second, "weather provider timeout")
	flag.BoolVar(&o.asJSON, "json", false, "print the result as JSON")
	flag.Parse()

	if err := run(context.Background(), os.Stdout, o); err != nil {
		fmt.Fprintf(os.Stderr, "assess: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, o options) error {
	reading := domain.EnvironmentReading{AirTemperatureC: o.temp, RelativeHumidityPct: o.humidity}
	if !o.live && (math.IsNaN(o.temp) || math.IsNaN(o.humidity)) {
		return fmt.Errorf("-temp and -humidity are required without -live: %w", domain.ErrMissingEnvironmentData)
	}
	if o.live {
		r, err := liveReading(ctx, o)
		if err != nil {
			return err
		}
		reading = r
	}

	result, err := domain.Assess(domain.AssessmentInput{
		Reading:     reading,
		Hydration:   domain.HydrationIndicator(o.hydration),
		Uniform:     domain.UniformLoad(o.uniform),
		Intensity:   domain.ActivityIntensity(o.intensity),
		Observation: domain.WorkRestObservation{WorkMinutes: o.work, RestMinutes: o.rest},
	})
	if err != nil {
		return err
	}

	if o.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Reading domain.EnvironmentReading `json:"reading"`
			Result  domain.AssessmentResult   `json:"result"`
		}{reading, result})
	}
	printResult(out, reading, result)
	return nil
}

func liveReading(ctx context.Context, o options) (domain.EnvironmentReading, error) {
	station, err := domain.DefaultCampStations().StationFor(o.camp)
	if err != nil {
		return domain.EnvironmentReading{}, err
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// Unregistered: the CLI exposes no metrics endpoint.
	client := weather.NewClient(o.weatherURL, o.timeout, observability.NewMetricsForTesting(), logger)
	return client.LatestReading(ctx, station, time.Now())
}

func printResult(out io.Writer, reading domain.EnvironmentReading, r domain.AssessmentResult) {
	if reading.StationID != "" {
		fmt.Fprintf(out, "Station:         %s\n", reading.StationID)
	}
	fmt.Fprintf(out, "Reading:         %.1f°C, %.0f%% RH\n", reading.AirTemperatureC, reading.RelativeHumidityPct)
	fmt.Fprintf(out, "WBGT (raw):      %.2f\n", r.WBGTRaw)
	fmt.Fprintf(out, "WBGT (adjusted): %.2f\n", r.WBGTEffective)
	fmt.Fprintf(out, "Category:        %s\n", r.Category)
	if r.MinActivityMinutes != nil {
		fmt.Fprintf(out, "Min activity:    %d min\n", *r.MinActivityMinutes)
	}
	switch {
	case r.ShortActivity:
		fmt.Fprintln(out, "Work/rest ratio: not evaluated (short activity)")
	case r.RatioChecked && r.RatioCompliant:
		fmt.Fprintln(out, "Work/rest ratio: compliant")
	case r.RatioChecked:
		fmt.Fprintln(out, "Work/rest ratio: exceeds recommendation")
	}
	fmt.Fprintf(out, "Risk:            %s\n", r.Risk)
}
