package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/couchcryptid/heat-risk-service/internal/domain"
	"github.com/couchcryptid/heat-risk-service/internal/observability"
	"github.com/sony/gobreaker/v2"
)

const (
	measurementTemperature = "air-temperature"
	measurementHumidity    = "relative-humidity"

	dateLayout = "2006-01-02"
)

// The provider partitions readings by Singapore calendar date.
var providerZone = time.FixedZone("SGT", 8*60*60)

func providerDate(t time.Time) string {
	return t.In(providerZone).Format(dateLayout)
}

// ProviderError describes a failed call to the weather provider.
type ProviderError struct {
	Measurement string
	StatusCode  int // 0 when no response was received
	Err         error

	transient bool
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("weather provider %s: status %d: %v", e.Measurement, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("weather provider %s: %v", e.Measurement, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Temporary reports whether the failure may succeed on retry.
func (e *ProviderError) Temporary() bool { return e.transient }

// Client implements domain.WeatherProvider against the data.gov.sg
// environment API. Each measurement request is bounded by the HTTP client
// timeout, retried once on transient failure, and guarded by a circuit breaker.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[measurementResponse]
	retryWait  time.Duration
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a weather client for the given API base URL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    newBreaker("weather-provider"),
		retryWait:  250 * time.Millisecond,
		metrics:    metrics,
		logger:     logger,
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker[measurementResponse] {
	return gobreaker.NewCircuitBreaker[measurementResponse](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// Only transient failures count against the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !isTransient(err)
		},
	})
}

// LatestReading fetches the latest air temperature and relative humidity for
// the station on the given date.
func (c *Client) LatestReading(ctx context.Context, stationID string, date time.Time) (domain.EnvironmentReading, error) {
	temp, observedAt, err := c.latestValue(ctx, measurementTemperature, stationID, date)
	if err != nil {
		return domain.EnvironmentReading{}, err
	}
	humidity, _, err := c.latestValue(ctx, measurementHumidity, stationID, date)
	if err != nil {
		return domain.EnvironmentReading{}, err
	}

	return domain.EnvironmentReading{
		StationID:           stationID,
		ObservedAt:          observedAt,
		AirTemperatureC:     temp,
		RelativeHumidityPct: humidity,
	}, nil
}

func (c *Client) latestValue(ctx context.Context, measurement, stationID string, date time.Time) (float64, time.Time, error) {
	day := providerDate(date)
	params := url.Values{"date": {day}}
	fullURL := fmt.Sprintf("%s/%s?%s", c.baseURL, measurement, params.Encode())

	resp, err := c.fetch(ctx, measurement, fullURL)
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues(measurement, "error").Inc()
		return 0, time.Time{}, err
	}

	value, observedAt, ok := resp.latestFor(stationID)
	if !ok {
		c.metrics.WeatherRequests.WithLabelValues(measurement, "missing").Inc()
		return 0, time.Time{}, fmt.Errorf("%s for station %s on %s: %w",
			measurement, stationID, day, domain.ErrMissingEnvironmentData)
	}

	c.metrics.WeatherRequests.WithLabelValues(measurement, "success").Inc()
	return value, observedAt, nil
}

// fetch performs the request with a single retry on transient failure.
func (c *Client) fetch(ctx context.Context, measurement, fullURL string) (measurementResponse, error) {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryWait), 1), ctx)

	var out measurementResponse
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		resp, err := c.breaker.Execute(func() (measurementResponse, error) {
			return c.doRequest(ctx, measurement, fullURL)
		})
		if err == nil {
			out = resp
			return nil
		}
		// An open breaker is not retried here but stays temporary for callers.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(&ProviderError{Measurement: measurement, Err: err, transient: true})
		}
		if !isTransient(err) {
			return backoff.Permanent(err)
		}
		c.logger.Warn("weather request failed",
			"measurement", measurement,
			"attempt", attempt,
			"error", err,
		)
		return err
	}, policy)
	if err != nil {
		return measurementResponse{}, err
	}
	return out, nil
}

func (c *Client) doRequest(ctx context.Context, measurement, fullURL string) (measurementResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return measurementResponse{}, &ProviderError{Measurement: measurement, Err: fmt.Errorf("create request: %w", err)}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.WeatherAPIDuration.WithLabelValues(measurement).Observe(time.Since(start).Seconds())
	if err != nil {
		// Cancellation by the caller is not worth a retry.
		return measurementResponse{}, &ProviderError{Measurement: measurement, Err: err, transient: ctx.Err() == nil}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return measurementResponse{}, &ProviderError{
			Measurement: measurement,
			StatusCode:  resp.StatusCode,
			Err:         errors.New(strings.TrimSpace(string(body))),
			transient:   resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}

	var out measurementResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return measurementResponse{}, &ProviderError{Measurement: measurement, Err: fmt.Errorf("decode response: %w", err)}
	}
	return out, nil
}

func isTransient(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Temporary()
}

// data.gov.sg environment API response types.

type measurementResponse struct {
	Items []item `json:"items"`
}

type item struct {
	Timestamp time.Time `json:"timestamp"`
	Readings  []reading `json:"readings"`
}

type reading struct {
	StationID string   `json:"station_id"`
	Value     *float64 `json:"value"`
}

// latestFor returns the station's value from the first item that reports it.
func (r measurementResponse) latestFor(stationID string) (float64, time.Time, bool) {
	for _, it := range r.Items {
		for _, rd := range it.Readings {
			if rd.StationID == stationID && rd.Value != nil {
				return *rd.Value, it.Timestamp, true
			}
		}
	}
	return 0, time.Time{}, false
}
