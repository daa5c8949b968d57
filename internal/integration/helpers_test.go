//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/heat-risk-service/internal/adapter/weather"
	"github.com/couchcryptid/heat-risk-service/internal/assessment"
	"github.com/couchcryptid/heat-risk-service/internal/domain"
	"github.com/couchcryptid/heat-risk-service/internal/observability"
	"github.com/couchcryptid/heat-risk-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const kafkaImage = "confluentinc/confluent-local:7.5.0"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("heat-risk-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// loadMockData reads the submission fixture shared with the pipeline tests.
func loadMockData(t *testing.T) []domain.Submission {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "..", "data", "mock", "submissions.json"))
	require.NoError(t, err)

	var subs []domain.Submission
	require.NoError(t, json.Unmarshal(data, &subs))
	return subs
}

// startWeather serves a fixed temperature and humidity for every station the
// camps map to.
func startWeather(t *testing.T, temp, humidity float64) string {
	t.Helper()

	ts := time.Date(2024, time.June, 3, 6, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value := temp
		if r.URL.Path == "/relative-humidity" {
			value = humidity
		}
		readings := []map[string]any{}
		for _, station := range domain.DefaultCampStations() {
			readings = append(readings, map[string]any{"station_id": station, "value": value})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{"timestamp": ts, "readings": readings}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

// newTransformer wires a transformer against the live weather client.
func newTransformer(weatherURL string, metrics *observability.Metrics) *pipeline.SubmissionTransformer {
	logger := discardLogger()
	client := weather.NewClient(weatherURL, 5*time.Second, metrics, logger)
	provider := weather.NewCachedProvider(client, 16, time.Minute, metrics)
	svc := assessment.NewService(domain.DefaultCampStations(), provider, nil, nil, metrics, logger)
	return pipeline.NewTransformer(svc, logger)
}
