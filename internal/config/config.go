package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/heat-risk-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Weather provider configuration.
	WeatherBaseURL   string
	WeatherTimeout   time.Duration
	WeatherCacheTTL  time.Duration
	WeatherCacheSize int

	// DatabaseURL is optional; submissions are not persisted when empty.
	DatabaseURL string

	CampStations domain.CampStations
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := parsePositiveDuration("WEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	weatherCacheTTL, err := parseDuration("WEATHER_CACHE_TTL", "1m")
	if err != nil {
		return nil, err
	}

	weatherCacheSize, err := strconv.Atoi(sharedcfg.EnvOrDefault("WEATHER_CACHE_SIZE", "256"))
	if err != nil || weatherCacheSize <= 0 {
		return nil, errors.New("invalid WEATHER_CACHE_SIZE")
	}

	stations := domain.DefaultCampStations()
	if v := os.Getenv("CAMP_STATIONS"); v != "" {
		stations, err = parseCampStations(v)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "soldier-submissions"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "heat-risk-assessments"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "heat-risk"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		WeatherBaseURL:   strings.TrimRight(sharedcfg.EnvOrDefault("WEATHER_BASE_URL", "https://api.data.gov.sg/v1/environment"), "/"),
		WeatherTimeout:   weatherTimeout,
		WeatherCacheTTL:  weatherCacheTTL,
		WeatherCacheSize: weatherCacheSize,

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		CampStations: stations,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.WeatherBaseURL == "" {
		return nil, errors.New("WEATHER_BASE_URL is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := parseDuration(key, def)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parseCampStations parses "Camp Name=STATION,Other Camp=STATION".
func parseCampStations(v string) (domain.CampStations, error) {
	stations := domain.CampStations{}
	for _, pair := range strings.Split(v, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		camp, station, ok := strings.Cut(pair, "=")
		camp, station = strings.TrimSpace(camp), strings.TrimSpace(station)
		if !ok || camp == "" || station == "" {
			return nil, fmt.Errorf("invalid CAMP_STATIONS entry %q", pair)
		}
		stations[camp] = station
	}
	if len(stations) == 0 {
		return nil, errors.New("CAMP_STATIONS has no entries")
	}
	return stations, nil
}
