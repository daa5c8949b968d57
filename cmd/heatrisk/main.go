package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/heat-risk-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/heat-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/heat-risk-service/internal/adapter/postgres"
	"github.com/couchcryptid/heat-risk-service/internal/adapter/weather"
	"github.com/couchcryptid/heat-risk-service/internal/assessment"
	"github.com/couchcryptid/heat-risk-service/internal/config"
	"github.com/couchcryptid/heat-risk-service/internal/domain"
	"github.com/couchcryptid/heat-risk-service/internal/observability"
	"github.com/couchcryptid/heat-risk-service/internal/pipeline"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := weather.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimeout, metrics, logger)
	provider := weather.NewCachedProvider(client, cfg.WeatherCacheSize, cfg.WeatherCacheTTL, metrics)
	logger.Info("weather provider configured",
		"base_url", cfg.WeatherBaseURL,
		"cache_size", cfg.WeatherCacheSize,
		"cache_ttl", cfg.WeatherCacheTTL,
	)

	writer := kafkaadapter.NewWriter(cfg, logger)
	loaders := pipeline.MultiLoader{writer}

	// Persistence is feature-flagged via DATABASE_URL.
	var (
		medications domain.MedicationChecker
		store       assessment.SubmissionStore
		pool        *pgxpool.Pool
	)
	if cfg.DatabaseURL != "" {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		pg := postgres.NewStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure database schema", "error", err)
			pool.Close()
			os.Exit(1)
		}
		medications, store = pg, pg
		loaders = pipeline.MultiLoader{writer, pg}
		metrics.StoreEnabled.Set(1)
		logger.Info("submission store enabled")
	} else {
		logger.Info("submission store disabled")
	}

	logger.Info("camp stations configured", "camps", cfg.CampStations.Camps())

	svc := assessment.NewService(cfg.CampStations, provider, medications, store, metrics, logger)

	reader := kafkaadapter.NewReader(cfg, logger)
	transformer := pipeline.NewTransformer(svc, logger)

	p := pipeline.New(reader, transformer, loaders, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, svc, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start assessment pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if pool != nil {
		pool.Close()
	}

	logger.Info("shutdown complete")
}
