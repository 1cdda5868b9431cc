package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/neo-risk-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/neo-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/neo-risk-service/internal/adapter/neows"
	"github.com/couchcryptid/neo-risk-service/internal/config"
	"github.com/couchcryptid/neo-risk-service/internal/observability"
	"github.com/couchcryptid/neo-risk-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := neows.NewClient(cfg, metrics, logger)
	repo := neows.NewCachedRepository(client, cfg.NeoWsCacheSize, metrics)
	logger.Info("neows client configured",
		"base_url", cfg.NeoWsBaseURL,
		"rate_limit", cfg.NeoWsRateLimit,
		"cache_size", cfg.NeoWsCacheSize,
	)

	// Publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("assessment publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("assessment publishing disabled")
	}

	refresher := pipeline.New(repo, publisher, logger, metrics, cfg.FeedWindowDays, cfg.RefreshInterval)

	srv := httpadapter.NewServer(cfg.HTTPAddr, refresher, repo, httpadapter.Options{
		WindowDays: cfg.FeedWindowDays,
		AuthToken:  cfg.AuthToken,
	}, logger)
	if cfg.AuthToken == "" {
		logger.Warn("AUTH_TOKEN not set, API routes are unauthenticated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return refresher.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	exitCode := 0
	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
		exitCode = 1
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	stop()
	os.Exit(exitCode)
}
