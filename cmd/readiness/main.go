package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	httpadapter "github.com/couchcryptid/readiness-map-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/readiness-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/readiness-map-service/internal/adapter/mapbox"
	"github.com/couchcryptid/readiness-map-service/internal/adapter/plot"
	"github.com/couchcryptid/readiness-map-service/internal/adapter/source"
	"github.com/couchcryptid/readiness-map-service/internal/config"
	"github.com/couchcryptid/readiness-map-service/internal/dataset"
	"github.com/couchcryptid/readiness-map-service/internal/domain"
	"github.com/couchcryptid/readiness-map-service/internal/insight"
	"github.com/couchcryptid/readiness-map-service/internal/observability"
)

const publishTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	src, err := source.Open(cfg.DataPath, source.Options{Sheet: cfg.DataSheet})
	if err != nil {
		logger.Error("failed to open data source", "path", cfg.DataPath, "error", err)
		os.Exit(1)
	}

	ds := dataset.New(src, logger, metrics)
	svc := insight.NewService(ds, insight.Options{
		Thresholds: domain.Thresholds{High: cfg.HighThreshold, Low: cfg.LowThreshold},
		Zoom:       cfg.MapZoom,
		Pitch:      cfg.MapPitch,
	})

	// Map rendering is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var renderer httpadapter.MapRenderer
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxStyle, cfg.MapboxTimeout, metrics, logger)
		renderer = mapbox.NewCachedRenderer(client, cfg.MapboxCacheSize, metrics)
		metrics.MapboxEnabled.Set(1)
		logger.Info("mapbox rendering enabled", "style", cfg.MapboxStyle, "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		renderer = plot.NewRenderer(metrics)
		logger.Info("mapbox rendering disabled, using offline plot renderer")
	}

	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, metrics, logger)
		logger.Info("kafka report publishing enabled", "topic", cfg.KafkaReportTopic)
	}

	// The report is published once, after the first successful load, whether
	// the warm-up or an HTTP request triggered it.
	var publishing sync.WaitGroup
	if publisher != nil {
		publish := svc.PublishOnLoad(publisher, logger)
		ds.OnLoad(func(ctx context.Context, t *domain.Table) {
			publishing.Add(1)
			go func() {
				defer publishing.Done()
				ctx, cancel := context.WithTimeout(ctx, publishTimeout)
				defer cancel()
				publish(ctx, t)
			}()
		})
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ds, svc, renderer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Warm the dataset so /readyz flips without waiting for the first request.
	// A failure here is not fatal; the next request retries the load.
	go func() {
		report, err := svc.Report(ctx)
		if err != nil {
			logger.Warn("initial insight report unavailable", "error", err)
			return
		}
		for _, line := range report.Lines() {
			logger.Info("insight", "line", line)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		publishing.Wait()
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
