package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/anomaly-map-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/anomaly-map-etl/internal/adapter/kafka"
	"github.com/couchcryptid/anomaly-map-etl/internal/config"
	"github.com/couchcryptid/anomaly-map-etl/internal/dashboard"
	"github.com/couchcryptid/anomaly-map-etl/internal/domain"
	"github.com/couchcryptid/anomaly-map-etl/internal/observability"
	"github.com/couchcryptid/anomaly-map-etl/internal/pipeline"
	"github.com/couchcryptid/anomaly-map-etl/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	projector := domain.NewMarkerProjector(cfg.Icons())

	records := store.New(cfg.StoreMaxRecords, cfg.SeriesCacheSize, domain.NewSeriesSelector(), logger, metrics)
	dash := dashboard.New(records, projector, cfg.MapView(), logger)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, projector, logger, metrics)
	transformer := pipeline.NewTransformer(logger)

	// Publish before storing so a failed publish leaves the window untouched.
	loader := pipeline.NewMultiLoader(writer, records)

	p := pipeline.New(reader, transformer, loader, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, dash, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	logger.Info("anomaly map service running",
		"source_topic", cfg.KafkaSourceTopic,
		"sink_topic", cfg.KafkaSinkTopic,
		"store_max_records", cfg.StoreMaxRecords,
	)

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

	logger.Info("shutdown complete")
}
