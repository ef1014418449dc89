package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/tsunami-risk-service/internal/adapter/http"
	"github.com/couchcryptid/tsunami-risk-service/internal/adapter/ioc"
	kafkaadapter "github.com/couchcryptid/tsunami-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/tsunami-risk-service/internal/adapter/modelserver"
	"github.com/couchcryptid/tsunami-risk-service/internal/adapter/ndbc"
	"github.com/couchcryptid/tsunami-risk-service/internal/adapter/usgs"
	"github.com/couchcryptid/tsunami-risk-service/internal/config"
	"github.com/couchcryptid/tsunami-risk-service/internal/features"
	"github.com/couchcryptid/tsunami-risk-service/internal/observability"
	"github.com/couchcryptid/tsunami-risk-service/internal/pipeline"
	"github.com/couchcryptid/tsunami-risk-service/internal/registry"
	"github.com/couchcryptid/tsunami-risk-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	stations, err := registry.Load(cfg.StationsFile)
	if err != nil {
		logger.Error("failed to load station registry", "error", err)
		os.Exit(1)
	}
	logger.Info("station registry loaded", "regions", stations.Regions())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry: IOC, then NDBC, then the synthetic tide model.
	chain := []telemetry.Provider{
		telemetry.NewSeaLevelProvider(ioc.NewClient(cfg.IOCBaseURL, cfg.ProviderTimeout, nil)),
		telemetry.NewBuoyProvider(ndbc.NewClient(cfg.NDBCBaseURL, cfg.ProviderTimeout), stations),
	}
	generator := telemetry.NewGenerator(stations, nil, nil)
	aggregator := telemetry.NewAggregator(stations, chain, generator, nil, logger, metrics)

	catalog := usgs.NewCachedCatalog(
		usgs.NewClient(cfg.USGSBaseURL, cfg.ProviderTimeout, metrics, logger),
		cfg.CatalogCacheSize, cfg.CatalogCacheTTL, nil, metrics,
	)

	// The service stays up without a model; predictions answer 503.
	var scorer pipeline.Scorer
	model, err := modelserver.Load(ctx, modelserver.Options{
		URL:     cfg.ModelURL,
		Name:    cfg.ModelName,
		Timeout: cfg.ModelTimeout,
	}, logger)
	if err != nil {
		logger.Warn("classifier unavailable, predictions disabled", "error", err)
	} else {
		scorer = model
	}

	metadata, err := modelserver.LoadMetadata(cfg.ModelMetadataFile)
	if err != nil {
		logger.Warn("model metadata unavailable", "path", cfg.ModelMetadataFile, "error", err)
	}

	var sink pipeline.AlertSink
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sink = writer
		logger.Info("alert publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAlertTopic)
	} else {
		logger.Info("alert publishing disabled")
	}

	predictor := pipeline.NewPredictor(scorer, sink, cfg.AlertThreshold, nil, logger, metrics)
	quakes := pipeline.NewQuakeAssessor(stations, catalog, features.NewEncoder(nil), predictor, nil, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Services{
		Stations:  stations,
		Telemetry: aggregator,
		Predictor: predictor,
		Quakes:    quakes,
		Metadata:  metadata,
	}, predictor, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
