package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/api"
	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/config"
	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/domain"
	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/events"
	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/logging"
	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/persistence"
	httptransport "github.com/samthatcode/boilerplate-project-exercisetracker/internal/transport/http"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	openCtx, openCancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := persistence.Open(openCtx, cfg, logger)
	openCancel()
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		logger.Info("publishing events to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic_prefix", cfg.KafkaTopicPrefix))
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix, logger)
	}

	service := domain.NewService(store, publisher,
		domain.WithLogger(logger),
		domain.WithPublishTimeout(cfg.PublishTimeout))
	handler := api.NewHandler(service, store, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		AllowedOrigins: cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	}, logger)
	handler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:           cfg.HTTPAddress,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}, router)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("exercise tracker listening", zap.String("address", cfg.HTTPAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-shutdownCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	if err := publisher.Close(); err != nil {
		logger.Warn("closing event publisher", zap.Error(err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Warn("closing store", zap.Error(err))
	}
}
