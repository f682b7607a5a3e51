// Entry point for the queue drain worker
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"simplesqs.client/internal/archive"
	"simplesqs.client/internal/config"
	"simplesqs.client/internal/worker"
	"simplesqs.client/internal/worker/archiver"
	"simplesqs.client/pkg/database"
	"simplesqs.client/pkg/logger"
	"simplesqs.client/pkg/sqsclient"
	"simplesqs.client/pkg/telemetry"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	// Configure structured logging
	logger.Setup(cfg.IsLocalDev)

	// Configure OpenTelemetry Tracing
	shutdownTracer, err := telemetry.InitTracer("sqs-drain", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	// DB connection for the archive
	db, err := database.NewInstrumentedConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer db.Close()
	log.Info().Msg("Successfully connected to the database.")

	// Queue client
	builder := sqsclient.NewBuilder().
		WithRegion(cfg.AWSRegion).
		WithCredentials(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey).
		WithQueueURL(cfg.QueueURL)
	if cfg.AWSEndpoint != "" {
		builder = builder.WithEndpoint(cfg.AWSEndpoint)
	}

	client, err := builder.Build(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Could not build queue client")
	}
	defer client.Close()

	// Initialize dependencies
	store := archive.NewMessageStore(db)
	processor := archiver.NewProcessor(store)

	// Start worker
	ctx, cancel := context.WithCancel(context.Background())
	app := worker.NewWorker(client, processor)

	go func() {
		app.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info().Msg("Shutting down worker...")

	// Cancel the context to signal the worker to stop polling.
	cancel()

	log.Info().Msg("Worker exited gracefully")
}
