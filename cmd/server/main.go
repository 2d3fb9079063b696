package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ledgerai/merchant-ledger/internal/api"
	"github.com/ledgerai/merchant-ledger/internal/config"
	"github.com/ledgerai/merchant-ledger/internal/data/memory"
	mongodata "github.com/ledgerai/merchant-ledger/internal/data/mongo"
	pgdata "github.com/ledgerai/merchant-ledger/internal/data/postgres"
	"github.com/ledgerai/merchant-ledger/internal/domain/ledger"
	"github.com/ledgerai/merchant-ledger/internal/intake"
	"github.com/ledgerai/merchant-ledger/internal/logger"
	"github.com/ledgerai/merchant-ledger/internal/platform/messaging/consumers"
	"github.com/ledgerai/merchant-ledger/internal/platform/messaging/producers"
	"github.com/ledgerai/merchant-ledger/internal/platform/persistence"
	"github.com/ledgerai/merchant-ledger/internal/saver"
	"github.com/ledgerai/merchant-ledger/internal/store"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize the snapshot store for the configured driver
	var snapshots ledger.SnapshotStore
	var postgresDB *persistence.PostgresDB
	var mongoDB *persistence.MongoDB
	switch cfg.Snapshot.Driver {
	case "mongo":
		mongoDB, err = persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
		if err != nil {
			log.Error("Failed to initialize MongoDB", "error", err)
			os.Exit(1)
		}
		snapshots = mongodata.NewSnapshotStore(log, mongoDB.Database(), cfg.Snapshot.Key)
	case "postgres":
		postgresDB, err = persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
		if err != nil {
			log.Error("Failed to initialize PostgreSQL", "error", err)
			os.Exit(1)
		}
		snapshots = pgdata.NewSnapshotStore(log, postgresDB, cfg.Snapshot.Key)
	default:
		snapshots = memory.NewSnapshotStore()
	}

	// Initialize the async snapshot saver
	snapshotSaver, err := saver.New(log, snapshots, &cfg.Snapshot, &cfg.WorkerPool)
	if err != nil {
		log.Error("Failed to initialize snapshot saver", "error", err)
		os.Exit(1)
	}

	// Open the ledger from the stored snapshot
	ledgerStore, err := store.Open(appCtx, log, snapshots, snapshotSaver.Enqueue)
	if err != nil {
		log.Error("Failed to open ledger", "error", err)
		os.Exit(1)
	}

	// Start the Kafka intake when brokers are configured
	var intakeConsumer *consumers.KafkaConsumer
	var dlqProducer *producers.DLQProducer
	if cfg.Kafka.Enabled() {
		dlqProducer, err = producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize DLQ producer", "error", err)
			os.Exit(1)
		}
		var dlq producers.DeadLetterPublisher
		if dlqProducer != nil {
			dlq = dlqProducer
		}

		draftHandler := intake.NewDraftHandler(log, ledgerStore, dlq)
		intakeConsumer = consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)
		if err = intakeConsumer.Subscribe(appCtx, cfg.Kafka.IntakeTopic, cfg.Kafka.ConsumerGroup, draftHandler.HandleMessage); err != nil {
			log.Error("Failed to subscribe to intake topic", "error", err)
			os.Exit(1)
		}
	}

	// Initialize REST server
	server := api.NewServer(log, cfg, ledgerStore)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if intakeConsumer != nil {
		if err = intakeConsumer.Close(); err != nil {
			log.Error("Error closing intake consumer", "error", err)
		}
	}
	if dlqProducer != nil {
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ producer", "error", err)
		}
	}

	// Drain pending snapshot saves before releasing the stores
	if err = snapshotSaver.Flush(shutdownCtx); err != nil {
		log.Error("Error flushing snapshot saver", "error", err)
	}
	snapshotSaver.Close()

	// Write the final state synchronously so nothing is lost on restart
	if err = snapshots.Save(shutdownCtx, ledgerStore.Snapshot()); err != nil {
		log.Error("Error saving final ledger snapshot", "error", err)
	}

	if postgresDB != nil {
		postgresDB.Close()
	}
	if mongoDB != nil {
		if err = mongoDB.Close(shutdownCtx); err != nil {
			log.Error("Error closing MongoDB connection", "error", err)
		}
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
