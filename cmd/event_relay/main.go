package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rental-marketplace-core/internal/config"
	"github.com/rental-marketplace-core/internal/data/mongo"
	"github.com/rental-marketplace-core/internal/data/postgres"
	"github.com/rental-marketplace-core/internal/event_relay/consumer"
	"github.com/rental-marketplace-core/internal/event_relay/outbox_poller"
	"github.com/rental-marketplace-core/internal/event_relay/projection"
	"github.com/rental-marketplace-core/internal/logger"
	"github.com/rental-marketplace-core/internal/platform/messaging/consumers"
	"github.com/rental-marketplace-core/internal/platform/messaging/producers"
	"github.com/rental-marketplace-core/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("event_relay")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Event Relay",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	activityRepo := mongo.NewActivityRepository(log, mongoDB.Database())
	if err := activityRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to ensure activity indexes", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for booking events
	eventProducer, err := producers.NewBookingEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize booking event producer", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer is nil when KAFKA_DLQ_TOPIC is empty; its methods report ErrDLQDisabled

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Activity projection runs on a bounded worker pool
	activityProjector := projection.NewActivityProjector(activityRepo, log.With("component", "activity_projector"))
	poolProjector, err := projection.NewWorkerPoolProjector(
		activityProjector,
		projection.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log.With("component", "worker_pool"),
	)
	if err != nil {
		log.Error("Failed to initialize projection worker pool", "error", err)
		os.Exit(1)
	}

	// Initialize booking event handler
	bookingEventHandler := consumer.NewBookingEventHandler(
		log,
		poolProjector,
		dlqProducer,
	)

	// Initialize outbox poller
	forwarder := outbox_poller.NewEventForwarder(eventProducer, log.With("component", "event_forwarder"))
	poller := outbox_poller.NewPoller(
		&cfg.Outbox,
		postgresDB,
		outboxRepo,
		forwarder,
		log.With("component", "outbox_poller"),
	)

	// Create error channel for service errors
	errChan := make(chan error, 2)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer; Subscribe returns once the fetch loop is running
	log.Info("Starting Kafka consumer",
		"topic", cfg.Kafka.EventTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := kafkaConsumer.Subscribe(appCtx, bookingEventHandler.HandleMessage); err != nil {
		errChan <- fmt.Errorf("kafka consumer error: %w", err)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-kafkaConsumer.Done()
	}()

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// In-flight projections finish before the pool is released
	poolProjector.Shutdown()

	if err = dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
	}

	if err = eventProducer.Close(); err != nil {
		log.Error("Error closing booking event producer", "error", err)
	}

	// Close Kafka consumer
	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Event Relay shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Event Relay shutdown completed with errors")
	} else {
		log.Info("Event Relay shutdown completed successfully")
	}
}
