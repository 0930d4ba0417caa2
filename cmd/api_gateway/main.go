package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rental-marketplace-core/internal/api_gateway"
	"github.com/rental-marketplace-core/internal/api_gateway/service"
	"github.com/rental-marketplace-core/internal/booking_engine/components"
	"github.com/rental-marketplace-core/internal/config"
	"github.com/rental-marketplace-core/internal/data/mongo"
	"github.com/rental-marketplace-core/internal/data/postgres"
	"github.com/rental-marketplace-core/internal/logger"
	"github.com/rental-marketplace-core/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting API Gateway",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"platform_fee_bps", cfg.Pricing.PlatformFeeBps,
	)

	// The gateway owns the booking core, so it brings the schema up to date before serving
	if err := persistence.RunMigrations(cfg.Postgres.URL, cfg.Postgres.MigrationsPath); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

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
	userRepo := postgres.NewUserRepository(log, postgresDB)
	itemRepo := postgres.NewItemRepository(log, postgresDB)
	bookingRepo := postgres.NewBookingRepository(log, postgresDB)
	transactionRepo := postgres.NewWalletTransactionRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	activityRepo := mongo.NewActivityRepository(log, mongoDB.Database())

	// Initialize the booking core
	bookingService, walletService := components.CreateServices(
		postgresDB,
		userRepo,
		itemRepo,
		bookingRepo,
		transactionRepo,
		outboxRepo,
		log,
		cfg,
	)

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, api_gateway.Services{
		Bookings:       bookingService,
		Wallet:         walletService,
		Users:          service.NewUserService(userRepo, transactionRepo),
		Items:          service.NewItemService(itemRepo, userRepo),
		BookingQueries: service.NewBookingQueryService(bookingRepo),
		Activity:       service.NewActivityService(activityRepo, bookingRepo),
	})
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
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

	// Stop accepting requests before the pools go away
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
