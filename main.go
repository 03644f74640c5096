package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"car-rental/cmd"
	"car-rental/internal/data/repository"
	"car-rental/internal/data/repository/memory"
	"car-rental/internal/events"
	"car-rental/internal/usecase"
	"car-rental/internal/wire"
	"car-rental/internal/worker"
	"car-rental/pkg/cache"
	"car-rental/pkg/database"
	"car-rental/pkg/kafka"
	"car-rental/pkg/metrics"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("storage", config.App.StorageDriver),
		zap.Bool("debug", config.App.Debug),
	)

	repos, closeDB := openRepository(ctx, config, logger)
	defer closeDB()

	if len(os.Args) > 1 && os.Args[1] == "seed" {
		if err := cmd.Seed(ctx, repos, logger); err != nil {
			logger.Error("Seeding failed", zap.Error(err))
			closeDB()
			os.Exit(1)
		}
		return
	}

	opts := []usecase.Option{usecase.WithLimiter(openLimiter(ctx, config, logger))}

	bus := events.NewEventBus(logger)
	if len(config.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(config.Kafka, logger)
		if err != nil {
			logger.Fatal("Failed to create kafka producer", zap.Error(err))
		}
		defer producer.Close()
		bus.SubscribeAll(events.KafkaSink(producer))
		logger.Info("Publishing booking events to kafka", zap.Strings("brokers", config.Kafka.Brokers))
	}
	opts = append(opts, usecase.WithEventBus(bus))

	if config.App.MetricsEnabled {
		metrics.Register()
	}

	// Wire all dependencies
	app := wire.Wiring(repos, config, logger, opts...)

	sweeper := worker.NewSweeper(app.Service.Booking, app.Service.Auth,
		config.Booking.PendingTTL, config.Booking.SweepInterval, logger)
	go sweeper.Run(ctx)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
		return
	}
	logger.Info("Server stopped")
}

// openRepository picks the storage driver. The returned func releases it.
func openRepository(ctx context.Context, config *utils.Config, logger *zap.Logger) (*repository.Repository, func()) {
	if config.App.StorageDriver == "memory" {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewRepository(logger), func() {}
	}

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("Database connected successfully")

	if config.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			logger.Fatal("Failed to apply schema", zap.Error(err))
		}
		logger.Info("Database schema applied")
	}

	return repository.NewRepository(db, logger), db.Close
}

// openLimiter uses Redis when configured so limits hold across instances.
func openLimiter(ctx context.Context, config *utils.Config, logger *zap.Logger) usecase.BookingLimiter {
	if config.Redis.Address == "" {
		return cache.NewMemoryLimiter()
	}

	client := cache.NewRedisClient(config.Redis)
	if err := cache.Ping(ctx, client); err != nil {
		logger.Warn("Redis unavailable, falling back to in-process limiter", zap.Error(err))
		client.Close()
		return cache.NewMemoryLimiter()
	}
	logger.Info("Redis connected", zap.String("addr", config.Redis.Address))
	return cache.NewRedisLimiter(client, config.App.Name)
}
