// main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"flight-booking/cmd"
	"flight-booking/internal/data/repository"
	"flight-booking/internal/usecase"
	"flight-booking/internal/wire"
	"flight-booking/pkg/cache"
	"flight-booking/pkg/database"
	"flight-booking/pkg/kafka"
	"flight-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	checks := []wire.HealthCheck{{Name: "database", Ping: db.Ping}}

	// Optional infrastructure; unset members keep the service on Postgres alone
	var deps usecase.Deps

	if config.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(config.Redis, config.Booking.SearchCacheTTL)
		if err := redisCache.Ping(ctx); err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err), zap.String("addr", config.Redis.Addr))
		}
		defer redisCache.Close()

		deps.Locker = redisCache
		deps.Cache = redisCache
		checks = append(checks, wire.HealthCheck{Name: "redis", Ping: redisCache.Ping})
		logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
	}

	if len(config.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(config.Kafka.Brokers, logger)
		defer producer.Close()

		deps.Events = producer
		logger.Info("Kafka producer ready",
			zap.Strings("brokers", config.Kafka.Brokers),
			zap.String("topic", config.Kafka.BookingTopic))
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, deps, config, logger, checks...)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, config.App.ShutdownTimeout, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}

	logger.Info("Server stopped")
}
