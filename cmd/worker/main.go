// Worker consumes booking events and sends notifications. It also purges
// expired sessions on an interval.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flight-booking/internal/data/repository"
	"flight-booking/internal/usecase"
	"flight-booking/pkg/database"
	"flight-booking/pkg/kafka"
	"flight-booking/pkg/utils"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const sessionCleanupInterval = time.Hour

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name+"-worker", config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	if len(config.Kafka.Brokers) == 0 {
		logger.Fatal("KAFKA_BROKERS is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repos := repository.NewRepository(db, logger)
	service := usecase.NewService(repos, usecase.Deps{}, config, logger)

	go cleanSessions(ctx, service.Auth, logger)

	consumer := kafka.NewConsumer(config.Kafka.Brokers, config.Kafka.GroupID, config.Kafka.BookingTopic)
	defer consumer.Close()

	logger.Info("Worker started",
		zap.Strings("brokers", config.Kafka.Brokers),
		zap.String("topic", config.Kafka.BookingTopic),
		zap.String("group_id", config.Kafka.GroupID))

	err = consumer.Consume(ctx, func(ctx context.Context, msg kafkago.Message) error {
		return service.Notification.HandleBookingEvent(ctx, msg.Value)
	})
	if err != nil {
		logger.Error("Consumer stopped with error", zap.Error(err))
		return
	}

	logger.Info("Worker stopped")
}

func cleanSessions(ctx context.Context, auth usecase.AuthService, logger *zap.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		if _, err := auth.CleanExpiredSessions(ctx); err != nil {
			logger.Warn("Session cleanup failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
