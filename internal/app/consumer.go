package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vn-payroll/internal/events"
	"vn-payroll/internal/messaging/kafka/consumer"
	"vn-payroll/internal/shared/connection"
	"vn-payroll/internal/shared/counter"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer reads calculation events and keeps the redis region
// counters up to date until SIGINT/SIGTERM.
func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	rdb, err := connection.ConnectRedisWithRetry(redisAddr, 5)
	if err != nil {
		return err
	}
	defer rdb.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	counterRepo := counter.NewRepository(rdb)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.CalculationPerformedTopic,
		GroupID:        "vn-payroll-calculation-stats",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeCalculationStats(ctx, reader, counterRepo, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
