package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dayflow-hrms/internal/config"
	"dayflow-hrms/internal/messaging/kafka/consumer"
	"dayflow-hrms/internal/notification"
	"dayflow-hrms/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer delivers e-mails for notification_created events until SIGINT
// or SIGTERM.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	broker, err := connection.BrokerAddr(cfg.Kafka.Broker)
	if err != nil {
		return fmt.Errorf("KAFKA_BROKER: %w", err)
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          cfg.Kafka.NotificationTopic,
		GroupID:        cfg.Kafka.ConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := notification.NewLogEmailSender(logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.ConsumeNotificationCreated(ctx, reader, sender, logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	<-done

	return nil
}
