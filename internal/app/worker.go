package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dayflow-hrms/internal/config"
	"dayflow-hrms/internal/messaging/kafka"
	"dayflow-hrms/internal/messaging/kafka/producer"
	"dayflow-hrms/internal/notification"
	"dayflow-hrms/internal/shared/connection"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// purgeJob deletes rows that are past retention and reports how many went.
type purgeJob struct {
	name string
	run  func(ctx context.Context) (int64, error)
}

// RunWorker relays outbox rows to kafka and runs the scheduled purges of read
// notifications and delivered outbox rows until SIGINT or SIGTERM.
func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	gormDB, sqlDB, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	broker, err := connection.BrokerAddr(cfg.Kafka.Broker)
	if err != nil {
		return fmt.Errorf("KAFKA_BROKER: %w", err)
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(broker, cfg.Database.MaxRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	notificationService := notification.NewService(sqlDB, notification.NewRepository(gormDB), outboxRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := cron.New(cron.WithLocation(cfg.Location()))
	retention := time.Duration(cfg.Worker.NotificationRetentionDays) * 24 * time.Hour
	jobs := []purgeJob{
		{
			name: "read_notifications",
			run: func(ctx context.Context) (int64, error) {
				return notificationService.PurgeRead(ctx, retention)
			},
		},
		{
			name: "sent_outbox_events",
			run: func(ctx context.Context) (int64, error) {
				return outboxRepo.PurgeSent(ctx, time.Now().Add(-retention))
			},
		},
	}
	for _, job := range jobs {
		if err := schedulePurge(ctx, scheduler, cfg.Worker.PurgeSchedule, job, logger); err != nil {
			return err
		}
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		cfg.Worker.OutboxPollInterval,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}

func schedulePurge(
	ctx context.Context,
	scheduler *cron.Cron,
	schedule string,
	job purgeJob,
	logger *zap.Logger,
) error {
	_, err := scheduler.AddFunc(schedule, func() {
		n, err := job.run(ctx)
		if err != nil {
			logger.Error("scheduled purge failed", zap.String("job", job.name), zap.Error(err))
			return
		}
		logger.Info("scheduled purge done", zap.String("job", job.name), zap.Int64("deleted", n))
	})
	if err != nil {
		return fmt.Errorf("invalid purge schedule %q: %w", schedule, err)
	}
	logger.Info("purge scheduled", zap.String("job", job.name), zap.String("schedule", schedule))
	return nil
}
