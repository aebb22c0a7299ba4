package consumer

import (
	"context"
	"encoding/json"
	"time"

	"dayflow-hrms/internal/events"
	"dayflow-hrms/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	sendAttempts    = 3
	retryBackoff    = time.Second
	maxFetchBackoff = 30 * time.Second
)

// MessageReader is the part of *kafkago.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

func ConsumeNotificationCreated(
	ctx context.Context,
	reader MessageReader,
	sender notification.EmailSender,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.notification_email")
	log.Info("notification email consumer started")

	backoff := retryBackoff
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("notification email consumer stopped")
				return
			}
			log.Error("fetch notification message failed", zap.Duration("retry_in", backoff), zap.Error(err))
			if !wait(ctx, backoff) {
				log.Info("notification email consumer stopped")
				return
			}
			backoff = min(backoff*2, maxFetchBackoff)
			continue
		}
		backoff = retryBackoff

		if !handleNotificationCreated(ctx, msg, sender, log) {
			log.Info("notification email consumer stopped")
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit notification message failed", zap.Error(err))
		}
	}
}

// handleNotificationCreated reports whether msg is done with and can be
// committed. Undecodable and e-mail-disabled events are committed and skipped.
// A failing send is retried sendAttempts times and then dropped; the in-app
// notification already exists. It returns false only when ctx is cancelled
// mid-retry, leaving the message for redelivery.
func handleNotificationCreated(
	ctx context.Context,
	msg kafkago.Message,
	sender notification.EmailSender,
	log *zap.Logger,
) bool {
	var event events.NotificationCreatedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode notification_created event failed", zap.Error(err))
		return true
	}

	if !event.EmailEnabled || event.RecipientEmail == "" {
		log.Debug("notification e-mail skipped",
			zap.String("notification_id", event.NotificationID),
			zap.Bool("email_enabled", event.EmailEnabled),
		)
		return true
	}

	email := notification.Email{
		To:      event.RecipientEmail,
		Subject: event.Title,
		Body:    event.Message,
	}
	var err error
	for attempt := 1; attempt <= sendAttempts; attempt++ {
		if err = sender.Send(ctx, email); err == nil {
			break
		}
		log.Warn("send notification e-mail failed",
			zap.String("notification_id", event.NotificationID),
			zap.String("request_id", event.RequestID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < sendAttempts && !wait(ctx, retryBackoff*time.Duration(attempt)) {
			return false
		}
	}
	if err != nil && ctx.Err() != nil {
		return false
	}
	if err != nil {
		log.Error("notification e-mail dropped",
			zap.String("notification_id", event.NotificationID),
			zap.String("request_id", event.RequestID),
			zap.Error(err),
		)
		return true
	}

	log.Info("notification e-mail sent",
		zap.String("notification_id", event.NotificationID),
		zap.String("recipient_id", event.RecipientID),
		zap.String("request_id", event.RequestID),
	)
	return true
}

func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
