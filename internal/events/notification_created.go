package events

import "time"

const (
	NotificationCreatedTopic     = "hr.notification.created.v1"
	NotificationCreatedEventType = "notification_created"
)

// NotificationCreatedEvent is written to the outbox in the same transaction
// as the notification row.
type NotificationCreatedEvent struct {
	EventType        string    `json:"event_type"`
	RequestID        string    `json:"request_id,omitempty"`
	NotificationID   string    `json:"notification_id"`
	RecipientID      string    `json:"recipient_id"`
	RecipientEmail   string    `json:"recipient_email"`
	NotificationType string    `json:"notification_type"`
	Priority         string    `json:"priority"`
	Title            string    `json:"title"`
	Message          string    `json:"message"`
	ActionURL        string    `json:"action_url,omitempty"`
	EmailEnabled     bool      `json:"email_enabled"`
	OccurredAt       time.Time `json:"occurred_at"`
}
