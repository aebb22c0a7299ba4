package notification

import (
	"time"

	"github.com/google/uuid"
)

// NotifyInput is what workflows hand to the dispatcher.
type NotifyInput struct {
	RecipientID       uuid.UUID
	Type              string
	Title             string
	Message           string
	Priority          string
	RelatedObjectType string
	RelatedObjectID   *uuid.UUID
	ActionURL         string
}

type CreateNotificationRequest struct {
	RecipientID       string `json:"recipient_id" binding:"required,uuid"`
	NotificationType  string `json:"notification_type"`
	Title             string `json:"title" binding:"required,max=200"`
	Message           string `json:"message" binding:"required"`
	Priority          string `json:"priority"`
	RelatedObjectType string `json:"related_object_type"`
	RelatedObjectID   string `json:"related_object_id" binding:"omitempty,uuid"`
	ActionURL         string `json:"action_url" binding:"omitempty,max=255"`
}

type BroadcastRequest struct {
	Title            string `json:"title" binding:"required,max=200"`
	Message          string `json:"message" binding:"required"`
	Role             string `json:"role"`
	Priority         string `json:"priority"`
	NotificationType string `json:"notification_type"`
}

type BroadcastResult struct {
	Created    int `json:"created"`
	Suppressed int `json:"suppressed"`
}

type UpdateNotificationRequest struct {
	IsRead *bool `json:"is_read" binding:"required"`
}

type UpdatePreferenceRequest struct {
	EmailNotifications      *bool `json:"email_notifications"`
	LeaveNotifications      *bool `json:"leave_notifications"`
	AttendanceNotifications *bool `json:"attendance_notifications"`
	PayrollNotifications    *bool `json:"payroll_notifications"`
	GeneralNotifications    *bool `json:"general_notifications"`
}

type ListFilter struct {
	UnreadOnly bool
	Type       string
}

type NotificationResponse struct {
	ID                string     `json:"id"`
	RecipientID       string     `json:"recipient_id"`
	NotificationType  string     `json:"notification_type"`
	Title             string     `json:"title"`
	Message           string     `json:"message"`
	Priority          string     `json:"priority"`
	IsRead            bool       `json:"is_read"`
	ReadAt            *time.Time `json:"read_at"`
	RelatedObjectType string     `json:"related_object_type,omitempty"`
	RelatedObjectID   string     `json:"related_object_id,omitempty"`
	ActionURL         string     `json:"action_url,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

type NotificationListResponse struct {
	Count         int                    `json:"count"`
	UnreadCount   int64                  `json:"unread_count"`
	Notifications []NotificationResponse `json:"notifications"`
}

type StatsResponse struct {
	Total  int64            `json:"total"`
	Unread int64            `json:"unread"`
	Read   int64            `json:"read"`
	ByType map[string]int64 `json:"by_type"`
}

type MarkAllReadResponse struct {
	Count int64 `json:"count"`
}

type PreferenceResponse struct {
	UserID                  string `json:"user_id"`
	EmailNotifications      bool   `json:"email_notifications"`
	LeaveNotifications      bool   `json:"leave_notifications"`
	AttendanceNotifications bool   `json:"attendance_notifications"`
	PayrollNotifications    bool   `json:"payroll_notifications"`
	GeneralNotifications    bool   `json:"general_notifications"`
}

func mapToResponse(n Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:                n.ID.String(),
		RecipientID:       n.RecipientID.String(),
		NotificationType:  n.NotificationType,
		Title:             n.Title,
		Message:           n.Message,
		Priority:          n.Priority,
		IsRead:            n.IsRead,
		ReadAt:            n.ReadAt,
		RelatedObjectType: n.RelatedObjectType,
		ActionURL:         n.ActionURL,
		CreatedAt:         n.CreatedAt,
	}
	if n.RelatedObjectID != nil {
		resp.RelatedObjectID = n.RelatedObjectID.String()
	}
	return resp
}

func mapToListResponse(items []Notification) []NotificationResponse {
	resp := make([]NotificationResponse, len(items))
	for i, n := range items {
		resp[i] = mapToResponse(n)
	}
	return resp
}

func mapPreference(p Preference) PreferenceResponse {
	return PreferenceResponse{
		UserID:                  p.UserID.String(),
		EmailNotifications:      p.EmailNotifications,
		LeaveNotifications:      p.LeaveNotifications,
		AttendanceNotifications: p.AttendanceNotifications,
		PayrollNotifications:    p.PayrollNotifications,
		GeneralNotifications:    p.GeneralNotifications,
	}
}
