package notification

import (
	"time"

	"dayflow-hrms/internal/identity"

	"github.com/google/uuid"
)

const (
	TypeLeaveRequested           = "LEAVE_REQUESTED"
	TypeLeaveApproved            = "LEAVE_APPROVED"
	TypeLeaveRejected            = "LEAVE_REJECTED"
	TypeAttendanceRegularization = "ATTENDANCE_REGULARIZATION"
	TypePayrollGenerated         = "PAYROLL_GENERATED"
	TypePayrollPaid              = "PAYROLL_PAID"
	TypeProfileUpdated           = "PROFILE_UPDATED"
	TypeGeneral                  = "GENERAL"
)

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

const (
	CategoryLeave      = "leave"
	CategoryAttendance = "attendance"
	CategoryPayroll    = "payroll"
	CategoryGeneral    = "general"
)

var typeCategories = map[string]string{
	TypeLeaveRequested:           CategoryLeave,
	TypeLeaveApproved:            CategoryLeave,
	TypeLeaveRejected:            CategoryLeave,
	TypeAttendanceRegularization: CategoryAttendance,
	TypePayrollGenerated:         CategoryPayroll,
	TypePayrollPaid:              CategoryPayroll,
	TypeGeneral:                  CategoryGeneral,
	TypeProfileUpdated:           "",
}

func IsValidType(t string) bool {
	_, ok := typeCategories[t]
	return ok
}

func IsValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// CategoryOf returns the preference category of a type, or "" for types no
// preference can turn off.
func CategoryOf(notificationType string) string {
	return typeCategories[notificationType]
}

type Notification struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	RecipientID       uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_recipient_read"`
	NotificationType  string    `gorm:"type:varchar(40);not null"`
	Title             string    `gorm:"type:varchar(200);not null"`
	Message           string    `gorm:"type:text;not null"`
	Priority          string    `gorm:"type:varchar(10);not null"`
	IsRead            bool      `gorm:"not null;index:idx_notifications_recipient_read"`
	ReadAt            *time.Time
	RelatedObjectType string     `gorm:"type:varchar(50)"`
	RelatedObjectID   *uuid.UUID `gorm:"type:uuid"`
	ActionURL         string     `gorm:"type:varchar(255)"`
	CreatedAt         time.Time  `gorm:"index"`
}

func (n Notification) Ownership() identity.Ownership {
	return identity.OwnedBy(identity.RelationRecipient, n.RecipientID)
}

// MarkRead is idempotent: an already-read notification keeps its read_at.
func (n *Notification) MarkRead(at time.Time) bool {
	if n.IsRead {
		return false
	}
	n.IsRead = true
	n.ReadAt = &at
	return true
}

func (n *Notification) MarkUnread() bool {
	if !n.IsRead {
		return false
	}
	n.IsRead = false
	n.ReadAt = nil
	return true
}

// Preference holds per-user category switches. A user without a row gets
// every category.
type Preference struct {
	ID                      uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID                  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	EmailNotifications      bool      `gorm:"not null"`
	LeaveNotifications      bool      `gorm:"not null"`
	AttendanceNotifications bool      `gorm:"not null"`
	PayrollNotifications    bool      `gorm:"not null"`
	GeneralNotifications    bool      `gorm:"not null"`
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func (Preference) TableName() string {
	return "notification_preferences"
}

func DefaultPreference(userID uuid.UUID) Preference {
	return Preference{
		ID:                      uuid.New(),
		UserID:                  userID,
		EmailNotifications:      true,
		LeaveNotifications:      true,
		AttendanceNotifications: true,
		PayrollNotifications:    true,
		GeneralNotifications:    true,
	}
}

// Allows reports whether a notification of the given type may be created.
func (p Preference) Allows(notificationType string) bool {
	switch CategoryOf(notificationType) {
	case CategoryLeave:
		return p.LeaveNotifications
	case CategoryAttendance:
		return p.AttendanceNotifications
	case CategoryPayroll:
		return p.PayrollNotifications
	case CategoryGeneral:
		return p.GeneralNotifications
	default:
		return true
	}
}

// Recipient is the slice of a user row that dispatch needs.
type Recipient struct {
	ID       uuid.UUID
	Email    string
	Role     string
	IsActive bool
}

type TypeCount struct {
	NotificationType string
	Total            int64
	Unread           int64
}
