package regularization

import (
	"time"

	"dayflow-hrms/internal/identity"

	"github.com/google/uuid"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Regularization is an employee's correction request for one attendance
// date. Requested times are wall clock values (HH:MM:SS) in the business
// time zone.
type Regularization struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EmployeeID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Date              time.Time  `gorm:"type:date;not null"`
	RequestedCheckIn  *string    `gorm:"type:varchar(8)"`
	RequestedCheckOut *string    `gorm:"type:varchar(8)"`
	Reason            string     `gorm:"type:text;not null"`
	Status            string     `gorm:"type:varchar(10);not null;index"`
	ReviewedBy        *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Regularization) TableName() string {
	return "attendance_regularizations"
}

func (r Regularization) Ownership() identity.Ownership {
	return identity.OwnedBy(identity.RelationEmployee, r.EmployeeID)
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}
