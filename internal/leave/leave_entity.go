package leave

import (
	"time"

	"dayflow-hrms/internal/identity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypePaid   = "PAID"
	TypeSick   = "SICK"
	TypeUnpaid = "UNPAID"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// CancelledComment replaces admin_comment when an employee cancels an
// approved leave.
const CancelledComment = "Cancelled by employee"

type Leave struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_employee_dates"`

	LeaveType string    `gorm:"type:varchar(10);not null"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	TotalDays int       `gorm:"type:int;not null"`
	Reason    string    `gorm:"type:text;not null"`

	Status       string     `gorm:"type:varchar(10);not null;index:idx_leaves_status"`
	AdminComment *string    `gorm:"type:text"`
	DecidedBy    *uuid.UUID `gorm:"type:uuid"`
	DecidedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_leaves_deleted_at"`
}

func (Leave) TableName() string {
	return "leaves"
}

func (l Leave) Ownership() identity.Ownership {
	return identity.OwnedBy(identity.RelationEmployee, l.EmployeeID)
}

func IsValidType(t string) bool {
	switch t {
	case TypePaid, TypeSick, TypeUnpaid:
		return true
	}
	return false
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// totalDays counts calendar days, both ends inclusive.
func totalDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}
