package attendance

import (
	"time"

	"dayflow-hrms/internal/identity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
	StatusHalfDay = "HALF_DAY"
	StatusLeave   = "LEAVE"
)

// Record is one employee's attendance for one calendar date. The
// (employee_id, date) pair is unique at the storage layer.
type Record struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeID       uuid.UUID           `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_attendance_employee_date,priority:1"`
	Date             time.Time           `gorm:"column:date;type:date;not null;uniqueIndex:uq_attendance_employee_date,priority:2;index"`
	CheckInTime      *time.Time          `gorm:"column:check_in_time"`
	CheckOutTime     *time.Time          `gorm:"column:check_out_time"`
	Status           string              `gorm:"column:status;type:varchar(20);not null"`
	IsLate           bool                `gorm:"column:is_late;not null"`
	IsEarlyDeparture bool                `gorm:"column:is_early_departure;not null"`
	WorkingHours     decimal.NullDecimal `gorm:"column:working_hours;type:numeric(5,2)"`
	OvertimeHours    decimal.NullDecimal `gorm:"column:overtime_hours;type:numeric(5,2)"`
	Notes            string              `gorm:"column:notes;type:text"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Record) TableName() string {
	return "attendance_records"
}

func (r Record) Ownership() identity.Ownership {
	return identity.OwnedBy(identity.RelationEmployee, r.EmployeeID)
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusPresent, StatusAbsent, StatusHalfDay, StatusLeave:
		return true
	default:
		return false
	}
}

// MonthlySummary is the aggregate over one employee's records in a month.
type MonthlySummary struct {
	TotalDays          int64           `json:"total_days"`
	PresentDays        int64           `json:"present_days"`
	AbsentDays         int64           `json:"absent_days"`
	HalfDays           int64           `json:"half_days"`
	LeaveDays          int64           `json:"leave_days"`
	LateDays           int64           `json:"late_days"`
	EarlyDepartures    int64           `json:"early_departures"`
	TotalWorkingHours  decimal.Decimal `json:"total_working_hours"`
	TotalOvertimeHours decimal.Decimal `json:"total_overtime_hours"`
}
