package payroll

import (
	"time"

	"dayflow-hrms/internal/identity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusDraft     = "DRAFT"
	StatusProcessed = "PROCESSED"
	StatusPaid      = "PAID"
)

const (
	ComponentAllowance = "ALLOWANCE"
	ComponentDeduction = "DEDUCTION"
)

// Payroll is one employee's pay for one month. Month is always the first day
// of the month; uq_payroll_employee_month keeps a single row per pair.
type Payroll struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_payroll_employee_month"`
	Month      time.Time `gorm:"type:date;not null;index;uniqueIndex:uq_payroll_employee_month"`

	BasicSalary decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Allowances  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Deductions  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	GrossSalary decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Tax         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	NetSalary   decimal.Decimal `gorm:"type:numeric(12,2);not null"`

	Status      string     `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	PaymentDate *time.Time `gorm:"type:date"`
	GeneratedBy *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Payroll) TableName() string {
	return "payrolls"
}

func (p Payroll) Ownership() identity.Ownership {
	return identity.OwnedBy(identity.RelationEmployee, p.EmployeeID)
}

// Calculate derives gross and net pay. It is the only place either figure is
// computed and must run before every persist.
func Calculate(basic, allowances, deductions, tax decimal.Decimal) (gross, net decimal.Decimal) {
	gross = basic.Add(allowances)
	net = gross.Sub(deductions).Sub(tax)
	return gross, net
}

func (p *Payroll) recalculate() {
	p.GrossSalary, p.NetSalary = Calculate(p.BasicSalary, p.Allowances, p.Deductions, p.Tax)
}

// Component is a named allowance or deduction HR can reference on payslips.
type Component struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	ComponentType string    `gorm:"type:varchar(20);not null;index"`
	Description   string    `gorm:"type:text"`
	IsActive      bool      `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Component) TableName() string {
	return "payroll_components"
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusDraft, StatusProcessed, StatusPaid:
		return true
	}
	return false
}

func IsValidComponentType(t string) bool {
	return t == ComponentAllowance || t == ComponentDeduction
}

// monthStart truncates t to the first day of its month in UTC.
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
