package salarystructure

import (
	"time"

	"dayflow-hrms/internal/identity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalaryStructure is the recurring pay template of one employee. At most one
// structure per employee is active; uq_salary_structure_active enforces it.
type SalaryStructure struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_salary_structure_active,where:is_active = true"`

	BasicSalary        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	HRA                decimal.Decimal `gorm:"column:hra;type:numeric(12,2);not null"`
	TransportAllowance decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	MedicalAllowance   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	SpecialAllowance   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ProvidentFund      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ProfessionalTax    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	IncomeTax          decimal.Decimal `gorm:"type:numeric(12,2);not null"`

	EffectiveFrom time.Time `gorm:"type:date;not null"`
	IsActive      bool      `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (SalaryStructure) TableName() string {
	return "salary_structures"
}

func (s SalaryStructure) Ownership() identity.Ownership {
	return identity.OwnedBy(identity.RelationEmployee, s.EmployeeID)
}

func (s SalaryStructure) TotalAllowances() decimal.Decimal {
	return s.HRA.Add(s.TransportAllowance).Add(s.MedicalAllowance).Add(s.SpecialAllowance)
}

func (s SalaryStructure) TotalDeductions() decimal.Decimal {
	return s.ProvidentFund.Add(s.ProfessionalTax).Add(s.IncomeTax)
}

func (s SalaryStructure) GrossSalary() decimal.Decimal {
	return s.BasicSalary.Add(s.TotalAllowances())
}

func (s SalaryStructure) NetSalary() decimal.Decimal {
	return s.GrossSalary().Sub(s.TotalDeductions())
}
