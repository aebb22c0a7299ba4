package salarystructure

import (
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// CreateSalaryStructureRequest omits zero components; basic_salary is
// required.
type CreateSalaryStructureRequest struct {
	EmployeeID         string           `json:"employee_id" binding:"required,uuid"`
	BasicSalary        *decimal.Decimal `json:"basic_salary" binding:"required"`
	HRA                decimal.Decimal  `json:"hra"`
	TransportAllowance decimal.Decimal  `json:"transport_allowance"`
	MedicalAllowance   decimal.Decimal  `json:"medical_allowance"`
	SpecialAllowance   decimal.Decimal  `json:"special_allowance"`
	ProvidentFund      decimal.Decimal  `json:"provident_fund"`
	ProfessionalTax    decimal.Decimal  `json:"professional_tax"`
	IncomeTax          decimal.Decimal  `json:"income_tax"`
	EffectiveFrom      string           `json:"effective_from" binding:"required"`
}

type SalaryStructureResponse struct {
	ID                 string    `json:"id"`
	EmployeeID         string    `json:"employee_id"`
	BasicSalary        string    `json:"basic_salary"`
	HRA                string    `json:"hra"`
	TransportAllowance string    `json:"transport_allowance"`
	MedicalAllowance   string    `json:"medical_allowance"`
	SpecialAllowance   string    `json:"special_allowance"`
	ProvidentFund      string    `json:"provident_fund"`
	ProfessionalTax    string    `json:"professional_tax"`
	IncomeTax          string    `json:"income_tax"`
	TotalAllowances    string    `json:"total_allowances"`
	TotalDeductions    string    `json:"total_deductions"`
	GrossSalary        string    `json:"gross_salary"`
	NetSalary          string    `json:"net_salary"`
	EffectiveFrom      string    `json:"effective_from"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func mapToResponse(s SalaryStructure) SalaryStructureResponse {
	return SalaryStructureResponse{
		ID:                 s.ID.String(),
		EmployeeID:         s.EmployeeID.String(),
		BasicSalary:        money(s.BasicSalary),
		HRA:                money(s.HRA),
		TransportAllowance: money(s.TransportAllowance),
		MedicalAllowance:   money(s.MedicalAllowance),
		SpecialAllowance:   money(s.SpecialAllowance),
		ProvidentFund:      money(s.ProvidentFund),
		ProfessionalTax:    money(s.ProfessionalTax),
		IncomeTax:          money(s.IncomeTax),
		TotalAllowances:    money(s.TotalAllowances()),
		TotalDeductions:    money(s.TotalDeductions()),
		GrossSalary:        money(s.GrossSalary()),
		NetSalary:          money(s.NetSalary()),
		EffectiveFrom:      s.EffectiveFrom.Format(dateLayout),
		IsActive:           s.IsActive,
		CreatedAt:          s.CreatedAt,
	}
}

func mapToListResponse(rows []SalaryStructure) []SalaryStructureResponse {
	res := make([]SalaryStructureResponse, len(rows))
	for i, s := range rows {
		res[i] = mapToResponse(s)
	}
	return res
}
