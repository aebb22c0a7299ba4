package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	monthLayout = "2006-01"
	dateLayout  = "2006-01-02"
)

type GeneratePayrollRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Month      string `json:"month" binding:"required"`
}

// CreatePayrollRequest records a payroll whose figures are entered by hand.
type CreatePayrollRequest struct {
	EmployeeID  string           `json:"employee_id" binding:"required,uuid"`
	Month       string           `json:"month" binding:"required"`
	BasicSalary *decimal.Decimal `json:"basic_salary" binding:"required"`
	Allowances  decimal.Decimal  `json:"allowances"`
	Deductions  decimal.Decimal  `json:"deductions"`
	Tax         decimal.Decimal  `json:"tax"`
}

// UpdatePayrollRequest leaves a figure unchanged when it is omitted.
type UpdatePayrollRequest struct {
	BasicSalary *decimal.Decimal `json:"basic_salary"`
	Allowances  *decimal.Decimal `json:"allowances"`
	Deductions  *decimal.Decimal `json:"deductions"`
	Tax         *decimal.Decimal `json:"tax"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ListFilter struct {
	EmployeeID string
	Status     string
	Year       int
	Month      int
}

type SummaryFilter struct {
	Year  int
	Month int
}

type CreateComponentRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	ComponentType string `json:"component_type" binding:"required"`
	Description   string `json:"description"`
	IsActive      *bool  `json:"is_active"`
}

type PayrollResponse struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employee_id"`
	Month       string    `json:"month"`
	BasicSalary string    `json:"basic_salary"`
	Allowances  string    `json:"allowances"`
	Deductions  string    `json:"deductions"`
	GrossSalary string    `json:"gross_salary"`
	Tax         string    `json:"tax"`
	NetSalary   string    `json:"net_salary"`
	Status      string    `json:"status"`
	PaymentDate *string   `json:"payment_date"`
	GeneratedBy *string   `json:"generated_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Totals struct {
	TotalBasicSalary decimal.Decimal
	TotalAllowances  decimal.Decimal
	TotalDeductions  decimal.Decimal
	TotalTax         decimal.Decimal
	TotalGrossSalary decimal.Decimal
	TotalNetSalary   decimal.Decimal
	Count            int64
}

type SummaryTotals struct {
	TotalBasicSalary string `json:"total_basic_salary"`
	TotalAllowances  string `json:"total_allowances"`
	TotalDeductions  string `json:"total_deductions"`
	TotalTax         string `json:"total_tax"`
	TotalGrossSalary string `json:"total_gross_salary"`
	TotalNetSalary   string `json:"total_net_salary"`
}

type SummaryResponse struct {
	Year         int           `json:"year"`
	Month        *int          `json:"month,omitempty"`
	PayrollCount int64         `json:"payroll_count"`
	Summary      SummaryTotals `json:"summary"`
}

type ComponentResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ComponentType string    `json:"component_type"`
	Description   string    `json:"description"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func mapToResponse(p Payroll) PayrollResponse {
	resp := PayrollResponse{
		ID:          p.ID.String(),
		EmployeeID:  p.EmployeeID.String(),
		Month:       p.Month.Format(monthLayout),
		BasicSalary: money(p.BasicSalary),
		Allowances:  money(p.Allowances),
		Deductions:  money(p.Deductions),
		GrossSalary: money(p.GrossSalary),
		Tax:         money(p.Tax),
		NetSalary:   money(p.NetSalary),
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.PaymentDate != nil {
		v := p.PaymentDate.Format(dateLayout)
		resp.PaymentDate = &v
	}
	if p.GeneratedBy != nil {
		v := p.GeneratedBy.String()
		resp.GeneratedBy = &v
	}
	return resp
}

func mapToListResponse(payrolls []Payroll) []PayrollResponse {
	resp := make([]PayrollResponse, len(payrolls))
	for i, p := range payrolls {
		resp[i] = mapToResponse(p)
	}
	return resp
}

func mapToSummary(year int, month *int, t Totals) SummaryResponse {
	return SummaryResponse{
		Year:         year,
		Month:        month,
		PayrollCount: t.Count,
		Summary: SummaryTotals{
			TotalBasicSalary: money(t.TotalBasicSalary),
			TotalAllowances:  money(t.TotalAllowances),
			TotalDeductions:  money(t.TotalDeductions),
			TotalTax:         money(t.TotalTax),
			TotalGrossSalary: money(t.TotalGrossSalary),
			TotalNetSalary:   money(t.TotalNetSalary),
		},
	}
}

func mapToComponentResponse(c Component) ComponentResponse {
	return ComponentResponse{
		ID:            c.ID.String(),
		Name:          c.Name,
		ComponentType: c.ComponentType,
		Description:   c.Description,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
	}
}
