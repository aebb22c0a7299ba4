package payroll

import (
	"context"
	"database/sql"
	"time"

	"dayflow-hrms/internal/shared/dbutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Query narrows payroll listings. From is inclusive and To exclusive, both
// compared against the month column.
type Query struct {
	EmployeeID *uuid.UUID
	Status     string
	From       *time.Time
	To         *time.Time
}

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, p *Payroll) error
	Update(ctx context.Context, p *Payroll) error
	FindByID(ctx context.Context, id string) (*Payroll, error)
	FindAll(ctx context.Context, q Query) ([]Payroll, error)
	ExistsForMonth(ctx context.Context, employeeID uuid.UUID, month time.Time) (bool, error)
	Summarize(ctx context.Context, from, to time.Time) (Totals, error)

	CreateComponent(ctx context.Context, c *Component) error
	FindComponents(ctx context.Context, activeOnly bool) ([]Component, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbutil.Bind(r.db, r.tx).WithContext(ctx)
}

func (r *repository) Create(ctx context.Context, p *Payroll) error {
	return r.conn(ctx).Create(p).Error
}

func (r *repository) Update(ctx context.Context, p *Payroll) error {
	return r.conn(ctx).Save(p).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Payroll, error) {
	var p Payroll
	err := r.conn(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) FindAll(ctx context.Context, q Query) ([]Payroll, error) {
	db := r.conn(ctx)
	if q.EmployeeID != nil {
		db = db.Where("employee_id = ?", *q.EmployeeID)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.From != nil {
		db = db.Where("month >= ?", *q.From)
	}
	if q.To != nil {
		db = db.Where("month < ?", *q.To)
	}

	var payrolls []Payroll
	err := db.Order("month DESC").Order("created_at DESC").Find(&payrolls).Error
	return payrolls, err
}

func (r *repository) ExistsForMonth(ctx context.Context, employeeID uuid.UUID, month time.Time) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Payroll{}).
		Where("employee_id = ? AND month = ?", employeeID, month).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Summarize(ctx context.Context, from, to time.Time) (Totals, error) {
	var t Totals
	err := r.conn(ctx).
		Model(&Payroll{}).
		Select(`COUNT(*) AS count,
			COALESCE(SUM(basic_salary), 0) AS total_basic_salary,
			COALESCE(SUM(allowances), 0) AS total_allowances,
			COALESCE(SUM(deductions), 0) AS total_deductions,
			COALESCE(SUM(tax), 0) AS total_tax,
			COALESCE(SUM(gross_salary), 0) AS total_gross_salary,
			COALESCE(SUM(net_salary), 0) AS total_net_salary`).
		Where("month >= ? AND month < ?", from, to).
		Scan(&t).Error
	return t, err
}

func (r *repository) CreateComponent(ctx context.Context, c *Component) error {
	return r.conn(ctx).Create(c).Error
}

func (r *repository) FindComponents(ctx context.Context, activeOnly bool) ([]Component, error) {
	db := r.conn(ctx)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	var components []Component
	err := db.Order("component_type ASC").Order("name ASC").Find(&components).Error
	return components, err
}
