package attendance

import (
	"context"
	"database/sql"
	"time"

	"dayflow-hrms/internal/shared/dbutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *Record) error
	Update(ctx context.Context, r *Record) error
	FindByID(ctx context.Context, id string) (*Record, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date time.Time) (*Record, error)
	FindByEmployee(ctx context.Context, employeeID uuid.UUID, from, to *time.Time) ([]Record, error)
	FindAll(ctx context.Context, employeeID *uuid.UUID, from, to *time.Time) ([]Record, error)
	Summarize(ctx context.Context, employeeID uuid.UUID, from, to time.Time) (MonthlySummary, error)
	CountByDateAndStatus(ctx context.Context, date time.Time, status string) (int64, error)
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

func (r *repository) Create(ctx context.Context, rec *Record) error {
	return r.conn(ctx).Create(rec).Error
}

func (r *repository) Update(ctx context.Context, rec *Record) error {
	return r.conn(ctx).Save(rec).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := r.conn(ctx).First(&rec, "id = ?", id).Error
	return &rec, err
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date time.Time) (*Record, error) {
	var rec Record
	err := r.conn(ctx).
		Where("employee_id = ? AND date = ?", employeeID, date).
		First(&rec).Error
	return &rec, err
}

func withRange(q *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to != nil {
		q = q.Where("date <= ?", *to)
	}
	return q
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID uuid.UUID, from, to *time.Time) ([]Record, error) {
	var rows []Record
	q := withRange(r.conn(ctx).Where("employee_id = ?", employeeID), from, to)
	err := q.Order("date DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) FindAll(ctx context.Context, employeeID *uuid.UUID, from, to *time.Time) ([]Record, error) {
	var rows []Record
	q := r.conn(ctx)
	if employeeID != nil {
		q = q.Where("employee_id = ?", *employeeID)
	}
	err := withRange(q, from, to).Order("date DESC, employee_id").Find(&rows).Error
	return rows, err
}

const summarySelect = `COUNT(*) AS total_days,
	COALESCE(SUM(CASE WHEN status = 'PRESENT' THEN 1 ELSE 0 END), 0) AS present_days,
	COALESCE(SUM(CASE WHEN status = 'ABSENT' THEN 1 ELSE 0 END), 0) AS absent_days,
	COALESCE(SUM(CASE WHEN status = 'HALF_DAY' THEN 1 ELSE 0 END), 0) AS half_days,
	COALESCE(SUM(CASE WHEN status = 'LEAVE' THEN 1 ELSE 0 END), 0) AS leave_days,
	COALESCE(SUM(CASE WHEN is_late THEN 1 ELSE 0 END), 0) AS late_days,
	COALESCE(SUM(CASE WHEN is_early_departure THEN 1 ELSE 0 END), 0) AS early_departures,
	COALESCE(SUM(working_hours), 0) AS total_working_hours,
	COALESCE(SUM(overtime_hours), 0) AS total_overtime_hours`

func (r *repository) Summarize(ctx context.Context, employeeID uuid.UUID, from, to time.Time) (MonthlySummary, error) {
	var out MonthlySummary
	err := r.conn(ctx).Model(&Record{}).
		Select(summarySelect).
		Where("employee_id = ? AND date >= ? AND date <= ?", employeeID, from, to).
		Scan(&out).Error
	return out, err
}

func (r *repository) CountByDateAndStatus(ctx context.Context, date time.Time, status string) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&Record{}).
		Where("date = ? AND status = ?", date, status).
		Count(&count).Error
	return count, err
}
