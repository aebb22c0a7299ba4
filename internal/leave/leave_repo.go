package leave

import (
	"context"
	"database/sql"
	"time"

	"dayflow-hrms/internal/shared/dbutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindAll(ctx context.Context, status string, employeeID *uuid.UUID) ([]Leave, error)
	FindByEmployee(ctx context.Context, employeeID uuid.UUID) ([]Leave, error)
	FindByID(ctx context.Context, id string) (*Leave, error)
	UpdateIfStatus(ctx context.Context, l *Leave, from string) (bool, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, status string, employeeID *uuid.UUID) (int64, error)
	CountOnLeave(ctx context.Context, date time.Time) (int64, error)
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

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.conn(ctx).Create(l).Error
}

func (r *repository) FindAll(ctx context.Context, status string, employeeID *uuid.UUID) ([]Leave, error) {
	var leaves []Leave
	q := r.conn(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if employeeID != nil {
		q = q.Where("employee_id = ?", *employeeID)
	}
	err := q.Order("created_at DESC").Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID uuid.UUID) ([]Leave, error) {
	var leaves []Leave
	err := r.conn(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	err := r.conn(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

// UpdateIfStatus writes l only while the stored row is still in status from.
// It reports false when another writer moved the row first.
func (r *repository) UpdateIfStatus(ctx context.Context, l *Leave, from string) (bool, error) {
	res := r.conn(ctx).
		Model(l).
		Where("status = ?", from).
		Select("LeaveType", "StartDate", "EndDate", "TotalDays", "Reason",
			"Status", "AdminComment", "DecidedBy", "DecidedAt", "UpdatedAt").
		Updates(l)
	return res.RowsAffected == 1, res.Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.conn(ctx).Delete(&Leave{}, "id = ?", id).Error
}

func (r *repository) CountByStatus(ctx context.Context, status string, employeeID *uuid.UUID) (int64, error) {
	q := r.conn(ctx).Model(&Leave{}).Where("status = ?", status)
	if employeeID != nil {
		q = q.Where("employee_id = ?", *employeeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

// CountOnLeave counts employees with an approved leave covering date.
func (r *repository) CountOnLeave(ctx context.Context, date time.Time) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Leave{}).
		Where("status = ?", StatusApproved).
		Where("start_date <= ? AND end_date >= ?", date, date).
		Distinct("employee_id").
		Count(&count).Error
	return count, err
}
