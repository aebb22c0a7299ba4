package regularization

import (
	"context"
	"database/sql"

	"dayflow-hrms/internal/shared/dbutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=regularization_repo.go -destination=mock/regularization_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *Regularization) error
	UpdateIfStatus(ctx context.Context, r *Regularization, from string) (bool, error)
	FindByID(ctx context.Context, id string) (*Regularization, error)
	FindByEmployee(ctx context.Context, employeeID uuid.UUID) ([]Regularization, error)
	FindAll(ctx context.Context, status string, employeeID *uuid.UUID) ([]Regularization, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
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

func (r *repository) Create(ctx context.Context, reg *Regularization) error {
	return r.conn(ctx).Create(reg).Error
}

// UpdateIfStatus records the review only while the row is still in status
// from.
func (r *repository) UpdateIfStatus(ctx context.Context, reg *Regularization, from string) (bool, error) {
	res := r.conn(ctx).
		Model(reg).
		Where("status = ?", from).
		Select("Status", "ReviewedBy", "ReviewedAt", "UpdatedAt").
		Updates(reg)
	return res.RowsAffected == 1, res.Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Regularization, error) {
	var reg Regularization
	err := r.conn(ctx).First(&reg, "id = ?", id).Error
	return &reg, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID uuid.UUID) ([]Regularization, error) {
	var rows []Regularization
	err := r.conn(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAll(ctx context.Context, status string, employeeID *uuid.UUID) ([]Regularization, error) {
	var rows []Regularization
	q := r.conn(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if employeeID != nil {
		q = q.Where("employee_id = ?", *employeeID)
	}
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.conn(ctx).Model(&Regularization{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
