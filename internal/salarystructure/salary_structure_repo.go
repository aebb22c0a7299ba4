package salarystructure

import (
	"context"
	"database/sql"

	"dayflow-hrms/internal/shared/dbutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=salary_structure_repo.go -destination=mock/salary_structure_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, s *SalaryStructure) error
	DeactivateAll(ctx context.Context, employeeID uuid.UUID) (int64, error)
	FindActive(ctx context.Context, employeeID uuid.UUID) (*SalaryStructure, error)
	FindHistory(ctx context.Context, employeeID uuid.UUID) ([]SalaryStructure, error)
	EmployeeExists(ctx context.Context, employeeID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbutil.Bind(r.db, r.tx).WithContext(ctx)
}

func (r *repository) Create(ctx context.Context, s *SalaryStructure) error {
	return r.conn(ctx).Create(s).Error
}

func (r *repository) DeactivateAll(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	res := r.conn(ctx).
		Model(&SalaryStructure{}).
		Where("employee_id = ? AND is_active = ?", employeeID, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (r *repository) FindActive(ctx context.Context, employeeID uuid.UUID) (*SalaryStructure, error) {
	var s SalaryStructure
	err := r.conn(ctx).
		Where("employee_id = ? AND is_active = ?", employeeID, true).
		Order("effective_from DESC").
		First(&s).Error
	return &s, err
}

func (r *repository) FindHistory(ctx context.Context, employeeID uuid.UUID) ([]SalaryStructure, error) {
	var rows []SalaryStructure
	err := r.conn(ctx).
		Where("employee_id = ?", employeeID).
		Order("effective_from DESC").
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) EmployeeExists(ctx context.Context, employeeID uuid.UUID) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("users").
		Where("id = ?", employeeID).
		Where("is_active = ?", true).
		Count(&count).Error
	return count > 0, err
}
