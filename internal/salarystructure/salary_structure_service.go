package salarystructure

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"dayflow-hrms/internal/identity"
	salarystructureerrors "dayflow-hrms/internal/salarystructure/errors"
	"dayflow-hrms/internal/shared/dbutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=salary_structure_service.go -destination=mock/salary_structure_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateSalaryStructureRequest) (SalaryStructureResponse, error)
	GetMine(ctx context.Context, p identity.Principal) (SalaryStructureResponse, error)
	GetActive(ctx context.Context, employeeID string) (SalaryStructureResponse, error)
	History(ctx context.Context, employeeID string) ([]SalaryStructureResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("salarystructure.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salarystructure.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func buildStructure(employeeID uuid.UUID, req CreateSalaryStructureRequest) (*SalaryStructure, error) {
	effectiveFrom, err := time.Parse(dateLayout, strings.TrimSpace(req.EffectiveFrom))
	if err != nil {
		return nil, salarystructureerrors.ErrInvalidEffectiveDate
	}

	basic := decimal.Zero
	if req.BasicSalary != nil {
		basic = *req.BasicSalary
	}

	s := &SalaryStructure{
		ID:                 uuid.New(),
		EmployeeID:         employeeID,
		BasicSalary:        basic.Round(2),
		HRA:                req.HRA.Round(2),
		TransportAllowance: req.TransportAllowance.Round(2),
		MedicalAllowance:   req.MedicalAllowance.Round(2),
		SpecialAllowance:   req.SpecialAllowance.Round(2),
		ProvidentFund:      req.ProvidentFund.Round(2),
		ProfessionalTax:    req.ProfessionalTax.Round(2),
		IncomeTax:          req.IncomeTax.Round(2),
		EffectiveFrom:      effectiveFrom,
		IsActive:           true,
	}

	for _, amount := range []decimal.Decimal{
		s.BasicSalary, s.HRA, s.TransportAllowance, s.MedicalAllowance,
		s.SpecialAllowance, s.ProvidentFund, s.ProfessionalTax, s.IncomeTax,
	} {
		if amount.IsNegative() {
			return nil, salarystructureerrors.ErrNegativeAmount
		}
	}
	return s, nil
}

// Create replaces the employee's active structure. Deactivation and insert
// share one transaction so there is never a moment with two active rows.
func (s *service) Create(ctx context.Context, req CreateSalaryStructureRequest) (SalaryStructureResponse, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return SalaryStructureResponse{}, salarystructureerrors.ErrInvalidEmployeeID
	}
	structure, err := buildStructure(employeeID, req)
	if err != nil {
		s.logger.Warn("salary structure validation failed", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return SalaryStructureResponse{}, err
	}

	s.logger.Debug("create salary structure requested",
		zap.String("employee_id", req.EmployeeID),
		zap.String("effective_from", req.EffectiveFrom),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create salary structure begin tx failed", zap.Error(err))
		return SalaryStructureResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.EmployeeExists(ctx, employeeID)
	if err != nil {
		s.logger.Error("salary structure employee lookup failed", zap.Error(err))
		return SalaryStructureResponse{}, err
	}
	if !exists {
		return SalaryStructureResponse{}, salarystructureerrors.ErrEmployeeNotFound
	}

	deactivated, err := qtx.DeactivateAll(ctx, employeeID)
	if err != nil {
		s.logger.Error("salary structure deactivate failed", zap.Error(err))
		return SalaryStructureResponse{}, err
	}

	if err := qtx.Create(ctx, structure); err != nil {
		if dbutil.IsUniqueViolation(err) {
			s.logger.Warn("salary structure activation raced", zap.String("employee_id", req.EmployeeID))
			return SalaryStructureResponse{}, salarystructureerrors.ErrActiveStructureConflict
		}
		s.logger.Error("salary structure persist failed", zap.Error(err))
		return SalaryStructureResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create salary structure commit failed", zap.Error(err))
		return SalaryStructureResponse{}, err
	}

	s.logger.Info("salary structure created",
		zap.String("salary_structure_id", structure.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.Int64("deactivated", deactivated),
	)
	return mapToResponse(*structure), nil
}

func (s *service) active(ctx context.Context, employeeID uuid.UUID) (SalaryStructureResponse, error) {
	structure, err := s.repo.FindActive(ctx, employeeID)
	if err != nil {
		if dbutil.IsNotFound(err) {
			return SalaryStructureResponse{}, salarystructureerrors.ErrSalaryStructureNotFound
		}
		return SalaryStructureResponse{}, err
	}
	return mapToResponse(*structure), nil
}

func (s *service) GetMine(ctx context.Context, p identity.Principal) (SalaryStructureResponse, error) {
	return s.active(ctx, p.UserID)
}

func (s *service) GetActive(ctx context.Context, employeeID string) (SalaryStructureResponse, error) {
	id, err := uuid.Parse(employeeID)
	if err != nil {
		return SalaryStructureResponse{}, salarystructureerrors.ErrInvalidEmployeeID
	}
	return s.active(ctx, id)
}

func (s *service) History(ctx context.Context, employeeID string) ([]SalaryStructureResponse, error) {
	id, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, salarystructureerrors.ErrInvalidEmployeeID
	}
	rows, err := s.repo.FindHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}
