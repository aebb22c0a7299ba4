package salarystructure_test

import (
	"context"
	"database/sql"
	"testing"

	"dayflow-hrms/internal/identity"
	"dayflow-hrms/internal/salarystructure"
	salarystructureerrors "dayflow-hrms/internal/salarystructure/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeSalaryStructureRepository struct {
	exists     bool
	active     *salarystructure.SalaryStructure
	createErr  error
	history    []salarystructure.SalaryStructure
	deactivate int64

	calls   []string
	created []salarystructure.SalaryStructure
}

func (f *fakeSalaryStructureRepository) WithTx(tx *sql.Tx) salarystructure.Repository { return f }

func (f *fakeSalaryStructureRepository) Create(ctx context.Context, s *salarystructure.SalaryStructure) error {
	f.calls = append(f.calls, "create")
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *s)
	return nil
}

func (f *fakeSalaryStructureRepository) DeactivateAll(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	f.calls = append(f.calls, "deactivate")
	return f.deactivate, nil
}

func (f *fakeSalaryStructureRepository) FindActive(ctx context.Context, employeeID uuid.UUID) (*salarystructure.SalaryStructure, error) {
	if f.active == nil {
		return &salarystructure.SalaryStructure{}, gorm.ErrRecordNotFound
	}
	return f.active, nil
}

func (f *fakeSalaryStructureRepository) FindHistory(ctx context.Context, employeeID uuid.UUID) ([]salarystructure.SalaryStructure, error) {
	return f.history, nil
}

func (f *fakeSalaryStructureRepository) EmployeeExists(ctx context.Context, employeeID uuid.UUID) (bool, error) {
	return f.exists, nil
}

type salaryStructureServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service salarystructure.Service
	repo    *fakeSalaryStructureRepository
}

func setupSalaryStructureServiceTest(t *testing.T) *salaryStructureServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeSalaryStructureRepository{exists: true}
	return &salaryStructureServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: salarystructure.NewService(db, repo),
		repo:    repo,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func amount(v string) *decimal.Decimal {
	x := decimal.RequireFromString(v)
	return &x
}

func validRequest(employeeID uuid.UUID) salarystructure.CreateSalaryStructureRequest {
	return salarystructure.CreateSalaryStructureRequest{
		EmployeeID:         employeeID.String(),
		BasicSalary:        amount("50000"),
		HRA:                d("10000"),
		TransportAllowance: d("2000"),
		MedicalAllowance:   d("1500"),
		ProvidentFund:      d("6000"),
		ProfessionalTax:    d("200"),
		IncomeTax:          d("5000"),
		EffectiveFrom:      "2026-01-01",
	}
}

func TestSalaryStructureService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivates previous before insert", func(t *testing.T) {
		deps := setupSalaryStructureServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)
		deps.repo.deactivate = 1
		employeeID := uuid.New()

		resp, err := deps.service.Create(ctx, validRequest(employeeID))

		assert.NoError(t, err)
		assert.Equal(t, []string{"deactivate", "create"}, deps.repo.calls)
		assert.True(t, resp.IsActive)
		assert.Equal(t, "13500.00", resp.TotalAllowances)
		assert.Equal(t, "11200.00", resp.TotalDeductions)
		assert.Equal(t, "63500.00", resp.GrossSalary)
		assert.Equal(t, "52300.00", resp.NetSalary)
		assert.Equal(t, "0.00", resp.SpecialAllowance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("unknown employee", func(t *testing.T) {
		deps := setupSalaryStructureServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)
		deps.repo.exists = false

		_, err := deps.service.Create(ctx, validRequest(uuid.New()))

		assert.ErrorIs(t, err, salarystructureerrors.ErrEmployeeNotFound)
		assert.Empty(t, deps.repo.calls)
	})

	t.Run("concurrent activation conflicts", func(t *testing.T) {
		deps := setupSalaryStructureServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)
		deps.repo.createErr = gorm.ErrDuplicatedKey

		_, err := deps.service.Create(ctx, validRequest(uuid.New()))

		assert.ErrorIs(t, err, salarystructureerrors.ErrActiveStructureConflict)
	})

	t.Run("negative amount", func(t *testing.T) {
		deps := setupSalaryStructureServiceTest(t)
		defer deps.db.Close()
		req := validRequest(uuid.New())
		req.IncomeTax = d("-1")

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, salarystructureerrors.ErrNegativeAmount)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("bad effective date", func(t *testing.T) {
		deps := setupSalaryStructureServiceTest(t)
		defer deps.db.Close()
		req := validRequest(uuid.New())
		req.EffectiveFrom = "January"

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, salarystructureerrors.ErrInvalidEffectiveDate)
	})
}

func TestSalaryStructureService_Reads(t *testing.T) {
	ctx := context.Background()
	deps := setupSalaryStructureServiceTest(t)
	defer deps.db.Close()
	p := identity.Principal{UserID: uuid.New(), Role: identity.RoleEmployee}

	_, err := deps.service.GetMine(ctx, p)
	assert.ErrorIs(t, err, salarystructureerrors.ErrSalaryStructureNotFound)

	deps.repo.active = &salarystructure.SalaryStructure{ID: uuid.New(), EmployeeID: p.UserID, BasicSalary: d("1000"), IsActive: true}
	resp, err := deps.service.GetMine(ctx, p)
	assert.NoError(t, err)
	assert.Equal(t, "1000.00", resp.NetSalary)

	_, err = deps.service.GetActive(ctx, "bad")
	assert.ErrorIs(t, err, salarystructureerrors.ErrInvalidEmployeeID)

	deps.repo.history = []salarystructure.SalaryStructure{*deps.repo.active, {ID: uuid.New(), EmployeeID: p.UserID}}
	rows, err := deps.service.History(ctx, p.UserID.String())
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
}
