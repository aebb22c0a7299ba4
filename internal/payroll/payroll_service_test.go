package payroll_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"dayflow-hrms/internal/identity"
	"dayflow-hrms/internal/notification"
	notificationMock "dayflow-hrms/internal/notification/mock"
	"dayflow-hrms/internal/payroll"
	payrollerrors "dayflow-hrms/internal/payroll/errors"
	"dayflow-hrms/internal/salarystructure"
	salarystructureMock "dayflow-hrms/internal/salarystructure/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fakePayrollRepository struct {
	findByIDFn  func(ctx context.Context, id string) (*payroll.Payroll, error)
	findAllFn   func(ctx context.Context, q payroll.Query) ([]payroll.Payroll, error)
	summarizeFn func(ctx context.Context, from, to time.Time) (payroll.Totals, error)

	exists    bool
	createErr error

	created    []payroll.Payroll
	updated    []payroll.Payroll
	components []payroll.Component
}

func (f *fakePayrollRepository) WithTx(tx *sql.Tx) payroll.Repository { return f }

func (f *fakePayrollRepository) Create(ctx context.Context, p *payroll.Payroll) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *p)
	return nil
}

func (f *fakePayrollRepository) Update(ctx context.Context, p *payroll.Payroll) error {
	f.updated = append(f.updated, *p)
	return nil
}

func (f *fakePayrollRepository) FindByID(ctx context.Context, id string) (*payroll.Payroll, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return &payroll.Payroll{}, gorm.ErrRecordNotFound
}

func (f *fakePayrollRepository) FindAll(ctx context.Context, q payroll.Query) ([]payroll.Payroll, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx, q)
	}
	return nil, nil
}

func (f *fakePayrollRepository) ExistsForMonth(ctx context.Context, employeeID uuid.UUID, month time.Time) (bool, error) {
	return f.exists, nil
}

func (f *fakePayrollRepository) Summarize(ctx context.Context, from, to time.Time) (payroll.Totals, error) {
	if f.summarizeFn != nil {
		return f.summarizeFn(ctx, from, to)
	}
	return payroll.Totals{}, nil
}

func (f *fakePayrollRepository) CreateComponent(ctx context.Context, c *payroll.Component) error {
	for _, existing := range f.components {
		if existing.Name == c.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	f.components = append(f.components, *c)
	return nil
}

func (f *fakePayrollRepository) FindComponents(ctx context.Context, activeOnly bool) ([]payroll.Component, error) {
	return f.components, nil
}

type payrollServiceDeps struct {
	db         *sql.DB
	sqlMock    sqlmock.Sqlmock
	service    payroll.Service
	repo       *fakePayrollRepository
	structures *salarystructureMock.MockRepository
	notifier   *notificationMock.MockNotifier
}

func setupPayrollServiceTest(t *testing.T) *payrollServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctrl := gomock.NewController(t)
	repo := &fakePayrollRepository{}
	structures := salarystructureMock.NewMockRepository(ctrl)
	notifier := notificationMock.NewMockNotifier(ctrl)

	return &payrollServiceDeps{
		db:         db,
		sqlMock:    sqlMock,
		service:    payroll.NewService(db, repo, structures, notifier),
		repo:       repo,
		structures: structures,
		notifier:   notifier,
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

func hr() identity.Principal {
	return identity.Principal{UserID: uuid.New(), Role: identity.RoleHR}
}

func activeStructure(employeeID uuid.UUID) *salarystructure.SalaryStructure {
	return &salarystructure.SalaryStructure{
		ID:            uuid.New(),
		EmployeeID:    employeeID,
		BasicSalary:   dec("50000"),
		HRA:           dec("10000"),
		ProvidentFund: dec("6000"),
		IncomeTax:     dec("5000"),
		EffectiveFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	}
}

func TestPayrollService_Generate(t *testing.T) {
	ctx := context.Background()
	actor := hr()

	t.Run("from active structure", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		employeeID := uuid.New()
		expectTx(t, deps.sqlMock, true)

		deps.structures.EXPECT().WithTx(gomock.Any()).Return(deps.structures)
		deps.structures.EXPECT().FindActive(gomock.Any(), employeeID).Return(activeStructure(employeeID), nil)
		deps.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in notification.NotifyInput) (*notification.NotificationResponse, error) {
				assert.Equal(t, employeeID, in.RecipientID)
				assert.Equal(t, notification.TypePayrollGenerated, in.Type)
				return &notification.NotificationResponse{}, nil
			})

		resp, err := deps.service.Generate(ctx, actor, payroll.GeneratePayrollRequest{
			EmployeeID: employeeID.String(),
			Month:      "2026-01",
		})

		assert.NoError(t, err)
		assert.Equal(t, "2026-01", resp.Month)
		assert.Equal(t, payroll.StatusDraft, resp.Status)
		assert.Equal(t, "50000.00", resp.BasicSalary)
		assert.Equal(t, "10000.00", resp.Allowances)
		assert.Equal(t, "11000.00", resp.Deductions)
		assert.Equal(t, "5000.00", resp.Tax)
		assert.Equal(t, "60000.00", resp.GrossSalary)
		assert.Equal(t, "44000.00", resp.NetSalary)
		assert.Nil(t, resp.PaymentDate)

		if assert.Len(t, deps.repo.created, 1) {
			got := deps.repo.created[0]
			assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), got.Month)
			assert.Equal(t, actor.UserID, *got.GeneratedBy)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("no active structure", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		employeeID := uuid.New()
		expectTx(t, deps.sqlMock, false)

		deps.structures.EXPECT().WithTx(gomock.Any()).Return(deps.structures)
		deps.structures.EXPECT().FindActive(gomock.Any(), employeeID).Return(&salarystructure.SalaryStructure{}, gorm.ErrRecordNotFound)

		_, err := deps.service.Generate(ctx, actor, payroll.GeneratePayrollRequest{EmployeeID: employeeID.String(), Month: "2026-01"})

		assert.ErrorIs(t, err, payrollerrors.ErrSalaryStructureNotFound)
		assert.Empty(t, deps.repo.created)
	})

	t.Run("second generate for the month conflicts", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		employeeID := uuid.New()
		deps.repo.exists = true
		expectTx(t, deps.sqlMock, false)

		deps.structures.EXPECT().WithTx(gomock.Any()).Return(deps.structures)
		deps.structures.EXPECT().FindActive(gomock.Any(), employeeID).Return(activeStructure(employeeID), nil)

		_, err := deps.service.Generate(ctx, actor, payroll.GeneratePayrollRequest{EmployeeID: employeeID.String(), Month: "2026-01"})

		assert.ErrorIs(t, err, payrollerrors.ErrPayrollExists)
	})

	t.Run("unique constraint race conflicts", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		employeeID := uuid.New()
		deps.repo.createErr = gorm.ErrDuplicatedKey
		expectTx(t, deps.sqlMock, false)

		deps.structures.EXPECT().WithTx(gomock.Any()).Return(deps.structures)
		deps.structures.EXPECT().FindActive(gomock.Any(), employeeID).Return(activeStructure(employeeID), nil)

		_, err := deps.service.Generate(ctx, actor, payroll.GeneratePayrollRequest{EmployeeID: employeeID.String(), Month: "2026-01"})

		assert.ErrorIs(t, err, payrollerrors.ErrPayrollExists)
	})

	t.Run("bad month", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)

		_, err := deps.service.Generate(ctx, actor, payroll.GeneratePayrollRequest{EmployeeID: uuid.NewString(), Month: "2026-13"})

		assert.ErrorIs(t, err, payrollerrors.ErrInvalidMonthFormat)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("notification failure does not fail generate", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		employeeID := uuid.New()
		expectTx(t, deps.sqlMock, true)

		deps.structures.EXPECT().WithTx(gomock.Any()).Return(deps.structures)
		deps.structures.EXPECT().FindActive(gomock.Any(), employeeID).Return(activeStructure(employeeID), nil)
		deps.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil, errors.New("broker down"))

		_, err := deps.service.Generate(ctx, actor, payroll.GeneratePayrollRequest{EmployeeID: employeeID.String(), Month: "2026-02"})

		assert.NoError(t, err)
	})
}

func TestPayrollService_Create(t *testing.T) {
	ctx := context.Background()
	basic := dec("50000")

	t.Run("manual figures", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		employeeID := uuid.New()
		expectTx(t, deps.sqlMock, true)

		deps.structures.EXPECT().WithTx(gomock.Any()).Return(deps.structures)
		deps.structures.EXPECT().EmployeeExists(gomock.Any(), employeeID).Return(true, nil)
		deps.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(&notification.NotificationResponse{}, nil)

		resp, err := deps.service.Create(ctx, hr(), payroll.CreatePayrollRequest{
			EmployeeID:  employeeID.String(),
			Month:       "2026-01",
			BasicSalary: &basic,
			Allowances:  dec("10000"),
			Deductions:  dec("5000"),
		})

		assert.NoError(t, err)
		assert.Equal(t, "60000.00", resp.GrossSalary)
		assert.Equal(t, "55000.00", resp.NetSalary)
	})

	t.Run("unknown employee", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		employeeID := uuid.New()
		expectTx(t, deps.sqlMock, false)

		deps.structures.EXPECT().WithTx(gomock.Any()).Return(deps.structures)
		deps.structures.EXPECT().EmployeeExists(gomock.Any(), employeeID).Return(false, nil)

		_, err := deps.service.Create(ctx, hr(), payroll.CreatePayrollRequest{EmployeeID: employeeID.String(), Month: "2026-01", BasicSalary: &basic})

		assert.ErrorIs(t, err, payrollerrors.ErrEmployeeNotFound)
	})

	t.Run("negative figure", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)

		_, err := deps.service.Create(ctx, hr(), payroll.CreatePayrollRequest{
			EmployeeID:  uuid.NewString(),
			Month:       "2026-01",
			BasicSalary: &basic,
			Tax:         dec("-1"),
		})

		assert.ErrorIs(t, err, payrollerrors.ErrInvalidMoneyValue)
	})
}

func existing(status string) *payroll.Payroll {
	p := &payroll.Payroll{
		ID:          uuid.New(),
		EmployeeID:  uuid.New(),
		Month:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		BasicSalary: dec("50000"),
		Allowances:  dec("10000"),
		Deductions:  dec("5000"),
		Tax:         decimal.Zero,
		GrossSalary: dec("60000"),
		NetSalary:   dec("55000"),
		Status:      status,
	}
	return p
}

func TestPayrollService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("recomputes derived figures", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		row := existing(payroll.StatusProcessed)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.Payroll, error) { return row, nil }

		tax := dec("2500")
		resp, err := deps.service.Update(ctx, row.ID.String(), payroll.UpdatePayrollRequest{Tax: &tax})

		assert.NoError(t, err)
		assert.Equal(t, "50000.00", resp.BasicSalary)
		assert.Equal(t, "60000.00", resp.GrossSalary)
		assert.Equal(t, "52500.00", resp.NetSalary)
	})

	t.Run("paid payroll is frozen", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		row := existing(payroll.StatusPaid)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.Payroll, error) { return row, nil }

		basic := dec("1")
		_, err := deps.service.Update(ctx, row.ID.String(), payroll.UpdatePayrollRequest{BasicSalary: &basic})

		assert.ErrorIs(t, err, payrollerrors.ErrPayrollPaid)
		assert.Empty(t, deps.repo.updated)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Update(ctx, uuid.NewString(), payroll.UpdatePayrollRequest{})

		assert.ErrorIs(t, err, payrollerrors.ErrPayrollNotFound)
	})
}

func TestPayrollService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid status", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)

		_, err := deps.service.UpdateStatus(ctx, uuid.NewString(), payroll.UpdateStatusRequest{Status: "CANCELLED"})

		assert.ErrorIs(t, err, payrollerrors.ErrInvalidStatus)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("processed keeps payment date empty", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		row := existing(payroll.StatusDraft)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.Payroll, error) { return row, nil }

		resp, err := deps.service.UpdateStatus(ctx, row.ID.String(), payroll.UpdateStatusRequest{Status: "processed"})

		assert.NoError(t, err)
		assert.Equal(t, payroll.StatusProcessed, resp.Status)
		assert.Nil(t, resp.PaymentDate)
	})

	t.Run("paid stamps payment date and notifies", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		row := existing(payroll.StatusProcessed)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.Payroll, error) { return row, nil }
		deps.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in notification.NotifyInput) (*notification.NotificationResponse, error) {
				assert.Equal(t, notification.TypePayrollPaid, in.Type)
				assert.Equal(t, notification.PriorityHigh, in.Priority)
				assert.Equal(t, row.EmployeeID, in.RecipientID)
				return &notification.NotificationResponse{}, nil
			})

		resp, err := deps.service.UpdateStatus(ctx, row.ID.String(), payroll.UpdateStatusRequest{Status: payroll.StatusPaid})

		assert.NoError(t, err)
		if assert.NotNil(t, resp.PaymentDate) {
			assert.Equal(t, time.Now().UTC().Format("2006-01-02"), *resp.PaymentDate)
		}
	})

	t.Run("payment date is set only once", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		paidOn := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
		row := existing(payroll.StatusPaid)
		row.PaymentDate = &paidOn
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.Payroll, error) { return row, nil }

		resp, err := deps.service.UpdateStatus(ctx, row.ID.String(), payroll.UpdateStatusRequest{Status: payroll.StatusPaid})

		assert.NoError(t, err)
		assert.Equal(t, "2026-01-31", *resp.PaymentDate)
	})
}

func TestPayrollService_Reads(t *testing.T) {
	ctx := context.Background()

	t.Run("owner and HR can read, others cannot", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		row := existing(payroll.StatusDraft)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.Payroll, error) { return row, nil }

		_, err := deps.service.GetByID(ctx, identity.Principal{UserID: row.EmployeeID, Role: identity.RoleEmployee}, row.ID.String())
		assert.NoError(t, err)

		_, err = deps.service.GetByID(ctx, hr(), row.ID.String())
		assert.NoError(t, err)

		_, err = deps.service.GetByID(ctx, identity.Principal{UserID: uuid.New(), Role: identity.RoleEmployee}, row.ID.String())
		assert.ErrorIs(t, err, identity.ErrNotOwner)
	})

	t.Run("payslip is a pdf", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		row := existing(payroll.StatusPaid)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.Payroll, error) { return row, nil }

		doc, name, err := deps.service.Payslip(ctx, identity.Principal{UserID: row.EmployeeID, Role: identity.RoleEmployee}, row.ID.String())

		assert.NoError(t, err)
		assert.Contains(t, name, "payslip-2026-01-")
		assert.True(t, len(doc) > 0)
		assert.Equal(t, "%PDF-1.4", string(doc[:8]))
		assert.Contains(t, string(doc), "55000.00")
	})

	t.Run("list filter translates to month range", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		var got payroll.Query
		deps.repo.findAllFn = func(ctx context.Context, q payroll.Query) ([]payroll.Payroll, error) {
			got = q
			return []payroll.Payroll{*existing(payroll.StatusPaid)}, nil
		}

		rows, err := deps.service.List(ctx, payroll.ListFilter{Status: "paid", Year: 2026, Month: 3})

		assert.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.Equal(t, payroll.StatusPaid, got.Status)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *got.From)
		assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *got.To)
	})

	t.Run("month without year", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)

		_, err := deps.service.List(ctx, payroll.ListFilter{Month: 3})

		assert.ErrorIs(t, err, payrollerrors.ErrInvalidPeriodFilter)
	})

	t.Run("summary", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		deps.repo.summarizeFn = func(ctx context.Context, from, to time.Time) (payroll.Totals, error) {
			assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), from)
			assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), to)
			return payroll.Totals{Count: 2, TotalNetSalary: dec("99000.5"), TotalGrossSalary: dec("120000")}, nil
		}

		resp, err := deps.service.Summary(ctx, payroll.SummaryFilter{Year: 2026})

		assert.NoError(t, err)
		assert.Equal(t, int64(2), resp.PayrollCount)
		assert.Nil(t, resp.Month)
		assert.Equal(t, "99000.50", resp.Summary.TotalNetSalary)
		assert.Equal(t, "0.00", resp.Summary.TotalTax)
	})
}

func TestPayrollService_Components(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)

	resp, err := deps.service.CreateComponent(ctx, payroll.CreateComponentRequest{Name: "Meal", ComponentType: "allowance"})
	assert.NoError(t, err)
	assert.Equal(t, payroll.ComponentAllowance, resp.ComponentType)
	assert.True(t, resp.IsActive)

	_, err = deps.service.CreateComponent(ctx, payroll.CreateComponentRequest{Name: "Meal", ComponentType: "DEDUCTION"})
	assert.ErrorIs(t, err, payrollerrors.ErrComponentExists)

	_, err = deps.service.CreateComponent(ctx, payroll.CreateComponentRequest{Name: "Bonus", ComponentType: "BONUS"})
	assert.ErrorIs(t, err, payrollerrors.ErrInvalidComponentType)

	list, err := deps.service.ListComponents(ctx, false)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
}
