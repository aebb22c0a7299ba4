package regularization_test

import (
	"context"
	"testing"
	"time"

	"dayflow-hrms/internal/attendance"
	"dayflow-hrms/internal/regularization"
	"dayflow-hrms/internal/shared/dbutil/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRepository_FindAllFilters(t *testing.T) {
	db := dbtest.OpenSQLite(t, &regularization.Regularization{})
	repo := regularization.NewRepository(db)
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	rows := []*regularization.Regularization{
		pending(alice, clock("09:00:00"), nil),
		pending(alice, nil, clock("18:00:00")),
		pending(bob, clock("09:15:00"), nil),
	}
	rows[1].Status = regularization.StatusRejected
	for _, r := range rows {
		assert.NoError(t, repo.Create(ctx, r))
	}

	all, err := repo.FindAll(ctx, "", nil)
	assert.NoError(t, err)
	assert.Len(t, all, 3)

	open, err := repo.FindAll(ctx, regularization.StatusPending, nil)
	assert.NoError(t, err)
	assert.Len(t, open, 2)

	mine, err := repo.FindAll(ctx, regularization.StatusPending, &alice)
	assert.NoError(t, err)
	assert.Len(t, mine, 1)

	byEmployee, err := repo.FindByEmployee(ctx, alice)
	assert.NoError(t, err)
	assert.Len(t, byEmployee, 2)

	n, err := repo.CountByStatus(ctx, regularization.StatusPending)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestService_ApproveUpsertsAttendance(t *testing.T) {
	db := dbtest.OpenSQLite(t, &regularization.Regularization{}, &attendance.Record{})
	sqlDB, err := db.DB()
	assert.NoError(t, err)

	ctx := context.Background()
	policy := attendance.DefaultPolicy()
	repo := regularization.NewRepository(db)
	attendances := attendance.NewRepository(db)
	svc := regularization.NewService(sqlDB, repo, attendances, policy, nil)

	employeeID := uuid.New()
	reg := pending(employeeID, clock("09:00:00"), clock("18:00:00"))
	assert.NoError(t, repo.Create(ctx, reg))

	_, err = svc.Decide(ctx, hr(), reg.ID.String(), "approve")
	assert.NoError(t, err)

	rec, err := attendances.FindByEmployeeAndDate(ctx, employeeID, workday)
	if assert.NoError(t, err) {
		assert.Equal(t, attendance.StatusPresent, rec.Status)
		assert.Equal(t, "9.00", rec.WorkingHours.Decimal.StringFixed(2))
		assert.Equal(t, "1.00", rec.OvertimeHours.Decimal.StringFixed(2))
		assert.True(t, policy.At(workday, 9*time.Hour).Equal(*rec.CheckInTime))
	}

	stored, err := repo.FindByID(ctx, reg.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, regularization.StatusApproved, stored.Status)
	assert.NotNil(t, stored.ReviewedAt)

	// A second approval of a corrected date updates the same row.
	again := pending(employeeID, nil, clock("17:00:00"))
	assert.NoError(t, repo.Create(ctx, again))
	_, err = svc.Decide(ctx, hr(), again.ID.String(), "approve")
	assert.NoError(t, err)

	rows, err := attendances.FindByEmployee(ctx, employeeID, nil, nil)
	assert.NoError(t, err)
	if assert.Len(t, rows, 1) {
		assert.True(t, rows[0].IsEarlyDeparture)
		assert.Equal(t, "8.00", rows[0].WorkingHours.Decimal.StringFixed(2))
	}
}

func TestRepository_UpdateIfStatus(t *testing.T) {
	db := dbtest.OpenSQLite(t, &regularization.Regularization{})
	repo := regularization.NewRepository(db)
	ctx := context.Background()

	reg := pending(uuid.New(), clock("09:00:00"), nil)
	assert.NoError(t, repo.Create(ctx, reg))

	reviewer := uuid.New()
	now := time.Now().UTC()
	approve := *reg
	approve.Status = regularization.StatusApproved
	approve.ReviewedBy = &reviewer
	approve.ReviewedAt = &now

	ok, err := repo.UpdateIfStatus(ctx, &approve, regularization.StatusPending)
	assert.NoError(t, err)
	assert.True(t, ok)

	reject := *reg
	reject.Status = regularization.StatusRejected
	ok, err = repo.UpdateIfStatus(ctx, &reject, regularization.StatusPending)
	assert.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindByID(ctx, reg.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, regularization.StatusApproved, stored.Status)
}
