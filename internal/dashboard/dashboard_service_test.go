package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"dayflow-hrms/internal/attendance"
	"dayflow-hrms/internal/dashboard"
	"dayflow-hrms/internal/identity"
	"dayflow-hrms/internal/leave"
	"dayflow-hrms/internal/notification"
	"dayflow-hrms/internal/payroll"
	"dayflow-hrms/internal/user"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeAttendances struct {
	attendance.Repository
	today  *attendance.Record
	counts map[string]int64
}

func (f *fakeAttendances) FindByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date time.Time) (*attendance.Record, error) {
	if f.today == nil {
		return &attendance.Record{}, gorm.ErrRecordNotFound
	}
	return f.today, nil
}

func (f *fakeAttendances) CountByDateAndStatus(ctx context.Context, date time.Time, status string) (int64, error) {
	return f.counts[status], nil
}

type fakeLeaves struct {
	leave.Repository
	pending int64
	mine    int64
	onLeave int64
}

func (f *fakeLeaves) CountByStatus(ctx context.Context, status string, employeeID *uuid.UUID) (int64, error) {
	if employeeID != nil {
		return f.mine, nil
	}
	return f.pending, nil
}

func (f *fakeLeaves) CountOnLeave(ctx context.Context, date time.Time) (int64, error) {
	return f.onLeave, nil
}

type fakePayrolls struct {
	payroll.Repository
	rows   []payroll.Payroll
	totals payroll.Totals
	calls  int32
	err    error
}

func (f *fakePayrolls) FindAll(ctx context.Context, q payroll.Query) ([]payroll.Payroll, error) {
	return f.rows, nil
}

func (f *fakePayrolls) Summarize(ctx context.Context, from, to time.Time) (payroll.Totals, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.totals, f.err
}

type fakeUsers struct {
	user.Repository
	employees int64
}

func (f *fakeUsers) CountByRole(ctx context.Context, role string) (int64, error) {
	return f.employees, nil
}

type fakeNotifications struct {
	notification.Repository
	unread int64
}

func (f *fakeNotifications) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return f.unread, nil
}

type dashboardDeps struct {
	attendances   *fakeAttendances
	leaves        *fakeLeaves
	payrolls      *fakePayrolls
	users         *fakeUsers
	notifications *fakeNotifications
}

func newDeps() *dashboardDeps {
	return &dashboardDeps{
		attendances:   &fakeAttendances{counts: map[string]int64{}},
		leaves:        &fakeLeaves{},
		payrolls:      &fakePayrolls{},
		users:         &fakeUsers{},
		notifications: &fakeNotifications{},
	}
}

func (d *dashboardDeps) sources() dashboard.Sources {
	return dashboard.Sources{
		Attendances:   d.attendances,
		Leaves:        d.leaves,
		Payrolls:      d.payrolls,
		Users:         d.users,
		Notifications: d.notifications,
	}
}

func TestService_Personal(t *testing.T) {
	ctx := context.Background()
	p := identity.Principal{UserID: uuid.New(), Role: identity.RoleEmployee}

	t.Run("everything present", func(t *testing.T) {
		deps := newDeps()
		in := time.Date(2026, 1, 12, 9, 5, 0, 0, time.UTC)
		deps.attendances.today = &attendance.Record{
			EmployeeID:  p.UserID,
			Date:        time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
			CheckInTime: &in,
			Status:      attendance.StatusPresent,
			IsLate:      true,
		}
		deps.leaves.mine = 2
		deps.notifications.unread = 5
		deps.payrolls.rows = []payroll.Payroll{{
			ID:        uuid.New(),
			Month:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Status:    payroll.StatusDraft,
			NetSalary: decimal.RequireFromString("44000"),
		}}

		svc := dashboard.NewService(deps.sources(), attendance.DefaultPolicy(), nil)
		resp, err := svc.Personal(ctx, p)

		assert.NoError(t, err)
		if assert.NotNil(t, resp.TodayAttendance) {
			assert.True(t, resp.TodayAttendance.IsLate)
			assert.Nil(t, resp.TodayAttendance.WorkingHours)
		}
		assert.Equal(t, int64(2), resp.PendingLeaves)
		assert.Equal(t, int64(5), resp.UnreadNotifications)
		if assert.NotNil(t, resp.CurrentPayroll) {
			assert.Equal(t, "44000.00", resp.CurrentPayroll.NetSalary)
		}
	})

	t.Run("nothing recorded yet", func(t *testing.T) {
		deps := newDeps()
		svc := dashboard.NewService(deps.sources(), attendance.DefaultPolicy(), nil)

		resp, err := svc.Personal(ctx, p)

		assert.NoError(t, err)
		assert.Nil(t, resp.TodayAttendance)
		assert.Nil(t, resp.CurrentPayroll)
		assert.Equal(t, time.Now().UTC().Format("2006-01-02"), resp.Date)
	})
}

func expectedHR(today string) dashboard.HRResponse {
	return dashboard.HRResponse{
		Date:                today,
		TotalEmployees:      10,
		PresentToday:        6,
		HalfDayToday:        1,
		OnLeaveToday:        2,
		AbsentToday:         1,
		PendingLeaves:       3,
		PayrollsThisMonth:   4,
		PayrollNetThisMonth: "180000.00",
	}
}

func seedHR(deps *dashboardDeps) {
	deps.users.employees = 10
	deps.attendances.counts[attendance.StatusPresent] = 6
	deps.attendances.counts[attendance.StatusHalfDay] = 1
	deps.leaves.onLeave = 2
	deps.leaves.pending = 3
	deps.payrolls.totals = payroll.Totals{Count: 4, TotalNetSalary: decimal.RequireFromString("180000")}
}

func TestService_HR(t *testing.T) {
	ctx := context.Background()
	policy := attendance.DefaultPolicy()
	today := policy.DateOf(time.Now())
	key := dashboard.HRCacheKey(today)

	t.Run("computes and caches on miss", func(t *testing.T) {
		deps := newDeps()
		seedHR(deps)
		client, mock := redismock.NewClientMock()

		want := expectedHR(today.Format("2006-01-02"))
		payload, _ := json.Marshal(want)
		mock.ExpectGet(key).RedisNil()
		mock.ExpectSet(key, payload, dashboard.HRCacheTTL).SetVal("OK")

		svc := dashboard.NewService(deps.sources(), policy, client)
		got, err := svc.HR(ctx)

		assert.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("served from cache", func(t *testing.T) {
		deps := newDeps()
		client, mock := redismock.NewClientMock()

		want := expectedHR(today.Format("2006-01-02"))
		payload, _ := json.Marshal(want)
		mock.ExpectGet(key).SetVal(string(payload))

		svc := dashboard.NewService(deps.sources(), policy, client)
		got, err := svc.HR(ctx)

		assert.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, int32(0), deps.payrolls.calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis down still answers", func(t *testing.T) {
		deps := newDeps()
		seedHR(deps)
		client, mock := redismock.NewClientMock()

		payload, _ := json.Marshal(expectedHR(today.Format("2006-01-02")))
		mock.ExpectGet(key).SetErr(errors.New("connection refused"))
		mock.ExpectSet(key, payload, dashboard.HRCacheTTL).SetErr(errors.New("connection refused"))

		svc := dashboard.NewService(deps.sources(), policy, client)
		got, err := svc.HR(ctx)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), got.AbsentToday)
	})

	t.Run("absent never negative", func(t *testing.T) {
		deps := newDeps()
		deps.users.employees = 1
		deps.attendances.counts[attendance.StatusPresent] = 3

		svc := dashboard.NewService(deps.sources(), policy, nil)
		got, err := svc.HR(ctx)

		assert.NoError(t, err)
		assert.Equal(t, int64(0), got.AbsentToday)
	})

	t.Run("repository error", func(t *testing.T) {
		deps := newDeps()
		deps.payrolls.err = errors.New("db down")

		svc := dashboard.NewService(deps.sources(), policy, nil)
		_, err := svc.HR(ctx)

		assert.Error(t, err)
	})
}
