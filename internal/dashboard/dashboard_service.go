package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"dayflow-hrms/internal/attendance"
	"dayflow-hrms/internal/identity"
	"dayflow-hrms/internal/leave"
	"dayflow-hrms/internal/notification"
	"dayflow-hrms/internal/payroll"
	"dayflow-hrms/internal/shared/dbutil"
	"dayflow-hrms/internal/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	HRCacheKeyPrefix = "dashboard:hr:"
	HRCacheTTL       = 60 * time.Second
)

func HRCacheKey(date time.Time) string {
	return HRCacheKeyPrefix + date.Format("2006-01-02")
}

//go:generate mockgen -source=dashboard_service.go -destination=mock/dashboard_service_mock.go -package=mock
type Service interface {
	Personal(ctx context.Context, p identity.Principal) (PersonalResponse, error)
	HR(ctx context.Context) (HRResponse, error)
}

// Sources bundles the repositories the dashboard reads from.
type Sources struct {
	Attendances   attendance.Repository
	Leaves        leave.Repository
	Payrolls      payroll.Repository
	Users         user.Repository
	Notifications notification.Repository
}

type service struct {
	src    Sources
	policy attendance.Policy
	rdb    redis.Cmdable
	sf     *singleflight.Group
	now    func() time.Time
	logger *zap.Logger
}

// NewService builds the dashboard. rdb may be nil, in which case HR metrics
// are computed on every call.
func NewService(src Sources, policy attendance.Policy, rdb redis.Cmdable, logger ...*zap.Logger) Service {
	l := zap.L().Named("dashboard.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.service")
	}
	return &service{
		src:    src,
		policy: policy,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		now:    time.Now,
		logger: l,
	}
}

func monthRange(day time.Time) (time.Time, time.Time) {
	from := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

func (s *service) Personal(ctx context.Context, p identity.Principal) (PersonalResponse, error) {
	today := s.policy.DateOf(s.now())
	resp := PersonalResponse{Date: today.Format("2006-01-02")}
	employeeID := p.UserID

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rec, err := s.src.Attendances.FindByEmployeeAndDate(gctx, employeeID, today)
		if err != nil {
			if dbutil.IsNotFound(err) {
				return nil
			}
			return err
		}
		resp.TodayAttendance = attendanceSnapshot(*rec)
		return nil
	})

	g.Go(func() error {
		n, err := s.src.Leaves.CountByStatus(gctx, leave.StatusPending, &employeeID)
		resp.PendingLeaves = n
		return err
	})

	g.Go(func() error {
		from, to := monthRange(today)
		rows, err := s.src.Payrolls.FindAll(gctx, payroll.Query{EmployeeID: &employeeID, From: &from, To: &to})
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			resp.CurrentPayroll = payrollSnapshot(rows[0])
		}
		return nil
	})

	g.Go(func() error {
		n, err := s.src.Notifications.CountUnread(gctx, employeeID)
		resp.UnreadNotifications = n
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("personal dashboard failed", zap.String("user_id", employeeID.String()), zap.Error(err))
		return PersonalResponse{}, err
	}
	return resp, nil
}

func (s *service) HR(ctx context.Context) (HRResponse, error) {
	today := s.policy.DateOf(s.now())
	cacheKey := HRCacheKey(today)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp HRResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("hr dashboard cache unavailable", zap.Error(err))
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		resp, err := s.computeHR(ctx, today)
		if err != nil {
			return nil, err
		}
		if s.rdb != nil {
			if payload, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, payload, HRCacheTTL).Err(); err != nil {
					s.logger.Warn("hr dashboard cache store failed", zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		s.logger.Error("hr dashboard failed", zap.Error(err))
		return HRResponse{}, err
	}
	return v.(HRResponse), nil
}

func (s *service) computeHR(ctx context.Context, today time.Time) (HRResponse, error) {
	resp := HRResponse{Date: today.Format("2006-01-02")}
	var totals payroll.Totals

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		resp.TotalEmployees, err = s.src.Users.CountByRole(gctx, identity.RoleEmployee)
		return err
	})
	g.Go(func() (err error) {
		resp.PresentToday, err = s.src.Attendances.CountByDateAndStatus(gctx, today, attendance.StatusPresent)
		return err
	})
	g.Go(func() (err error) {
		resp.HalfDayToday, err = s.src.Attendances.CountByDateAndStatus(gctx, today, attendance.StatusHalfDay)
		return err
	})
	g.Go(func() (err error) {
		resp.OnLeaveToday, err = s.src.Leaves.CountOnLeave(gctx, today)
		return err
	})
	g.Go(func() (err error) {
		resp.PendingLeaves, err = s.src.Leaves.CountByStatus(gctx, leave.StatusPending, nil)
		return err
	})
	g.Go(func() (err error) {
		from, to := monthRange(today)
		totals, err = s.src.Payrolls.Summarize(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return HRResponse{}, err
	}

	// Employees without a PRESENT, HALF_DAY or approved leave today count as absent.
	absent := resp.TotalEmployees - resp.PresentToday - resp.HalfDayToday - resp.OnLeaveToday
	if absent < 0 {
		absent = 0
	}
	resp.AbsentToday = absent
	resp.PayrollsThisMonth = totals.Count
	resp.PayrollNetThisMonth = totals.TotalNetSalary.StringFixed(2)
	return resp, nil
}

func attendanceSnapshot(r attendance.Record) *AttendanceSnapshot {
	snap := &AttendanceSnapshot{
		Date:         r.Date.Format("2006-01-02"),
		Status:       r.Status,
		CheckInTime:  r.CheckInTime,
		CheckOutTime: r.CheckOutTime,
		IsLate:       r.IsLate,
	}
	if r.WorkingHours.Valid {
		v := r.WorkingHours.Decimal.StringFixed(2)
		snap.WorkingHours = &v
	}
	return snap
}

func payrollSnapshot(p payroll.Payroll) *PayrollSnapshot {
	snap := &PayrollSnapshot{
		ID:        p.ID.String(),
		Month:     p.Month.Format("2006-01"),
		Status:    p.Status,
		NetSalary: p.NetSalary.StringFixed(2),
	}
	if p.PaymentDate != nil {
		v := p.PaymentDate.Format("2006-01-02")
		snap.PaymentDate = &v
	}
	return snap
}
