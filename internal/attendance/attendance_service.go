package attendance

import (
	"context"
	"database/sql"
	"strings"
	"time"

	attendanceerrors "dayflow-hrms/internal/attendance/errors"
	"dayflow-hrms/internal/config"
	"dayflow-hrms/internal/identity"
	"dayflow-hrms/internal/shared/contextutil"
	"dayflow-hrms/internal/shared/dbutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	CheckIn(ctx context.Context, p identity.Principal, req CheckInRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, p identity.Principal, req CheckOutRequest) (AttendanceResponse, error)
	Today(ctx context.Context, p identity.Principal) (*AttendanceResponse, error)
	ListMine(ctx context.Context, p identity.Principal, filter ListFilter) ([]AttendanceResponse, error)
	List(ctx context.Context, filter ListFilter) ([]AttendanceResponse, error)
	GetByID(ctx context.Context, p identity.Principal, id string) (AttendanceResponse, error)
	MonthlySummary(ctx context.Context, p identity.Principal, employeeID string, month, year int) (SummaryResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	policy Policy
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, policy Policy, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &service{db: db, repo: repo, policy: policy, logger: l}
}

// resolveTime returns now, or today's date at the given HH:MM[:SS] clock.
func (s *service) resolveTime(now time.Time, clock string) (time.Time, error) {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return now, nil
	}
	offset, err := config.ParseClock(clock)
	if err != nil {
		return time.Time{}, attendanceerrors.ErrInvalidClock
	}
	return s.policy.At(s.policy.DateOf(now), offset), nil
}

func (s *service) CheckIn(ctx context.Context, p identity.Principal, req CheckInRequest) (AttendanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	now := time.Now()
	today := s.policy.DateOf(now)
	checkIn, err := s.resolveTime(now, req.CheckInTime)
	if err != nil {
		return AttendanceResponse{}, err
	}

	log.Debug("check-in requested",
		zap.String("employee_id", p.UserID.String()),
		zap.Time("check_in_time", checkIn),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("check-in begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	_, err = qtx.FindByEmployeeAndDate(ctx, p.UserID, today)
	if err == nil {
		log.Warn("check-in duplicate", zap.String("employee_id", p.UserID.String()))
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedIn
	}
	if !dbutil.IsNotFound(err) {
		log.Error("check-in lookup failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	rec := &Record{
		ID:          uuid.New(),
		EmployeeID:  p.UserID,
		Date:        today,
		CheckInTime: &checkIn,
		Status:      StatusPresent,
		Notes:       req.Notes,
	}
	if err := s.policy.Apply(rec); err != nil {
		return AttendanceResponse{}, err
	}

	if err := qtx.Create(ctx, rec); err != nil {
		if dbutil.IsUniqueViolation(err) {
			log.Warn("check-in lost race", zap.String("employee_id", p.UserID.String()))
			return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedIn
		}
		log.Error("check-in persist failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("check-in commit failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	log.Info("checked in",
		zap.String("attendance_id", rec.ID.String()),
		zap.String("employee_id", p.UserID.String()),
		zap.Bool("is_late", rec.IsLate),
	)
	return mapToResponse(*rec, s.policy.Location), nil
}

func (s *service) CheckOut(ctx context.Context, p identity.Principal, req CheckOutRequest) (AttendanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	now := time.Now()
	today := s.policy.DateOf(now)
	checkOut, err := s.resolveTime(now, req.CheckOutTime)
	if err != nil {
		return AttendanceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("check-out begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rec, err := qtx.FindByEmployeeAndDate(ctx, p.UserID, today)
	if err != nil {
		if dbutil.IsNotFound(err) {
			log.Warn("check-out without check-in", zap.String("employee_id", p.UserID.String()))
			return AttendanceResponse{}, attendanceerrors.ErrCheckInNotFound
		}
		log.Error("check-out lookup failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	if rec.CheckOutTime != nil {
		log.Warn("check-out duplicate", zap.String("attendance_id", rec.ID.String()))
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedOut
	}

	rec.CheckOutTime = &checkOut
	if strings.TrimSpace(req.Notes) != "" {
		rec.Notes = req.Notes
	}
	if err := s.policy.Apply(rec); err != nil {
		log.Warn("check-out rejected", zap.String("attendance_id", rec.ID.String()), zap.Error(err))
		return AttendanceResponse{}, err
	}

	if err := qtx.Update(ctx, rec); err != nil {
		log.Error("check-out persist failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		log.Error("check-out commit failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	log.Info("checked out",
		zap.String("attendance_id", rec.ID.String()),
		zap.String("working_hours", rec.WorkingHours.Decimal.StringFixed(2)),
	)
	return mapToResponse(*rec, s.policy.Location), nil
}

func (s *service) Today(ctx context.Context, p identity.Principal) (*AttendanceResponse, error) {
	rec, err := s.repo.FindByEmployeeAndDate(ctx, p.UserID, s.policy.DateOf(time.Now()))
	if err != nil {
		if dbutil.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	resp := mapToResponse(*rec, s.policy.Location)
	return &resp, nil
}

func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, attendanceerrors.ErrInvalidDate
	}
	return &t, nil
}

func parseRange(filter ListFilter) (from, to *time.Time, err error) {
	if from, err = parseDate(filter.From); err != nil {
		return nil, nil, err
	}
	if to, err = parseDate(filter.To); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, attendanceerrors.ErrInvalidDateRange
	}
	return from, to, nil
}

func (s *service) ListMine(ctx context.Context, p identity.Principal, filter ListFilter) ([]AttendanceResponse, error) {
	from, to, err := parseRange(filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.FindByEmployee(ctx, p.UserID, from, to)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows, s.policy.Location), nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]AttendanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	from, to, err := parseRange(filter)
	if err != nil {
		return nil, err
	}

	var employeeID *uuid.UUID
	if filter.EmployeeID != "" {
		id, err := uuid.Parse(filter.EmployeeID)
		if err != nil {
			return nil, attendanceerrors.ErrInvalidEmployeeID
		}
		employeeID = &id
	}

	rows, err := s.repo.FindAll(ctx, employeeID, from, to)
	if err != nil {
		log.Error("list attendance failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(rows, s.policy.Location), nil
}

func (s *service) GetByID(ctx context.Context, p identity.Principal, id string) (AttendanceResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidAttendanceID
	}
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if dbutil.IsNotFound(err) {
			return AttendanceResponse{}, attendanceerrors.ErrAttendanceNotFound
		}
		return AttendanceResponse{}, err
	}
	if err := identity.AuthorizeOwner(p, rec); err != nil {
		return AttendanceResponse{}, err
	}
	return mapToResponse(*rec, s.policy.Location), nil
}

// MonthlySummary aggregates one month. Employees may only summarize their
// own records; HR and ADMIN may pass any employee id.
func (s *service) MonthlySummary(ctx context.Context, p identity.Principal, employeeID string, month, year int) (SummaryResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if month < 1 || month > 12 || year < 1900 || year > 9999 {
		return SummaryResponse{}, attendanceerrors.ErrInvalidPeriod
	}

	target := p.UserID
	if employeeID != "" {
		id, err := uuid.Parse(employeeID)
		if err != nil {
			return SummaryResponse{}, attendanceerrors.ErrInvalidEmployeeID
		}
		if id != p.UserID && !p.IsPrivileged() {
			return SummaryResponse{}, identity.ErrNotOwner
		}
		target = id
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	summary, err := s.repo.Summarize(ctx, target, from, to)
	if err != nil {
		log.Error("attendance summary failed", zap.String("employee_id", target.String()), zap.Error(err))
		return SummaryResponse{}, err
	}

	return SummaryResponse{
		EmployeeID: target.String(),
		Month:      month,
		Year:       year,
		Summary:    summary,
	}, nil
}
