package regularization

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dayflow-hrms/internal/attendance"
	"dayflow-hrms/internal/config"
	"dayflow-hrms/internal/identity"
	"dayflow-hrms/internal/notification"
	regularizationerrors "dayflow-hrms/internal/regularization/errors"
	"dayflow-hrms/internal/shared/contextutil"
	"dayflow-hrms/internal/shared/dbutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=regularization_service.go -destination=mock/regularization_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, p identity.Principal, req CreateRequest) (RegularizationResponse, error)
	ListMine(ctx context.Context, p identity.Principal) ([]RegularizationResponse, error)
	List(ctx context.Context, filter ListFilter) ([]RegularizationResponse, error)
	GetByID(ctx context.Context, p identity.Principal, id string) (RegularizationResponse, error)
	Decide(ctx context.Context, reviewer identity.Principal, id string, action string) (RegularizationResponse, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	attendances attendance.Repository
	policy      attendance.Policy
	notifier    notification.Notifier
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	attendances attendance.Repository,
	policy attendance.Policy,
	notifier notification.Notifier,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("regularization.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("regularization.service")
	}
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &service{
		db:          db,
		repo:        repo,
		attendances: attendances,
		policy:      policy,
		notifier:    notifier,
		logger:      l,
	}
}

// parseClock normalizes an optional HH:MM[:SS] value to HH:MM:SS.
func parseClock(value string) (*string, time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, 0, nil
	}
	offset, err := config.ParseClock(value)
	if err != nil {
		return nil, 0, regularizationerrors.ErrInvalidClock
	}
	normalized := time.Time{}.Add(offset).Format(clockLayout)
	return &normalized, offset, nil
}

func (s *service) Create(ctx context.Context, p identity.Principal, req CreateRequest) (RegularizationResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	date, err := time.Parse(dateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return RegularizationResponse{}, regularizationerrors.ErrInvalidDate
	}
	if date.After(s.policy.DateOf(time.Now())) {
		return RegularizationResponse{}, regularizationerrors.ErrFutureDate
	}

	checkIn, in, err := parseClock(req.RequestedCheckIn)
	if err != nil {
		return RegularizationResponse{}, err
	}
	checkOut, out, err := parseClock(req.RequestedCheckOut)
	if err != nil {
		return RegularizationResponse{}, err
	}
	if checkIn == nil && checkOut == nil {
		return RegularizationResponse{}, regularizationerrors.ErrMissingTimes
	}
	if checkIn != nil && checkOut != nil && out < in {
		return RegularizationResponse{}, regularizationerrors.ErrCheckOutBeforeCheckIn
	}

	reg := &Regularization{
		ID:                uuid.New(),
		EmployeeID:        p.UserID,
		Date:              date,
		RequestedCheckIn:  checkIn,
		RequestedCheckOut: checkOut,
		Reason:            strings.TrimSpace(req.Reason),
		Status:            StatusPending,
	}

	log.Debug("regularization requested",
		zap.String("employee_id", p.UserID.String()),
		zap.String("date", req.Date),
	)

	if err := s.repo.Create(ctx, reg); err != nil {
		log.Error("regularization persist failed", zap.Error(err))
		return RegularizationResponse{}, err
	}

	log.Info("regularization created",
		zap.String("regularization_id", reg.ID.String()),
		zap.String("employee_id", p.UserID.String()),
	)

	s.notifyApprovers(ctx, *reg)
	return mapToResponse(*reg), nil
}

func (s *service) notifyApprovers(ctx context.Context, reg Regularization) {
	log := contextutil.GetLogger(ctx, s.logger)

	if s.notifier == nil {
		return
	}
	id := reg.ID
	_, err := s.notifier.NotifyRoles(ctx, identity.ApproverRoles, notification.NotifyInput{
		Type:              notification.TypeAttendanceRegularization,
		Title:             "Attendance Regularization Request",
		Message:           fmt.Sprintf("Attendance regularization requested for %s", reg.Date.Format(dateLayout)),
		Priority:          notification.PriorityMedium,
		RelatedObjectType: "regularization",
		RelatedObjectID:   &id,
		ActionURL:         fmt.Sprintf("/attendance/regularizations/%s", id),
	})
	if err != nil {
		log.Warn("regularization notification failed",
			zap.String("regularization_id", id.String()),
			zap.Error(err),
		)
	}
}

func (s *service) ListMine(ctx context.Context, p identity.Principal) ([]RegularizationResponse, error) {
	rows, err := s.repo.FindByEmployee(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]RegularizationResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	status := strings.ToUpper(strings.TrimSpace(filter.Status))
	if status != "" && !IsValidStatus(status) {
		return nil, regularizationerrors.ErrInvalidStatus
	}

	var employeeID *uuid.UUID
	if filter.EmployeeID != "" {
		id, err := uuid.Parse(filter.EmployeeID)
		if err != nil {
			return nil, regularizationerrors.ErrInvalidEmployeeID
		}
		employeeID = &id
	}

	rows, err := s.repo.FindAll(ctx, status, employeeID)
	if err != nil {
		log.Error("list regularizations failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByID(ctx context.Context, p identity.Principal, id string) (RegularizationResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return RegularizationResponse{}, regularizationerrors.ErrInvalidRegularizationID
	}
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if dbutil.IsNotFound(err) {
			return RegularizationResponse{}, regularizationerrors.ErrRegularizationNotFound
		}
		return RegularizationResponse{}, err
	}
	if err := identity.AuthorizeOwner(p, reg); err != nil {
		return RegularizationResponse{}, err
	}
	return mapToResponse(*reg), nil
}

func normalizeAction(action string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case ActionApprove:
		return StatusApproved, nil
	case ActionReject:
		return StatusRejected, nil
	}
	return "", regularizationerrors.ErrInvalidAction
}

// Decide moves a PENDING request to APPROVED or REJECTED. Approval upserts
// the attendance record for the requested date in the same transaction.
func (s *service) Decide(ctx context.Context, reviewer identity.Principal, id string, action string) (RegularizationResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	status, err := normalizeAction(action)
	if err != nil {
		return RegularizationResponse{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return RegularizationResponse{}, regularizationerrors.ErrInvalidRegularizationID
	}

	log.Debug("regularization decision requested",
		zap.String("regularization_id", id),
		zap.String("reviewer_id", reviewer.UserID.String()),
		zap.String("status", status),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("regularization decide begin tx failed", zap.Error(err))
		return RegularizationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	reg, err := qtx.FindByID(ctx, id)
	if err != nil {
		if dbutil.IsNotFound(err) {
			return RegularizationResponse{}, regularizationerrors.ErrRegularizationNotFound
		}
		log.Error("regularization lookup failed", zap.Error(err))
		return RegularizationResponse{}, err
	}
	if reg.Status != StatusPending {
		log.Warn("regularization already processed",
			zap.String("regularization_id", id),
			zap.String("status", reg.Status),
		)
		return RegularizationResponse{}, regularizationerrors.ErrAlreadyProcessed
	}

	now := time.Now().UTC()
	reviewerID := reviewer.UserID
	reg.Status = status
	reg.ReviewedBy = &reviewerID
	reg.ReviewedAt = &now

	ok, err := qtx.UpdateIfStatus(ctx, reg, StatusPending)
	if err != nil {
		log.Error("regularization persist failed", zap.Error(err))
		return RegularizationResponse{}, err
	}
	if !ok {
		log.Warn("regularization decided concurrently", zap.String("regularization_id", id))
		return RegularizationResponse{}, regularizationerrors.ErrAlreadyProcessed
	}

	if status == StatusApproved {
		if err := s.applyToAttendance(ctx, tx, reg); err != nil {
			return RegularizationResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("regularization decide commit failed", zap.Error(err))
		return RegularizationResponse{}, err
	}

	log.Info("regularization decided",
		zap.String("regularization_id", id),
		zap.String("status", status),
	)
	return mapToResponse(*reg), nil
}

func (s *service) clockTime(date time.Time, clock *string) (*time.Time, error) {
	if clock == nil {
		return nil, nil
	}
	offset, err := config.ParseClock(*clock)
	if err != nil {
		return nil, regularizationerrors.ErrInvalidClock
	}
	t := s.policy.At(date, offset)
	return &t, nil
}

func (s *service) applyToAttendance(ctx context.Context, tx *sql.Tx, reg *Regularization) error {
	log := contextutil.GetLogger(ctx, s.logger)

	checkIn, err := s.clockTime(reg.Date, reg.RequestedCheckIn)
	if err != nil {
		return err
	}
	checkOut, err := s.clockTime(reg.Date, reg.RequestedCheckOut)
	if err != nil {
		return err
	}

	atx := s.attendances.WithTx(tx)

	existing, err := atx.FindByEmployeeAndDate(ctx, reg.EmployeeID, reg.Date)
	if err != nil {
		if !dbutil.IsNotFound(err) {
			log.Error("attendance lookup failed", zap.Error(err))
			return err
		}
		existing = nil
	}

	rec, created, err := s.policy.Correct(existing, reg.EmployeeID, reg.Date, checkIn, checkOut)
	if err != nil {
		log.Warn("regularization produces invalid attendance",
			zap.String("regularization_id", reg.ID.String()),
			zap.Error(err),
		)
		return err
	}

	if created {
		err = atx.Create(ctx, rec)
	} else {
		err = atx.Update(ctx, rec)
	}
	if err != nil {
		if dbutil.IsUniqueViolation(err) {
			return regularizationerrors.ErrAttendanceConflict
		}
		log.Error("attendance correction persist failed", zap.Error(err))
		return err
	}

	log.Info("attendance corrected",
		zap.String("attendance_id", rec.ID.String()),
		zap.String("employee_id", rec.EmployeeID.String()),
		zap.Bool("created", created),
	)
	return nil
}
