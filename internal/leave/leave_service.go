package leave

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dayflow-hrms/internal/identity"
	leaveerrors "dayflow-hrms/internal/leave/errors"
	"dayflow-hrms/internal/notification"
	"dayflow-hrms/internal/shared/contextutil"
	"dayflow-hrms/internal/shared/dbutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Apply(ctx context.Context, p identity.Principal, req ApplyLeaveRequest) (LeaveResponse, error)
	ListMine(ctx context.Context, p identity.Principal) ([]LeaveResponse, error)
	List(ctx context.Context, filter ListFilter) ([]LeaveResponse, error)
	GetByID(ctx context.Context, p identity.Principal, id string) (LeaveResponse, error)
	Update(ctx context.Context, p identity.Principal, id string, req UpdateLeaveRequest) (LeaveResponse, error)
	Delete(ctx context.Context, p identity.Principal, id string) error
	Decide(ctx context.Context, approver identity.Principal, id string, req DecideLeaveRequest) (LeaveResponse, error)
	Cancel(ctx context.Context, p identity.Principal, id string) (LeaveResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	notifier notification.Notifier
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, notifier notification.Notifier, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{db: db, repo: repo, notifier: notifier, logger: l}
}

type period struct {
	leaveType string
	start     time.Time
	end       time.Time
}

func validatePeriod(leaveType, startDate, endDate string) (period, error) {
	leaveType = strings.ToUpper(strings.TrimSpace(leaveType))
	if !IsValidType(leaveType) {
		return period{}, leaveerrors.ErrInvalidLeaveType
	}
	start, err := parseDate(startDate)
	if err != nil {
		return period{}, err
	}
	end, err := parseDate(endDate)
	if err != nil {
		return period{}, err
	}
	if start.After(end) {
		return period{}, leaveerrors.ErrInvalidDateRange
	}
	return period{leaveType: leaveType, start: start, end: end}, nil
}

func (s *service) Apply(ctx context.Context, p identity.Principal, req ApplyLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	log.Debug("apply leave requested",
		zap.String("employee_id", p.UserID.String()),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	per, err := validatePeriod(req.LeaveType, req.StartDate, req.EndDate)
	if err != nil {
		log.Warn("apply leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("apply leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l := &Leave{
		ID:         uuid.New(),
		EmployeeID: p.UserID,
		LeaveType:  per.leaveType,
		StartDate:  per.start,
		EndDate:    per.end,
		TotalDays:  totalDays(per.start, per.end),
		Reason:     strings.TrimSpace(req.Reason),
		Status:     StatusPending,
	}

	if err := qtx.Create(ctx, l); err != nil {
		log.Error("apply leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("apply leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	log.Info("apply leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", p.UserID.String()),
	)

	s.notifyApprovers(ctx, *l)
	return mapToResponse(*l), nil
}

func (s *service) ListMine(ctx context.Context, p identity.Principal) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindByEmployee(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	status := strings.ToUpper(strings.TrimSpace(filter.Status))
	if status != "" && !IsValidStatus(status) {
		return nil, leaveerrors.ErrInvalidStatus
	}

	var employeeID *uuid.UUID
	if filter.EmployeeID != "" {
		id, err := uuid.Parse(filter.EmployeeID)
		if err != nil {
			return nil, leaveerrors.ErrInvalidEmployeeID
		}
		employeeID = &id
	}

	leaves, err := s.repo.FindAll(ctx, status, employeeID)
	if err != nil {
		log.Error("list leaves failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) find(ctx context.Context, repo Repository, id string) (*Leave, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaveerrors.ErrInvalidLeaveID
	}
	l, err := repo.FindByID(ctx, id)
	if err != nil {
		if dbutil.IsNotFound(err) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		return nil, err
	}
	return l, nil
}

func (s *service) GetByID(ctx context.Context, p identity.Principal, id string) (LeaveResponse, error) {
	l, err := s.find(ctx, s.repo, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if err := identity.AuthorizeOwner(p, l); err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

// Update lets the owner rewrite a leave while it is still PENDING.
func (s *service) Update(ctx context.Context, p identity.Principal, id string, req UpdateLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	log.Debug("update leave requested",
		zap.String("leave_id", id),
		zap.String("employee_id", p.UserID.String()),
	)

	per, err := validatePeriod(req.LeaveType, req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("update leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := s.find(ctx, qtx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if err := identity.AuthorizeStrictOwner(p, l); err != nil {
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		log.Warn("update leave not pending",
			zap.String("leave_id", id),
			zap.String("status", l.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrNotPending
	}

	l.LeaveType = per.leaveType
	l.StartDate = per.start
	l.EndDate = per.end
	l.TotalDays = totalDays(per.start, per.end)
	l.Reason = strings.TrimSpace(req.Reason)

	ok, err := qtx.UpdateIfStatus(ctx, l, StatusPending)
	if err != nil {
		log.Error("update leave persist failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	if !ok {
		log.Warn("update leave lost race", zap.String("leave_id", id))
		return LeaveResponse{}, leaveerrors.ErrNotPending
	}

	if err := tx.Commit(); err != nil {
		log.Error("update leave commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	log.Info("update leave success", zap.String("leave_id", id))

	return mapToResponse(*l), nil
}

func (s *service) Delete(ctx context.Context, p identity.Principal, id string) error {
	log := contextutil.GetLogger(ctx, s.logger)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := s.find(ctx, qtx, id)
	if err != nil {
		return err
	}
	if err := identity.AuthorizeStrictOwner(p, l); err != nil {
		return err
	}
	if l.Status != StatusPending {
		log.Warn("delete leave not pending", zap.String("leave_id", id), zap.String("status", l.Status))
		return leaveerrors.ErrNotPending
	}

	if err := qtx.Delete(ctx, id); err != nil {
		log.Error("delete leave failed", zap.String("leave_id", id), zap.Error(err))
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("delete leave success", zap.String("leave_id", id))
	return nil
}

// Decide moves a PENDING leave to APPROVED or REJECTED. Attendance is left
// untouched.
func (s *service) Decide(ctx context.Context, approver identity.Principal, id string, req DecideLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	target := strings.ToUpper(strings.TrimSpace(req.Status))
	if target != StatusApproved && target != StatusRejected {
		return LeaveResponse{}, leaveerrors.ErrInvalidDecision
	}

	log.Debug("decide leave requested",
		zap.String("leave_id", id),
		zap.String("approver_id", approver.UserID.String()),
		zap.String("target_status", target),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("decide leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := s.find(ctx, qtx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		log.Warn("decide leave already processed",
			zap.String("leave_id", id),
			zap.String("from_status", l.Status),
			zap.String("to_status", target),
		)
		return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
	}

	now := time.Now().UTC()
	approverID := approver.UserID
	l.Status = target
	l.DecidedBy = &approverID
	l.DecidedAt = &now
	l.AdminComment = nil
	if comment := strings.TrimSpace(req.AdminComment); comment != "" {
		l.AdminComment = &comment
	}

	ok, err := qtx.UpdateIfStatus(ctx, l, StatusPending)
	if err != nil {
		log.Error("decide leave persist failed",
			zap.String("leave_id", id),
			zap.String("target_status", target),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	if !ok {
		log.Warn("decide leave lost race", zap.String("leave_id", id))
		return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
	}
	if err := tx.Commit(); err != nil {
		log.Error("decide leave commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	log.Info("decide leave success",
		zap.String("leave_id", id),
		zap.String("status", target),
	)

	s.notifyOwner(ctx, *l)
	return mapToResponse(*l), nil
}

// Cancel sends an APPROVED leave back to PENDING.
func (s *service) Cancel(ctx context.Context, p identity.Principal, id string) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("cancel leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := s.find(ctx, qtx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if err := identity.AuthorizeStrictOwner(p, l); err != nil {
		return LeaveResponse{}, err
	}
	if l.Status != StatusApproved {
		log.Warn("cancel leave not approved",
			zap.String("leave_id", id),
			zap.String("status", l.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrNotCancellable
	}

	comment := CancelledComment
	l.Status = StatusPending
	l.AdminComment = &comment
	l.DecidedBy = nil
	l.DecidedAt = nil

	ok, err := qtx.UpdateIfStatus(ctx, l, StatusApproved)
	if err != nil {
		log.Error("cancel leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if !ok {
		log.Warn("cancel leave lost race", zap.String("leave_id", id))
		return LeaveResponse{}, leaveerrors.ErrNotCancellable
	}
	if err := tx.Commit(); err != nil {
		log.Error("cancel leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	log.Info("cancel leave success", zap.String("leave_id", id))

	return mapToResponse(*l), nil
}

func (s *service) notifyApprovers(ctx context.Context, l Leave) {
	log := contextutil.GetLogger(ctx, s.logger)

	if s.notifier == nil {
		return
	}
	id := l.ID
	message := fmt.Sprintf("A %s leave has been requested from %s to %s",
		strings.ToLower(l.LeaveType), l.StartDate.Format(dateLayout), l.EndDate.Format(dateLayout))
	_, err := s.notifier.NotifyRoles(ctx, identity.ApproverRoles, notification.NotifyInput{
		Type:              notification.TypeLeaveRequested,
		Title:             "New Leave Request",
		Message:           message,
		Priority:          notification.PriorityMedium,
		RelatedObjectType: "leave",
		RelatedObjectID:   &id,
		ActionURL:         fmt.Sprintf("/leaves/%s", id),
	})
	if err != nil {
		log.Warn("leave request notification failed", zap.String("leave_id", id.String()), zap.Error(err))
	}
}

func (s *service) notifyOwner(ctx context.Context, l Leave) {
	log := contextutil.GetLogger(ctx, s.logger)

	if s.notifier == nil {
		return
	}

	title, message, notificationType := "Leave Request Approved", "Your leave request has been approved.", notification.TypeLeaveApproved
	if l.Status == StatusRejected {
		title, message, notificationType = "Leave Request Rejected", "Your leave request has been rejected.", notification.TypeLeaveRejected
	}

	id := l.ID
	_, err := s.notifier.Notify(ctx, notification.NotifyInput{
		RecipientID:       l.EmployeeID,
		Type:              notificationType,
		Title:             title,
		Message:           fmt.Sprintf("%s From %s to %s", message, l.StartDate.Format(dateLayout), l.EndDate.Format(dateLayout)),
		Priority:          notification.PriorityHigh,
		RelatedObjectType: "leave",
		RelatedObjectID:   &id,
		ActionURL:         fmt.Sprintf("/leaves/%s", id),
	})
	if err != nil {
		log.Warn("leave decision notification failed", zap.String("leave_id", id.String()), zap.Error(err))
	}
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}
