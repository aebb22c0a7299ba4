package user

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"dayflow-hrms/internal/identity"
	"dayflow-hrms/internal/notification"
	"dayflow-hrms/internal/shared/contextutil"
	"dayflow-hrms/internal/shared/dbutil"
	usererrors "dayflow-hrms/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const dateLayout = "2006-01-02"

type Service interface {
	Create(ctx context.Context, actor identity.Principal, req CreateUserRequest) (UserResponse, error)
	List(ctx context.Context, filter ListFilter) ([]UserResponse, error)
	GetByID(ctx context.Context, actor identity.Principal, id string) (UserResponse, error)
	ChangeRole(ctx context.Context, actor identity.Principal, id string, role string) (UserResponse, error)
	Deactivate(ctx context.Context, actor identity.Principal, id string) error
	GetMyProfile(ctx context.Context, actor identity.Principal) (UserResponse, error)
	UpdateMyProfile(ctx context.Context, actor identity.Principal, req UpdateProfileRequest) (UserResponse, error)
	UpdateProfile(ctx context.Context, actor identity.Principal, id string, req UpdateProfileRequest) (UserResponse, error)
	EnsureAdmin(ctx context.Context, username, email, password string) (bool, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	notifier notification.Notifier
	cost     int
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, notifier notification.Notifier, logger ...*zap.Logger) Service {
	return NewServiceWithCost(db, repo, notifier, bcrypt.DefaultCost, logger...)
}

// NewServiceWithCost hashes passwords with the given bcrypt cost. Costs
// outside bcrypt's accepted range fall back to bcrypt.DefaultCost.
func NewServiceWithCost(
	db *sql.DB,
	repo Repository,
	notifier notification.Notifier,
	cost int,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &service{db: db, repo: repo, notifier: notifier, cost: cost, logger: l}
}

func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, usererrors.ErrInvalidDate
	}
	return &t, nil
}

func (s *service) Create(ctx context.Context, actor identity.Principal, req CreateUserRequest) (UserResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	role := identity.RoleEmployee
	if strings.TrimSpace(req.Role) != "" {
		r, err := identity.NormalizeRole(req.Role)
		if err != nil {
			return UserResponse{}, err
		}
		role = r
	}
	if role == identity.RoleAdmin && !actor.IsAdmin() {
		log.Warn("non-admin tried to create admin", zap.String("actor_id", actor.UserID.String()))
		return UserResponse{}, usererrors.ErrAdminRoleRequired
	}

	joined, err := parseDate(req.DateOfJoining)
	if err != nil {
		return UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		log.Error("hash password failed", zap.Error(err))
		return UserResponse{}, err
	}

	log.Debug("create user requested",
		zap.String("username", req.Username),
		zap.String("role", role),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("create user begin tx failed", zap.Error(err))
		return UserResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	u := &User{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		EmployeeCode: strings.TrimSpace(req.EmployeeID),
		Password:     string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := qtx.Create(ctx, u); err != nil {
		if dbutil.IsUniqueViolation(err) {
			log.Warn("create user duplicate", zap.String("username", u.Username))
			return UserResponse{}, usererrors.ErrUserAlreadyExists
		}
		log.Error("create user failed", zap.Error(err))
		return UserResponse{}, err
	}

	profile := &EmployeeProfile{
		ID:            uuid.New(),
		UserID:        u.ID,
		FullName:      strings.TrimSpace(req.FullName),
		Phone:         req.Phone,
		Address:       req.Address,
		JobTitle:      req.JobTitle,
		Department:    req.Department,
		DateOfJoining: joined,
	}
	if err := qtx.CreateProfile(ctx, profile); err != nil {
		log.Error("create profile failed", zap.String("user_id", u.ID.String()), zap.Error(err))
		return UserResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("create user commit failed", zap.Error(err))
		return UserResponse{}, err
	}

	log.Info("user created",
		zap.String("user_id", u.ID.String()),
		zap.String("role", u.Role),
	)

	u.Profile = profile
	return mapToResponse(*u), nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]UserResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if filter.Role != "" {
		role, err := identity.NormalizeRole(filter.Role)
		if err != nil {
			return nil, err
		}
		filter.Role = role
	}

	users, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		log.Error("list users failed", zap.Error(err))
		return nil, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp, nil
}

func (s *service) find(ctx context.Context, repo Repository, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, usererrors.ErrInvalidUserID
	}
	u, err := repo.FindByID(ctx, id)
	if err != nil {
		if dbutil.IsNotFound(err) {
			return nil, usererrors.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *service) GetByID(ctx context.Context, actor identity.Principal, id string) (UserResponse, error) {
	u, err := s.find(ctx, s.repo, id)
	if err != nil {
		return UserResponse{}, err
	}
	if err := identity.AuthorizeOwner(actor, u); err != nil {
		return UserResponse{}, err
	}
	return mapToResponse(*u), nil
}

func (s *service) ChangeRole(ctx context.Context, actor identity.Principal, id string, role string) (UserResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	newRole, err := identity.NormalizeRole(role)
	if err != nil {
		return UserResponse{}, err
	}

	u, err := s.find(ctx, s.repo, id)
	if err != nil {
		return UserResponse{}, err
	}
	if (newRole == identity.RoleAdmin || u.Role == identity.RoleAdmin) && !actor.IsAdmin() {
		log.Warn("role change needs admin",
			zap.String("actor_id", actor.UserID.String()),
			zap.String("user_id", id),
		)
		return UserResponse{}, usererrors.ErrAdminRoleRequired
	}

	if u.Role == newRole {
		return mapToResponse(*u), nil
	}

	previous := u.Role
	u.Role = newRole
	if err := s.repo.Update(ctx, u); err != nil {
		log.Error("change role failed", zap.String("user_id", id), zap.Error(err))
		return UserResponse{}, err
	}

	log.Info("user role changed",
		zap.String("user_id", id),
		zap.String("from", previous),
		zap.String("to", newRole),
	)
	return mapToResponse(*u), nil
}

func (s *service) Deactivate(ctx context.Context, actor identity.Principal, id string) error {
	log := contextutil.GetLogger(ctx, s.logger)

	u, err := s.find(ctx, s.repo, id)
	if err != nil {
		return err
	}
	if u.ID == actor.UserID {
		return usererrors.ErrCannotDeactivateSelf
	}
	if !u.IsActive {
		return nil
	}

	u.IsActive = false
	if err := s.repo.Update(ctx, u); err != nil {
		log.Error("deactivate user failed", zap.String("user_id", id), zap.Error(err))
		return err
	}

	log.Info("user deactivated", zap.String("user_id", id))
	return nil
}

func (s *service) GetMyProfile(ctx context.Context, actor identity.Principal) (UserResponse, error) {
	return s.GetByID(ctx, actor, actor.UserID.String())
}

func (s *service) UpdateMyProfile(ctx context.Context, actor identity.Principal, req UpdateProfileRequest) (UserResponse, error) {
	if !actor.IsPrivileged() &&
		(req.FullName != nil || req.JobTitle != nil || req.Department != nil || req.DateOfJoining != nil) {
		return UserResponse{}, usererrors.ErrRestrictedProfileField
	}
	return s.updateProfile(ctx, actor, actor.UserID.String(), req)
}

func (s *service) UpdateProfile(ctx context.Context, actor identity.Principal, id string, req UpdateProfileRequest) (UserResponse, error) {
	resp, err := s.updateProfile(ctx, actor, id, req)
	if err != nil {
		return UserResponse{}, err
	}

	if resp.ID != actor.UserID.String() {
		s.notifyProfileUpdated(ctx, actor, resp)
	}
	return resp, nil
}

func (s *service) updateProfile(ctx context.Context, actor identity.Principal, id string, req UpdateProfileRequest) (UserResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	u, err := s.find(ctx, s.repo, id)
	if err != nil {
		return UserResponse{}, err
	}
	if err := identity.AuthorizeOwner(actor, u); err != nil {
		return UserResponse{}, err
	}
	if u.Profile == nil {
		return UserResponse{}, usererrors.ErrProfileNotFound
	}

	p := u.Profile
	if req.FullName != nil {
		p.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.JobTitle != nil {
		p.JobTitle = *req.JobTitle
	}
	if req.Department != nil {
		p.Department = *req.Department
	}
	if req.DateOfJoining != nil {
		joined, err := parseDate(*req.DateOfJoining)
		if err != nil {
			return UserResponse{}, err
		}
		p.DateOfJoining = joined
	}

	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		log.Error("update profile failed", zap.String("user_id", id), zap.Error(err))
		return UserResponse{}, err
	}

	log.Info("profile updated",
		zap.String("user_id", id),
		zap.String("actor_id", actor.UserID.String()),
	)
	return mapToResponse(*u), nil
}

func (s *service) notifyProfileUpdated(ctx context.Context, actor identity.Principal, target UserResponse) {
	log := contextutil.GetLogger(ctx, s.logger)

	if s.notifier == nil {
		return
	}
	recipient, err := uuid.Parse(target.ID)
	if err != nil {
		return
	}
	if _, err := s.notifier.Notify(ctx, notification.NotifyInput{
		RecipientID:       recipient,
		Type:              notification.TypeProfileUpdated,
		Title:             "Profile updated",
		Message:           "Your employee profile was updated by " + strings.ToLower(actor.Role) + ".",
		RelatedObjectType: "user",
		RelatedObjectID:   &recipient,
		ActionURL:         "/profile",
	}); err != nil {
		log.Error("profile updated notification failed", zap.String("user_id", target.ID), zap.Error(err))
	}
}

// EnsureAdmin creates the bootstrap administrator when no ADMIN exists yet.
// It reports whether a user was created.
func (s *service) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	count, err := s.repo.CountByRole(ctx, identity.RoleAdmin)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return false, err
	}

	u := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        strings.ToLower(email),
		EmployeeCode: "ADMIN-0001",
		Password:     string(hash),
		Role:         identity.RoleAdmin,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if dbutil.IsUniqueViolation(err) {
			return false, usererrors.ErrUserAlreadyExists
		}
		return false, err
	}
	if err := s.repo.CreateProfile(ctx, &EmployeeProfile{
		ID:       uuid.New(),
		UserID:   u.ID,
		FullName: "System Administrator",
	}); err != nil {
		return false, err
	}

	log.Info("bootstrap admin created", zap.String("user_id", u.ID.String()))
	return true, nil
}
