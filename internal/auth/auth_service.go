package auth

import (
	"context"
	"errors"

	autherrors "dayflow-hrms/internal/auth/errors"
	"dayflow-hrms/internal/auth/token"
	"dayflow-hrms/internal/shared/dbutil"
	"dayflow-hrms/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, login, password string) (accessToken, refreshToken string, resp AuthResponse, err error)

	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)

	GetMe(ctx context.Context, userID string) (*AuthResponse, error)
}

type service struct {
	users  user.Repository
	tokens *token.Manager
	logger *zap.Logger
}

func NewService(users user.Repository, tokens *token.Manager, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{users: users, tokens: tokens, logger: l}
}

func toAuthResponse(u *user.User) AuthResponse {
	resp := AuthResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		Email:      u.Email,
		EmployeeID: u.EmployeeCode,
		Role:       u.Role,
	}
	if u.Profile != nil {
		resp.FullName = u.Profile.FullName
	}
	return resp
}

func (s *service) Login(ctx context.Context, login, password string) (string, string, AuthResponse, error) {
	u, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if !dbutil.IsNotFound(err) {
			s.logger.Error("login lookup failed", zap.Error(err))
			return "", "", AuthResponse{}, err
		}
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		s.logger.Warn("login bad password", zap.String("user_id", u.ID.String()))
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}
	if !u.IsActive {
		s.logger.Warn("login inactive user", zap.String("user_id", u.ID.String()))
		return "", "", AuthResponse{}, autherrors.ErrUserInactive
	}

	access, refresh, err := s.tokens.Pair(u.ID.String(), u.Role)
	if err != nil {
		s.logger.Error("issue tokens failed", zap.Error(err))
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("user logged in", zap.String("user_id", u.ID.String()), zap.String("role", u.Role))
	return access, refresh, toAuthResponse(u), nil
}

// RefreshToken re-reads the user so role changes and deactivation apply on
// the next refresh.
func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	claims, err := s.tokens.Parse(refreshToken, token.TypeRefresh)
	if err != nil {
		if errors.Is(err, autherrors.ErrTokenExpired) {
			return "", "", AuthResponse{}, err
		}
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	u, err := s.load(ctx, claims.UserID)
	if err != nil {
		return "", "", AuthResponse{}, err
	}
	if !u.IsActive {
		return "", "", AuthResponse{}, autherrors.ErrUserInactive
	}

	access, refresh, err := s.tokens.Pair(u.ID.String(), u.Role)
	if err != nil {
		s.logger.Error("refresh tokens failed", zap.Error(err))
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	return access, refresh, toAuthResponse(u), nil
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toAuthResponse(u)
	return &resp, nil
}

func (s *service) load(ctx context.Context, userID string) (*user.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, autherrors.ErrInvalidToken
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if dbutil.IsNotFound(err) {
			return nil, autherrors.ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return u, nil
}
