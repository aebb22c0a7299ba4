package user_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"dayflow-hrms/internal/identity"
	"dayflow-hrms/internal/notification"
	notificationMock "dayflow-hrms/internal/notification/mock"
	"dayflow-hrms/internal/user"
	usererrors "dayflow-hrms/internal/user/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepository struct {
	createFn        func(ctx context.Context, u *user.User) error
	createProfileFn func(ctx context.Context, p *user.EmployeeProfile) error
	findByIDFn      func(ctx context.Context, id string) (*user.User, error)
	findAllFn       func(ctx context.Context, filter user.ListFilter) ([]user.User, error)
	countByRoleFn   func(ctx context.Context, role string) (int64, error)
	updateFn        func(ctx context.Context, u *user.User) error
	updateProfileFn func(ctx context.Context, p *user.EmployeeProfile) error

	created []user.User
	updated []user.User
}

func (f *fakeUserRepository) WithTx(tx *sql.Tx) user.Repository { return f }

func (f *fakeUserRepository) Create(ctx context.Context, u *user.User) error {
	if f.createFn != nil {
		if err := f.createFn(ctx, u); err != nil {
			return err
		}
	}
	f.created = append(f.created, *u)
	return nil
}

func (f *fakeUserRepository) CreateProfile(ctx context.Context, p *user.EmployeeProfile) error {
	if f.createProfileFn != nil {
		return f.createProfileFn(ctx, p)
	}
	return nil
}

func (f *fakeUserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) FindByLogin(ctx context.Context, login string) (*user.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) FindAll(ctx context.Context, filter user.ListFilter) ([]user.User, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx, filter)
	}
	return nil, nil
}

func (f *fakeUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	if f.countByRoleFn != nil {
		return f.countByRoleFn(ctx, role)
	}
	return 0, nil
}

func (f *fakeUserRepository) Update(ctx context.Context, u *user.User) error {
	f.updated = append(f.updated, *u)
	if f.updateFn != nil {
		return f.updateFn(ctx, u)
	}
	return nil
}

func (f *fakeUserRepository) FindProfile(ctx context.Context, userID uuid.UUID) (*user.EmployeeProfile, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) UpdateProfile(ctx context.Context, p *user.EmployeeProfile) error {
	if f.updateProfileFn != nil {
		return f.updateProfileFn(ctx, p)
	}
	return nil
}

type userServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  user.Service
	repo     *fakeUserRepository
	notifier *notificationMock.MockNotifier
}

func setupUserServiceTest(t *testing.T) *userServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	ctrl := gomock.NewController(t)
	notifier := notificationMock.NewMockNotifier(ctrl)
	repo := &fakeUserRepository{}

	return &userServiceDeps{
		db:       db,
		sqlMock:  sqlMock,
		service:  user.NewService(db, repo, notifier),
		repo:     repo,
		notifier: notifier,
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

func principal(role string) identity.Principal {
	return identity.Principal{UserID: uuid.New(), Role: role}
}

func storedUser(role string) *user.User {
	id := uuid.New()
	return &user.User{
		ID:           id,
		Username:     "jdoe",
		Email:        "jdoe@example.com",
		EmployeeCode: "EMP-001",
		Role:         role,
		IsActive:     true,
		Profile:      &user.EmployeeProfile{ID: uuid.New(), UserID: id, FullName: "John Doe"},
	}
}

func newUserRequest(role string) user.CreateUserRequest {
	return user.CreateUserRequest{
		Username:      "jdoe",
		Email:         "JDoe@Example.com",
		EmployeeID:    "EMP-001",
		Password:      "secret123",
		Role:          role,
		FullName:      "John Doe",
		DateOfJoining: "2025-03-01",
	}
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success hashes password and defaults role", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Create(ctx, principal(identity.RoleHR), newUserRequest(""))

		assert.NoError(t, err)
		assert.Equal(t, identity.RoleEmployee, resp.Role)
		assert.Equal(t, "jdoe@example.com", resp.Email)
		assert.Equal(t, "EMP-001", resp.EmployeeID)
		assert.Equal(t, "2025-03-01", resp.Profile.DateOfJoining)
		assert.True(t, resp.IsActive)
		if assert.Len(t, deps.repo.created, 1) {
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(deps.repo.created[0].Password), []byte("secret123")))
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("hr cannot create admin", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, principal(identity.RoleHR), newUserRequest("admin"))

		assert.ErrorIs(t, err, usererrors.ErrAdminRoleRequired)
		assert.Empty(t, deps.repo.created)
	})

	t.Run("invalid role", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, principal(identity.RoleAdmin), newUserRequest("manager"))

		assert.ErrorIs(t, err, identity.ErrInvalidRole)
	})

	t.Run("duplicate maps to conflict", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)
		deps.repo.createFn = func(ctx context.Context, u *user.User) error {
			return gorm.ErrDuplicatedKey
		}

		_, err := deps.service.Create(ctx, principal(identity.RoleAdmin), newUserRequest("hr"))

		assert.ErrorIs(t, err, usererrors.ErrUserAlreadyExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestUserService_GetByID(t *testing.T) {
	ctx := context.Background()
	target := storedUser(identity.RoleEmployee)

	deps := setupUserServiceTest(t)
	defer deps.db.Close()
	deps.repo.findByIDFn = func(ctx context.Context, id string) (*user.User, error) {
		return target, nil
	}

	t.Run("owner", func(t *testing.T) {
		resp, err := deps.service.GetByID(ctx, identity.Principal{UserID: target.ID, Role: identity.RoleEmployee}, target.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, target.ID.String(), resp.ID)
	})

	t.Run("other employee forbidden", func(t *testing.T) {
		_, err := deps.service.GetByID(ctx, principal(identity.RoleEmployee), target.ID.String())
		assert.ErrorIs(t, err, identity.ErrNotOwner)
	})

	t.Run("hr allowed", func(t *testing.T) {
		_, err := deps.service.GetByID(ctx, principal(identity.RoleHR), target.ID.String())
		assert.NoError(t, err)
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := deps.service.GetByID(ctx, principal(identity.RoleHR), "nope")
		assert.ErrorIs(t, err, usererrors.ErrInvalidUserID)
	})
}

func TestUserService_ChangeRole(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		actor    string
		current  string
		newRole  string
		wantErr  error
		wantRole string
	}{
		{name: "hr promotes employee to hr", actor: identity.RoleHR, current: identity.RoleEmployee, newRole: "hr", wantRole: identity.RoleHR},
		{name: "hr cannot grant admin", actor: identity.RoleHR, current: identity.RoleEmployee, newRole: "ADMIN", wantErr: usererrors.ErrAdminRoleRequired},
		{name: "hr cannot demote admin", actor: identity.RoleHR, current: identity.RoleAdmin, newRole: "EMPLOYEE", wantErr: usererrors.ErrAdminRoleRequired},
		{name: "admin grants admin", actor: identity.RoleAdmin, current: identity.RoleHR, newRole: "ADMIN", wantRole: identity.RoleAdmin},
		{name: "unknown role", actor: identity.RoleAdmin, current: identity.RoleHR, newRole: "OWNER", wantErr: identity.ErrInvalidRole},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deps := setupUserServiceTest(t)
			defer deps.db.Close()
			target := storedUser(tc.current)
			deps.repo.findByIDFn = func(ctx context.Context, id string) (*user.User, error) {
				return target, nil
			}

			resp, err := deps.service.ChangeRole(ctx, principal(tc.actor), target.ID.String(), tc.newRole)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, deps.repo.updated)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.wantRole, resp.Role)
			assert.Len(t, deps.repo.updated, 1)
		})
	}
}

func TestUserService_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivates other user", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()
		target := storedUser(identity.RoleEmployee)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*user.User, error) {
			return target, nil
		}

		err := deps.service.Deactivate(ctx, principal(identity.RoleAdmin), target.ID.String())

		assert.NoError(t, err)
		if assert.Len(t, deps.repo.updated, 1) {
			assert.False(t, deps.repo.updated[0].IsActive)
		}
	})

	t.Run("cannot deactivate self", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()
		target := storedUser(identity.RoleAdmin)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*user.User, error) {
			return target, nil
		}

		err := deps.service.Deactivate(ctx, identity.Principal{UserID: target.ID, Role: identity.RoleAdmin}, target.ID.String())

		assert.ErrorIs(t, err, usererrors.ErrCannotDeactivateSelf)
		assert.Empty(t, deps.repo.updated)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()

		err := deps.service.Deactivate(ctx, principal(identity.RoleAdmin), uuid.NewString())

		assert.ErrorIs(t, err, usererrors.ErrUserNotFound)
	})
}

func TestUserService_Profile(t *testing.T) {
	ctx := context.Background()

	t.Run("employee updates own phone", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()
		target := storedUser(identity.RoleEmployee)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*user.User, error) {
			return target, nil
		}
		phone := "+62 811 000"

		resp, err := deps.service.UpdateMyProfile(ctx, identity.Principal{UserID: target.ID, Role: identity.RoleEmployee}, user.UpdateProfileRequest{Phone: &phone})

		assert.NoError(t, err)
		assert.Equal(t, phone, resp.Profile.Phone)
	})

	t.Run("employee cannot change job title", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()
		title := "CTO"

		_, err := deps.service.UpdateMyProfile(ctx, principal(identity.RoleEmployee), user.UpdateProfileRequest{JobTitle: &title})

		assert.ErrorIs(t, err, usererrors.ErrRestrictedProfileField)
	})

	t.Run("hr update notifies owner", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()
		target := storedUser(identity.RoleEmployee)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*user.User, error) {
			return target, nil
		}
		dept := "Finance"

		deps.notifier.EXPECT().
			Notify(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, in notification.NotifyInput) (*notification.NotificationResponse, error) {
				assert.Equal(t, target.ID, in.RecipientID)
				assert.Equal(t, notification.TypeProfileUpdated, in.Type)
				return &notification.NotificationResponse{}, nil
			})

		resp, err := deps.service.UpdateProfile(ctx, principal(identity.RoleHR), target.ID.String(), user.UpdateProfileRequest{Department: &dept})

		assert.NoError(t, err)
		assert.Equal(t, "Finance", resp.Profile.Department)
	})

	t.Run("notification failure does not fail update", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()
		target := storedUser(identity.RoleEmployee)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*user.User, error) {
			return target, nil
		}
		addr := "Jl. Merdeka 1"

		deps.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		_, err := deps.service.UpdateProfile(ctx, principal(identity.RoleAdmin), target.ID.String(), user.UpdateProfileRequest{Address: &addr})

		assert.NoError(t, err)
	})

	t.Run("invalid joining date", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()
		target := storedUser(identity.RoleEmployee)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*user.User, error) {
			return target, nil
		}
		bad := "01/02/2025"

		_, err := deps.service.UpdateProfile(ctx, principal(identity.RoleHR), target.ID.String(), user.UpdateProfileRequest{DateOfJoining: &bad})

		assert.ErrorIs(t, err, usererrors.ErrInvalidDate)
	})
}

func TestUserService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates when no admin", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()

		created, err := deps.service.EnsureAdmin(ctx, "admin", "Admin@Dayflow.local", "changeme123")

		assert.NoError(t, err)
		assert.True(t, created)
		if assert.Len(t, deps.repo.created, 1) {
			assert.Equal(t, identity.RoleAdmin, deps.repo.created[0].Role)
			assert.Equal(t, "admin@dayflow.local", deps.repo.created[0].Email)
		}
	})

	t.Run("skips when admin exists", func(t *testing.T) {
		deps := setupUserServiceTest(t)
		defer deps.db.Close()
		deps.repo.countByRoleFn = func(ctx context.Context, role string) (int64, error) {
			return 1, nil
		}

		created, err := deps.service.EnsureAdmin(ctx, "admin", "admin@dayflow.local", "changeme123")

		assert.NoError(t, err)
		assert.False(t, created)
		assert.Empty(t, deps.repo.created)
	})
}

func TestUserService_PasswordCost(t *testing.T) {
	ctx := context.Background()

	for _, tt := range []struct {
		name string
		cost int
		want int
	}{
		{"configured", bcrypt.MinCost, bcrypt.MinCost},
		{"out of range falls back", 99, bcrypt.DefaultCost},
	} {
		t.Run(tt.name, func(t *testing.T) {
			db, _, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := &fakeUserRepository{}
			svc := user.NewServiceWithCost(db, repo, nil, tt.cost)

			created, err := svc.EnsureAdmin(ctx, "admin", "admin@dayflow.local", "changeme123")
			assert.NoError(t, err)
			assert.True(t, created)

			got, err := bcrypt.Cost([]byte(repo.created[0].Password))
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
