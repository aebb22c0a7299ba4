package user

import (
	"context"
	"database/sql"
	"strings"

	"dayflow-hrms/internal/shared/dbutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, u *User) error
	CreateProfile(ctx context.Context, p *EmployeeProfile) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByLogin(ctx context.Context, login string) (*User, error)
	FindAll(ctx context.Context, filter ListFilter) ([]User, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	Update(ctx context.Context, u *User) error
	FindProfile(ctx context.Context, userID uuid.UUID) (*EmployeeProfile, error)
	UpdateProfile(ctx context.Context, p *EmployeeProfile) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbutil.Bind(r.db, r.tx).WithContext(ctx)
}

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.conn(ctx).Omit("Profile").Create(u).Error
}

func (r *repository) CreateProfile(ctx context.Context, p *EmployeeProfile) error {
	return r.conn(ctx).Create(p).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.conn(ctx).Preload("Profile").First(&u, "id = ?", id).Error
	return &u, err
}

// FindByLogin matches either the username or the e-mail address.
func (r *repository) FindByLogin(ctx context.Context, login string) (*User, error) {
	var u User
	login = strings.TrimSpace(login)
	err := r.conn(ctx).
		Where("username = ? OR LOWER(email) = ?", login, strings.ToLower(login)).
		First(&u).Error
	return &u, err
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]User, error) {
	q := r.conn(ctx).Preload("Profile")
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Active != nil {
		q = q.Where("is_active = ?", *filter.Active)
	}
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(employee_code) LIKE ?", like, like, like)
	}

	var users []User
	err := q.Order("username ASC").Find(&users).Error
	return users, err
}

func (r *repository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *repository) Update(ctx context.Context, u *User) error {
	return r.conn(ctx).Omit("Profile").Save(u).Error
}

func (r *repository) FindProfile(ctx context.Context, userID uuid.UUID) (*EmployeeProfile, error) {
	var p EmployeeProfile
	err := r.conn(ctx).First(&p, "user_id = ?", userID).Error
	return &p, err
}

func (r *repository) UpdateProfile(ctx context.Context, p *EmployeeProfile) error {
	return r.conn(ctx).Save(p).Error
}
