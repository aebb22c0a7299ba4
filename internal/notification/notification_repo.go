package notification

import (
	"context"
	"database/sql"
	"time"

	"dayflow-hrms/internal/shared/dbutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=notification_repo.go -destination=mock/notification_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, id string) (*Notification, error)
	List(ctx context.Context, recipientID uuid.UUID, filter ListFilter) ([]Notification, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	CountByType(ctx context.Context, recipientID uuid.UUID) ([]TypeCount, error)
	Update(ctx context.Context, n *Notification) error
	Delete(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID, at time.Time) (int64, error)
	PurgeReadBefore(ctx context.Context, before time.Time) (int64, error)

	FindPreference(ctx context.Context, userID uuid.UUID) (*Preference, error)
	CreatePreference(ctx context.Context, p *Preference) error
	UpdatePreference(ctx context.Context, p *Preference) error

	FindRecipient(ctx context.Context, userID uuid.UUID) (*Recipient, error)
	FindActiveRecipientsByRoles(ctx context.Context, roles []string) ([]Recipient, error)
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

func (r *repository) Create(ctx context.Context, n *Notification) error {
	return r.conn(ctx).Create(n).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Notification, error) {
	var n Notification
	err := r.conn(ctx).First(&n, "id = ?", id).Error
	return &n, err
}

func (r *repository) List(ctx context.Context, recipientID uuid.UUID, filter ListFilter) ([]Notification, error) {
	q := r.conn(ctx).Where("recipient_id = ?", recipientID)
	if filter.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if filter.Type != "" {
		q = q.Where("notification_type = ?", filter.Type)
	}

	var items []Notification
	err := q.Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *repository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

func (r *repository) CountByType(ctx context.Context, recipientID uuid.UUID) ([]TypeCount, error) {
	var rows []TypeCount
	err := r.conn(ctx).Model(&Notification{}).
		Select("notification_type, COUNT(*) AS total, SUM(CASE WHEN is_read THEN 0 ELSE 1 END) AS unread").
		Where("recipient_id = ?", recipientID).
		Group("notification_type").
		Order("notification_type").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, n *Notification) error {
	return r.conn(ctx).Save(n).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.conn(ctx).Delete(&Notification{}, "id = ?", id).Error
}

func (r *repository) MarkAllRead(ctx context.Context, recipientID uuid.UUID, at time.Time) (int64, error) {
	res := r.conn(ctx).Model(&Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *repository) PurgeReadBefore(ctx context.Context, before time.Time) (int64, error) {
	res := r.conn(ctx).
		Where("is_read = ? AND created_at < ?", true, before).
		Delete(&Notification{})
	return res.RowsAffected, res.Error
}

func (r *repository) FindPreference(ctx context.Context, userID uuid.UUID) (*Preference, error) {
	var p Preference
	err := r.conn(ctx).First(&p, "user_id = ?", userID).Error
	return &p, err
}

func (r *repository) CreatePreference(ctx context.Context, p *Preference) error {
	return r.conn(ctx).Create(p).Error
}

func (r *repository) UpdatePreference(ctx context.Context, p *Preference) error {
	return r.conn(ctx).Save(p).Error
}

func (r *repository) FindRecipient(ctx context.Context, userID uuid.UUID) (*Recipient, error) {
	var rc Recipient
	err := r.conn(ctx).Table("users").
		Select("id, email, role, is_active").
		Where("id = ?", userID).
		Take(&rc).Error
	return &rc, err
}

func (r *repository) FindActiveRecipientsByRoles(ctx context.Context, roles []string) ([]Recipient, error) {
	q := r.conn(ctx).Table("users").
		Select("id, email, role, is_active").
		Where("is_active = ?", true)
	if len(roles) > 0 {
		q = q.Where("role IN ?", roles)
	}

	var rows []Recipient
	err := q.Order("username").Scan(&rows).Error
	return rows, err
}
