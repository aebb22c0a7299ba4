package notification_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"dayflow-hrms/internal/events"
	"dayflow-hrms/internal/identity"
	"dayflow-hrms/internal/messaging/kafka"
	kafkaMock "dayflow-hrms/internal/messaging/kafka/mock"
	"dayflow-hrms/internal/notification"
	notificationerrors "dayflow-hrms/internal/notification/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fakeNotificationRepository struct {
	withTxFn             func(tx *sql.Tx) notification.Repository
	createFn             func(ctx context.Context, n *notification.Notification) error
	findByIDFn           func(ctx context.Context, id string) (*notification.Notification, error)
	listFn               func(ctx context.Context, recipientID uuid.UUID, filter notification.ListFilter) ([]notification.Notification, error)
	countUnreadFn        func(ctx context.Context, recipientID uuid.UUID) (int64, error)
	countByTypeFn        func(ctx context.Context, recipientID uuid.UUID) ([]notification.TypeCount, error)
	updateFn             func(ctx context.Context, n *notification.Notification) error
	deleteFn             func(ctx context.Context, id uuid.UUID) error
	markAllReadFn        func(ctx context.Context, recipientID uuid.UUID, at time.Time) (int64, error)
	purgeReadBeforeFn    func(ctx context.Context, before time.Time) (int64, error)
	findPreferenceFn     func(ctx context.Context, userID uuid.UUID) (*notification.Preference, error)
	createPreferenceFn   func(ctx context.Context, p *notification.Preference) error
	updatePreferenceFn   func(ctx context.Context, p *notification.Preference) error
	findRecipientFn      func(ctx context.Context, userID uuid.UUID) (*notification.Recipient, error)
	findByRolesFn        func(ctx context.Context, roles []string) ([]notification.Recipient, error)
	createdNotifications []notification.Notification
}

func (f *fakeNotificationRepository) WithTx(tx *sql.Tx) notification.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	f.createdNotifications = append(f.createdNotifications, *n)
	if f.createFn != nil {
		return f.createFn(ctx, n)
	}
	return nil
}

func (f *fakeNotificationRepository) FindByID(ctx context.Context, id string) (*notification.Notification, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeNotificationRepository) List(ctx context.Context, recipientID uuid.UUID, filter notification.ListFilter) ([]notification.Notification, error) {
	if f.listFn != nil {
		return f.listFn(ctx, recipientID, filter)
	}
	return nil, nil
}

func (f *fakeNotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if f.countUnreadFn != nil {
		return f.countUnreadFn(ctx, recipientID)
	}
	return 0, nil
}

func (f *fakeNotificationRepository) CountByType(ctx context.Context, recipientID uuid.UUID) ([]notification.TypeCount, error) {
	if f.countByTypeFn != nil {
		return f.countByTypeFn(ctx, recipientID)
	}
	return nil, nil
}

func (f *fakeNotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, n)
	}
	return nil
}

func (f *fakeNotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeNotificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID, at time.Time) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, recipientID, at)
	}
	return 0, nil
}

func (f *fakeNotificationRepository) PurgeReadBefore(ctx context.Context, before time.Time) (int64, error) {
	if f.purgeReadBeforeFn != nil {
		return f.purgeReadBeforeFn(ctx, before)
	}
	return 0, nil
}

func (f *fakeNotificationRepository) FindPreference(ctx context.Context, userID uuid.UUID) (*notification.Preference, error) {
	if f.findPreferenceFn != nil {
		return f.findPreferenceFn(ctx, userID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeNotificationRepository) CreatePreference(ctx context.Context, p *notification.Preference) error {
	if f.createPreferenceFn != nil {
		return f.createPreferenceFn(ctx, p)
	}
	return nil
}

func (f *fakeNotificationRepository) UpdatePreference(ctx context.Context, p *notification.Preference) error {
	if f.updatePreferenceFn != nil {
		return f.updatePreferenceFn(ctx, p)
	}
	return nil
}

func (f *fakeNotificationRepository) FindRecipient(ctx context.Context, userID uuid.UUID) (*notification.Recipient, error) {
	if f.findRecipientFn != nil {
		return f.findRecipientFn(ctx, userID)
	}
	return &notification.Recipient{ID: userID, Email: "user@example.com", Role: identity.RoleEmployee, IsActive: true}, nil
}

func (f *fakeNotificationRepository) FindActiveRecipientsByRoles(ctx context.Context, roles []string) ([]notification.Recipient, error) {
	if f.findByRolesFn != nil {
		return f.findByRolesFn(ctx, roles)
	}
	return nil, nil
}

type notificationServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service notification.Service
	repo    *fakeNotificationRepository
	outbox  *kafkaMock.MockOutboxRepository
}

func setupNotificationServiceTest(t *testing.T) *notificationServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	ctrl := gomock.NewController(t)
	outbox := kafkaMock.NewMockOutboxRepository(ctrl)
	repo := &fakeNotificationRepository{}

	return &notificationServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: notification.NewService(db, repo, outbox),
		repo:    repo,
		outbox:  outbox,
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

type outboxEmailMatcher struct {
	emailEnabled bool
}

func (m outboxEmailMatcher) Matches(x any) bool {
	event, ok := x.(kafka.OutboxEvent)
	if !ok || event.Topic != events.NotificationCreatedTopic || event.Status != kafka.OutboxStatusPending {
		return false
	}
	var payload events.NotificationCreatedEvent
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return false
	}
	return payload.EmailEnabled == m.emailEnabled && payload.NotificationID == event.AggregateID
}

func (m outboxEmailMatcher) String() string {
	return "notification_created outbox event"
}

func principal(role string) identity.Principal {
	return identity.Principal{UserID: uuid.New(), Role: role}
}

func TestNotificationService_Notify(t *testing.T) {
	ctx := context.Background()
	recipientID := uuid.New()

	t.Run("creates notification and outbox event", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), outboxEmailMatcher{emailEnabled: true}).Return(nil)

		resp, err := deps.service.Notify(ctx, notification.NotifyInput{
			RecipientID: recipientID,
			Type:        "leave_approved",
			Title:       "Leave approved",
			Message:     "Your leave request was approved",
		})

		assert.NoError(t, err)
		assert.NotNil(t, resp)
		assert.Equal(t, notification.TypeLeaveApproved, resp.NotificationType)
		assert.Equal(t, notification.PriorityMedium, resp.Priority)
		assert.False(t, resp.IsRead)
		assert.Len(t, deps.repo.createdNotifications, 1)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("suppressed by category preference", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findPreferenceFn = func(ctx context.Context, userID uuid.UUID) (*notification.Preference, error) {
			p := notification.DefaultPreference(userID)
			p.LeaveNotifications = false
			return &p, nil
		}

		resp, err := deps.service.Notify(ctx, notification.NotifyInput{
			RecipientID: recipientID,
			Type:        notification.TypeLeaveApproved,
			Title:       "Leave approved",
			Message:     "Approved",
		})

		assert.NoError(t, err)
		assert.Nil(t, resp)
		assert.Empty(t, deps.repo.createdNotifications)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("profile updates ignore preferences", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findPreferenceFn = func(ctx context.Context, userID uuid.UUID) (*notification.Preference, error) {
			return &notification.Preference{UserID: userID}, nil
		}
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), outboxEmailMatcher{emailEnabled: false}).Return(nil)

		resp, err := deps.service.Notify(ctx, notification.NotifyInput{
			RecipientID: recipientID,
			Type:        notification.TypeProfileUpdated,
			Title:       "Profile updated",
			Message:     "HR updated your profile",
		})

		assert.NoError(t, err)
		assert.NotNil(t, resp)
	})

	t.Run("invalid type", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Notify(ctx, notification.NotifyInput{RecipientID: recipientID, Type: "BIRTHDAY", Title: "x", Message: "y"})
		assert.ErrorIs(t, err, notificationerrors.ErrInvalidType)
	})

	t.Run("missing recipient", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findRecipientFn = func(ctx context.Context, userID uuid.UUID) (*notification.Recipient, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.Notify(ctx, notification.NotifyInput{RecipientID: recipientID, Title: "x", Message: "y"})
		assert.ErrorIs(t, err, notificationerrors.ErrRecipientNotFound)
	})

	t.Run("outbox failure rolls back", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))

		_, err := deps.service.Notify(ctx, notification.NotifyInput{RecipientID: recipientID, Title: "x", Message: "y"})
		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestNotificationService_Broadcast(t *testing.T) {
	ctx := context.Background()
	hr := notification.Recipient{ID: uuid.New(), Email: "hr@example.com", Role: identity.RoleHR, IsActive: true}
	muted := notification.Recipient{ID: uuid.New(), Email: "muted@example.com", Role: identity.RoleHR, IsActive: true}

	t.Run("reports created and suppressed", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByRolesFn = func(ctx context.Context, roles []string) ([]notification.Recipient, error) {
			assert.Equal(t, []string{identity.RoleHR}, roles)
			return []notification.Recipient{hr, muted}, nil
		}
		deps.repo.findPreferenceFn = func(ctx context.Context, userID uuid.UUID) (*notification.Preference, error) {
			p := notification.DefaultPreference(userID)
			if userID == muted.ID {
				p.GeneralNotifications = false
			}
			return &p, nil
		}
		expectTx(t, deps.sqlMock, true)
		expectTx(t, deps.sqlMock, false)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		res, err := deps.service.Broadcast(ctx, notification.BroadcastRequest{
			Title:   "Office closed",
			Message: "The office is closed on Friday",
			Role:    "hr",
		})

		assert.NoError(t, err)
		assert.Equal(t, notification.BroadcastResult{Created: 1, Suppressed: 1}, res)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("invalid role", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Broadcast(ctx, notification.BroadcastRequest{Title: "x", Message: "y", Role: "intern"})
		assert.ErrorIs(t, err, identity.ErrInvalidRole)
	})
}

func TestNotificationService_Get(t *testing.T) {
	ctx := context.Background()
	owner := principal(identity.RoleEmployee)

	t.Run("auto marks read", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		deps.repo.findByIDFn = func(ctx context.Context, got string) (*notification.Notification, error) {
			return &notification.Notification{ID: id, RecipientID: owner.UserID, NotificationType: notification.TypeGeneral}, nil
		}
		updated := false
		deps.repo.updateFn = func(ctx context.Context, n *notification.Notification) error {
			updated = true
			assert.True(t, n.IsRead)
			assert.NotNil(t, n.ReadAt)
			return nil
		}

		resp, err := deps.service.Get(ctx, owner, id.String())
		assert.NoError(t, err)
		assert.True(t, resp.IsRead)
		assert.True(t, updated)
	})

	t.Run("someone else's notification is not found", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, got string) (*notification.Notification, error) {
			return &notification.Notification{ID: uuid.New(), RecipientID: uuid.New()}, nil
		}

		_, err := deps.service.Get(ctx, principal(identity.RoleAdmin), uuid.NewString())
		assert.ErrorIs(t, err, notificationerrors.ErrNotificationNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Get(ctx, owner, "abc")
		assert.ErrorIs(t, err, notificationerrors.ErrInvalidNotificationID)
	})
}

func TestNotificationService_SetRead(t *testing.T) {
	ctx := context.Background()
	owner := principal(identity.RoleEmployee)
	readAt := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	t.Run("marking read twice keeps first read_at", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, got string) (*notification.Notification, error) {
			return &notification.Notification{ID: uuid.New(), RecipientID: owner.UserID, IsRead: true, ReadAt: &readAt}, nil
		}
		deps.repo.updateFn = func(ctx context.Context, n *notification.Notification) error {
			t.Fatal("update must not be called for an already-read notification")
			return nil
		}

		resp, err := deps.service.SetRead(ctx, owner, uuid.NewString(), true)
		assert.NoError(t, err)
		assert.Equal(t, readAt, *resp.ReadAt)
	})

	t.Run("mark unread clears read_at", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, got string) (*notification.Notification, error) {
			return &notification.Notification{ID: uuid.New(), RecipientID: owner.UserID, IsRead: true, ReadAt: &readAt}, nil
		}

		resp, err := deps.service.SetRead(ctx, owner, uuid.NewString(), false)
		assert.NoError(t, err)
		assert.False(t, resp.IsRead)
		assert.Nil(t, resp.ReadAt)
	})
}

func TestNotificationService_ListAndStats(t *testing.T) {
	ctx := context.Background()
	owner := principal(identity.RoleEmployee)

	t.Run("list", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		deps.repo.listFn = func(ctx context.Context, recipientID uuid.UUID, filter notification.ListFilter) ([]notification.Notification, error) {
			assert.Equal(t, owner.UserID, recipientID)
			assert.Equal(t, notification.ListFilter{UnreadOnly: true, Type: notification.TypeLeaveApproved}, filter)
			return []notification.Notification{{ID: uuid.New(), RecipientID: owner.UserID}}, nil
		}
		deps.repo.countUnreadFn = func(ctx context.Context, recipientID uuid.UUID) (int64, error) { return 3, nil }

		resp, err := deps.service.List(ctx, owner, notification.ListFilter{UnreadOnly: true, Type: "leave_approved"})
		assert.NoError(t, err)
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, int64(3), resp.UnreadCount)
	})

	t.Run("stats", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		deps.repo.countByTypeFn = func(ctx context.Context, recipientID uuid.UUID) ([]notification.TypeCount, error) {
			return []notification.TypeCount{
				{NotificationType: notification.TypeGeneral, Total: 4, Unread: 1},
				{NotificationType: notification.TypeLeaveApproved, Total: 2, Unread: 2},
			}, nil
		}

		resp, err := deps.service.Stats(ctx, owner)
		assert.NoError(t, err)
		assert.Equal(t, int64(6), resp.Total)
		assert.Equal(t, int64(3), resp.Unread)
		assert.Equal(t, int64(3), resp.Read)
		assert.Equal(t, int64(2), resp.ByType[notification.TypeLeaveApproved])
	})

	t.Run("mark all read", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		deps.repo.markAllReadFn = func(ctx context.Context, recipientID uuid.UUID, at time.Time) (int64, error) {
			assert.Equal(t, owner.UserID, recipientID)
			return 5, nil
		}

		resp, err := deps.service.MarkAllRead(ctx, owner)
		assert.NoError(t, err)
		assert.Equal(t, int64(5), resp.Count)
	})
}

func TestNotificationService_Preferences(t *testing.T) {
	ctx := context.Background()
	owner := principal(identity.RoleEmployee)

	t.Run("get creates defaults", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		created := false
		deps.repo.createPreferenceFn = func(ctx context.Context, p *notification.Preference) error {
			created = true
			assert.Equal(t, owner.UserID, p.UserID)
			return nil
		}

		resp, err := deps.service.GetPreferences(ctx, owner)
		assert.NoError(t, err)
		assert.True(t, created)
		assert.True(t, resp.LeaveNotifications)
		assert.True(t, resp.EmailNotifications)
	})

	t.Run("update changes only given flags", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findPreferenceFn = func(ctx context.Context, userID uuid.UUID) (*notification.Preference, error) {
			p := notification.DefaultPreference(userID)
			return &p, nil
		}
		off := false
		resp, err := deps.service.UpdatePreferences(ctx, owner, notification.UpdatePreferenceRequest{PayrollNotifications: &off})

		assert.NoError(t, err)
		assert.False(t, resp.PayrollNotifications)
		assert.True(t, resp.LeaveNotifications)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestNotificationService_PurgeRead(t *testing.T) {
	deps := setupNotificationServiceTest(t)
	defer deps.db.Close()

	deps.repo.purgeReadBeforeFn = func(ctx context.Context, before time.Time) (int64, error) {
		assert.WithinDuration(t, time.Now().Add(-90*24*time.Hour), before, time.Minute)
		return 7, nil
	}

	n, err := deps.service.PurgeRead(context.Background(), 90*24*time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
