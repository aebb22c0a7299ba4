package notification_test

import (
	"context"
	"testing"
	"time"

	"dayflow-hrms/internal/identity"
	"dayflow-hrms/internal/notification"
	"dayflow-hrms/internal/shared/dbutil"
	"dayflow-hrms/internal/shared/dbutil/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRepository_ReadStateAndStats(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenSQLite(t, &notification.Notification{}, &notification.Preference{})
	repo := notification.NewRepository(db)

	owner := uuid.New()
	other := uuid.New()
	old := time.Now().UTC().Add(-100 * 24 * time.Hour)

	seed := []notification.Notification{
		{ID: uuid.New(), RecipientID: owner, NotificationType: notification.TypeGeneral, Title: "a", Message: "a", Priority: notification.PriorityLow, CreatedAt: old, IsRead: true},
		{ID: uuid.New(), RecipientID: owner, NotificationType: notification.TypeGeneral, Title: "b", Message: "b", Priority: notification.PriorityLow, CreatedAt: time.Now().UTC()},
		{ID: uuid.New(), RecipientID: owner, NotificationType: notification.TypeLeaveApproved, Title: "c", Message: "c", Priority: notification.PriorityHigh, CreatedAt: time.Now().UTC()},
		{ID: uuid.New(), RecipientID: other, NotificationType: notification.TypeGeneral, Title: "d", Message: "d", Priority: notification.PriorityLow, CreatedAt: time.Now().UTC()},
	}
	for i := range seed {
		assert.NoError(t, repo.Create(ctx, &seed[i]))
	}

	unread, err := repo.CountUnread(ctx, owner)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	byType, err := repo.CountByType(ctx, owner)
	assert.NoError(t, err)
	assert.Equal(t, []notification.TypeCount{
		{NotificationType: notification.TypeGeneral, Total: 2, Unread: 1},
		{NotificationType: notification.TypeLeaveApproved, Total: 1, Unread: 1},
	}, byType)

	onlyLeave, err := repo.List(ctx, owner, notification.ListFilter{Type: notification.TypeLeaveApproved})
	assert.NoError(t, err)
	assert.Len(t, onlyLeave, 1)

	marked, err := repo.MarkAllRead(ctx, owner, time.Now().UTC())
	assert.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	again, err := repo.MarkAllRead(ctx, owner, time.Now().UTC())
	assert.NoError(t, err)
	assert.Zero(t, again)

	otherUnread, err := repo.CountUnread(ctx, other)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), otherUnread)

	purged, err := repo.PurgeReadBefore(ctx, time.Now().UTC().Add(-90*24*time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestRepository_PreferenceIsUniquePerUser(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenSQLite(t, &notification.Preference{})
	repo := notification.NewRepository(db)

	userID := uuid.New()
	first := notification.DefaultPreference(userID)
	first.LeaveNotifications = false
	assert.NoError(t, repo.CreatePreference(ctx, &first))

	stored, err := repo.FindPreference(ctx, userID)
	assert.NoError(t, err)
	assert.False(t, stored.LeaveNotifications)
	assert.True(t, stored.PayrollNotifications)

	dup := notification.DefaultPreference(userID)
	err = repo.CreatePreference(ctx, &dup)
	assert.True(t, dbutil.IsUniqueViolation(err))
}

func TestRepository_Recipients(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenSQLite(t, &dbtest.User{})
	repo := notification.NewRepository(db)

	hr := uuid.New()
	admin := uuid.New()
	for _, u := range []dbtest.User{
		{ID: hr.String(), Username: "hana", Email: "hana@example.com", Role: identity.RoleHR, IsActive: true},
		{ID: admin.String(), Username: "adi", Email: "adi@example.com", Role: identity.RoleAdmin, IsActive: true},
		{ID: uuid.NewString(), Username: "hilda", Email: "hilda@example.com", Role: identity.RoleHR, IsActive: false},
		{ID: uuid.NewString(), Username: "eko", Email: "eko@example.com", Role: identity.RoleEmployee, IsActive: true},
	} {
		assert.NoError(t, db.Create(&u).Error)
	}

	approvers, err := repo.FindActiveRecipientsByRoles(ctx, identity.ApproverRoles)
	assert.NoError(t, err)
	assert.Len(t, approvers, 2)
	assert.Equal(t, admin, approvers[0].ID)
	assert.Equal(t, hr, approvers[1].ID)

	everyone, err := repo.FindActiveRecipientsByRoles(ctx, nil)
	assert.NoError(t, err)
	assert.Len(t, everyone, 3)

	rc, err := repo.FindRecipient(ctx, hr)
	assert.NoError(t, err)
	assert.Equal(t, "hana@example.com", rc.Email)

	_, err = repo.FindRecipient(ctx, uuid.New())
	assert.True(t, dbutil.IsNotFound(err))
}
