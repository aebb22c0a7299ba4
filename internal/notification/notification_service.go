package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"dayflow-hrms/internal/events"
	"dayflow-hrms/internal/identity"
	"dayflow-hrms/internal/messaging/kafka"
	notificationerrors "dayflow-hrms/internal/notification/errors"
	"dayflow-hrms/internal/shared/contextutil"
	"dayflow-hrms/internal/shared/dbutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier is the dispatch surface the workflows depend on. Notify returns
// nil, nil when the recipient's preferences suppress the notification.
//
//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Notifier interface {
	Notify(ctx context.Context, in NotifyInput) (*NotificationResponse, error)
	NotifyRoles(ctx context.Context, roles []string, in NotifyInput) (BroadcastResult, error)
}

type Service interface {
	Notifier

	Create(ctx context.Context, req CreateNotificationRequest) (*NotificationResponse, error)
	Broadcast(ctx context.Context, req BroadcastRequest) (BroadcastResult, error)

	List(ctx context.Context, p identity.Principal, filter ListFilter) (NotificationListResponse, error)
	Get(ctx context.Context, p identity.Principal, id string) (NotificationResponse, error)
	SetRead(ctx context.Context, p identity.Principal, id string, isRead bool) (NotificationResponse, error)
	Delete(ctx context.Context, p identity.Principal, id string) error
	MarkAllRead(ctx context.Context, p identity.Principal) (MarkAllReadResponse, error)
	Stats(ctx context.Context, p identity.Principal) (StatsResponse, error)

	GetPreferences(ctx context.Context, p identity.Principal) (PreferenceResponse, error)
	UpdatePreferences(ctx context.Context, p identity.Principal, req UpdatePreferenceRequest) (PreferenceResponse, error)

	PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

// NewService wires dispatch. A nil outbox disables e-mail fan-out.
func NewService(db *sql.DB, repo Repository, outbox kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{db: db, repo: repo, outbox: outbox, logger: l}
}

func normalizeInput(in NotifyInput) (NotifyInput, error) {
	in.Type = strings.ToUpper(strings.TrimSpace(in.Type))
	if in.Type == "" {
		in.Type = TypeGeneral
	}
	if !IsValidType(in.Type) {
		return in, notificationerrors.ErrInvalidType
	}

	in.Priority = strings.ToUpper(strings.TrimSpace(in.Priority))
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !IsValidPriority(in.Priority) {
		return in, notificationerrors.ErrInvalidPriority
	}
	return in, nil
}

func (s *service) Notify(ctx context.Context, in NotifyInput) (*NotificationResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	in, err := normalizeInput(in)
	if err == nil && in.RecipientID == uuid.Nil {
		err = notificationerrors.ErrInvalidRecipientID
	}
	if err != nil {
		log.Warn("notify validation failed", zap.Error(err))
		return nil, err
	}

	log.Debug("notify requested",
		zap.String("recipient_id", in.RecipientID.String()),
		zap.String("notification_type", in.Type),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("notify begin tx failed", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	recipient, err := qtx.FindRecipient(ctx, in.RecipientID)
	if err != nil {
		if dbutil.IsNotFound(err) {
			return nil, notificationerrors.ErrRecipientNotFound
		}
		log.Error("notify recipient lookup failed", zap.Error(err))
		return nil, err
	}

	pref := DefaultPreference(in.RecipientID)
	stored, err := qtx.FindPreference(ctx, in.RecipientID)
	switch {
	case err == nil:
		pref = *stored
	case dbutil.IsNotFound(err):
	default:
		log.Error("notify preference lookup failed", zap.Error(err))
		return nil, err
	}

	if !pref.Allows(in.Type) {
		log.Info("notification suppressed by preference",
			zap.String("recipient_id", in.RecipientID.String()),
			zap.String("notification_type", in.Type),
			zap.String("category", CategoryOf(in.Type)),
		)
		return nil, nil
	}

	n := &Notification{
		ID:                uuid.New(),
		RecipientID:       in.RecipientID,
		NotificationType:  in.Type,
		Title:             in.Title,
		Message:           in.Message,
		Priority:          in.Priority,
		RelatedObjectType: in.RelatedObjectType,
		RelatedObjectID:   in.RelatedObjectID,
		ActionURL:         in.ActionURL,
		CreatedAt:         time.Now(),
	}
	if err := qtx.Create(ctx, n); err != nil {
		log.Error("notify persist failed", zap.Error(err))
		return nil, err
	}

	if s.outbox != nil {
		if err := s.enqueueCreated(ctx, tx, n, recipient.Email, pref.EmailNotifications); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("notify commit failed", zap.Error(err))
		return nil, err
	}

	log.Info("notification created",
		zap.String("notification_id", n.ID.String()),
		zap.String("recipient_id", n.RecipientID.String()),
		zap.String("notification_type", n.NotificationType),
	)

	resp := mapToResponse(*n)
	return &resp, nil
}

func (s *service) enqueueCreated(ctx context.Context, tx *sql.Tx, n *Notification, email string, emailEnabled bool) error {
	log := contextutil.GetLogger(ctx, s.logger)

	meta := contextutil.ExtractMetadata(ctx)
	rid := meta.RequestID
	event := events.NotificationCreatedEvent{
		EventType:        events.NotificationCreatedEventType,
		RequestID:        rid,
		NotificationID:   n.ID.String(),
		RecipientID:      n.RecipientID.String(),
		RecipientEmail:   email,
		NotificationType: n.NotificationType,
		Priority:         n.Priority,
		Title:            n.Title,
		Message:          n.Message,
		ActionURL:        n.ActionURL,
		EmailEnabled:     emailEnabled,
		OccurredAt:       n.CreatedAt.UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error("marshal notification event failed",
			zap.String("request_id", rid),
			zap.String("actor_id", meta.UserID),
			zap.Error(err),
		)
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "notification",
		AggregateID:   n.ID.String(),
		EventType:     event.EventType,
		Topic:         events.NotificationCreatedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		log.Error("notification outbox persist failed",
			zap.String("notification_id", n.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) NotifyRoles(ctx context.Context, roles []string, in NotifyInput) (BroadcastResult, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	recipients, err := s.repo.FindActiveRecipientsByRoles(ctx, roles)
	if err != nil {
		log.Error("notify roles recipient lookup failed", zap.Strings("roles", roles), zap.Error(err))
		return BroadcastResult{}, err
	}

	var result BroadcastResult
	for _, rc := range recipients {
		one := in
		one.RecipientID = rc.ID
		created, err := s.Notify(ctx, one)
		if err != nil {
			return result, err
		}
		if created == nil {
			result.Suppressed++
			continue
		}
		result.Created++
	}

	log.Info("notify roles done",
		zap.Strings("roles", roles),
		zap.Int("created", result.Created),
		zap.Int("suppressed", result.Suppressed),
	)
	return result, nil
}

func (s *service) Create(ctx context.Context, req CreateNotificationRequest) (*NotificationResponse, error) {
	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		return nil, notificationerrors.ErrInvalidRecipientID
	}

	in := NotifyInput{
		RecipientID:       recipientID,
		Type:              req.NotificationType,
		Title:             req.Title,
		Message:           req.Message,
		Priority:          req.Priority,
		RelatedObjectType: req.RelatedObjectType,
		ActionURL:         req.ActionURL,
	}
	if req.RelatedObjectID != "" {
		relatedID, err := uuid.Parse(req.RelatedObjectID)
		if err != nil {
			return nil, notificationerrors.ErrInvalidRelatedObjectID
		}
		in.RelatedObjectID = &relatedID
	}

	return s.Notify(ctx, in)
}

func (s *service) Broadcast(ctx context.Context, req BroadcastRequest) (BroadcastResult, error) {
	var roles []string
	if strings.TrimSpace(req.Role) != "" {
		role, err := identity.NormalizeRole(req.Role)
		if err != nil {
			return BroadcastResult{}, err
		}
		roles = []string{role}
	}

	in, err := normalizeInput(NotifyInput{
		Type:     req.NotificationType,
		Title:    req.Title,
		Message:  req.Message,
		Priority: req.Priority,
	})
	if err != nil {
		return BroadcastResult{}, err
	}

	return s.NotifyRoles(ctx, roles, in)
}

func (s *service) List(ctx context.Context, p identity.Principal, filter ListFilter) (NotificationListResponse, error) {
	filter.Type = strings.ToUpper(strings.TrimSpace(filter.Type))
	if filter.Type != "" && !IsValidType(filter.Type) {
		return NotificationListResponse{}, notificationerrors.ErrInvalidType
	}

	items, err := s.repo.List(ctx, p.UserID, filter)
	if err != nil {
		return NotificationListResponse{}, err
	}
	unread, err := s.repo.CountUnread(ctx, p.UserID)
	if err != nil {
		return NotificationListResponse{}, err
	}

	return NotificationListResponse{
		Count:         len(items),
		UnreadCount:   unread,
		Notifications: mapToListResponse(items),
	}, nil
}

// findOwned hides other users' notifications behind NotFound.
func (s *service) findOwned(ctx context.Context, repo Repository, p identity.Principal, id string) (*Notification, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notificationerrors.ErrInvalidNotificationID
	}
	n, err := repo.FindByID(ctx, id)
	if err != nil {
		if dbutil.IsNotFound(err) {
			return nil, notificationerrors.ErrNotificationNotFound
		}
		return nil, err
	}
	if err := identity.AuthorizeStrictOwner(p, n); err != nil {
		return nil, notificationerrors.ErrNotificationNotFound
	}
	return n, nil
}

func (s *service) Get(ctx context.Context, p identity.Principal, id string) (NotificationResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	n, err := s.findOwned(ctx, s.repo, p, id)
	if err != nil {
		return NotificationResponse{}, err
	}

	if n.MarkRead(time.Now()) {
		if err := s.repo.Update(ctx, n); err != nil {
			log.Error("auto mark read failed", zap.String("notification_id", id), zap.Error(err))
			return NotificationResponse{}, err
		}
	}
	return mapToResponse(*n), nil
}

func (s *service) SetRead(ctx context.Context, p identity.Principal, id string, isRead bool) (NotificationResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	n, err := s.findOwned(ctx, s.repo, p, id)
	if err != nil {
		return NotificationResponse{}, err
	}

	var changed bool
	if isRead {
		changed = n.MarkRead(time.Now())
	} else {
		changed = n.MarkUnread()
	}
	if changed {
		if err := s.repo.Update(ctx, n); err != nil {
			log.Error("update notification failed", zap.String("notification_id", id), zap.Error(err))
			return NotificationResponse{}, err
		}
	}
	return mapToResponse(*n), nil
}

func (s *service) Delete(ctx context.Context, p identity.Principal, id string) error {
	log := contextutil.GetLogger(ctx, s.logger)

	n, err := s.findOwned(ctx, s.repo, p, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, n.ID); err != nil {
		log.Error("delete notification failed", zap.String("notification_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, p identity.Principal) (MarkAllReadResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	count, err := s.repo.MarkAllRead(ctx, p.UserID, time.Now())
	if err != nil {
		log.Error("mark all read failed", zap.String("user_id", p.UserID.String()), zap.Error(err))
		return MarkAllReadResponse{}, err
	}
	return MarkAllReadResponse{Count: count}, nil
}

func (s *service) Stats(ctx context.Context, p identity.Principal) (StatsResponse, error) {
	rows, err := s.repo.CountByType(ctx, p.UserID)
	if err != nil {
		return StatsResponse{}, err
	}

	resp := StatsResponse{ByType: make(map[string]int64, len(rows))}
	for _, r := range rows {
		resp.Total += r.Total
		resp.Unread += r.Unread
		resp.ByType[r.NotificationType] = r.Total
	}
	resp.Read = resp.Total - resp.Unread
	return resp, nil
}

func (s *service) loadOrCreatePreference(ctx context.Context, repo Repository, userID uuid.UUID) (*Preference, error) {
	pref, err := repo.FindPreference(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if !dbutil.IsNotFound(err) {
		return nil, err
	}

	created := DefaultPreference(userID)
	if err := repo.CreatePreference(ctx, &created); err != nil {
		if dbutil.IsUniqueViolation(err) {
			return repo.FindPreference(ctx, userID)
		}
		return nil, err
	}
	return &created, nil
}

func (s *service) GetPreferences(ctx context.Context, p identity.Principal) (PreferenceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	pref, err := s.loadOrCreatePreference(ctx, s.repo, p.UserID)
	if err != nil {
		log.Error("get preferences failed", zap.String("user_id", p.UserID.String()), zap.Error(err))
		return PreferenceResponse{}, err
	}
	return mapPreference(*pref), nil
}

func (s *service) UpdatePreferences(ctx context.Context, p identity.Principal, req UpdatePreferenceRequest) (PreferenceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("update preferences begin tx failed", zap.Error(err))
		return PreferenceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	pref, err := s.loadOrCreatePreference(ctx, qtx, p.UserID)
	if err != nil {
		log.Error("update preferences load failed", zap.Error(err))
		return PreferenceResponse{}, err
	}

	apply := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&pref.EmailNotifications, req.EmailNotifications)
	apply(&pref.LeaveNotifications, req.LeaveNotifications)
	apply(&pref.AttendanceNotifications, req.AttendanceNotifications)
	apply(&pref.PayrollNotifications, req.PayrollNotifications)
	apply(&pref.GeneralNotifications, req.GeneralNotifications)

	if err := qtx.UpdatePreference(ctx, pref); err != nil {
		log.Error("update preferences persist failed", zap.Error(err))
		return PreferenceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("update preferences commit failed", zap.Error(err))
		return PreferenceResponse{}, err
	}

	log.Info("preferences updated", zap.String("user_id", p.UserID.String()))
	return mapPreference(*pref), nil
}

func (s *service) PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	before := time.Now().Add(-olderThan)
	count, err := s.repo.PurgeReadBefore(ctx, before)
	if err != nil {
		log.Error("purge read notifications failed", zap.Error(err))
		return 0, err
	}
	log.Info("read notifications purged",
		zap.Int64("count", count),
		zap.Time("before", before),
	)
	return count, nil
}
