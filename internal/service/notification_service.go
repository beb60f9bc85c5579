package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/savestreak/backend/internal/apperror"
	"github.com/savestreak/backend/internal/model"
)

// NotificationRepositoryInterface defines the contract for notification
// record and push subscription data access.
type NotificationRepositoryInterface interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.NotificationRecord, error)
	MarkRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	CreateSubscription(ctx context.Context, sub *model.PushSubscription) error
}

// PreferencesStoreInterface loads and saves notification preferences.
type PreferencesStoreInterface interface {
	Load(ctx context.Context) model.NotificationPreferences
	Save(ctx context.Context, prefs model.NotificationPreferences) error
}

const defaultNotificationLimit = 50

// NotificationService serves the notification inbox and the preferences
// surface. Preference changes invoke onPrefsChange so the timer schedule
// follows the new settings immediately.
type NotificationService struct {
	notifications NotificationRepositoryInterface
	prefs         PreferencesStoreInterface
	onPrefsChange func(ctx context.Context)
	logger        *slog.Logger
}

func NewNotificationService(
	notifications NotificationRepositoryInterface,
	prefs PreferencesStoreInterface,
	onPrefsChange func(ctx context.Context),
	logger *slog.Logger,
) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		notifications: notifications,
		prefs:         prefs,
		onPrefsChange: onPrefsChange,
		logger:        logger,
	}
}

// List returns the user's most recent notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]model.NotificationRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultNotificationLimit
	}
	records, err := s.notifications.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperror.Storage(fmt.Errorf("listing notifications for user %s: %w", userID, err))
	}
	return records, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.notifications.MarkRead(ctx, id, userID); err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	return nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperror.Storage(fmt.Errorf("counting unread notifications: %w", err))
	}
	return count, nil
}

func (s *NotificationService) GetPreferences(ctx context.Context) model.NotificationPreferences {
	return s.prefs.Load(ctx)
}

// UpdatePreferences validates and persists the full preferences document,
// then triggers a reschedule of the notification timers.
func (s *NotificationService) UpdatePreferences(ctx context.Context, prefs model.NotificationPreferences) error {
	if err := validateQuietHours(prefs.QuietHours); err != nil {
		return err
	}
	if err := s.prefs.Save(ctx, prefs); err != nil {
		return err
	}
	s.logger.Info("notification preferences updated")
	if s.onPrefsChange != nil {
		s.onPrefsChange(ctx)
	}
	return nil
}

// Subscribe registers a browser push endpoint for the user.
func (s *NotificationService) Subscribe(ctx context.Context, userID uuid.UUID, endpoint, p256dh, auth string) (*model.PushSubscription, error) {
	if endpoint == "" {
		return nil, apperror.ValidationError("endpoint", "endpoint is required")
	}
	if p256dh == "" || auth == "" {
		return nil, apperror.ValidationError("keys", "p256dh and auth keys are required")
	}

	sub := &model.PushSubscription{
		ID:       uuid.New(),
		UserID:   userID,
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
	}
	if err := s.notifications.CreateSubscription(ctx, sub); err != nil {
		return nil, apperror.Storage(fmt.Errorf("saving push subscription: %w", err))
	}
	return sub, nil
}

func validateQuietHours(q model.QuietHours) error {
	if q.StartHour < 0 || q.StartHour > 23 {
		return apperror.ValidationError("quietHours.startHour", "hour must be between 0 and 23")
	}
	if q.EndHour < 0 || q.EndHour > 23 {
		return apperror.ValidationError("quietHours.endHour", "hour must be between 0 and 23")
	}
	return nil
}
