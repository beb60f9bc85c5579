package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/savestreak/backend/internal/model"
	"github.com/savestreak/backend/internal/service"
	"github.com/savestreak/backend/pkg/datetime"
)

// SavingsServiceInterface defines the savings operations used by handlers.
type SavingsServiceInterface interface {
	RecordSaving(ctx context.Context, userID uuid.UUID, input service.SavingInput) (*model.SavingEvent, *model.Stats, error)
}

// StatsServiceInterface defines the stats operations used by handlers.
type StatsServiceInterface interface {
	ComputeStats(ctx context.Context, userID uuid.UUID, asOf datetime.Date) (*model.Stats, error)
}

// NotificationServiceInterface defines the notification operations used by handlers.
type NotificationServiceInterface interface {
	List(ctx context.Context, userID uuid.UUID, limit int) ([]model.NotificationRecord, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	GetPreferences(ctx context.Context) model.NotificationPreferences
	UpdatePreferences(ctx context.Context, prefs model.NotificationPreferences) error
	Subscribe(ctx context.Context, userID uuid.UUID, endpoint, p256dh, auth string) (*model.PushSubscription, error)
}
