package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"

	"github.com/savestreak/backend/internal/model"
)

// SubscriptionStoreInterface is the slice of the notification repository
// the push sink needs.
type SubscriptionStoreInterface interface {
	ListSubscriptionsByUser(ctx context.Context, userID uuid.UUID) ([]model.PushSubscription, error)
	DeleteSubscriptionByEndpoint(ctx context.Context, endpoint string) error
}

// WebPushSink delivers notifications to every push subscription registered
// for the user. Endpoints that the push service reports as gone are pruned.
type WebPushSink struct {
	subs            SubscriptionStoreInterface
	vapidPublicKey  string
	vapidPrivateKey string
	subscriber      string
	logger          *slog.Logger
}

func NewWebPushSink(subs SubscriptionStoreInterface, vapidPublicKey, vapidPrivateKey, subscriber string, logger *slog.Logger) *WebPushSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebPushSink{
		subs:            subs,
		vapidPublicKey:  vapidPublicKey,
		vapidPrivateKey: vapidPrivateKey,
		subscriber:      subscriber,
		logger:          logger,
	}
}

// Deliver pushes the record to all of the user's subscriptions. Individual
// endpoint failures are logged and do not stop the fan-out; only a failure
// to list subscriptions is returned.
func (s *WebPushSink) Deliver(ctx context.Context, record *model.NotificationRecord) error {
	subs, err := s.subs.ListSubscriptionsByUser(ctx, record.UserID)
	if err != nil {
		return fmt.Errorf("listing push subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}

	message, err := json.Marshal(map[string]string{
		"title": record.Title,
		"body":  record.Body,
		"icon":  record.Icon,
		"color": record.Color,
		"type":  string(record.Type),
	})
	if err != nil {
		return fmt.Errorf("encoding push payload: %w", err)
	}

	for _, sub := range subs {
		resp, err := webpush.SendNotification(message, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256dh,
				Auth:   sub.Auth,
			},
		}, &webpush.Options{
			Subscriber:      s.subscriber,
			VAPIDPublicKey:  s.vapidPublicKey,
			VAPIDPrivateKey: s.vapidPrivateKey,
			TTL:             3600,
		})
		if err != nil {
			s.logger.Warn("push delivery failed", "endpoint", sub.Endpoint, "error", err)
			continue
		}
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			// The push service no longer knows this subscription.
			if err := s.subs.DeleteSubscriptionByEndpoint(ctx, sub.Endpoint); err != nil {
				s.logger.Warn("pruning stale push subscription", "endpoint", sub.Endpoint, "error", err)
			}
		}
		_ = resp.Body.Close()
	}
	return nil
}
