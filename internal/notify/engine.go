// Package notify implements the notification policy engine: every proactive
// notification in the system flows through one gate that applies quiet
// hours, a global cooldown and per-type user preferences before anything is
// persisted or delivered.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/savestreak/backend/internal/model"
)

// SuppressReason explains why an attempt did not emit. Suppression is a
// normal outcome, not an error.
type SuppressReason string

const (
	ReasonQuietHours         SuppressReason = "quiet_hours"
	ReasonCooldown           SuppressReason = "cooldown"
	ReasonPreferenceDisabled SuppressReason = "preference_disabled"
	ReasonUnknownType        SuppressReason = "unknown_type"
)

// Result is the outcome of a single TrySend attempt.
type Result struct {
	Sent   bool
	Reason SuppressReason
	Record *model.NotificationRecord
}

// Payload carries the type-specific content inputs for an attempt. Fields
// not relevant to the type are ignored.
type Payload struct {
	UserID        uuid.UUID
	Title         string
	Message       string
	ChallengeName string
	Percentage    int
	Days          int
}

// RecordStoreInterface persists emitted notifications.
type RecordStoreInterface interface {
	Create(ctx context.Context, record *model.NotificationRecord) error
}

// PreferencesSource yields the current notification preferences. It is
// consulted on every decision so settings changes apply immediately.
type PreferencesSource interface {
	Load(ctx context.Context) model.NotificationPreferences
}

// Sink delivers an emitted notification to one channel (web push, toast).
// Delivery is fire-and-forget: a failing sink never affects engine state.
type Sink interface {
	Deliver(ctx context.Context, record *model.NotificationRecord) error
}

// Engine gates, builds and emits notifications.
//
// The last-emission timestamp backing the cooldown lives in memory for the
// lifetime of the engine and resets on restart; the cooldown is a UX
// throttle, not a correctness guarantee.
type Engine struct {
	records  RecordStoreInterface
	prefs    PreferencesSource
	sinks    []Sink
	cooldown time.Duration
	logger   *slog.Logger

	now func() time.Time
	rng *rand.Rand

	mu           sync.Mutex
	lastEmission time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRand injects the random source used for template selection.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithSinks sets the delivery sinks.
func WithSinks(sinks ...Sink) Option {
	return func(e *Engine) { e.sinks = sinks }
}

func NewEngine(records RecordStoreInterface, prefs PreferencesSource, cooldown time.Duration, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		records:  records,
		prefs:    prefs,
		cooldown: cooldown,
		logger:   logger,
		now:      time.Now,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TrySend runs one notification attempt through the policy gates in order:
// quiet hours, cooldown, preferences, content build. Each gate failure
// returns a suppressed Result with its reason. On success the record is
// persisted, the cooldown clock restarts, and delivery sinks are invoked
// fire-and-forget.
//
// TrySend does not deduplicate repeated payloads; milestone dedup belongs to
// the milestone tracker.
func (e *Engine) TrySend(ctx context.Context, typ model.NotificationType, payload Payload) (Result, error) {
	prefs := e.prefs.Load(ctx)
	now := e.now()

	// SYSTEM notifications confirm direct user actions and bypass both
	// quiet hours and the cooldown.
	if typ != model.NotificationTypeSystem {
		if QuietHoursActive(prefs.QuietHours, now) {
			e.logger.Debug("notification suppressed", "type", typ, "reason", ReasonQuietHours)
			return Result{Reason: ReasonQuietHours}, nil
		}
		if e.cooldownActive(now) {
			e.logger.Debug("notification suppressed", "type", typ, "reason", ReasonCooldown)
			return Result{Reason: ReasonCooldown}, nil
		}
	}

	allowed, known := allowedByPreference(typ, prefs)
	if !known {
		e.logger.Warn("notification suppressed", "type", typ, "reason", ReasonUnknownType)
		return Result{Reason: ReasonUnknownType}, nil
	}
	if !allowed {
		e.logger.Debug("notification suppressed", "type", typ, "reason", ReasonPreferenceDisabled)
		return Result{Reason: ReasonPreferenceDisabled}, nil
	}

	content, ok := buildContent(typ, payload, e.rng)
	if !ok {
		return Result{Reason: ReasonUnknownType}, nil
	}

	record := &model.NotificationRecord{
		UserID: payload.UserID,
		Type:   typ,
		Title:  content.Title,
		Body:   content.Body,
		Icon:   content.Icon,
		Color:  content.Color,
	}

	// A record that silently failed to persist would desynchronize the
	// notification list from what was actually sent, so this error surfaces.
	if err := e.records.Create(ctx, record); err != nil {
		return Result{}, fmt.Errorf("persisting notification record: %w", err)
	}

	e.mu.Lock()
	e.lastEmission = now
	e.mu.Unlock()

	for _, sink := range e.sinks {
		if err := sink.Deliver(ctx, record); err != nil {
			e.logger.Warn("notification delivery failed", "type", typ, "error", err)
		}
	}

	e.logger.Info("notification sent", "type", typ, "title", record.Title)
	return Result{Sent: true, Record: record}, nil
}

func (e *Engine) cooldownActive(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastEmission.IsZero() {
		return false
	}
	return now.Sub(e.lastEmission) < e.cooldown
}

// QuietHoursActive reports whether t falls inside the configured window.
// The window is [StartHour, EndHour) in local hours and wraps past midnight
// when StartHour > EndHour (22 -> 8 spans the night).
func QuietHoursActive(q model.QuietHours, t time.Time) bool {
	if !q.Enabled {
		return false
	}
	hour := t.Hour()
	if q.StartHour <= q.EndHour {
		return hour >= q.StartHour && hour < q.EndHour
	}
	return hour >= q.StartHour || hour < q.EndHour
}

// allowedByPreference maps a type to its preference flag. ACHIEVEMENT,
// MOTIVATION and SYSTEM are always allowed. The second return value is
// false for types the engine does not know.
func allowedByPreference(typ model.NotificationType, prefs model.NotificationPreferences) (allowed, known bool) {
	switch typ {
	case model.NotificationTypeDailyReminder:
		return prefs.DailyReminders, true
	case model.NotificationTypeMilestone:
		return prefs.MilestoneAlerts, true
	case model.NotificationTypeStreak:
		return prefs.StreakNotifications, true
	case model.NotificationTypeTip:
		return prefs.SavingTips, true
	case model.NotificationTypeChallengeUpdate:
		return prefs.ChallengeUpdates, true
	case model.NotificationTypeAchievement,
		model.NotificationTypeMotivation,
		model.NotificationTypeSystem:
		return true, true
	default:
		return false, false
	}
}
