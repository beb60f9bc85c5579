// Package scheduler arms the proactive notification timers: the fixed daily
// reminder, the recurring saving tip and the randomized motivation nudge.
// Timers are one-shot and re-arm themselves after each fire so every
// occurrence is computed against the current clock and preferences.
package scheduler

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/savestreak/backend/internal/model"
	"github.com/savestreak/backend/internal/notify"
)

const (
	timerDailyReminder = "daily_reminder"
	timerTip           = "tip"
	timerMotivation    = "motivation"

	motivationMinDelay = 6 * time.Hour
	motivationMaxDelay = 12 * time.Hour
)

// Notifier is the slice of the notification engine the scheduler uses.
type Notifier interface {
	TrySend(ctx context.Context, typ model.NotificationType, payload notify.Payload) (notify.Result, error)
}

// Config carries the clock-time knobs for the recurring notifications.
type Config struct {
	ReminderHour    int // local hour for the daily reminder
	TipHour         int // local hour for tips
	TipIntervalDays int // days between tips
}

// Scheduler owns the notification timers for the active user. All methods
// are safe for concurrent use; after Stop no timer callback runs.
type Scheduler struct {
	notifier Notifier
	prefs    notify.PreferencesSource
	cfg      Config
	userID   uuid.UUID
	logger   *slog.Logger

	now func() time.Time
	rng *rand.Rand

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock injects the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithRand injects the random source behind the motivation delay.
func WithRand(rng *rand.Rand) Option {
	return func(s *Scheduler) { s.rng = rng }
}

func New(notifier Notifier, prefs notify.PreferencesSource, cfg Config, userID uuid.UUID, logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		notifier: notifier,
		prefs:    prefs,
		cfg:      cfg,
		userID:   userID,
		logger:   logger,
		now:      time.Now,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		timers:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start arms all timers according to the current preferences.
func (s *Scheduler) Start(ctx context.Context) {
	s.RescheduleAll(ctx)
}

// RescheduleAll cancels every pending timer and re-arms from the current
// preferences: the daily reminder and tip timers only when their preference
// is on, the motivation nudge always (it has no preference flag; the engine
// still applies quiet hours and cooldown when it fires).
func (s *Scheduler) RescheduleAll(ctx context.Context) {
	prefs := s.prefs.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	s.cancelLocked(timerDailyReminder)
	s.cancelLocked(timerTip)
	s.cancelLocked(timerMotivation)

	if prefs.DailyReminders {
		s.armLocked(timerDailyReminder, s.untilNextClockHour(s.cfg.ReminderHour), s.fireDailyReminder)
	}
	if prefs.SavingTips {
		s.armLocked(timerTip, s.untilNextTip(), s.fireTip)
	}
	s.armLocked(timerMotivation, s.motivationDelay(), s.fireMotivation)
}

// Stop cancels all timers. Callbacks that have not started will not run;
// the scheduler cannot be restarted afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for name := range s.timers {
		s.cancelLocked(name)
	}
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) fireDailyReminder() {
	ctx := context.Background()
	res, err := s.notifier.TrySend(ctx, model.NotificationTypeDailyReminder, notify.Payload{UserID: s.userID})
	if err != nil {
		s.logger.Error("sending daily reminder", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if res.Reason == notify.ReasonQuietHours {
		// Defer rather than skip: try again once the quiet window ends.
		prefs := s.prefs.Load(ctx)
		s.armLocked(timerDailyReminder, s.untilQuietHoursEnd(prefs.QuietHours, s.cfg.ReminderHour), s.fireDailyReminder)
		return
	}
	s.armLocked(timerDailyReminder, s.untilNextClockHour(s.cfg.ReminderHour), s.fireDailyReminder)
}

func (s *Scheduler) fireTip() {
	ctx := context.Background()
	res, err := s.notifier.TrySend(ctx, model.NotificationTypeTip, notify.Payload{UserID: s.userID})
	if err != nil {
		s.logger.Error("sending saving tip", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if res.Reason == notify.ReasonQuietHours {
		prefs := s.prefs.Load(ctx)
		s.armLocked(timerTip, s.untilQuietHoursEnd(prefs.QuietHours, s.cfg.TipHour), s.fireTip)
		return
	}
	s.armLocked(timerTip, s.untilNextTip(), s.fireTip)
}

func (s *Scheduler) fireMotivation() {
	if _, err := s.notifier.TrySend(context.Background(), model.NotificationTypeMotivation, notify.Payload{UserID: s.userID}); err != nil {
		s.logger.Error("sending motivation", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.armLocked(timerMotivation, s.motivationDelay(), s.fireMotivation)
}

func (s *Scheduler) armLocked(name string, d time.Duration, fn func()) {
	s.cancelLocked(name)
	s.timers[name] = time.AfterFunc(d, fn)
	s.logger.Debug("timer armed", "timer", name, "in", d)
}

func (s *Scheduler) cancelLocked(name string) {
	if t, ok := s.timers[name]; ok {
		t.Stop()
		delete(s.timers, name)
	}
}

// untilNextClockHour returns the duration until the next occurrence of
// hour:00 local time, always in the future (tomorrow if already past).
func (s *Scheduler) untilNextClockHour(hour int) time.Duration {
	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// untilNextTip returns the duration until TipHour:00, TipIntervalDays from
// today.
func (s *Scheduler) untilNextTip() time.Duration {
	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.cfg.TipHour, 0, 0, 0, now.Location()).
		AddDate(0, 0, s.cfg.TipIntervalDays)
	return next.Sub(now)
}

// motivationDelay draws a fresh uniform delay in [6h, 12h).
func (s *Scheduler) motivationDelay() time.Duration {
	return motivationMinDelay + time.Duration(s.rng.Int64N(int64(motivationMaxDelay-motivationMinDelay)))
}

// untilQuietHoursEnd returns the duration until the quiet window's end hour.
// Falls back to the timer's regular slot when quiet hours are off (the window
// may have been disabled between the fire and this re-arm).
func (s *Scheduler) untilQuietHoursEnd(q model.QuietHours, fallbackHour int) time.Duration {
	if !q.Enabled {
		return s.untilNextClockHour(fallbackHour)
	}
	return s.untilNextClockHour(q.EndHour)
}
