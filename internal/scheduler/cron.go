package scheduler

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/savestreak/backend/internal/model"
	"github.com/savestreak/backend/internal/notify"
	"github.com/savestreak/backend/pkg/datetime"
)

// StatsComputer recomputes a user's derived stats as of a date.
type StatsComputer interface {
	ComputeStats(ctx context.Context, userID uuid.UUID, asOf datetime.Date) (*model.Stats, error)
}

// StreakChecker detects newly crossed streak thresholds.
type StreakChecker interface {
	CheckStreak(ctx context.Context, userID uuid.UUID, days int) (*model.MilestoneEvent, error)
}

// UserLister yields the user IDs that have at least one saving event.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StreakRefresher recomputes streaks for every known user shortly after
// midnight, so a streak that ended yesterday is reflected without waiting
// for the user's next saving. Newly crossed streak thresholds still emit
// through the notification engine.
type StreakRefresher struct {
	users    UserLister
	stats    StatsComputer
	streaks  StreakChecker
	notifier Notifier
	schedule string
	logger   *slog.Logger

	cron *cron.Cron
}

func NewStreakRefresher(users UserLister, stats StatsComputer, streaks StreakChecker, notifier Notifier, schedule string, logger *slog.Logger) *StreakRefresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreakRefresher{
		users:    users,
		stats:    stats,
		streaks:  streaks,
		notifier: notifier,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the cron entry and starts the cron runner.
func (r *StreakRefresher) Start() error {
	r.cron = cron.New()
	if _, err := r.cron.AddFunc(r.schedule, func() {
		r.RefreshAll(context.Background())
	}); err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("streak refresher started", "schedule", r.schedule)
	return nil
}

// Stop halts the cron runner and waits for a running refresh to finish.
func (r *StreakRefresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

// RefreshAll recomputes stats for every user with saving events. Per-user
// failures are logged and skipped; one bad row never blocks the sweep.
func (r *StreakRefresher) RefreshAll(ctx context.Context) {
	ids, err := r.users.ListUserIDs(ctx)
	if err != nil {
		r.logger.Error("listing users for streak refresh", "error", err)
		return
	}

	today := datetime.Today()
	for _, id := range ids {
		stats, err := r.stats.ComputeStats(ctx, id, today)
		if err != nil {
			r.logger.Error("refreshing streak", "userId", id, "error", err)
			continue
		}

		event, err := r.streaks.CheckStreak(ctx, id, stats.User.CurrentStreak)
		if err != nil {
			r.logger.Error("checking streak threshold", "userId", id, "error", err)
			continue
		}
		if event == nil {
			continue
		}

		if _, err := r.notifier.TrySend(ctx, model.NotificationTypeStreak, notify.Payload{
			UserID: id,
			Days:   event.Threshold,
		}); err != nil {
			r.logger.Error("sending streak notification", "userId", id, "error", err)
		}
	}
	r.logger.Info("streak refresh complete", "users", len(ids))
}
