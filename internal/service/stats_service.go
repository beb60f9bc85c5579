// Package service provides business logic for the application.
package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/savestreak/backend/internal/apperror"
	"github.com/savestreak/backend/internal/model"
	"github.com/savestreak/backend/pkg/datetime"
)

// SavingEventRepositoryInterface defines the contract for saving event data access.
// Implementations must be safe for concurrent use.
type SavingEventRepositoryInterface interface {
	Create(ctx context.Context, event *model.SavingEvent) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.SavingEvent, error)
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

// UserRepositoryInterface defines the contract for user profile data access.
type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateStreaks(ctx context.Context, id uuid.UUID, currentStreak, longestStreak int) error
	AddToTotalSavings(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

// StatsService derives totals, streaks and windowed aggregates from the raw
// saving event log. The event log is the source of truth; the streak fields
// on the user profile are a cache written back from here and nowhere else.
type StatsService struct {
	savings SavingEventRepositoryInterface
	users   UserRepositoryInterface
}

func NewStatsService(savings SavingEventRepositoryInterface, users UserRepositoryInterface) *StatsService {
	return &StatsService{savings: savings, users: users}
}

// ComputeStats recomputes the full derived view for a user as of the given
// date. For a fixed event set the result is a pure function of that set and
// asOf; recomputation is idempotent.
//
// The streak is counted backward from the most recent date that has an
// entry, not from asOf: a user whose last saving was two days ago still sees
// the streak that ended there, until a new entry starts a fresh run. This
// mirrors how the tracker has always displayed streaks.
func (s *StatsService) ComputeStats(ctx context.Context, userID uuid.UUID, asOf datetime.Date) (*model.Stats, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", userID, err)
	}

	events, err := s.savings.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Storage(fmt.Errorf("listing saving events for user %s: %w", userID, err))
	}

	// Merge same-day entries: one day counts once for streak purposes.
	byDate := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, ev := range events {
		key := ev.Date.String()
		byDate[key] = byDate[key].Add(ev.Amount)
		total = total.Add(ev.Amount)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	currentStreak := streakLength(dates)
	longestStreak := user.LongestStreak
	if currentStreak > longestStreak {
		longestStreak = currentStreak
	}

	// Single write site for the cached streak values.
	if currentStreak != user.CurrentStreak || longestStreak != user.LongestStreak {
		if err := s.users.UpdateStreaks(ctx, userID, currentStreak, longestStreak); err != nil {
			return nil, apperror.Storage(fmt.Errorf("updating streaks for user %s: %w", userID, err))
		}
	}

	weekStart := asOf.StartOfWeek()
	monthStart := asOf.StartOfMonth()

	stats := &model.Stats{
		User: model.UserStats{
			ID:            user.ID,
			Name:          user.Name,
			Level:         user.Level,
			TotalSavings:  total,
			CurrentStreak: currentStreak,
			LongestStreak: longestStreak,
		},
		Today: windowStats(byDate, asOf, asOf),
		Week:  windowStats(byDate, weekStart, asOf),
		Month: windowStats(byDate, monthStart, asOf),
		AsOf:  asOf,
	}
	return stats, nil
}

// streakLength counts the run of consecutive calendar dates at the head of a
// descending-sorted list of distinct YYYY-MM-DD strings. The run stops at
// the first gap.
func streakLength(datesDesc []string) int {
	count := 0
	var prev datetime.Date
	for i, s := range datesDesc {
		d, err := datetime.ParseDate(s)
		if err != nil {
			break
		}
		if i > 0 && d.DaysUntil(prev) != 1 {
			break
		}
		count++
		prev = d
	}
	return count
}

// windowStats sums the per-day totals for dates in [from, to] inclusive.
// Count is distinct days with an entry; Average divides by max(1, Count).
func windowStats(byDate map[string]decimal.Decimal, from, to datetime.Date) model.WindowStats {
	total := decimal.Zero
	count := 0
	for key, amount := range byDate {
		d, err := datetime.ParseDate(key)
		if err != nil {
			continue
		}
		if d.Before(from) || to.Before(d) {
			continue
		}
		total = total.Add(amount)
		count++
	}

	divisor := count
	if divisor < 1 {
		divisor = 1
	}
	return model.WindowStats{
		Amount:  total,
		Count:   count,
		Average: total.Div(decimal.NewFromInt(int64(divisor))),
	}
}
