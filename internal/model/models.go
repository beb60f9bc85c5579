package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/savestreak/backend/pkg/datetime"
)

type User struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Level         int             `db:"level" json:"level"`
	TotalSavings  decimal.Decimal `db:"total_savings" json:"totalSavings"`
	CurrentStreak int             `db:"current_streak" json:"currentStreak"`
	LongestStreak int             `db:"longest_streak" json:"longestStreak"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// SavingEvent is one logged saving. Immutable once created; streaks and
// totals are always derived from the full event log, never edited in place.
type SavingEvent struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      uuid.UUID       `db:"user_id" json:"userId"`
	ChallengeID *uuid.UUID      `db:"challenge_id" json:"challengeId,omitempty"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Category    string          `db:"category" json:"category"`
	Note        *string         `db:"note" json:"note,omitempty"`
	Date        datetime.Date   `db:"date" json:"date"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

type ChallengeStatus string

const (
	ChallengeStatusActive    ChallengeStatus = "active"
	ChallengeStatusCompleted ChallengeStatus = "completed"
	ChallengeStatusAbandoned ChallengeStatus = "abandoned"
)

type Challenge struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	UserID        uuid.UUID       `db:"user_id" json:"userId"`
	Name          string          `db:"name" json:"name"`
	Description   string          `db:"description" json:"description"`
	TargetAmount  decimal.Decimal `db:"target_amount" json:"targetAmount"`
	CurrentAmount decimal.Decimal `db:"current_amount" json:"currentAmount"`
	DurationDays  int             `db:"duration_days" json:"durationDays"`
	Status        ChallengeStatus `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// ProgressPercent returns how far along the challenge is, clamped to [0, 100].
func (c *Challenge) ProgressPercent() int {
	if !c.TargetAmount.IsPositive() {
		return 0
	}
	pct := c.CurrentAmount.Div(c.TargetAmount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return int(pct)
}

type NotificationType string

const (
	NotificationTypeDailyReminder   NotificationType = "daily_reminder"
	NotificationTypeMilestone       NotificationType = "milestone"
	NotificationTypeStreak          NotificationType = "streak"
	NotificationTypeAchievement     NotificationType = "achievement"
	NotificationTypeTip             NotificationType = "tip"
	NotificationTypeMotivation      NotificationType = "motivation"
	NotificationTypeChallengeUpdate NotificationType = "challenge_update"
	NotificationTypeSystem          NotificationType = "system"
)

// NotificationRecord is the persisted copy of an emitted notification.
// Append-only; only the read flag is ever updated afterwards.
type NotificationRecord struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	UserID    uuid.UUID        `db:"user_id" json:"userId"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Body      string           `db:"body" json:"body"`
	Icon      string           `db:"icon" json:"icon"`
	Color     string           `db:"color" json:"color"`
	IsRead    bool             `db:"is_read" json:"isRead"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}

type QuietHours struct {
	Enabled   bool `json:"enabled"`
	StartHour int  `json:"startHour"` // 0-23, inclusive
	EndHour   int  `json:"endHour"`   // 0-23, exclusive; start > end wraps past midnight
}

// NotificationPreferences is stored as a JSON document in the settings store.
type NotificationPreferences struct {
	DailyReminders      bool       `json:"dailyReminders"`
	MilestoneAlerts     bool       `json:"milestoneAlerts"`
	StreakNotifications bool       `json:"streakNotifications"`
	SavingTips          bool       `json:"savingTips"`
	ChallengeUpdates    bool       `json:"challengeUpdates"`
	QuietHours          QuietHours `json:"quietHours"`
}

// DefaultPreferences mirrors the out-of-box settings: everything on,
// quiet hours configured for 22:00-08:00 but disabled.
func DefaultPreferences() NotificationPreferences {
	return NotificationPreferences{
		DailyReminders:      true,
		MilestoneAlerts:     true,
		StreakNotifications: true,
		SavingTips:          true,
		ChallengeUpdates:    true,
		QuietHours: QuietHours{
			Enabled:   false,
			StartHour: 22,
			EndHour:   8,
		},
	}
}

// MilestoneKind distinguishes progress-percentage milestones from
// streak-day milestones.
type MilestoneKind string

const (
	MilestoneKindProgress MilestoneKind = "progress"
	MilestoneKindStreak   MilestoneKind = "streak"
)

// MilestoneEvent is produced by the milestone tracker when a threshold is
// crossed for the first time. The tracker guarantees at-most-once per
// (entity, threshold) pair.
type MilestoneEvent struct {
	Kind          MilestoneKind `json:"kind"`
	UserID        uuid.UUID     `json:"userId"`
	ChallengeID   *uuid.UUID    `json:"challengeId,omitempty"`
	ChallengeName string        `json:"challengeName,omitempty"`
	Threshold     int           `json:"threshold"` // percent for progress, days for streak
}

// Stats is the full derived view for one user as of a given date.
// It is a pure function of the saving event log and the date, except for
// longestStreak which is monotonic over the stored profile value.
type Stats struct {
	User  UserStats     `json:"user"`
	Today WindowStats   `json:"today"`
	Week  WindowStats   `json:"week"`
	Month WindowStats   `json:"month"`
	AsOf  datetime.Date `json:"asOf"`
}

type UserStats struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Level         int             `json:"level"`
	TotalSavings  decimal.Decimal `json:"totalSavings"`
	CurrentStreak int             `json:"currentStreak"`
	LongestStreak int             `json:"longestStreak"`
}

// WindowStats aggregates savings over a calendar window. Count is the number
// of distinct days with at least one entry; Average divides by max(1, Count)
// so an empty window yields zero rather than a division error.
type WindowStats struct {
	Amount  decimal.Decimal `json:"amount"`
	Count   int             `json:"count"`
	Average decimal.Decimal `json:"average"`
}

// PushSubscription is one browser push endpoint registered for delivery.
type PushSubscription struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"userId"`
	Endpoint  string    `db:"endpoint" json:"endpoint"`
	P256dh    string    `db:"p256dh" json:"-"`
	Auth      string    `db:"auth" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

var SavingCategories = []string{
	"General",
	"Food & Dining",
	"Transport",
	"Shopping",
	"Entertainment",
	"Bills",
	"Other",
}

// IsValidCategory reports whether name is one of the known saving categories.
func IsValidCategory(name string) bool {
	for _, c := range SavingCategories {
		if c == name {
			return true
		}
	}
	return false
}
