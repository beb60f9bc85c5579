package notify

import (
	"fmt"
	"math/rand/v2"

	"github.com/savestreak/backend/internal/model"
)

// Content is the rendered title/body plus the display hints the frontend
// uses for the notification card.
type Content struct {
	Title string
	Body  string
	Icon  string
	Color string
}

var reminderBodies = []string{
	"Don't forget to log today's saving. Even a small amount keeps the habit alive!",
	"Have you saved something today? A quick entry keeps your streak going.",
	"Your piggy bank misses you. Log today's saving before the day is over!",
	"A little every day adds up. What did you save today?",
}

var tipBodies = []string{
	"Try the 24-hour rule: wait a day before any non-essential purchase.",
	"Brew coffee at home this week and log the difference as a saving.",
	"Round up every purchase to the nearest bill and save the change.",
	"Review your subscriptions — cancel one you haven't used this month.",
	"Cook one extra meal at home this week and bank what eating out would have cost.",
}

var motivationBodies = []string{
	"Every saver started with a single entry. You're building something real.",
	"Small steps, big results. Keep going!",
	"Your future self is already thanking you.",
	"Consistency beats intensity. One day at a time.",
}

// buildContent renders the content for a notification type. The bool is
// false for types without a template.
func buildContent(typ model.NotificationType, p Payload, rng *rand.Rand) (Content, bool) {
	switch typ {
	case model.NotificationTypeDailyReminder:
		return Content{
			Title: "💰 Time to save!",
			Body:  pick(rng, reminderBodies),
			Icon:  "💰",
			Color: "#10B981",
		}, true

	case model.NotificationTypeMilestone:
		return Content{
			Title: "🏆 Milestone reached!",
			Body:  fmt.Sprintf("You're %d%% of the way through %q. Keep it up!", p.Percentage, p.ChallengeName),
			Icon:  "🏆",
			Color: "#F59E0B",
		}, true

	case model.NotificationTypeStreak:
		return Content{
			Title: "🔥 Streak milestone!",
			Body:  fmt.Sprintf("%d days of saving in a row. You're on fire!", p.Days),
			Icon:  "🔥",
			Color: "#EF4444",
		}, true

	case model.NotificationTypeAchievement:
		return Content{
			Title: "🏆 " + p.Title,
			Body:  p.Message,
			Icon:  "🏆",
			Color: "#8B5CF6",
		}, true

	case model.NotificationTypeTip:
		return Content{
			Title: "💡 Saving tip",
			Body:  pick(rng, tipBodies),
			Icon:  "💡",
			Color: "#3B82F6",
		}, true

	case model.NotificationTypeMotivation:
		return Content{
			Title: "🌟 Keep it up!",
			Body:  pick(rng, motivationBodies),
			Icon:  "🌟",
			Color: "#8B5CF6",
		}, true

	case model.NotificationTypeChallengeUpdate:
		return Content{
			Title: "📊 " + p.Title,
			Body:  p.Message,
			Icon:  "📊",
			Color: "#10B981",
		}, true

	case model.NotificationTypeSystem:
		title := p.Title
		if title == "" {
			title = "🔔 Notification"
		}
		return Content{
			Title: title,
			Body:  p.Message,
			Icon:  "🔔",
			Color: "#6B7280",
		}, true

	default:
		return Content{}, false
	}
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.IntN(len(options))]
}
