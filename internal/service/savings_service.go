package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/savestreak/backend/internal/apperror"
	"github.com/savestreak/backend/internal/model"
	"github.com/savestreak/backend/internal/notify"
	"github.com/savestreak/backend/pkg/datetime"
)

// ChallengeRepositoryInterface defines the contract for challenge data access.
type ChallengeRepositoryInterface interface {
	Create(ctx context.Context, challenge *model.Challenge) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Challenge, error)
	ListActive(ctx context.Context, userID uuid.UUID) ([]model.Challenge, error)
	AddContribution(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	SetStatus(ctx context.Context, id uuid.UUID, status model.ChallengeStatus) error
}

// NotifierInterface is the slice of the notification engine the services use.
type NotifierInterface interface {
	TrySend(ctx context.Context, typ model.NotificationType, payload notify.Payload) (notify.Result, error)
}

// StatsComputerInterface recomputes a user's derived stats.
type StatsComputerInterface interface {
	ComputeStats(ctx context.Context, userID uuid.UUID, asOf datetime.Date) (*model.Stats, error)
}

// MilestoneCheckerInterface detects newly crossed thresholds.
type MilestoneCheckerInterface interface {
	CheckProgress(ctx context.Context, challenge *model.Challenge) (*model.MilestoneEvent, error)
	CheckStreak(ctx context.Context, userID uuid.UUID, days int) (*model.MilestoneEvent, error)
}

// SavingInput is the payload for recording one saving.
type SavingInput struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Note        *string         `json:"note"`
	Date        *datetime.Date  `json:"date"`
	ChallengeID *uuid.UUID      `json:"challengeId"`
}

const motivationChance = 0.2

// SavingsService orchestrates the record-a-saving flow: persist the event,
// update challenge and profile aggregates, recompute stats, run milestone
// checks and emit the resulting notifications. Only the event write is
// load-bearing; every downstream step degrades to a log line so a notification
// hiccup never loses a saving.
type SavingsService struct {
	savings    SavingEventRepositoryInterface
	users      UserRepositoryInterface
	challenges ChallengeRepositoryInterface
	stats      StatsComputerInterface
	milestones MilestoneCheckerInterface
	notifier   NotifierInterface
	logger     *slog.Logger
	rng        *rand.Rand
}

func NewSavingsService(
	savings SavingEventRepositoryInterface,
	users UserRepositoryInterface,
	challenges ChallengeRepositoryInterface,
	stats StatsComputerInterface,
	milestones MilestoneCheckerInterface,
	notifier NotifierInterface,
	logger *slog.Logger,
	rng *rand.Rand,
) *SavingsService {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &SavingsService{
		savings:    savings,
		users:      users,
		challenges: challenges,
		stats:      stats,
		milestones: milestones,
		notifier:   notifier,
		logger:     logger,
		rng:        rng,
	}
}

// RecordSaving logs one saving and runs the full downstream flow. It returns
// the created event together with the recomputed stats (nil when the stats
// recomputation failed; the saving is still recorded).
func (s *SavingsService) RecordSaving(ctx context.Context, userID uuid.UUID, input SavingInput) (*model.SavingEvent, *model.Stats, error) {
	if !input.Amount.IsPositive() {
		return nil, nil, apperror.ValidationError("amount", "amount must be greater than zero")
	}

	category := input.Category
	if category == "" {
		category = "General"
	}
	if !model.IsValidCategory(category) {
		return nil, nil, apperror.ValidationError("category", "unknown saving category")
	}
	date := datetime.Today()
	if input.Date != nil {
		date = *input.Date
	}

	challenge, err := s.resolveChallenge(ctx, userID, input.ChallengeID)
	if err != nil {
		return nil, nil, err
	}

	event := &model.SavingEvent{
		UserID:   userID,
		Amount:   input.Amount,
		Category: category,
		Note:     input.Note,
		Date:     date,
	}
	if challenge != nil {
		challengeID := challenge.ID
		event.ChallengeID = &challengeID
	}

	if err := s.savings.Create(ctx, event); err != nil {
		return nil, nil, apperror.Storage(fmt.Errorf("creating saving event: %w", err))
	}

	if challenge != nil {
		if err := s.challenges.AddContribution(ctx, challenge.ID, input.Amount); err != nil {
			s.logger.Error("adding challenge contribution", "challengeId", challenge.ID, "error", err)
		}
	}
	if err := s.users.AddToTotalSavings(ctx, userID, input.Amount); err != nil {
		s.logger.Error("updating total savings", "userId", userID, "error", err)
	}

	s.trySend(ctx, model.NotificationTypeSystem, notify.Payload{
		UserID:  userID,
		Title:   "🔔 Saving logged",
		Message: fmt.Sprintf("Saved %s in %s. Nice one!", input.Amount.StringFixed(2), category),
	})

	stats, err := s.stats.ComputeStats(ctx, userID, date)
	if err != nil {
		s.logger.Error("recomputing stats", "userId", userID, "error", err)
	} else {
		s.checkStreak(ctx, userID, stats.User.CurrentStreak)
	}

	if challenge != nil {
		s.checkChallengeProgress(ctx, challenge.ID)
	}

	if s.rng.Float64() < motivationChance {
		s.trySend(ctx, model.NotificationTypeMotivation, notify.Payload{UserID: userID})
	}

	return event, stats, nil
}

// resolveChallenge picks the challenge the saving contributes to: the one
// explicitly named, or the user's most recent active challenge, or none.
func (s *SavingsService) resolveChallenge(ctx context.Context, userID uuid.UUID, challengeID *uuid.UUID) (*model.Challenge, error) {
	if challengeID != nil {
		challenge, err := s.challenges.GetByID(ctx, *challengeID)
		if err != nil {
			return nil, fmt.Errorf("fetching challenge %s: %w", *challengeID, err)
		}
		return challenge, nil
	}

	active, err := s.challenges.ListActive(ctx, userID)
	if err != nil {
		return nil, apperror.Storage(fmt.Errorf("listing active challenges: %w", err))
	}
	if len(active) == 0 {
		return nil, nil
	}
	return &active[0], nil
}

func (s *SavingsService) checkStreak(ctx context.Context, userID uuid.UUID, days int) {
	event, err := s.milestones.CheckStreak(ctx, userID, days)
	if err != nil {
		s.logger.Error("checking streak threshold", "userId", userID, "error", err)
		return
	}
	if event == nil {
		return
	}
	s.trySend(ctx, model.NotificationTypeStreak, notify.Payload{UserID: userID, Days: event.Threshold})
}

// checkChallengeProgress re-reads the challenge so the progress check sees
// the contribution just written, then runs the milestone check and the
// completion transition.
func (s *SavingsService) checkChallengeProgress(ctx context.Context, challengeID uuid.UUID) {
	challenge, err := s.challenges.GetByID(ctx, challengeID)
	if err != nil {
		s.logger.Error("refreshing challenge", "challengeId", challengeID, "error", err)
		return
	}

	event, err := s.milestones.CheckProgress(ctx, challenge)
	if err != nil {
		s.logger.Error("checking progress milestone", "challengeId", challengeID, "error", err)
	} else if event != nil {
		s.trySend(ctx, model.NotificationTypeMilestone, notify.Payload{
			UserID:        challenge.UserID,
			ChallengeName: challenge.Name,
			Percentage:    event.Threshold,
		})
	}

	if challenge.Status == model.ChallengeStatusActive &&
		challenge.CurrentAmount.GreaterThanOrEqual(challenge.TargetAmount) &&
		challenge.TargetAmount.IsPositive() {
		s.OnChallengeCompleted(ctx, challenge)
	}
}

// OnChallengeCompleted marks the challenge completed and celebrates it. It
// is called from the record-saving flow when a contribution pushes the
// challenge over its target, and can be invoked directly when completion is
// detected elsewhere.
func (s *SavingsService) OnChallengeCompleted(ctx context.Context, challenge *model.Challenge) {
	if err := s.challenges.SetStatus(ctx, challenge.ID, model.ChallengeStatusCompleted); err != nil {
		s.logger.Error("completing challenge", "challengeId", challenge.ID, "error", err)
		return
	}
	s.logger.Info("challenge completed", "challengeId", challenge.ID, "name", challenge.Name)

	s.trySend(ctx, model.NotificationTypeAchievement, notify.Payload{
		UserID:  challenge.UserID,
		Title:   "Challenge complete!",
		Message: fmt.Sprintf("You finished %q. Time to set a new goal?", challenge.Name),
	})
}

// trySend funnels best-effort notification attempts: engine errors are
// logged, suppression is silent.
func (s *SavingsService) trySend(ctx context.Context, typ model.NotificationType, payload notify.Payload) {
	if _, err := s.notifier.TrySend(ctx, typ, payload); err != nil {
		s.logger.Error("sending notification", "type", typ, "error", err)
	}
}
