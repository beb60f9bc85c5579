package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/savestreak/backend/internal/model"
)

// Progress thresholds use a half-open band [m, m+5): progress can jump over
// an exact integer, so a band is needed to catch the crossing. Streak
// thresholds match exactly since streaks only ever grow one day at a time.
var (
	progressThresholds = []int{25, 50, 75, 90, 100}
	streakThresholds   = []int{3, 7, 14, 30, 60, 90}
)

const progressBandWidth = 5

// MarkerStoreInterface is the persistence contract for milestone dedup
// markers. ClaimMarker must be atomic: exactly one concurrent caller wins.
type MarkerStoreInterface interface {
	ClaimMarker(ctx context.Context, key string) (bool, error)
}

// MilestoneService detects threshold crossings and guarantees at-most-once
// per (entity, threshold). It never emits notifications itself; callers pass
// the returned event to the notification engine.
type MilestoneService struct {
	markers MarkerStoreInterface

	// Serializes check-then-set within this process. The marker store's
	// atomic claim covers cross-process races; this keeps interleaved
	// in-process checks from both reaching the claim with stale reads.
	mu sync.Mutex
}

func NewMilestoneService(markers MarkerStoreInterface) *MilestoneService {
	return &MilestoneService{markers: markers}
}

// CheckProgress walks the progress thresholds in ascending order and fires
// on the first unfired threshold whose band contains the challenge's current
// progress percent. Returns nil when nothing newly crossed.
func (s *MilestoneService) CheckProgress(ctx context.Context, challenge *model.Challenge) (*model.MilestoneEvent, error) {
	if challenge == nil || !challenge.TargetAmount.IsPositive() {
		return nil, nil
	}

	pct := challenge.ProgressPercent()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, threshold := range progressThresholds {
		if !inProgressBand(pct, threshold) {
			continue
		}

		key := progressMarkerKey(challenge.ID, threshold)
		claimed, err := s.markers.ClaimMarker(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("claiming progress marker %s: %w", key, err)
		}
		if !claimed {
			continue
		}

		challengeID := challenge.ID
		return &model.MilestoneEvent{
			Kind:          model.MilestoneKindProgress,
			UserID:        challenge.UserID,
			ChallengeID:   &challengeID,
			ChallengeName: challenge.Name,
			Threshold:     threshold,
		}, nil
	}
	return nil, nil
}

// CheckStreak fires when days exactly equals a streak threshold that has not
// fired for this user before.
func (s *MilestoneService) CheckStreak(ctx context.Context, userID uuid.UUID, days int) (*model.MilestoneEvent, error) {
	if !isStreakThreshold(days) {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := streakMarkerKey(userID, days)
	claimed, err := s.markers.ClaimMarker(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("claiming streak marker %s: %w", key, err)
	}
	if !claimed {
		return nil, nil
	}

	return &model.MilestoneEvent{
		Kind:      model.MilestoneKindStreak,
		UserID:    userID,
		Threshold: days,
	}, nil
}

// inProgressBand reports whether pct falls in [threshold, threshold+5).
// ProgressPercent clamps to 100, so the top threshold's band collapses to
// the single value 100 and still fires exactly once.
func inProgressBand(pct, threshold int) bool {
	return pct >= threshold && pct < threshold+progressBandWidth
}

func isStreakThreshold(days int) bool {
	for _, t := range streakThresholds {
		if days == t {
			return true
		}
	}
	return false
}

func progressMarkerKey(challengeID uuid.UUID, threshold int) string {
	return fmt.Sprintf("milestone_%s_%d", challengeID, threshold)
}

func streakMarkerKey(userID uuid.UUID, days int) string {
	return fmt.Sprintf("streak_%s_%d", userID, days)
}
