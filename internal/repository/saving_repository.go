package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/savestreak/backend/internal/model"
)

type SavingRepository struct {
	db *sqlx.DB
}

func NewSavingRepository(db *sqlx.DB) *SavingRepository {
	return &SavingRepository{db: db}
}

func (r *SavingRepository) Create(ctx context.Context, event *model.SavingEvent) error {
	query := `
		INSERT INTO saving_events (id, user_id, challenge_id, amount, category, note, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at`

	event.ID = uuid.New()
	return r.db.QueryRowxContext(ctx, query,
		event.ID, event.UserID, event.ChallengeID, event.Amount,
		event.Category, event.Note, event.Date,
	).Scan(&event.CreatedAt)
}

// ListByUser returns the full saving event log for a user, newest date first.
// Streak and window statistics are derived from this log in memory.
func (r *SavingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.SavingEvent, error) {
	var events []model.SavingEvent
	query := `SELECT * FROM saving_events WHERE user_id = $1 ORDER BY date DESC, created_at DESC`
	err := r.db.SelectContext(ctx, &events, query, userID)
	return events, err
}

// ListUserIDs returns every user that has at least one saving event.
// Used by the nightly streak refresh job.
func (r *SavingRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	query := `SELECT DISTINCT user_id FROM saving_events`
	err := r.db.SelectContext(ctx, &userIDs, query)
	return userIDs, err
}
