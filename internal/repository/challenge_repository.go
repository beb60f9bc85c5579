package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/savestreak/backend/internal/model"
)

var ErrChallengeNotFound = errors.New("challenge not found")

type ChallengeRepository struct {
	db *sqlx.DB
}

func NewChallengeRepository(db *sqlx.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

func (r *ChallengeRepository) Create(ctx context.Context, challenge *model.Challenge) error {
	query := `
		INSERT INTO challenges (id, user_id, name, description, target_amount, current_amount, duration_days, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at`

	challenge.ID = uuid.New()
	if challenge.Status == "" {
		challenge.Status = model.ChallengeStatusActive
	}
	if challenge.CurrentAmount.IsZero() {
		challenge.CurrentAmount = decimal.Zero
	}
	return r.db.QueryRowxContext(ctx, query,
		challenge.ID, challenge.UserID, challenge.Name, challenge.Description,
		challenge.TargetAmount, challenge.CurrentAmount, challenge.DurationDays, challenge.Status,
	).Scan(&challenge.CreatedAt, &challenge.UpdatedAt)
}

func (r *ChallengeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Challenge, error) {
	var challenge model.Challenge
	query := `SELECT * FROM challenges WHERE id = $1`
	err := r.db.GetContext(ctx, &challenge, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChallengeNotFound
	}
	return &challenge, err
}

func (r *ChallengeRepository) ListActive(ctx context.Context, userID uuid.UUID) ([]model.Challenge, error) {
	var challenges []model.Challenge
	query := `SELECT * FROM challenges WHERE user_id = $1 AND status = 'active' ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &challenges, query, userID)
	return challenges, err
}

func (r *ChallengeRepository) AddContribution(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE challenges
		SET current_amount = current_amount + $2, updated_at = NOW()
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, amount)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrChallengeNotFound
	}
	return nil
}

func (r *ChallengeRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.ChallengeStatus) error {
	query := `UPDATE challenges SET status = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrChallengeNotFound
	}
	return nil
}
