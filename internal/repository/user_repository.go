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

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, name, level, total_savings, current_streak, longest_streak, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at`

	user.ID = uuid.New()
	if user.Level == 0 {
		user.Level = 1
	}
	return r.db.QueryRowxContext(ctx, query,
		user.ID, user.Name, user.Level, user.TotalSavings,
		user.CurrentStreak, user.LongestStreak,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	query := `SELECT * FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

// UpdateStreaks writes freshly computed streak values back to the profile.
// The stats service is the only caller; the profile values are a cache of
// what the event log implies.
func (r *UserRepository) UpdateStreaks(ctx context.Context, id uuid.UUID, currentStreak, longestStreak int) error {
	query := `
		UPDATE users
		SET current_streak = $2, longest_streak = $3, updated_at = NOW()
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, currentStreak, longestStreak)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) AddToTotalSavings(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE users
		SET total_savings = total_savings + $2, updated_at = NOW()
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
		return ErrUserNotFound
	}
	return nil
}
