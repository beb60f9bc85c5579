package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrSettingNotFound = errors.New("setting not found")

// SettingsRepository is a small JSON key-value store. It backs notification
// preferences and the per-threshold milestone markers.
type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get unmarshals the stored value for key into out.
// Returns ErrSettingNotFound when the key has never been saved.
func (r *SettingsRepository) Get(ctx context.Context, key string, out interface{}) error {
	var raw []byte
	query := `SELECT value FROM settings WHERE key = $1`
	err := r.db.GetContext(ctx, &raw, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSettingNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// Save stores value under key as JSON, overwriting any previous value.
func (r *SettingsRepository) Save(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()`
	_, err = r.db.ExecContext(ctx, query, key, raw)
	return err
}

// ClaimMarker atomically creates the marker row for key if it does not exist.
// Returns true when this call created it, false when someone already had.
// The ON CONFLICT DO NOTHING form is the compare-and-set that keeps milestone
// notifications at-most-once even when two checks interleave.
func (r *SettingsRepository) ClaimMarker(ctx context.Context, key string) (bool, error) {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, 'true', NOW())
		ON CONFLICT (key) DO NOTHING`
	result, err := r.db.ExecContext(ctx, query, key)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
