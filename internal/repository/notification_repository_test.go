package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/savestreak/backend/internal/model"
)

func TestNotificationRepository_Create(t *testing.T) {
	t.Parallel()

	mockDB, mock, _ := sqlmock.New()
	defer func() { _ = mockDB.Close() }()
	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewNotificationRepository(db)

	record := &model.NotificationRecord{
		UserID: uuid.New(),
		Type:   model.NotificationTypeStreak,
		Title:  "🔥 Streak milestone!",
		Body:   "7 days of saving in a row. You're on fire!",
		Icon:   "🔥",
		Color:  "#EF4444",
	}

	rows := sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now())
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(sqlmock.AnyArg(), record.UserID, record.Type, record.Title, record.Body, record.Icon, record.Color).
		WillReturnRows(rows)

	err := repo.Create(context.Background(), record)

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		rowsAffected int64
		wantErr      error
	}{
		{"success", 1, nil},
		{"missing or foreign notification", 0, ErrNotificationNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockDB, mock, _ := sqlmock.New()
			defer func() { _ = mockDB.Close() }()
			db := sqlx.NewDb(mockDB, "sqlmock")
			repo := NewNotificationRepository(db)

			id, userID := uuid.New(), uuid.New()
			mock.ExpectExec(`UPDATE notifications SET is_read = TRUE`).
				WithArgs(id, userID).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			err := repo.MarkRead(context.Background(), id, userID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNotificationRepository_CountUnread(t *testing.T) {
	t.Parallel()

	mockDB, mock, _ := sqlmock.New()
	defer func() { _ = mockDB.Close() }()
	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewNotificationRepository(db)

	userID := uuid.New()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountUnread(context.Background(), userID)

	assert.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
