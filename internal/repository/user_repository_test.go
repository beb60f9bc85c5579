package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestUserRepository_GetByID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock, uuid.UUID)
		wantErr   bool
		errType   error
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock, id uuid.UUID) {
				rows := sqlmock.NewRows([]string{"id", "name", "level", "total_savings", "current_streak", "longest_streak", "created_at", "updated_at"}).
					AddRow(id, "Sara", 2, "180", 4, 9, time.Now(), time.Now())
				mock.ExpectQuery(`SELECT \* FROM users WHERE id = \$1`).
					WithArgs(id).
					WillReturnRows(rows)
			},
			wantErr: false,
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock, id uuid.UUID) {
				mock.ExpectQuery(`SELECT \* FROM users WHERE id = \$1`).
					WithArgs(id).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: true,
			errType: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockDB, mock, _ := sqlmock.New()
			defer func() { _ = mockDB.Close() }()
			db := sqlx.NewDb(mockDB, "sqlmock")
			repo := NewUserRepository(db)

			userID := uuid.New()
			tt.setupMock(mock, userID)

			user, err := repo.GetByID(context.Background(), userID)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errType != nil {
					assert.ErrorIs(t, err, tt.errType)
				}
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, 4, user.CurrentStreak)
				assert.Equal(t, 9, user.LongestStreak)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_UpdateStreaks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		rowsAffected int64
		wantErr      error
	}{
		{"success", 1, nil},
		{"missing user", 0, ErrUserNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockDB, mock, _ := sqlmock.New()
			defer func() { _ = mockDB.Close() }()
			db := sqlx.NewDb(mockDB, "sqlmock")
			repo := NewUserRepository(db)

			userID := uuid.New()
			mock.ExpectExec(`UPDATE users`).
				WithArgs(userID, 5, 9).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			err := repo.UpdateStreaks(context.Background(), userID, 5, 9)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_AddToTotalSavings(t *testing.T) {
	t.Parallel()

	mockDB, mock, _ := sqlmock.New()
	defer func() { _ = mockDB.Close() }()
	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewUserRepository(db)

	userID := uuid.New()
	amount := decimal.NewFromInt(25)
	mock.ExpectExec(`UPDATE users`).
		WithArgs(userID, amount).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AddToTotalSavings(context.Background(), userID, amount)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
