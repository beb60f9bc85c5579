package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/savestreak/backend/internal/apperror"
	"github.com/savestreak/backend/internal/model"
	"github.com/savestreak/backend/internal/repository"
)

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]model.NotificationRecord, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NotificationRecord), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockNotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationService) GetPreferences(ctx context.Context) model.NotificationPreferences {
	args := m.Called(ctx)
	return args.Get(0).(model.NotificationPreferences)
}

func (m *MockNotificationService) UpdatePreferences(ctx context.Context, prefs model.NotificationPreferences) error {
	args := m.Called(ctx, prefs)
	return args.Error(0)
}

func (m *MockNotificationService) Subscribe(ctx context.Context, userID uuid.UUID, endpoint, p256dh, auth string) (*model.PushSubscription, error) {
	args := m.Called(ctx, userID, endpoint, p256dh, auth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PushSubscription), args.Error(1)
}

func newNotificationRouter(svc NotificationServiceInterface) http.Handler {
	r := chi.NewRouter()
	h := NewNotificationHandler(svc, "test-vapid-key")
	r.Get("/api/users/{userID}/notifications", h.List)
	r.Post("/api/users/{userID}/notifications/{id}/read", h.MarkRead)
	return r
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	t.Parallel()

	userID, id := uuid.New(), uuid.New()
	svc := new(MockNotificationService)
	svc.On("MarkRead", mock.Anything, id, userID).Return(nil)

	req := httptest.NewRequest(http.MethodPost,
		"/api/users/"+userID.String()+"/notifications/"+id.String()+"/read", nil)
	rec := httptest.NewRecorder()

	newNotificationRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNotificationHandler_MarkRead_Unknown(t *testing.T) {
	t.Parallel()

	userID, id := uuid.New(), uuid.New()
	svc := new(MockNotificationService)
	svc.On("MarkRead", mock.Anything, id, userID).
		Return(fmt.Errorf("marking notification %s read: %w", id, repository.ErrNotificationNotFound))

	req := httptest.NewRequest(http.MethodPost,
		"/api/users/"+userID.String()+"/notifications/"+id.String()+"/read", nil)
	rec := httptest.NewRecorder()

	newNotificationRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "notification not found", resp.Error)
}

func TestNotificationHandler_MarkRead_StorageFailure(t *testing.T) {
	t.Parallel()

	userID, id := uuid.New(), uuid.New()
	svc := new(MockNotificationService)
	// A database outage is not a missing notification; it must surface
	// as a server error, not a 404.
	svc.On("MarkRead", mock.Anything, id, userID).
		Return(apperror.Storage(errors.New("connection refused")))

	req := httptest.NewRequest(http.MethodPost,
		"/api/users/"+userID.String()+"/notifications/"+id.String()+"/read", nil)
	rec := httptest.NewRecorder()

	newNotificationRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "a storage error occurred", resp.Error)
}

func TestNotificationHandler_List(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	svc := new(MockNotificationService)
	svc.On("List", mock.Anything, userID, 0).
		Return([]model.NotificationRecord{{ID: uuid.New(), UserID: userID, Type: model.NotificationTypeStreak}}, nil)
	svc.On("CountUnread", mock.Anything, userID).Return(1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+userID.String()+"/notifications", nil)
	rec := httptest.NewRecorder()

	newNotificationRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Notifications []model.NotificationRecord `json:"notifications"`
		UnreadCount   int                        `json:"unreadCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Notifications, 1)
	assert.Equal(t, 1, resp.UnreadCount)
}
