package notify

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savestreak/backend/internal/model"
)

type fakeRecordStore struct {
	records []*model.NotificationRecord
	err     error
}

func (f *fakeRecordStore) Create(_ context.Context, record *model.NotificationRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

type fixedPrefs struct {
	prefs model.NotificationPreferences
}

func (f *fixedPrefs) Load(context.Context) model.NotificationPreferences {
	return f.prefs
}

type fakeSink struct {
	delivered []*model.NotificationRecord
	err       error
}

func (f *fakeSink) Deliver(_ context.Context, record *model.NotificationRecord) error {
	if f.err != nil {
		return f.err
	}
	f.delivered = append(f.delivered, record)
	return nil
}

func testEngine(prefs model.NotificationPreferences, at time.Time, opts ...Option) (*Engine, *fakeRecordStore) {
	store := &fakeRecordStore{}
	all := append([]Option{
		WithClock(func() time.Time { return at }),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	}, opts...)
	e := NewEngine(store, &fixedPrefs{prefs: prefs}, 30*time.Minute, nil, all...)
	return e, store
}

func at(hour int) time.Time {
	return time.Date(2025, 6, 10, hour, 0, 0, 0, time.Local)
}

func TestQuietHoursActive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		quiet model.QuietHours
		hour  int
		want  bool
	}{
		{"disabled", model.QuietHours{Enabled: false, StartHour: 22, EndHour: 8}, 23, false},
		{"wrapping, late evening", model.QuietHours{Enabled: true, StartHour: 22, EndHour: 8}, 23, true},
		{"wrapping, early morning", model.QuietHours{Enabled: true, StartHour: 22, EndHour: 8}, 5, true},
		{"wrapping, midday", model.QuietHours{Enabled: true, StartHour: 22, EndHour: 8}, 12, false},
		{"wrapping, end hour is outside", model.QuietHours{Enabled: true, StartHour: 22, EndHour: 8}, 8, false},
		{"non-wrapping, inside", model.QuietHours{Enabled: true, StartHour: 9, EndHour: 17}, 12, true},
		{"non-wrapping, start hour is inside", model.QuietHours{Enabled: true, StartHour: 9, EndHour: 17}, 9, true},
		{"non-wrapping, outside", model.QuietHours{Enabled: true, StartHour: 9, EndHour: 17}, 18, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, QuietHoursActive(tt.quiet, at(tt.hour)))
		})
	}
}

func TestEngine_QuietHoursSuppression(t *testing.T) {
	t.Parallel()

	prefs := model.DefaultPreferences()
	prefs.QuietHours.Enabled = true

	e, store := testEngine(prefs, at(23))

	res, err := e.TrySend(context.Background(), model.NotificationTypeDailyReminder, Payload{UserID: uuid.New()})

	require.NoError(t, err)
	assert.False(t, res.Sent)
	assert.Equal(t, ReasonQuietHours, res.Reason)
	assert.Empty(t, store.records)
}

func TestEngine_SystemBypassesQuietHoursAndCooldown(t *testing.T) {
	t.Parallel()

	prefs := model.DefaultPreferences()
	prefs.QuietHours.Enabled = true

	e, store := testEngine(prefs, at(23))

	first, err := e.TrySend(context.Background(), model.NotificationTypeSystem, Payload{UserID: uuid.New(), Title: "Saved!", Message: "€25 logged"})
	require.NoError(t, err)
	assert.True(t, first.Sent)

	// Same instant, well inside the cooldown.
	second, err := e.TrySend(context.Background(), model.NotificationTypeSystem, Payload{UserID: uuid.New(), Title: "Saved again!", Message: "€10 logged"})
	require.NoError(t, err)
	assert.True(t, second.Sent)
	assert.Len(t, store.records, 2)
}

func TestEngine_Cooldown(t *testing.T) {
	t.Parallel()

	now := at(12)
	e, _ := testEngine(model.DefaultPreferences(), now)

	res, err := e.TrySend(context.Background(), model.NotificationTypeTip, Payload{UserID: uuid.New()})
	require.NoError(t, err)
	require.True(t, res.Sent)

	// 10 minutes later: still inside the 30 minute cooldown.
	e.now = func() time.Time { return now.Add(10 * time.Minute) }
	res, err = e.TrySend(context.Background(), model.NotificationTypeTip, Payload{UserID: uuid.New()})
	require.NoError(t, err)
	assert.False(t, res.Sent)
	assert.Equal(t, ReasonCooldown, res.Reason)

	// 31 minutes after the first emission: allowed again.
	e.now = func() time.Time { return now.Add(31 * time.Minute) }
	res, err = e.TrySend(context.Background(), model.NotificationTypeTip, Payload{UserID: uuid.New()})
	require.NoError(t, err)
	assert.True(t, res.Sent)
}

func TestEngine_PreferenceGate(t *testing.T) {
	t.Parallel()

	prefs := model.DefaultPreferences()
	prefs.DailyReminders = false

	e, store := testEngine(prefs, at(12))

	res, err := e.TrySend(context.Background(), model.NotificationTypeDailyReminder, Payload{UserID: uuid.New()})
	require.NoError(t, err)
	assert.False(t, res.Sent)
	assert.Equal(t, ReasonPreferenceDisabled, res.Reason)
	assert.Empty(t, store.records)

	// Motivation has no preference flag and always passes the gate.
	res, err = e.TrySend(context.Background(), model.NotificationTypeMotivation, Payload{UserID: uuid.New()})
	require.NoError(t, err)
	assert.True(t, res.Sent)
}

func TestEngine_UnknownType(t *testing.T) {
	t.Parallel()

	e, store := testEngine(model.DefaultPreferences(), at(12))

	res, err := e.TrySend(context.Background(), model.NotificationType("carrier_pigeon"), Payload{UserID: uuid.New()})
	require.NoError(t, err)
	assert.False(t, res.Sent)
	assert.Equal(t, ReasonUnknownType, res.Reason)
	assert.Empty(t, store.records)
}

func TestEngine_SinkFailureDoesNotAffectOutcome(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{err: errors.New("push service down")}
	e, store := testEngine(model.DefaultPreferences(), at(12), WithSinks(sink))

	res, err := e.TrySend(context.Background(), model.NotificationTypeStreak, Payload{UserID: uuid.New(), Days: 7})
	require.NoError(t, err)
	assert.True(t, res.Sent)
	assert.Len(t, store.records, 1)
}

func TestEngine_RecordPersistFailureSurfaces(t *testing.T) {
	t.Parallel()

	prefs := model.DefaultPreferences()
	e := NewEngine(
		&fakeRecordStore{err: errors.New("db down")},
		&fixedPrefs{prefs: prefs},
		30*time.Minute,
		nil,
		WithClock(func() time.Time { return at(12) }),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	)

	res, err := e.TrySend(context.Background(), model.NotificationTypeMilestone, Payload{UserID: uuid.New(), ChallengeName: "Vacation", Percentage: 50})
	assert.Error(t, err)
	assert.False(t, res.Sent)

	// A failed persist must not start the cooldown.
	assert.True(t, e.lastEmission.IsZero())
}

func TestEngine_ContentByType(t *testing.T) {
	t.Parallel()

	e, store := testEngine(model.DefaultPreferences(), at(12))
	userID := uuid.New()

	res, err := e.TrySend(context.Background(), model.NotificationTypeMilestone, Payload{
		UserID:        userID,
		ChallengeName: "Emergency Fund",
		Percentage:    75,
	})
	require.NoError(t, err)
	require.True(t, res.Sent)

	record := store.records[0]
	assert.Equal(t, userID, record.UserID)
	assert.Equal(t, model.NotificationTypeMilestone, record.Type)
	assert.Contains(t, record.Body, "75%")
	assert.Contains(t, record.Body, "Emergency Fund")
	assert.Equal(t, "🏆", record.Icon)
	assert.Equal(t, "#F59E0B", record.Color)
}
