package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/savestreak/backend/internal/apperror"
	"github.com/savestreak/backend/internal/model"
	"github.com/savestreak/backend/internal/repository"
)

const preferencesKey = "notification_preferences"

// SettingsStoreInterface is the slice of the settings store the
// preferences layer needs.
type SettingsStoreInterface interface {
	Get(ctx context.Context, key string, out any) error
	Save(ctx context.Context, key string, value any) error
}

// PreferencesStore loads and saves notification preferences from the
// settings store, falling back to defaults when nothing is saved yet.
type PreferencesStore struct {
	settings SettingsStoreInterface
	logger   *slog.Logger
}

func NewPreferencesStore(settings SettingsStoreInterface, logger *slog.Logger) *PreferencesStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreferencesStore{settings: settings, logger: logger}
}

// Load returns the stored preferences. A missing document means the user
// never changed anything and yields the defaults silently; any other
// storage error also falls back to defaults, logged, so a flaky settings
// read can never block notification decisions.
func (s *PreferencesStore) Load(ctx context.Context) model.NotificationPreferences {
	var prefs model.NotificationPreferences
	err := s.settings.Get(ctx, preferencesKey, &prefs)
	if err == nil {
		return prefs
	}
	if !errors.Is(err, repository.ErrSettingNotFound) {
		s.logger.Warn("loading notification preferences, using defaults",
			"error", fmt.Errorf("%w: %w", apperror.ErrInvalidPreference, err))
	}
	return model.DefaultPreferences()
}

// Save persists the full preferences document.
func (s *PreferencesStore) Save(ctx context.Context, prefs model.NotificationPreferences) error {
	if err := s.settings.Save(ctx, preferencesKey, prefs); err != nil {
		return fmt.Errorf("saving notification preferences: %w", err)
	}
	return nil
}
