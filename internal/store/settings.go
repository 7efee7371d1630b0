package store

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/events"
)

// ErrSettingsNotFound is returned when a user has no stored settings.
var ErrSettingsNotFound = errors.New("settings not found")

// GetSettings retrieves the user's settings. Missing fields in the stored
// document are filled with defaults.
func (s *Store) GetSettings(ctx context.Context, userID string) (*domain.Settings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var settings domain.Settings
	err := s.getJSON(settingsKey(userID), &settings)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, err
	}

	settings.FillDefaults()
	return &settings, nil
}

// GetOrCreateSettings returns existing settings or persists and returns
// defaults for a new user.
func (s *Store) GetOrCreateSettings(ctx context.Context, userID string) (*domain.Settings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, ErrSettingsNotFound) {
		return nil, err
	}

	settings = domain.NewSettings(userID)
	if err := s.setJSON(settingsKey(userID), settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// UpsertSettings writes the user's settings and broadcasts the change.
func (s *Store) UpsertSettings(ctx context.Context, userID string, settings *domain.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.setJSON(settingsKey(userID), settings); err != nil {
		return err
	}

	s.emit(events.NewSettingsUpdatedEvent(userID, settings))
	return nil
}

// DeleteSettings removes the user's stored settings, reverting to defaults.
func (s *Store) DeleteSettings(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.deleteKey(settingsKey(userID))
}
