package service

import (
	"context"
	"log/slog"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/gateway"
	"github.com/applytrack/applytrack-server/internal/store"
)

// SettingsService manages per-user settings with defaults for new users.
type SettingsService struct {
	store   *store.Store
	gateway *gateway.Gateway
	logger  *slog.Logger
}

// NewSettingsService creates a new settings service.
func NewSettingsService(st *store.Store, gw *gateway.Gateway, logger *slog.Logger) *SettingsService {
	return &SettingsService{
		store:   st,
		gateway: gw,
		logger:  logger,
	}
}

// GetSettings returns the user's settings, creating defaults on first read.
func (s *SettingsService) GetSettings(ctx context.Context, userID string) (*domain.Settings, error) {
	return s.store.GetOrCreateSettings(ctx, userID)
}

// UpdateSettingsParams carries the editable settings. Nil pointers leave
// the current value untouched.
type UpdateSettingsParams struct {
	ThemeMode    *string
	PrimaryColor *string
	Language     *string
	Timezone     *string
}

// UpdateSettings applies a partial settings update.
func (s *SettingsService) UpdateSettings(ctx context.Context, userID, source string, params UpdateSettingsParams) (*domain.Settings, error) {
	if err := s.gateway.Allow(userID, source); err != nil {
		return nil, err
	}

	settings, err := s.store.GetOrCreateSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.ThemeMode != nil {
		settings.Theme.Mode = *params.ThemeMode
	}
	if params.PrimaryColor != nil {
		settings.Theme.PrimaryColor = *params.PrimaryColor
	}
	if params.Language != nil {
		settings.Preferences.Language = *params.Language
	}
	if params.Timezone != nil {
		settings.Preferences.Timezone = *params.Timezone
	}
	settings.Touch()

	if err := s.store.UpsertSettings(ctx, userID, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// ResetSettings restores the defaults.
func (s *SettingsService) ResetSettings(ctx context.Context, userID, source string) (*domain.Settings, error) {
	if err := s.gateway.Allow(userID, source); err != nil {
		return nil, err
	}

	if err := s.store.DeleteSettings(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.GetOrCreateSettings(ctx, userID)
}
