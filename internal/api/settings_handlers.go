package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/gateway"
	"github.com/applytrack/applytrack-server/internal/service"
)

func (s *Server) registerSettingsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSettings",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings",
		Summary:     "Get settings",
		Description: "Returns the user's settings, creating defaults on first read",
		Tags:        []string{"Settings"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleGetSettings)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateSettings",
		Method:      http.MethodPatch,
		Path:        "/api/v1/settings",
		Summary:     "Update settings",
		Description: "Applies a partial settings update",
		Tags:        []string{"Settings"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleUpdateSettings)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetSettings",
		Method:      http.MethodPost,
		Path:        "/api/v1/settings/reset",
		Summary:     "Reset settings",
		Description: "Restores the default settings",
		Tags:        []string{"Settings"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleResetSettings)
}

// === DTOs ===

// GetSettingsInput contains parameters for reading settings.
type GetSettingsInput struct {
	UserID string `header:"X-User-ID"`
}

// SettingsResponse contains settings data in API responses.
type SettingsResponse struct {
	ThemeMode    string `json:"theme_mode" doc:"UI theme: light or dark"`
	PrimaryColor string `json:"primary_color" doc:"Accent color"`
	Language     string `json:"language" doc:"UI language code"`
	Timezone     string `json:"timezone" doc:"IANA timezone name"`
}

// SettingsOutput wraps the settings response for Huma.
type SettingsOutput struct {
	Body SettingsResponse
}

// UpdateSettingsRequest is the request body for updating settings.
// Absent properties are left untouched.
type UpdateSettingsRequest struct {
	ThemeMode    *string `json:"theme_mode,omitempty" validate:"omitempty,oneof=light dark" doc:"UI theme"`
	PrimaryColor *string `json:"primary_color,omitempty" validate:"omitempty,hexcolor" doc:"Accent color"`
	Language     *string `json:"language,omitempty" validate:"omitempty,bcp47_language_tag" doc:"UI language code"`
	Timezone     *string `json:"timezone,omitempty" validate:"omitempty,timezone" doc:"IANA timezone name"`
}

// UpdateSettingsInput wraps the update settings request for Huma.
type UpdateSettingsInput struct {
	UserID string `header:"X-User-ID"`
	Body   UpdateSettingsRequest
}

// ResetSettingsInput contains parameters for resetting settings.
type ResetSettingsInput struct {
	UserID string `header:"X-User-ID"`
}

func toSettingsResponse(settings *domain.Settings) SettingsResponse {
	return SettingsResponse{
		ThemeMode:    settings.Theme.Mode,
		PrimaryColor: settings.Theme.PrimaryColor,
		Language:     settings.Preferences.Language,
		Timezone:     settings.Preferences.Timezone,
	}
}

// === Handlers ===

func (s *Server) handleGetSettings(ctx context.Context, input *GetSettingsInput) (*SettingsOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	settings, err := s.services.Settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &SettingsOutput{Body: toSettingsResponse(settings)}, nil
}

func (s *Server) handleUpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*SettingsOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	settings, err := s.services.Settings.UpdateSettings(ctx, userID, gateway.SourceUser, service.UpdateSettingsParams{
		ThemeMode:    input.Body.ThemeMode,
		PrimaryColor: input.Body.PrimaryColor,
		Language:     input.Body.Language,
		Timezone:     input.Body.Timezone,
	})
	if err != nil {
		return nil, err
	}

	return &SettingsOutput{Body: toSettingsResponse(settings)}, nil
}

func (s *Server) handleResetSettings(ctx context.Context, input *ResetSettingsInput) (*SettingsOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	settings, err := s.services.Settings.ResetSettings(ctx, userID, gateway.SourceUser)
	if err != nil {
		return nil, err
	}

	return &SettingsOutput{Body: toSettingsResponse(settings)}, nil
}
