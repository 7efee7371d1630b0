package domain

// Theme holds display preferences.
type Theme struct {
	Mode         string `json:"mode"` // "light" or "dark"
	PrimaryColor string `json:"primary_color"`
}

// Preferences holds locale preferences.
type Preferences struct {
	Language string `json:"language"`
	Timezone string `json:"timezone"`
}

// Settings is the single per-user settings document.
// Reads follow the defaults ⊕ overrides pattern: missing documents resolve
// to NewSettings, stored documents fill gaps from the defaults.
type Settings struct {
	UserID      string      `json:"user_id"`
	Theme       Theme       `json:"theme"`
	Preferences Preferences `json:"preferences"`

	Timestamps
}

// NewSettings creates settings with sensible defaults.
func NewSettings(userID string) *Settings {
	s := &Settings{
		UserID: userID,
		Theme: Theme{
			Mode:         "light",
			PrimaryColor: "#2196f3",
		},
		Preferences: Preferences{
			Language: "en",
			Timezone: "UTC",
		},
	}
	s.InitTimestamps()
	return s
}

// FillDefaults replaces zero-valued fields with the defaults, so documents
// written by older clients still resolve to a complete settings record.
func (s *Settings) FillDefaults() {
	def := NewSettings(s.UserID)
	if s.Theme.Mode == "" {
		s.Theme.Mode = def.Theme.Mode
	}
	if s.Theme.PrimaryColor == "" {
		s.Theme.PrimaryColor = def.Theme.PrimaryColor
	}
	if s.Preferences.Language == "" {
		s.Preferences.Language = def.Preferences.Language
	}
	if s.Preferences.Timezone == "" {
		s.Preferences.Timezone = def.Preferences.Timezone
	}
}
