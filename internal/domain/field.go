package domain

import (
	"strings"

	"github.com/applytrack/applytrack-server/internal/errors"
	"github.com/applytrack/applytrack-server/internal/slug"
)

// FieldType enumerates the value types a custom field can hold.
type FieldType string

// Supported field types. A field's type is fixed at creation.
const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeDate    FieldType = "date"
	FieldTypeSelect  FieldType = "select"
)

// Valid reports whether ft is a known field type.
func (ft FieldType) Valid() bool {
	switch ft {
	case FieldTypeString, FieldTypeNumber, FieldTypeBoolean, FieldTypeDate, FieldTypeSelect:
		return true
	}
	return false
}

// FieldOption is a selectable choice on a select-typed field.
type FieldOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// CustomField is a user-defined schema entry for job records. The field
// definition lives here; the per-job values live inside each job document
// with an independent lifecycle.
type CustomField struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Type         FieldType     `json:"type"`
	Options      []FieldOption `json:"options,omitempty"` // select type only
	Required     bool          `json:"required"`
	DefaultValue any           `json:"default_value,omitempty"`

	Timestamps
}

// Validate checks the invariants a field definition must hold at creation.
func (f *CustomField) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.Validation("field name is required")
	}
	if !f.Type.Valid() {
		return errors.Validationf("unknown field type %q", f.Type)
	}
	if f.Required && f.DefaultValue == nil {
		return errors.Validation("a required field must have a default value")
	}
	if f.Type == FieldTypeSelect && len(f.Options) == 0 {
		return errors.Validation("a select field needs at least one option")
	}
	return nil
}

// ParseFieldOptions turns a comma-separated label list into select options.
// Labels are trimmed and deduplicated (case-insensitively, on the derived
// value); option values are the slug of the label.
func ParseFieldOptions(raw string) []FieldOption {
	parts := strings.Split(raw, ",")
	seen := make(map[string]bool, len(parts))
	options := make([]FieldOption, 0, len(parts))

	for _, part := range parts {
		label := strings.TrimSpace(part)
		if label == "" {
			continue
		}
		value := slug.Derive(label)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		options = append(options, FieldOption{
			ID:    value,
			Label: label,
			Value: value,
		})
	}

	return options
}
