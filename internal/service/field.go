package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/errors"
	"github.com/applytrack/applytrack-server/internal/gateway"
	"github.com/applytrack/applytrack-server/internal/notify"
	"github.com/applytrack/applytrack-server/internal/slug"
	"github.com/applytrack/applytrack-server/internal/store"
)

// FieldService manages custom field definitions and the cascade that
// removes per-job values when a definition disappears.
type FieldService struct {
	store   *store.Store
	gateway *gateway.Gateway
	notify  *notify.Center
	logger  *slog.Logger
}

// NewFieldService creates a new field service.
func NewFieldService(st *store.Store, gw *gateway.Gateway, nc *notify.Center, logger *slog.Logger) *FieldService {
	return &FieldService{
		store:   st,
		gateway: gw,
		notify:  nc,
		logger:  logger,
	}
}

// ListFields returns the user's field definitions.
func (s *FieldService) ListFields(ctx context.Context, userID string) ([]*domain.CustomField, error) {
	return s.store.ListFields(ctx, userID)
}

// GetField returns a single field definition.
func (s *FieldService) GetField(ctx context.Context, userID, fieldID string) (*domain.CustomField, error) {
	f, err := s.store.GetField(ctx, userID, fieldID)
	if errors.Is(err, store.ErrFieldNotFound) {
		return nil, errors.NotFoundf("field %q not found", fieldID)
	}
	return f, err
}

// CreateFieldParams carries the inputs for CreateField. For select fields,
// RawOptions is a comma-separated label list.
type CreateFieldParams struct {
	Name         string
	Type         domain.FieldType
	RawOptions   string
	Required     bool
	DefaultValue any
}

// CreateField creates a field definition. The id derives from the name and
// the type is fixed for the definition's lifetime.
func (s *FieldService) CreateField(ctx context.Context, userID, source string, params CreateFieldParams) (*domain.CustomField, error) {
	if err := s.gateway.Allow(userID, source); err != nil {
		return nil, err
	}

	fieldID := slug.Derive(params.Name)
	if fieldID == "" {
		return nil, errors.Validation("field name is empty after normalization")
	}

	f := &domain.CustomField{
		ID:           fieldID,
		Name:         params.Name,
		Type:         params.Type,
		Required:     params.Required,
		DefaultValue: params.DefaultValue,
	}
	if params.Type == domain.FieldTypeSelect {
		f.Options = domain.ParseFieldOptions(params.RawOptions)
	}
	f.InitTimestamps()

	if err := f.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateField(ctx, userID, f); err != nil {
		if errors.Is(err, store.ErrFieldExists) {
			return nil, errors.AlreadyExistsf("a field named %q already exists", params.Name)
		}
		return nil, err
	}
	return f, nil
}

// UpdateFieldParams carries the editable parts of a field definition.
// A nil pointer leaves the current value untouched.
type UpdateFieldParams struct {
	Name         *string
	RawOptions   *string
	Required     *bool
	DefaultValue any
}

// UpdateField edits a field definition. The type is immutable: stored
// values were written under the old type and cannot be reinterpreted.
func (s *FieldService) UpdateField(ctx context.Context, userID, source, fieldID string, params UpdateFieldParams) (*domain.CustomField, error) {
	if err := s.gateway.Allow(userID, source); err != nil {
		return nil, err
	}

	f, err := s.GetField(ctx, userID, fieldID)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		f.Name = *params.Name
	}
	if params.RawOptions != nil {
		if f.Type != domain.FieldTypeSelect {
			return nil, errors.Validation("options apply to select fields only")
		}
		f.Options = domain.ParseFieldOptions(*params.RawOptions)
	}
	if params.Required != nil {
		f.Required = *params.Required
	}
	if params.DefaultValue != nil {
		f.DefaultValue = params.DefaultValue
	}
	f.Touch()

	if err := f.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.SaveField(ctx, userID, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ChangeFieldType always fails: types are fixed at creation. The method
// exists so the API can surface a precise error instead of a generic 400.
func (s *FieldService) ChangeFieldType(context.Context, string, string, string, domain.FieldType) error {
	return errors.Immutable("a field's type is fixed at creation")
}

// DeleteField removes a definition and scrubs its value from every job
// carrying one. Captured values ride on the undo notification so a restore
// brings them back.
func (s *FieldService) DeleteField(ctx context.Context, userID, source, fieldID string) error {
	if err := s.gateway.Allow(userID, source); err != nil {
		return err
	}

	f, err := s.GetField(ctx, userID, fieldID)
	if err != nil {
		return err
	}

	values, err := s.scrubFieldValues(ctx, userID, fieldID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteField(ctx, userID, fieldID); err != nil {
		return err
	}

	deleted := *f
	s.notify.Push(userID, fmt.Sprintf("Field %q deleted", f.Name), notify.LevelInfo,
		func(undoCtx context.Context) error {
			return s.restoreField(undoCtx, userID, &deleted, values)
		})

	s.logger.Info("field deleted",
		slog.String("user_id", userID),
		slog.String("field_id", fieldID),
		slog.Int("values_scrubbed", len(values)))
	return nil
}

// DeleteAllFields removes every definition sequentially, each with its own
// value cascade. No undo is offered for the bulk wipe.
func (s *FieldService) DeleteAllFields(ctx context.Context, userID, source string) error {
	if err := s.gateway.Allow(userID, source); err != nil {
		return err
	}

	fields, err := s.store.ListFields(ctx, userID)
	if err != nil {
		return err
	}

	for _, f := range fields {
		if _, err := s.scrubFieldValues(ctx, userID, f.ID); err != nil {
			return err
		}
		if err := s.store.DeleteField(ctx, userID, f.ID); err != nil && !errors.Is(err, store.ErrFieldNotFound) {
			return err
		}
	}

	s.logger.Info("all fields deleted",
		slog.String("user_id", userID),
		slog.Int("fields", len(fields)))
	return nil
}

// scrubFieldValues removes the field's value from every job carrying one,
// returning the removed values keyed by job id. Soft-deleted jobs are
// scrubbed too; an undone delete must not resurrect orphaned values.
func (s *FieldService) scrubFieldValues(ctx context.Context, userID, fieldID string) (map[string]any, error) {
	jobs, err := s.store.ListAllJobs(ctx, userID)
	if err != nil {
		return nil, err
	}

	values := make(map[string]any)
	path := "custom_fields." + fieldID
	for _, job := range jobs {
		value, ok := job.CustomFields[fieldID]
		if !ok {
			continue
		}
		values[job.ID] = value
		if err := s.store.DeleteJobValue(ctx, userID, job.ID, path); err != nil {
			return nil, fmt.Errorf("scrub field from job %s: %w", job.ID, err)
		}
	}
	return values, nil
}

// restoreField is the inverse of DeleteField: recreate the definition and
// put the scrubbed values back on their jobs.
func (s *FieldService) restoreField(ctx context.Context, userID string, f *domain.CustomField, values map[string]any) error {
	f.Touch()
	if err := s.store.CreateField(ctx, userID, f); err != nil && !errors.Is(err, store.ErrFieldExists) {
		return err
	}

	path := "custom_fields." + f.ID
	for jobID, value := range values {
		if err := s.store.UpdateJobValue(ctx, userID, jobID, path, value); err != nil {
			if errors.Is(err, store.ErrJobNotFound) {
				continue
			}
			return err
		}
	}
	return nil
}

// SetJobFieldValue writes one job's value for a field, validating the field
// exists first. Select values must be one of the field's options.
func (s *FieldService) SetJobFieldValue(ctx context.Context, userID, source, jobID, fieldID string, value any) error {
	if err := s.gateway.Allow(userID, source); err != nil {
		return err
	}

	f, err := s.GetField(ctx, userID, fieldID)
	if err != nil {
		return err
	}

	if f.Type == domain.FieldTypeSelect {
		str, ok := value.(string)
		if !ok {
			return errors.Validation("select field values must be strings")
		}
		valid := false
		for _, opt := range f.Options {
			if opt.Value == str {
				valid = true
				break
			}
		}
		if !valid {
			return errors.Validationf("%q is not an option of field %q", str, f.Name)
		}
	}

	err = s.store.UpdateJobValue(ctx, userID, jobID, "custom_fields."+fieldID, value)
	if errors.Is(err, store.ErrJobNotFound) {
		return errors.NotFoundf("job %q not found", jobID)
	}
	return err
}

// ClearJobFieldValue removes one job's value for a field.
func (s *FieldService) ClearJobFieldValue(ctx context.Context, userID, source, jobID, fieldID string) error {
	if err := s.gateway.Allow(userID, source); err != nil {
		return err
	}

	err := s.store.DeleteJobValue(ctx, userID, jobID, "custom_fields."+fieldID)
	if errors.Is(err, store.ErrJobNotFound) {
		return errors.NotFoundf("job %q not found", jobID)
	}
	return err
}
