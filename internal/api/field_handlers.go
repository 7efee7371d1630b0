package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/gateway"
	"github.com/applytrack/applytrack-server/internal/service"
)

func (s *Server) registerFieldRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listFields",
		Method:      http.MethodGet,
		Path:        "/api/v1/fields",
		Summary:     "List fields",
		Description: "Returns the user's custom field definitions",
		Tags:        []string{"Fields"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleListFields)

	huma.Register(s.api, huma.Operation{
		OperationID: "createField",
		Method:      http.MethodPost,
		Path:        "/api/v1/fields",
		Summary:     "Create field",
		Description: "Creates a custom field definition; the type is fixed at creation",
		Tags:        []string{"Fields"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleCreateField)

	huma.Register(s.api, huma.Operation{
		OperationID: "getField",
		Method:      http.MethodGet,
		Path:        "/api/v1/fields/{id}",
		Summary:     "Get field",
		Description: "Returns a field definition by ID",
		Tags:        []string{"Fields"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleGetField)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateField",
		Method:      http.MethodPatch,
		Path:        "/api/v1/fields/{id}",
		Summary:     "Update field",
		Description: "Edits a field definition; the type cannot change",
		Tags:        []string{"Fields"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleUpdateField)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteField",
		Method:      http.MethodDelete,
		Path:        "/api/v1/fields/{id}",
		Summary:     "Delete field",
		Description: "Deletes a field definition and scrubs its value from every job",
		Tags:        []string{"Fields"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleDeleteField)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAllFields",
		Method:      http.MethodDelete,
		Path:        "/api/v1/fields",
		Summary:     "Delete all fields",
		Description: "Deletes every field definition, each with its value cascade",
		Tags:        []string{"Fields"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleDeleteAllFields)
}

// === DTOs ===

// ListFieldsInput contains parameters for listing fields.
type ListFieldsInput struct {
	UserID string `header:"X-User-ID"`
}

// FieldOptionResponse is one selectable choice on a select field.
type FieldOptionResponse struct {
	ID    string `json:"id" doc:"Option ID"`
	Label string `json:"label" doc:"Display label"`
	Value string `json:"value" doc:"Stored value"`
}

// FieldResponse contains field definition data in API responses.
type FieldResponse struct {
	ID           string                `json:"id" doc:"Field ID, derived from the name"`
	Name         string                `json:"name" doc:"Display name"`
	Type         string                `json:"type" doc:"Value type, fixed at creation"`
	Options      []FieldOptionResponse `json:"options,omitempty" doc:"Choices for select fields"`
	Required     bool                  `json:"required" doc:"Whether a value is required"`
	DefaultValue any                   `json:"default_value,omitempty" doc:"Default value"`
	CreatedAt    time.Time             `json:"created_at" doc:"Creation time"`
	UpdatedAt    time.Time             `json:"updated_at" doc:"Last update time"`
}

// ListFieldsResponse contains a list of field definitions.
type ListFieldsResponse struct {
	Fields []FieldResponse `json:"fields" doc:"List of field definitions"`
}

// ListFieldsOutput wraps the list fields response for Huma.
type ListFieldsOutput struct {
	Body ListFieldsResponse
}

// CreateFieldRequest is the request body for creating a field.
type CreateFieldRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=50" doc:"Field name"`
	Type         string `json:"type" validate:"required,fieldtype" doc:"Value type: string, number, boolean, date, or select"`
	Options      string `json:"options,omitempty" doc:"Comma-separated option labels for select fields"`
	Required     bool   `json:"required,omitempty" doc:"Whether a value is required"`
	DefaultValue any    `json:"default_value,omitempty" doc:"Default value"`
}

// CreateFieldInput wraps the create field request for Huma.
type CreateFieldInput struct {
	UserID string `header:"X-User-ID"`
	Body   CreateFieldRequest
}

// FieldOutput wraps the field response for Huma.
type FieldOutput struct {
	Body FieldResponse
}

// GetFieldInput contains parameters for getting a field.
type GetFieldInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Field ID"`
}

// UpdateFieldRequest is the request body for updating a field.
// Absent properties are left untouched. Type is absent on purpose.
type UpdateFieldRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=50" doc:"Field name"`
	Options      *string `json:"options,omitempty" doc:"Comma-separated option labels for select fields"`
	Required     *bool   `json:"required,omitempty" doc:"Whether a value is required"`
	DefaultValue any     `json:"default_value,omitempty" doc:"Default value"`
}

// UpdateFieldInput wraps the update field request for Huma.
type UpdateFieldInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Field ID"`
	Body   UpdateFieldRequest
}

// DeleteFieldInput contains parameters for deleting a field.
type DeleteFieldInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Field ID"`
}

// DeleteAllFieldsInput contains parameters for deleting all fields.
type DeleteAllFieldsInput struct {
	UserID string `header:"X-User-ID"`
}

func toFieldResponse(f *domain.CustomField) FieldResponse {
	options := make([]FieldOptionResponse, len(f.Options))
	for i, opt := range f.Options {
		options[i] = FieldOptionResponse{ID: opt.ID, Label: opt.Label, Value: opt.Value}
	}
	if len(options) == 0 {
		options = nil
	}
	return FieldResponse{
		ID:           f.ID,
		Name:         f.Name,
		Type:         string(f.Type),
		Options:      options,
		Required:     f.Required,
		DefaultValue: f.DefaultValue,
		CreatedAt:    f.CreatedAt.Time,
		UpdatedAt:    f.UpdatedAt.Time,
	}
}

// === Handlers ===

func (s *Server) handleListFields(ctx context.Context, input *ListFieldsInput) (*ListFieldsOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	fields, err := s.services.Field.ListFields(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]FieldResponse, len(fields))
	for i, f := range fields {
		resp[i] = toFieldResponse(f)
	}

	return &ListFieldsOutput{Body: ListFieldsResponse{Fields: resp}}, nil
}

func (s *Server) handleCreateField(ctx context.Context, input *CreateFieldInput) (*FieldOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	f, err := s.services.Field.CreateField(ctx, userID, gateway.SourceUser, service.CreateFieldParams{
		Name:         input.Body.Name,
		Type:         domain.FieldType(input.Body.Type),
		RawOptions:   input.Body.Options,
		Required:     input.Body.Required,
		DefaultValue: input.Body.DefaultValue,
	})
	if err != nil {
		return nil, err
	}

	return &FieldOutput{Body: toFieldResponse(f)}, nil
}

func (s *Server) handleGetField(ctx context.Context, input *GetFieldInput) (*FieldOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	f, err := s.services.Field.GetField(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &FieldOutput{Body: toFieldResponse(f)}, nil
}

func (s *Server) handleUpdateField(ctx context.Context, input *UpdateFieldInput) (*FieldOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	f, err := s.services.Field.UpdateField(ctx, userID, gateway.SourceUser, input.ID, service.UpdateFieldParams{
		Name:         input.Body.Name,
		RawOptions:   input.Body.Options,
		Required:     input.Body.Required,
		DefaultValue: input.Body.DefaultValue,
	})
	if err != nil {
		return nil, err
	}

	return &FieldOutput{Body: toFieldResponse(f)}, nil
}

func (s *Server) handleDeleteField(ctx context.Context, input *DeleteFieldInput) (*MessageOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Field.DeleteField(ctx, userID, gateway.SourceUser, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Field deleted"}}, nil
}

func (s *Server) handleDeleteAllFields(ctx context.Context, input *DeleteAllFieldsInput) (*MessageOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Field.DeleteAllFields(ctx, userID, gateway.SourceUser); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "All fields deleted"}}, nil
}
