package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/gateway"
)

func (s *Server) registerStatusRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listStatuses",
		Method:      http.MethodGet,
		Path:        "/api/v1/statuses",
		Summary:     "List statuses",
		Description: "Returns the merged status pipeline: seeded defaults overlaid with the user's customs",
		Tags:        []string{"Statuses"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleListStatuses)

	huma.Register(s.api, huma.Operation{
		OperationID: "createStatus",
		Method:      http.MethodPost,
		Path:        "/api/v1/statuses",
		Summary:     "Create status",
		Description: "Adds a custom status; one matching a default's id overrides that default",
		Tags:        []string{"Statuses"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleCreateStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateStatus",
		Method:      http.MethodPatch,
		Path:        "/api/v1/statuses/{id}",
		Summary:     "Update status",
		Description: "Edits a custom status; defaults are immutable",
		Tags:        []string{"Statuses"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleUpdateStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteStatus",
		Method:      http.MethodDelete,
		Path:        "/api/v1/statuses/{id}",
		Summary:     "Delete status",
		Description: "Deletes a custom status, reassigning its jobs to the not-allowed sentinel",
		Tags:        []string{"Statuses"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleDeleteStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetStatuses",
		Method:      http.MethodPost,
		Path:        "/api/v1/statuses/reset",
		Summary:     "Reset statuses",
		Description: "Removes every custom status, restoring the seeded defaults",
		Tags:        []string{"Statuses"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleResetStatuses)
}

// === DTOs ===

// ListStatusesInput contains parameters for listing statuses.
type ListStatusesInput struct {
	UserID string `header:"X-User-ID"`
}

// StatusResponse contains status data in API responses.
type StatusResponse struct {
	ID        string `json:"id" doc:"Status ID, derived from the name"`
	Name      string `json:"name" doc:"Display name"`
	Color     string `json:"color,omitempty" doc:"Display color"`
	Deletable bool   `json:"deletable" doc:"False for seeded defaults"`
}

// ListStatusesResponse contains the merged status pipeline.
type ListStatusesResponse struct {
	Statuses []StatusResponse `json:"statuses" doc:"Merged pipeline, defaults first"`
}

// ListStatusesOutput wraps the list statuses response for Huma.
type ListStatusesOutput struct {
	Body ListStatusesResponse
}

// CreateStatusRequest is the request body for creating a status.
type CreateStatusRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=50" doc:"Status name"`
	Color string `json:"color,omitempty" validate:"omitempty,hexcolor" doc:"Display color"`
}

// CreateStatusInput wraps the create status request for Huma.
type CreateStatusInput struct {
	UserID string `header:"X-User-ID"`
	Body   CreateStatusRequest
}

// StatusOutput wraps the status response for Huma.
type StatusOutput struct {
	Body StatusResponse
}

// UpdateStatusRequest is the request body for updating a status.
type UpdateStatusRequest struct {
	Name  string `json:"name,omitempty" validate:"omitempty,min=1,max=50" doc:"Status name"`
	Color string `json:"color,omitempty" validate:"omitempty,hexcolor" doc:"Display color"`
}

// UpdateStatusInput wraps the update status request for Huma.
type UpdateStatusInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Status ID"`
	Body   UpdateStatusRequest
}

// DeleteStatusInput contains parameters for deleting a status.
type DeleteStatusInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Status ID"`
}

// ResetStatusesInput contains parameters for resetting statuses.
type ResetStatusesInput struct {
	UserID string `header:"X-User-ID"`
}

func toStatusResponse(status *domain.JobStatus) StatusResponse {
	return StatusResponse{
		ID:        status.ID,
		Name:      status.Name,
		Color:     status.Color,
		Deletable: status.Deletable,
	}
}

// === Handlers ===

func (s *Server) handleListStatuses(ctx context.Context, input *ListStatusesInput) (*ListStatusesOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	statuses, err := s.services.Status.ListStatuses(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]StatusResponse, len(statuses))
	for i, status := range statuses {
		resp[i] = toStatusResponse(status)
	}

	return &ListStatusesOutput{Body: ListStatusesResponse{Statuses: resp}}, nil
}

func (s *Server) handleCreateStatus(ctx context.Context, input *CreateStatusInput) (*StatusOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	status, err := s.services.Status.CreateStatus(ctx, userID, gateway.SourceUser, input.Body.Name, input.Body.Color)
	if err != nil {
		return nil, err
	}

	return &StatusOutput{Body: toStatusResponse(status)}, nil
}

func (s *Server) handleUpdateStatus(ctx context.Context, input *UpdateStatusInput) (*StatusOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	status, err := s.services.Status.UpdateStatus(ctx, userID, gateway.SourceUser, input.ID, input.Body.Name, input.Body.Color)
	if err != nil {
		return nil, err
	}

	return &StatusOutput{Body: toStatusResponse(status)}, nil
}

func (s *Server) handleDeleteStatus(ctx context.Context, input *DeleteStatusInput) (*MessageOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Status.DeleteStatus(ctx, userID, gateway.SourceUser, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Status deleted"}}, nil
}

func (s *Server) handleResetStatuses(ctx context.Context, input *ResetStatusesInput) (*ListStatusesOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Status.ResetStatuses(ctx, userID, gateway.SourceUser); err != nil {
		return nil, err
	}

	statuses, err := s.services.Status.ListStatuses(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]StatusResponse, len(statuses))
	for i, status := range statuses {
		resp[i] = toStatusResponse(status)
	}

	return &ListStatusesOutput{Body: ListStatusesResponse{Statuses: resp}}, nil
}
