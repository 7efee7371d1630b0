package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/gateway"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns all tags for the current user, most used first",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "listRecentTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/recent",
		Summary:     "List recent tags",
		Description: "Returns the most recently used tags for suggestions",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleListRecentTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags",
		Summary:     "Create tag",
		Description: "Creates a new tag; the id derives from the name",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Get tag",
		Description: "Returns a tag by ID",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTag",
		Method:      http.MethodPatch,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Update tag",
		Description: "Updates a tag's color; the name is identity and fixed",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleUpdateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Delete tag",
		Description: "Deletes a tag and strips it from every job carrying it",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleDeleteTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTagJobs",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{id}/jobs",
		Summary:     "Get tag jobs",
		Description: "Returns the live jobs carrying this tag",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleGetTagJobs)
}

// === DTOs ===

// ListTagsInput contains parameters for listing tags.
type ListTagsInput struct {
	UserID string `header:"X-User-ID"`
}

// ListRecentTagsInput contains parameters for listing recent tags.
type ListRecentTagsInput struct {
	UserID string `header:"X-User-ID"`
	Limit  int    `query:"limit" default:"10" minimum:"1" maximum:"50" doc:"Maximum tags to return"`
}

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID        string    `json:"id" doc:"Tag ID, derived from the name"`
	Name      string    `json:"name" doc:"Display name"`
	Color     string    `json:"color,omitempty" doc:"Display color"`
	Count     int       `json:"count" doc:"Live jobs carrying this tag"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// ListTagsResponse contains a list of tags.
type ListTagsResponse struct {
	Tags []TagResponse `json:"tags" doc:"List of tags"`
}

// ListTagsOutput wraps the list tags response for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// CreateTagRequest is the request body for creating a tag.
type CreateTagRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=50" doc:"Tag name"`
	Color string `json:"color,omitempty" validate:"omitempty,hexcolor" doc:"Display color"`
}

// CreateTagInput wraps the create tag request for Huma.
type CreateTagInput struct {
	UserID string `header:"X-User-ID"`
	Body   CreateTagRequest
}

// TagOutput wraps the tag response for Huma.
type TagOutput struct {
	Body TagResponse
}

// GetTagInput contains parameters for getting a tag.
type GetTagInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Tag ID"`
}

// UpdateTagRequest is the request body for updating a tag.
type UpdateTagRequest struct {
	Color string `json:"color" validate:"omitempty,hexcolor" doc:"Display color"`
}

// UpdateTagInput wraps the update tag request for Huma.
type UpdateTagInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Tag ID"`
	Body   UpdateTagRequest
}

// DeleteTagInput contains parameters for deleting a tag.
type DeleteTagInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Tag ID"`
}

// GetTagJobsInput contains parameters for getting a tag's jobs.
type GetTagJobsInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Tag ID"`
}

// TagJobsResponse contains job IDs carrying a tag.
type TagJobsResponse struct {
	JobIDs []string `json:"job_ids" doc:"Live job IDs carrying this tag"`
}

// TagJobsOutput wraps the tag jobs response for Huma.
type TagJobsOutput struct {
	Body TagJobsResponse
}

func toTagResponse(t *domain.Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		Name:      t.Name,
		Color:     t.Color,
		Count:     t.Count,
		CreatedAt: t.CreatedAt.Time,
		UpdatedAt: t.UpdatedAt.Time,
	}
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *ListTagsInput) (*ListTagsOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.ListTags(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = toTagResponse(t)
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: resp}}, nil
}

func (s *Server) handleListRecentTags(ctx context.Context, input *ListRecentTagsInput) (*ListTagsOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.RecentTags(ctx, userID, input.Limit)
	if err != nil {
		return nil, err
	}

	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = toTagResponse(t)
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: resp}}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	t, err := s.services.Tag.CreateTag(ctx, userID, gateway.SourceUser, input.Body.Name, input.Body.Color)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: toTagResponse(t)}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *GetTagInput) (*TagOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	t, err := s.services.Tag.GetTag(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: toTagResponse(t)}, nil
}

func (s *Server) handleUpdateTag(ctx context.Context, input *UpdateTagInput) (*TagOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	t, err := s.services.Tag.UpdateTagColor(ctx, userID, gateway.SourceUser, input.ID, input.Body.Color)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: toTagResponse(t)}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *DeleteTagInput) (*MessageOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tag.DeleteTag(ctx, userID, gateway.SourceUser, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Tag deleted"}}, nil
}

func (s *Server) handleGetTagJobs(ctx context.Context, input *GetTagJobsInput) (*TagJobsOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	jobs, err := s.services.Job.JobsWithTag(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(jobs))
	for i, job := range jobs {
		ids[i] = job.ID
	}

	return &TagJobsOutput{Body: TagJobsResponse{JobIDs: ids}}, nil
}
