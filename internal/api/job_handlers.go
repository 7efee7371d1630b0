package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/gateway"
	"github.com/applytrack/applytrack-server/internal/search"
	"github.com/applytrack/applytrack-server/internal/service"
)

func (s *Server) registerJobRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listJobs",
		Method:      http.MethodGet,
		Path:        "/api/v1/jobs",
		Summary:     "List jobs",
		Description: "Returns the user's live job applications, newest first",
		Tags:        []string{"Jobs"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleListJobs)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchJobs",
		Method:      http.MethodGet,
		Path:        "/api/v1/jobs/search",
		Summary:     "Search jobs",
		Description: "Full-text search over company, position, location, and notes",
		Tags:        []string{"Jobs"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleSearchJobs)

	huma.Register(s.api, huma.Operation{
		OperationID: "createJob",
		Method:      http.MethodPost,
		Path:        "/api/v1/jobs",
		Summary:     "Create job",
		Description: "Adds a job application",
		Tags:        []string{"Jobs"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleCreateJob)

	huma.Register(s.api, huma.Operation{
		OperationID: "getJob",
		Method:      http.MethodGet,
		Path:        "/api/v1/jobs/{id}",
		Summary:     "Get job",
		Description: "Returns a job by ID",
		Tags:        []string{"Jobs"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleGetJob)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateJob",
		Method:      http.MethodPatch,
		Path:        "/api/v1/jobs/{id}",
		Summary:     "Update job",
		Description: "Applies a partial update to a job",
		Tags:        []string{"Jobs"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleUpdateJob)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteJob",
		Method:      http.MethodDelete,
		Path:        "/api/v1/jobs/{id}",
		Summary:     "Delete job",
		Description: "Soft-deletes a job; an undo notification restores it",
		Tags:        []string{"Jobs"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleDeleteJob)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteJobs",
		Method:      http.MethodPost,
		Path:        "/api/v1/jobs/bulk-delete",
		Summary:     "Delete jobs",
		Description: "Soft-deletes several jobs; one undo restores the batch",
		Tags:        []string{"Jobs"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleDeleteJobs)

	huma.Register(s.api, huma.Operation{
		OperationID: "addJobTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/jobs/{id}/tags",
		Summary:     "Tag job",
		Description: "Tags a job by name, creating the tag if it does not exist",
		Tags:        []string{"Jobs"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleAddJobTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeJobTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/jobs/{id}/tags/{tagID}",
		Summary:     "Untag job",
		Description: "Removes a tag from a job",
		Tags:        []string{"Jobs"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleRemoveJobTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "setJobFieldValue",
		Method:      http.MethodPut,
		Path:        "/api/v1/jobs/{id}/fields/{fieldID}",
		Summary:     "Set job field value",
		Description: "Writes a custom field value on a job",
		Tags:        []string{"Jobs"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleSetJobFieldValue)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearJobFieldValue",
		Method:      http.MethodDelete,
		Path:        "/api/v1/jobs/{id}/fields/{fieldID}",
		Summary:     "Clear job field value",
		Description: "Removes a custom field value from a job",
		Tags:        []string{"Jobs"},
		Security:    []map[string][]string{{"user": {}}},
	}, s.handleClearJobFieldValue)
}

// === DTOs ===

// ListJobsInput contains parameters for listing jobs.
type ListJobsInput struct {
	UserID string `header:"X-User-ID"`
}

// JobResponse contains job data in API responses.
type JobResponse struct {
	ID           string         `json:"id" doc:"Job ID"`
	Company      string         `json:"company" doc:"Company name"`
	Position     string         `json:"position" doc:"Position title"`
	Location     string         `json:"location,omitempty" doc:"Job location"`
	URL          string         `json:"url,omitempty" doc:"Posting URL"`
	Notes        string         `json:"notes,omitempty" doc:"Free-form notes"`
	StatusID     string         `json:"status_id" doc:"Current status ID"`
	TagIDs       []string       `json:"tag_ids,omitempty" doc:"Tag IDs on this job"`
	CustomFields map[string]any `json:"custom_fields,omitempty" doc:"Custom field values keyed by field ID"`
	CreatedAt    time.Time      `json:"created_at" doc:"Creation time"`
	UpdatedAt    time.Time      `json:"updated_at" doc:"Last update time"`
	CooldownMS   int64          `json:"cooldown_ms" doc:"Milliseconds left in the advisory edit cool-down"`
}

// ListJobsResponse contains a list of jobs.
type ListJobsResponse struct {
	Jobs []JobResponse `json:"jobs" doc:"List of jobs"`
}

// ListJobsOutput wraps the list jobs response for Huma.
type ListJobsOutput struct {
	Body ListJobsResponse
}

// CreateJobRequest is the request body for creating a job.
type CreateJobRequest struct {
	Company  string   `json:"company" validate:"required,min=1,max=200" doc:"Company name"`
	Position string   `json:"position" validate:"required,min=1,max=200" doc:"Position title"`
	Location string   `json:"location,omitempty" validate:"omitempty,max=200" doc:"Job location"`
	URL      string   `json:"url,omitempty" validate:"omitempty,url" doc:"Posting URL"`
	Notes    string   `json:"notes,omitempty" validate:"omitempty,max=10000" doc:"Free-form notes"`
	StatusID string   `json:"status_id,omitempty" doc:"Initial status; defaults to applied"`
	TagIDs   []string `json:"tag_ids,omitempty" validate:"omitempty,max=5" doc:"Initial tag IDs"`
}

// CreateJobInput wraps the create job request for Huma.
type CreateJobInput struct {
	UserID string `header:"X-User-ID"`
	Body   CreateJobRequest
}

// JobOutput wraps the job response for Huma.
type JobOutput struct {
	Body JobResponse
}

// GetJobInput contains parameters for getting a job.
type GetJobInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Job ID"`
}

// UpdateJobRequest is the request body for updating a job.
// Absent properties are left untouched.
type UpdateJobRequest struct {
	Company  *string `json:"company,omitempty" validate:"omitempty,min=1,max=200" doc:"Company name"`
	Position *string `json:"position,omitempty" validate:"omitempty,min=1,max=200" doc:"Position title"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=200" doc:"Job location"`
	URL      *string `json:"url,omitempty" validate:"omitempty,url" doc:"Posting URL"`
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=10000" doc:"Free-form notes"`
	StatusID *string `json:"status_id,omitempty" doc:"Status ID"`
}

// UpdateJobInput wraps the update job request for Huma.
type UpdateJobInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Job ID"`
	Body   UpdateJobRequest
}

// DeleteJobInput contains parameters for deleting a job.
type DeleteJobInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Job ID"`
}

// DeleteJobsRequest is the request body for bulk deletion.
type DeleteJobsRequest struct {
	JobIDs []string `json:"job_ids" validate:"required,min=1,max=100" doc:"Job IDs to delete"`
}

// DeleteJobsInput wraps the bulk delete request for Huma.
type DeleteJobsInput struct {
	UserID string `header:"X-User-ID"`
	Body   DeleteJobsRequest
}

// DeleteJobsResponse reports how many jobs a bulk delete removed.
type DeleteJobsResponse struct {
	Deleted int `json:"deleted" doc:"Number of jobs deleted"`
}

// DeleteJobsOutput wraps the bulk delete response for Huma.
type DeleteJobsOutput struct {
	Body DeleteJobsResponse
}

// AddJobTagRequest is the request body for tagging a job.
type AddJobTagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50" doc:"Tag name"`
}

// AddJobTagInput wraps the tag request for Huma.
type AddJobTagInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Job ID"`
	Body   AddJobTagRequest
}

// RemoveJobTagInput contains parameters for untagging a job.
type RemoveJobTagInput struct {
	UserID string `header:"X-User-ID"`
	ID     string `path:"id" doc:"Job ID"`
	TagID  string `path:"tagID" doc:"Tag ID"`
}

// SetJobFieldValueRequest is the request body for writing a field value.
type SetJobFieldValueRequest struct {
	Value any `json:"value" doc:"Value to store; must match the field's type"`
}

// SetJobFieldValueInput wraps the field value request for Huma.
type SetJobFieldValueInput struct {
	UserID  string `header:"X-User-ID"`
	ID      string `path:"id" doc:"Job ID"`
	FieldID string `path:"fieldID" doc:"Field ID"`
	Body    SetJobFieldValueRequest
}

// ClearJobFieldValueInput contains parameters for clearing a field value.
type ClearJobFieldValueInput struct {
	UserID  string `header:"X-User-ID"`
	ID      string `path:"id" doc:"Job ID"`
	FieldID string `path:"fieldID" doc:"Field ID"`
}

// SearchJobsInput contains full-text search parameters.
type SearchJobsInput struct {
	UserID   string   `header:"X-User-ID"`
	Query    string   `query:"q" doc:"Search query"`
	StatusID string   `query:"status" doc:"Restrict to one status ID"`
	TagIDs   []string `query:"tags" doc:"Restrict to jobs carrying all of these tag IDs"`
	Limit    int      `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Maximum hits"`
	Offset   int      `query:"offset" default:"0" minimum:"0" doc:"Hit offset for paging"`
}

// SearchHitResponse is one search result.
type SearchHitResponse struct {
	JobID      string            `json:"job_id" doc:"Matching job ID"`
	Score      float64           `json:"score" doc:"Relevance score"`
	Company    string            `json:"company" doc:"Company name"`
	Position   string            `json:"position" doc:"Position title"`
	StatusID   string            `json:"status_id" doc:"Current status ID"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted match fragments"`
}

// SearchJobsResponse contains search results.
type SearchJobsResponse struct {
	Total uint64              `json:"total" doc:"Total matching jobs"`
	Hits  []SearchHitResponse `json:"hits" doc:"Result page"`
}

// SearchJobsOutput wraps the search response for Huma.
type SearchJobsOutput struct {
	Body SearchJobsResponse
}

func (s *Server) toJobResponse(job *domain.Job) JobResponse {
	return JobResponse{
		ID:           job.ID,
		Company:      job.Company,
		Position:     job.Position,
		Location:     job.Location,
		URL:          job.URL,
		Notes:        job.Notes,
		StatusID:     job.StatusID,
		TagIDs:       job.TagIDs,
		CustomFields: job.CustomFields,
		CreatedAt:    job.CreatedAt.Time,
		UpdatedAt:    job.UpdatedAt.Time,
		CooldownMS:   s.services.Job.EditCooldownRemaining(job).Milliseconds(),
	}
}

// === Handlers ===

func (s *Server) handleListJobs(ctx context.Context, input *ListJobsInput) (*ListJobsOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	jobs, err := s.services.Job.ListJobs(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]JobResponse, len(jobs))
	for i, job := range jobs {
		resp[i] = s.toJobResponse(job)
	}

	return &ListJobsOutput{Body: ListJobsResponse{Jobs: resp}}, nil
}

func (s *Server) handleCreateJob(ctx context.Context, input *CreateJobInput) (*JobOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	job, err := s.services.Job.AddJob(ctx, userID, gateway.SourceUser, service.AddJobParams{
		Company:  input.Body.Company,
		Position: input.Body.Position,
		Location: input.Body.Location,
		URL:      input.Body.URL,
		Notes:    input.Body.Notes,
		StatusID: input.Body.StatusID,
		TagIDs:   input.Body.TagIDs,
	})
	if err != nil {
		return nil, err
	}

	return &JobOutput{Body: s.toJobResponse(job)}, nil
}

func (s *Server) handleGetJob(ctx context.Context, input *GetJobInput) (*JobOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	job, err := s.services.Job.GetJob(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &JobOutput{Body: s.toJobResponse(job)}, nil
}

func (s *Server) handleUpdateJob(ctx context.Context, input *UpdateJobInput) (*JobOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	job, err := s.services.Job.UpdateJob(ctx, userID, gateway.SourceUser, input.ID, service.UpdateJobParams{
		Company:  input.Body.Company,
		Position: input.Body.Position,
		Location: input.Body.Location,
		URL:      input.Body.URL,
		Notes:    input.Body.Notes,
		StatusID: input.Body.StatusID,
	})
	if err != nil {
		return nil, err
	}

	return &JobOutput{Body: s.toJobResponse(job)}, nil
}

func (s *Server) handleDeleteJob(ctx context.Context, input *DeleteJobInput) (*MessageOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Job.DeleteJob(ctx, userID, gateway.SourceUser, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Job deleted"}}, nil
}

func (s *Server) handleDeleteJobs(ctx context.Context, input *DeleteJobsInput) (*DeleteJobsOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	deleted, err := s.services.Job.DeleteJobs(ctx, userID, gateway.SourceUser, input.Body.JobIDs)
	if err != nil {
		return nil, err
	}

	return &DeleteJobsOutput{Body: DeleteJobsResponse{Deleted: deleted}}, nil
}

func (s *Server) handleAddJobTag(ctx context.Context, input *AddJobTagInput) (*TagOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	t, err := s.services.Tag.AddTagToJob(ctx, userID, gateway.SourceUser, input.ID, input.Body.Name)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: toTagResponse(t)}, nil
}

func (s *Server) handleRemoveJobTag(ctx context.Context, input *RemoveJobTagInput) (*MessageOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tag.RemoveTagFromJob(ctx, userID, gateway.SourceUser, input.ID, input.TagID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Tag removed"}}, nil
}

func (s *Server) handleSetJobFieldValue(ctx context.Context, input *SetJobFieldValueInput) (*MessageOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Field.SetJobFieldValue(ctx, userID, gateway.SourceUser, input.ID, input.FieldID, input.Body.Value); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Field value set"}}, nil
}

func (s *Server) handleClearJobFieldValue(ctx context.Context, input *ClearJobFieldValueInput) (*MessageOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Field.ClearJobFieldValue(ctx, userID, gateway.SourceUser, input.ID, input.FieldID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Field value cleared"}}, nil
}

func (s *Server) handleSearchJobs(ctx context.Context, input *SearchJobsInput) (*SearchJobsOutput, error) {
	userID, err := requireUser(input.UserID)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Job.Search(ctx, search.Params{
		UserID:    userID,
		Query:     input.Query,
		StatusID:  input.StatusID,
		TagIDs:    input.TagIDs,
		Limit:     input.Limit,
		Offset:    input.Offset,
		Highlight: true,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHitResponse, len(result.Hits))
	for i, hit := range result.Hits {
		hits[i] = SearchHitResponse{
			JobID:      hit.ID,
			Score:      hit.Score,
			Company:    hit.Company,
			Position:   hit.Position,
			StatusID:   hit.StatusID,
			Highlights: hit.Highlights,
		}
	}

	return &SearchJobsOutput{Body: SearchJobsResponse{Total: result.Total, Hits: hits}}, nil
}
