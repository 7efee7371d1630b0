package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/errors"
	"github.com/applytrack/applytrack-server/internal/gateway"
	"github.com/applytrack/applytrack-server/internal/id"
	"github.com/applytrack/applytrack-server/internal/notify"
	"github.com/applytrack/applytrack-server/internal/search"
	"github.com/applytrack/applytrack-server/internal/store"
)

// TagAttacher applies a tag to a job through the tag layer: placeholder
// creation, the per-job cap, and the recount. Implemented by TagService.
type TagAttacher interface {
	AttachTag(ctx context.Context, userID, jobID, rawName string) (*domain.Tag, error)
}

// StatusResolver reports whether a status id is known to the pipeline.
// Implemented by StatusService.
type StatusResolver interface {
	StatusExists(ctx context.Context, userID, statusID string) (bool, error)
}

// JobService manages job records: creation with defaults, soft deletion,
// bulk deletion, search, and the advisory edit cool-down.
type JobService struct {
	store        *store.Store
	gateway      *gateway.Gateway
	notify       *notify.Center
	search       *search.Index
	tags         TagAttacher
	statuses     StatusResolver
	logger       *slog.Logger
	editCooldown time.Duration
}

// NewJobService creates a new job service. searchIndex may be nil in tests
// that don't exercise search.
func NewJobService(st *store.Store, gw *gateway.Gateway, nc *notify.Center, searchIndex *search.Index, tags TagAttacher, statuses StatusResolver, logger *slog.Logger, editCooldown time.Duration) *JobService {
	return &JobService{
		store:        st,
		gateway:      gw,
		notify:       nc,
		search:       searchIndex,
		tags:         tags,
		statuses:     statuses,
		logger:       logger,
		editCooldown: editCooldown,
	}
}

// AddJobParams carries the inputs for AddJob.
type AddJobParams struct {
	Company  string
	Position string
	Location string
	URL      string
	Notes    string
	StatusID string
	TagIDs   []string
}

// AddJob creates a job. A missing status defaults to applied; adding a job
// means you applied for it.
func (s *JobService) AddJob(ctx context.Context, userID, source string, params AddJobParams) (*domain.Job, error) {
	if err := s.gateway.Allow(userID, source); err != nil {
		return nil, err
	}

	if params.Company == "" {
		return nil, errors.Validation("company is required")
	}
	if params.Position == "" {
		return nil, errors.Validation("position is required")
	}

	statusID := params.StatusID
	if statusID == "" {
		statusID = domain.StatusIDApplied
	}
	if statusID == domain.StatusIDDeleted {
		return nil, errors.Validation("cannot create a job in the deleted status")
	}
	known, err := s.statuses.StatusExists(ctx, userID, statusID)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, errors.Validationf("unknown status %q", statusID)
	}

	jobID, err := id.Generate("job")
	if err != nil {
		return nil, err
	}

	job := &domain.Job{
		ID:       jobID,
		Company:  params.Company,
		Position: params.Position,
		Location: params.Location,
		URL:      params.URL,
		Notes:    params.Notes,
		StatusID: statusID,
	}
	job.InitTimestamps()

	if err := s.store.CreateJob(ctx, userID, job); err != nil {
		return nil, err
	}

	// Initial tags go through the tag layer so placeholders, the cap, and
	// the cached counts stay honest.
	for _, rawTag := range params.TagIDs {
		if _, err := s.tags.AttachTag(ctx, userID, job.ID, rawTag); err != nil {
			return nil, err
		}
	}
	if len(params.TagIDs) > 0 {
		return s.GetJob(ctx, userID, job.ID)
	}
	return job, nil
}

// GetJob returns a live job. Soft-deleted jobs report not found.
func (s *JobService) GetJob(ctx context.Context, userID, jobID string) (*domain.Job, error) {
	job, err := s.store.GetJob(ctx, userID, jobID)
	if errors.Is(err, store.ErrJobNotFound) {
		return nil, errors.NotFoundf("job %q not found", jobID)
	}
	return job, err
}

// ListJobs returns the user's live jobs, newest first.
func (s *JobService) ListJobs(ctx context.Context, userID string) ([]*domain.Job, error) {
	return s.store.ListJobs(ctx, userID)
}

// JobsWithTag returns the live jobs carrying a tag.
func (s *JobService) JobsWithTag(ctx context.Context, userID, tagID string) ([]*domain.Job, error) {
	return s.store.ListJobsWithTag(ctx, userID, tagID)
}

// JobsWithStatus returns the live jobs in a status.
func (s *JobService) JobsWithStatus(ctx context.Context, userID, statusID string) ([]*domain.Job, error) {
	return s.store.ListJobsWithStatus(ctx, userID, statusID)
}

// UpdateJobParams carries the editable parts of a job. Nil pointers leave
// the current value untouched.
type UpdateJobParams struct {
	Company  *string
	Position *string
	Location *string
	URL      *string
	Notes    *string
	StatusID *string
}

// UpdateJob edits a job and stamps UpdatedAt, which restarts the advisory
// edit cool-down clients observe.
func (s *JobService) UpdateJob(ctx context.Context, userID, source, jobID string, params UpdateJobParams) (*domain.Job, error) {
	if err := s.gateway.Allow(userID, source); err != nil {
		return nil, err
	}

	job, err := s.GetJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	if params.Company != nil {
		job.Company = *params.Company
	}
	if params.Position != nil {
		job.Position = *params.Position
	}
	if params.Location != nil {
		job.Location = *params.Location
	}
	if params.URL != nil {
		job.URL = *params.URL
	}
	if params.Notes != nil {
		job.Notes = *params.Notes
	}
	if params.StatusID != nil {
		if *params.StatusID == domain.StatusIDDeleted {
			return nil, errors.Validation("use delete to remove a job")
		}
		known, err := s.statuses.StatusExists(ctx, userID, *params.StatusID)
		if err != nil {
			return nil, err
		}
		if !known {
			return nil, errors.Validationf("unknown status %q", *params.StatusID)
		}
		job.StatusID = *params.StatusID
	}
	job.Touch()

	if err := s.store.SaveJob(ctx, userID, job); err != nil {
		return nil, err
	}
	return job, nil
}

// DeleteJob soft-deletes a job. The record survives under the deleted
// sentinel status; an undo notification restores it.
func (s *JobService) DeleteJob(ctx context.Context, userID, source, jobID string) error {
	if err := s.gateway.Allow(userID, source); err != nil {
		return err
	}

	job, err := s.GetJob(ctx, userID, jobID)
	if err != nil {
		return err
	}
	previousStatus := job.StatusID

	if _, err := s.store.SoftDeleteJob(ctx, userID, jobID); err != nil {
		return err
	}

	s.notify.Push(userID, fmt.Sprintf("Job at %s deleted", job.Company), notify.LevelInfo,
		func(undoCtx context.Context) error {
			return s.restoreJob(undoCtx, userID, jobID, previousStatus)
		})

	s.logger.Info("job deleted",
		slog.String("user_id", userID),
		slog.String("job_id", jobID))
	return nil
}

// DeleteJobs soft-deletes several jobs one at a time. Each record that was
// actually deleted joins a single undo notification; ids that fail to
// resolve are skipped rather than aborting the batch.
func (s *JobService) DeleteJobs(ctx context.Context, userID, source string, jobIDs []string) (int, error) {
	if err := s.gateway.Allow(userID, source); err != nil {
		return 0, err
	}

	type deletedJob struct {
		id             string
		previousStatus string
	}

	var deleted []deletedJob
	for _, jobID := range jobIDs {
		job, err := s.store.GetJob(ctx, userID, jobID)
		if errors.Is(err, store.ErrJobNotFound) {
			continue
		}
		if err != nil {
			return len(deleted), err
		}

		if _, err := s.store.SoftDeleteJob(ctx, userID, jobID); err != nil {
			return len(deleted), err
		}
		deleted = append(deleted, deletedJob{id: jobID, previousStatus: job.StatusID})
	}

	if len(deleted) > 0 {
		s.notify.Push(userID, fmt.Sprintf("%d jobs deleted", len(deleted)), notify.LevelInfo,
			func(undoCtx context.Context) error {
				for _, d := range deleted {
					if err := s.restoreJob(undoCtx, userID, d.id, d.previousStatus); err != nil {
						return err
					}
				}
				return nil
			})
	}

	s.logger.Info("jobs deleted",
		slog.String("user_id", userID),
		slog.Int("requested", len(jobIDs)),
		slog.Int("deleted", len(deleted)))
	return len(deleted), nil
}

// restoreJob is the inverse of a soft delete: put the job back in its
// previous status and clear the deletion stamp.
func (s *JobService) restoreJob(ctx context.Context, userID, jobID, previousStatus string) error {
	job, err := s.store.GetJobAny(ctx, userID, jobID)
	if err != nil {
		return err
	}
	if !job.IsDeleted() {
		return nil
	}

	job.StatusID = previousStatus
	job.DeletedAt = nil
	job.Touch()
	return s.store.SaveJob(ctx, userID, job)
}

// EditCooldownRemaining reports how much of the advisory cool-down is left
// for a job. Zero means clients should enable their edit controls.
func (s *JobService) EditCooldownRemaining(job *domain.Job) time.Duration {
	return job.EditCooldownRemaining(s.editCooldown)
}

// Search runs a full-text query over the user's live jobs.
func (s *JobService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if s.search == nil {
		return nil, errors.Internal("search is not configured")
	}
	return s.search.Search(ctx, params)
}

// ReindexJobs rebuilds a user's slice of the search index from the store.
// Run at startup after a mapping change.
func (s *JobService) ReindexJobs(ctx context.Context, userID string) error {
	if s.search == nil {
		return nil
	}

	jobs, err := s.store.ListJobs(ctx, userID)
	if err != nil {
		return err
	}
	return s.search.IndexJobs(ctx, userID, jobs)
}
