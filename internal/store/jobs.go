package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/events"
)

// Job errors.
var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobExists   = errors.New("job already exists")
)

// CreateJob stores a new job for the user.
func (s *Store) CreateJob(ctx context.Context, userID string, job *domain.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := jobKey(userID, job.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrJobExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err := json.Marshal(job)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	s.emit(events.NewJobCreatedEvent(userID, job))
	s.indexJob(ctx, userID, job)
	return nil
}

// GetJob retrieves a live job by id. Soft-deleted jobs are reported as
// missing.
func (s *Store) GetJob(ctx context.Context, userID, jobID string) (*domain.Job, error) {
	job, err := s.GetJobAny(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if job.IsDeleted() {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// GetJobAny retrieves a job by id regardless of deletion state.
// Used by undo restoration and data repair.
func (s *Store) GetJobAny(ctx context.Context, userID, jobID string) (*domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var job domain.Job
	err := s.getJSON(jobKey(userID, jobID), &job)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs returns the user's live jobs ordered by creation time
// (newest first). Soft-deleted jobs are excluded.
func (s *Store) ListJobs(ctx context.Context, userID string) ([]*domain.Job, error) {
	jobs, err := s.listJobs(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// ListAllJobs returns every stored job including soft-deleted ones.
// Used for data repair and export.
func (s *Store) ListAllJobs(ctx context.Context, userID string) ([]*domain.Job, error) {
	return s.listJobs(ctx, userID, true)
}

func (s *Store) listJobs(ctx context.Context, userID string, includeDeleted bool) ([]*domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var jobs []*domain.Job
	err := s.iteratePrefix(jobPrefix(userID), func(val []byte) error {
		var job domain.Job
		if err := json.Unmarshal(val, &job); err != nil {
			// Skip undecodable documents rather than failing the listing.
			if s.logger != nil {
				s.logger.Warn("skipping corrupt job document", "user_id", userID, "error", err)
			}
			return nil
		}
		if !includeDeleted && job.IsDeleted() {
			return nil
		}
		jobs = append(jobs, &job)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Time.After(jobs[j].CreatedAt.Time)
	})

	return jobs, nil
}

// SaveJob writes an updated job back and broadcasts the change.
func (s *Store) SaveJob(ctx context.Context, userID string, job *domain.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.setJSON(jobKey(userID, job.ID), job); err != nil {
		return err
	}

	s.emit(events.NewJobUpdatedEvent(userID, job))
	s.indexJob(ctx, userID, job)
	return nil
}

// SoftDeleteJob flips a job to the deleted sentinel status. The record stays
// on disk; listings and fetches stop returning it.
func (s *Store) SoftDeleteJob(ctx context.Context, userID, jobID string) (*domain.Job, error) {
	job, err := s.GetJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	job.SoftDelete()
	if err := s.setJSON(jobKey(userID, jobID), job); err != nil {
		return nil, err
	}

	s.emit(events.NewJobDeletedEvent(userID, jobID, job.DeletedAt.Time))
	if s.searchIndexer != nil {
		if err := s.searchIndexer.DeleteJob(ctx, userID, jobID); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove job from search index", "job_id", jobID, "error", err)
		}
	}
	return job, nil
}

// UpdateJobValue sets a single value inside a job document by dotted path,
// e.g. "custom_fields.salary-range". The document's timestamps are not
// touched; callers stamp the job before or after as appropriate.
func (s *Store) UpdateJobValue(ctx context.Context, userID, jobID, path string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.updateDocField(jobKey(userID, jobID), path, value)
	if errors.Is(err, ErrDocumentNotFound) {
		return ErrJobNotFound
	}
	return err
}

// DeleteJobValue removes a single value inside a job document by dotted
// path. Missing paths are a no-op.
func (s *Store) DeleteJobValue(ctx context.Context, userID, jobID, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.deleteDocField(jobKey(userID, jobID), path)
	if errors.Is(err, ErrDocumentNotFound) {
		return ErrJobNotFound
	}
	return err
}

// CountJobsWithTag recounts how many live jobs carry the tag. This is the
// authoritative tally; cached tag counts are overwritten with it rather
// than incremented.
func (s *Store) CountJobsWithTag(ctx context.Context, userID, tagID string) (int, error) {
	jobs, err := s.ListJobs(ctx, userID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, job := range jobs {
		if job.HasTag(tagID) {
			count++
		}
	}
	return count, nil
}

// ListJobsWithTag returns the live jobs carrying the given tag.
func (s *Store) ListJobsWithTag(ctx context.Context, userID, tagID string) ([]*domain.Job, error) {
	jobs, err := s.ListJobs(ctx, userID)
	if err != nil {
		return nil, err
	}

	matched := make([]*domain.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.HasTag(tagID) {
			matched = append(matched, job)
		}
	}
	return matched, nil
}

// ListJobsWithStatus returns the live jobs in the given status.
func (s *Store) ListJobsWithStatus(ctx context.Context, userID, statusID string) ([]*domain.Job, error) {
	jobs, err := s.ListJobs(ctx, userID)
	if err != nil {
		return nil, err
	}

	matched := make([]*domain.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.StatusID == statusID {
			matched = append(matched, job)
		}
	}
	return matched, nil
}

// indexJob pushes a job into the search index, logging failures instead of
// propagating them. Search staleness must not fail the write.
func (s *Store) indexJob(ctx context.Context, userID string, job *domain.Job) {
	if s.searchIndexer == nil {
		return
	}
	if err := s.searchIndexer.IndexJob(ctx, userID, job); err != nil && s.logger != nil {
		s.logger.Warn("failed to index job", "job_id", job.ID, "error", err)
	}
}
