package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/store"
)

func newTestJob(id, company string) *domain.Job {
	job := &domain.Job{
		ID:       id,
		Company:  company,
		Position: "Backend Engineer",
		StatusID: domain.StatusIDApplied,
	}
	job.InitTimestamps()
	return job
}

func TestJobCRUD(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	job := newTestJob("job-1", "Acme")
	require.NoError(t, s.CreateJob(ctx, "user-1", job))

	// Duplicate create fails.
	assert.ErrorIs(t, s.CreateJob(ctx, "user-1", job), store.ErrJobExists)

	retrieved, err := s.GetJob(ctx, "user-1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", retrieved.Company)
	assert.Equal(t, domain.StatusIDApplied, retrieved.StatusID)

	retrieved.Position = "Staff Engineer"
	require.NoError(t, s.SaveJob(ctx, "user-1", retrieved))

	retrieved, err = s.GetJob(ctx, "user-1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", retrieved.Position)

	// Other users never see it.
	_, err = s.GetJob(ctx, "user-2", "job-1")
	assert.ErrorIs(t, err, store.ErrJobNotFound)
}

func TestJobSoftDeleteHidesRecord(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateJob(ctx, "user-1", newTestJob("job-1", "Acme")))
	require.NoError(t, s.CreateJob(ctx, "user-1", newTestJob("job-2", "Globex")))

	deleted, err := s.SoftDeleteJob(ctx, "user-1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIDDeleted, deleted.StatusID)

	// Hidden from fetch and listing.
	_, err = s.GetJob(ctx, "user-1", "job-1")
	assert.ErrorIs(t, err, store.ErrJobNotFound)

	jobs, err := s.ListJobs(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-2", jobs[0].ID)

	// Still on disk.
	raw, err := s.GetJobAny(ctx, "user-1", "job-1")
	require.NoError(t, err)
	assert.True(t, raw.IsDeleted())

	all, err := s.ListAllJobs(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Deleting a deleted job reports not found.
	_, err = s.SoftDeleteJob(ctx, "user-1", "job-1")
	assert.ErrorIs(t, err, store.ErrJobNotFound)
}

func TestUpdateJobValueDottedPath(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateJob(ctx, "user-1", newTestJob("job-1", "Acme")))

	require.NoError(t, s.UpdateJobValue(ctx, "user-1", "job-1", "custom_fields.salary-range", "100k-120k"))
	require.NoError(t, s.UpdateJobValue(ctx, "user-1", "job-1", "custom_fields.remote", true))

	job, err := s.GetJob(ctx, "user-1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, "100k-120k", job.CustomFields["salary-range"])
	assert.Equal(t, true, job.CustomFields["remote"])

	require.NoError(t, s.DeleteJobValue(ctx, "user-1", "job-1", "custom_fields.salary-range"))

	job, err = s.GetJob(ctx, "user-1", "job-1")
	require.NoError(t, err)
	assert.NotContains(t, job.CustomFields, "salary-range")
	assert.Contains(t, job.CustomFields, "remote")

	// Missing path is a no-op, missing job is an error.
	assert.NoError(t, s.DeleteJobValue(ctx, "user-1", "job-1", "custom_fields.nope"))
	assert.ErrorIs(t, s.UpdateJobValue(ctx, "user-1", "missing", "notes", "x"), store.ErrJobNotFound)
}

func TestCountJobsWithTagExcludesDeleted(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	j1 := newTestJob("job-1", "Acme")
	j1.TagIDs = []string{"remote"}
	j2 := newTestJob("job-2", "Globex")
	j2.TagIDs = []string{"remote", "urgent"}
	j3 := newTestJob("job-3", "Initech")

	require.NoError(t, s.CreateJob(ctx, "user-1", j1))
	require.NoError(t, s.CreateJob(ctx, "user-1", j2))
	require.NoError(t, s.CreateJob(ctx, "user-1", j3))

	count, err := s.CountJobsWithTag(ctx, "user-1", "remote")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = s.SoftDeleteJob(ctx, "user-1", "job-2")
	require.NoError(t, err)

	count, err = s.CountJobsWithTag(ctx, "user-1", "remote")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	jobs, err := s.ListJobsWithTag(ctx, "user-1", "remote")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-1", jobs[0].ID)
}

func TestListJobsWithStatus(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	j1 := newTestJob("job-1", "Acme")
	j2 := newTestJob("job-2", "Globex")
	j2.StatusID = "interview"

	require.NoError(t, s.CreateJob(ctx, "user-1", j1))
	require.NoError(t, s.CreateJob(ctx, "user-1", j2))

	jobs, err := s.ListJobsWithStatus(ctx, "user-1", "interview")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-2", jobs[0].ID)
}
