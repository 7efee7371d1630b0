package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/store"
)

func newTestStatus(id, name string) *domain.JobStatus {
	status := &domain.JobStatus{ID: id, Name: name, Deletable: true}
	status.InitTimestamps()
	return status
}

func TestCustomStatusCRUD(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateStatus(ctx, "user-1", newTestStatus("dream-job", "Dream Job")))
	assert.ErrorIs(t, s.CreateStatus(ctx, "user-1", newTestStatus("dream-job", "Again")), store.ErrStatusExists)

	status, err := s.GetCustomStatus(ctx, "user-1", "dream-job")
	require.NoError(t, err)
	assert.Equal(t, "Dream Job", status.Name)
	assert.True(t, status.Deletable)

	status.Color = "#00ff00"
	require.NoError(t, s.SaveStatus(ctx, "user-1", status))

	statuses, err := s.ListCustomStatuses(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "#00ff00", statuses["dream-job"].Color)

	require.NoError(t, s.DeleteStatus(ctx, "user-1", "dream-job", domain.StatusIDNotAllowed))
	_, err = s.GetCustomStatus(ctx, "user-1", "dream-job")
	assert.ErrorIs(t, err, store.ErrStatusNotFound)
}

func TestDeleteAllCustomStatuses(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateStatus(ctx, "user-1", newTestStatus("dream-job", "Dream Job")))
	require.NoError(t, s.CreateStatus(ctx, "user-1", newTestStatus("ghosted", "Ghosted")))
	// Another user's statuses survive the reset.
	require.NoError(t, s.CreateStatus(ctx, "user-2", newTestStatus("ghosted", "Ghosted")))

	require.NoError(t, s.DeleteAllCustomStatuses(ctx, "user-1"))

	statuses, err := s.ListCustomStatuses(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, statuses)

	others, err := s.ListCustomStatuses(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, others, 1)
}
