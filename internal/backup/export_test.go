package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "applytrack-backup-test-*")
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "test.db"), nil, store.NewNoopEmitter())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	})
	return st
}

func TestExportCollectsUserData(t *testing.T) {
	st := setupTestStore(t)
	svc := NewService(st, "test", nil)
	ctx := context.Background()

	job := &domain.Job{ID: "job-1", Company: "Acme", Position: "Engineer", StatusID: domain.StatusIDApplied}
	job.InitTimestamps()
	require.NoError(t, st.CreateJob(ctx, "user-1", job))

	tag := &domain.Tag{ID: "remote", Name: "Remote"}
	tag.InitTimestamps()
	require.NoError(t, st.CreateTag(ctx, "user-1", tag))

	snap, err := svc.Export(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, SnapshotVersion, snap.Version)
	assert.Equal(t, "user-1", snap.UserID)
	require.Len(t, snap.Jobs, 1)
	assert.Equal(t, "Acme", snap.Jobs[0].Company)
	require.Len(t, snap.Tags, 1)
	assert.Equal(t, "remote", snap.Tags[0].ID)
	assert.Empty(t, snap.Statuses)
	assert.Nil(t, snap.Settings)
}

func TestExportIncludesSoftDeletedJobs(t *testing.T) {
	st := setupTestStore(t)
	svc := NewService(st, "test", nil)
	ctx := context.Background()

	job := &domain.Job{ID: "job-1", Company: "Acme", Position: "Engineer", StatusID: domain.StatusIDApplied}
	job.InitTimestamps()
	require.NoError(t, st.CreateJob(ctx, "user-1", job))

	_, err := st.SoftDeleteJob(ctx, "user-1", "job-1")
	require.NoError(t, err)

	snap, err := svc.Export(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, snap.Jobs, 1)
	assert.True(t, snap.Jobs[0].IsDeleted())
}

func TestExportScopedToUser(t *testing.T) {
	st := setupTestStore(t)
	svc := NewService(st, "test", nil)
	ctx := context.Background()

	tag := &domain.Tag{ID: "remote", Name: "Remote"}
	tag.InitTimestamps()
	require.NoError(t, st.CreateTag(ctx, "user-1", tag))

	snap, err := svc.Export(ctx, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, snap.Jobs)
	assert.Empty(t, snap.Tags)
}
