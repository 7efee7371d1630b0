package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tagcolor "github.com/applytrack/applytrack-server/internal/color"
	"github.com/applytrack/applytrack-server/internal/errors"
	"github.com/applytrack/applytrack-server/internal/gateway"
)

const user = "user-1"

func TestCreateTagDerivesID(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()

	tag, err := env.tags.CreateTag(ctx, user, gateway.SourceUser, "Remote Work", "#2196f3")
	require.NoError(t, err)
	assert.Equal(t, "remote-work", tag.ID)
	assert.Equal(t, "Remote Work", tag.Name)
	assert.Zero(t, tag.Count)

	// Names normalizing to the same id are duplicates.
	_, err = env.tags.CreateTag(ctx, user, gateway.SourceUser, "  remote   WORK ", "")
	assert.True(t, errors.Is(err, errors.ErrAlreadyExists))

	// Names that normalize to nothing are rejected.
	_, err = env.tags.CreateTag(ctx, user, gateway.SourceUser, "!!!", "")
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestCreateTagDefaultsColor(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()

	tag, err := env.tags.CreateTag(ctx, user, gateway.SourceUser, "Urgent", "")
	require.NoError(t, err)
	assert.Equal(t, tagcolor.ForTag("urgent"), tag.Color)

	// An explicit color wins.
	tag, err = env.tags.CreateTag(ctx, user, gateway.SourceUser, "Remote", "#2196f3")
	require.NoError(t, err)
	assert.Equal(t, "#2196f3", tag.Color)
}

func TestAddTagToJobCreatesPlaceholderAndRecounts(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()
	job := env.addJob(t, user, "Acme")

	// Tagging with an unknown name creates the tag on the fly.
	tag, err := env.tags.AddTagToJob(ctx, user, gateway.SourceUser, job.ID, "Urgent")
	require.NoError(t, err)
	assert.Equal(t, "urgent", tag.ID)
	assert.Equal(t, 1, tag.Count)

	// Tagging again is idempotent.
	tag, err = env.tags.AddTagToJob(ctx, user, gateway.SourceUser, job.ID, "urgent")
	require.NoError(t, err)
	assert.Equal(t, 1, tag.Count)

	// A second job pushes the recomputed count to 2.
	job2 := env.addJob(t, user, "Globex")
	tag, err = env.tags.AddTagToJob(ctx, user, gateway.SourceUser, job2.ID, "Urgent")
	require.NoError(t, err)
	assert.Equal(t, 2, tag.Count)
}

func TestAddTagToJobEnforcesCap(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()
	job := env.addJob(t, user, "Acme")

	for _, name := range []string{"one", "two", "three", "four", "five"} {
		_, err := env.tags.AddTagToJob(ctx, user, gateway.SourceUser, job.ID, name)
		require.NoError(t, err)
	}

	_, err := env.tags.AddTagToJob(ctx, user, gateway.SourceUser, job.ID, "six")
	assert.True(t, errors.Is(err, errors.ErrTagLimit))

	// Re-adding an existing tag still works at the cap (no-op).
	_, err = env.tags.AddTagToJob(ctx, user, gateway.SourceUser, job.ID, "five")
	assert.NoError(t, err)
}

func TestCreateTagUndoRemovesTag(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()

	_, err := env.tags.CreateTag(ctx, user, gateway.SourceUser, "Urgent", "")
	require.NoError(t, err)

	n := env.notify.Current(user)
	require.NotNil(t, n)
	require.True(t, n.Undoable)
	require.NoError(t, env.notify.Undo(ctx, user, n.ID))

	_, err = env.tags.GetTag(ctx, user, "urgent")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestAddTagToJobUndoDetaches(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()
	job := env.addJob(t, user, "Acme")

	_, err := env.tags.AddTagToJob(ctx, user, gateway.SourceUser, job.ID, "remote")
	require.NoError(t, err)

	n := env.notify.Current(user)
	require.NotNil(t, n)
	require.True(t, n.Undoable)
	require.NoError(t, env.notify.Undo(ctx, user, n.ID))

	untagged, err := env.jobs.GetJob(ctx, user, job.ID)
	require.NoError(t, err)
	assert.False(t, untagged.HasTag("remote"))

	// The detach dropped the count to zero, so the record went with it.
	_, err = env.tags.GetTag(ctx, user, "remote")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestRemoveTagFromJobUndoReattaches(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()
	job := env.addJob(t, user, "Acme")

	_, err := env.tags.AddTagToJob(ctx, user, gateway.SourceUser, job.ID, "Remote")
	require.NoError(t, err)
	require.NoError(t, env.tags.RemoveTagFromJob(ctx, user, gateway.SourceUser, job.ID, "remote"))

	ns := env.notify.List(user)
	require.NotEmpty(t, ns)
	n := ns[len(ns)-1]
	require.True(t, n.Undoable)
	require.NoError(t, env.notify.Undo(ctx, user, n.ID))

	retagged, err := env.jobs.GetJob(ctx, user, job.ID)
	require.NoError(t, err)
	assert.True(t, retagged.HasTag("remote"))

	// The record came back with its old name and a fresh count.
	restored, err := env.tags.GetTag(ctx, user, "remote")
	require.NoError(t, err)
	assert.Equal(t, "Remote", restored.Name)
	assert.Equal(t, 1, restored.Count)
}

func TestRemoveLastUseDeletesTag(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()
	job := env.addJob(t, user, "Acme")

	_, err := env.tags.AddTagToJob(ctx, user, gateway.SourceUser, job.ID, "remote")
	require.NoError(t, err)

	require.NoError(t, env.tags.RemoveTagFromJob(ctx, user, gateway.SourceUser, job.ID, "remote"))

	// Count hit zero, so the tag record is gone.
	_, err = env.tags.GetTag(ctx, user, "remote")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// Removing again is a no-op.
	assert.NoError(t, env.tags.RemoveTagFromJob(ctx, user, gateway.SourceUser, job.ID, "remote"))
}

func TestDeleteTagStripsFromJobs(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()
	job1 := env.addJob(t, user, "Acme")
	job2 := env.addJob(t, user, "Globex")

	_, err := env.tags.AddTagToJob(ctx, user, gateway.SourceUser, job1.ID, "remote")
	require.NoError(t, err)
	_, err = env.tags.AddTagToJob(ctx, user, gateway.SourceUser, job2.ID, "remote")
	require.NoError(t, err)

	require.NoError(t, env.tags.DeleteTag(ctx, user, gateway.SourceUser, "remote"))

	// No job still references the dangling id.
	for _, id := range []string{job1.ID, job2.ID} {
		job, err := env.jobs.GetJob(ctx, user, id)
		require.NoError(t, err)
		assert.False(t, job.HasTag("remote"))
	}

	_, err = env.tags.GetTag(ctx, user, "remote")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestDeleteTagUndoRestoresAssociations(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()
	job := env.addJob(t, user, "Acme")

	_, err := env.tags.AddTagToJob(ctx, user, gateway.SourceUser, job.ID, "remote")
	require.NoError(t, err)
	require.NoError(t, env.tags.DeleteTag(ctx, user, gateway.SourceUser, "remote"))

	// The attach pushed a notification too; the delete is the newest.
	ns := env.notify.List(user)
	require.NotEmpty(t, ns)
	n := ns[len(ns)-1]
	require.True(t, n.Undoable)
	require.NoError(t, env.notify.Undo(ctx, user, n.ID))

	tag, err := env.tags.GetTag(ctx, user, "remote")
	require.NoError(t, err)
	assert.Equal(t, 1, tag.Count)

	restored, err := env.jobs.GetJob(ctx, user, job.ID)
	require.NoError(t, err)
	assert.True(t, restored.HasTag("remote"))
}

func TestRecountExcludesDeletedJobs(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()
	job1 := env.addJob(t, user, "Acme")
	job2 := env.addJob(t, user, "Globex")

	_, err := env.tags.AddTagToJob(ctx, user, gateway.SourceUser, job1.ID, "remote")
	require.NoError(t, err)
	_, err = env.tags.AddTagToJob(ctx, user, gateway.SourceUser, job2.ID, "remote")
	require.NoError(t, err)

	require.NoError(t, env.jobs.DeleteJob(ctx, user, gateway.SourceUser, job2.ID))
	require.NoError(t, env.tags.RecountTag(ctx, user, "remote"))

	tag, err := env.tags.GetTag(ctx, user, "remote")
	require.NoError(t, err)
	assert.Equal(t, 1, tag.Count)
}

func TestRecountAllHealsDriftedCounts(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()
	job := env.addJob(t, user, "Acme")

	tag, err := env.tags.AddTagToJob(ctx, user, gateway.SourceUser, job.ID, "remote")
	require.NoError(t, err)

	// Write drift directly, as a buggy client would.
	tag.Count = 40
	require.NoError(t, env.store.SaveTag(ctx, user, tag))

	require.NoError(t, env.tags.RecountAllTags(ctx, user))

	healed, err := env.tags.GetTag(ctx, user, "remote")
	require.NoError(t, err)
	assert.Equal(t, 1, healed.Count)
}

func TestListTagsHealsDriftedCounts(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()
	job := env.addJob(t, user, "Acme")

	tag, err := env.tags.AddTagToJob(ctx, user, gateway.SourceUser, job.ID, "remote")
	require.NoError(t, err)

	tag.Count = 40
	require.NoError(t, env.store.SaveTag(ctx, user, tag))

	// Listing recounts on the way out, so drift never reaches a client.
	tags, err := env.tags.ListTags(ctx, user)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, 1, tags[0].Count)
}

func TestGatewayDebouncesTagMutations(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	// Swap in a gateway with a real interval.
	logger := slog.New(slog.DiscardHandler)
	env.tags.gateway = gateway.New(500*time.Millisecond, []string{gateway.SourceSystem}, logger)

	ctx := context.Background()

	_, err := env.tags.CreateTag(ctx, user, gateway.SourceUser, "first", "")
	require.NoError(t, err)

	// Back-to-back user mutation is rejected before any write happens.
	_, err = env.tags.CreateTag(ctx, user, gateway.SourceUser, "second", "")
	assert.True(t, errors.Is(err, errors.ErrRateLimited))

	_, getErr := env.tags.GetTag(ctx, user, "second")
	assert.True(t, errors.Is(getErr, errors.ErrNotFound))

	// System-sourced cascades bypass the debounce.
	_, err = env.tags.CreateTag(ctx, user, gateway.SourceSystem, "second", "")
	assert.NoError(t, err)
}
