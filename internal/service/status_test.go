package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/errors"
	"github.com/applytrack/applytrack-server/internal/gateway"
)

func TestListStatusesReturnsDefaultsForNewUser(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	statuses, err := env.statuses.ListStatuses(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, statuses, len(domain.DefaultStatuses))

	for i, seed := range domain.DefaultStatuses {
		assert.Equal(t, seed.ID, statuses[i].ID)
		assert.False(t, statuses[i].Deletable)
	}
}

func TestCreateStatusAppearsInMergedView(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()

	status, err := env.statuses.CreateStatus(ctx, user, gateway.SourceUser, "Phone Screen", "#ab47bc")
	require.NoError(t, err)
	assert.Equal(t, "phone-screen", status.ID)
	assert.True(t, status.Deletable)

	statuses, err := env.statuses.ListStatuses(ctx, user)
	require.NoError(t, err)
	require.Len(t, statuses, len(domain.DefaultStatuses)+1)
	assert.Equal(t, "phone-screen", statuses[len(statuses)-1].ID)
}

func TestCustomStatusOverridesDefault(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()

	// Name normalizes to the seeded "applied" id, so the custom shadows it.
	custom, err := env.statuses.CreateStatus(ctx, user, gateway.SourceUser, "Applied", "#000000")
	require.NoError(t, err)
	require.Equal(t, domain.StatusIDApplied, custom.ID)

	statuses, err := env.statuses.ListStatuses(ctx, user)
	require.NoError(t, err)
	require.Len(t, statuses, len(domain.DefaultStatuses))

	resolved, err := env.statuses.GetStatus(ctx, user, domain.StatusIDApplied)
	require.NoError(t, err)
	assert.Equal(t, "#000000", resolved.Color)
	assert.True(t, resolved.Deletable)
}

func TestReservedStatusNameRejected(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	_, err := env.statuses.CreateStatus(context.Background(), user, gateway.SourceUser, "Deleted", "")
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestDefaultStatusesAreImmutable(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()

	_, err := env.statuses.UpdateStatus(ctx, user, gateway.SourceUser, domain.StatusIDApplied, "Renamed", "")
	assert.True(t, errors.Is(err, errors.ErrImmutable))

	err = env.statuses.DeleteStatus(ctx, user, gateway.SourceUser, "interview")
	assert.True(t, errors.Is(err, errors.ErrImmutable))
}

func TestGetStatusFallsBackForUnknownID(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	status, err := env.statuses.GetStatus(context.Background(), user, "no-such-status")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIDNotApplied, status.ID)
}

func TestDeleteStatusReassignsJobs(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()

	_, err := env.statuses.CreateStatus(ctx, user, gateway.SourceUser, "Ghosted", "")
	require.NoError(t, err)

	job := env.addJob(t, user, "Acme")
	ghosted := "ghosted"
	_, err = env.jobs.UpdateJob(ctx, user, gateway.SourceUser, job.ID, UpdateJobParams{StatusID: &ghosted})
	require.NoError(t, err)

	require.NoError(t, env.statuses.DeleteStatus(ctx, user, gateway.SourceUser, "ghosted"))

	moved, err := env.jobs.GetJob(ctx, user, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIDNotAllowed, moved.StatusID)

	// The record is gone; resolution falls back instead of erroring.
	resolved, err := env.statuses.GetStatus(ctx, user, "ghosted")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIDNotApplied, resolved.ID)
}

func TestDeleteStatusUndoRestoresJobs(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()

	_, err := env.statuses.CreateStatus(ctx, user, gateway.SourceUser, "Ghosted", "")
	require.NoError(t, err)

	jobA := env.addJob(t, user, "Acme")
	jobB := env.addJob(t, user, "Globex")
	ghosted := "ghosted"
	for _, id := range []string{jobA.ID, jobB.ID} {
		_, err = env.jobs.UpdateJob(ctx, user, gateway.SourceUser, id, UpdateJobParams{StatusID: &ghosted})
		require.NoError(t, err)
	}

	require.NoError(t, env.statuses.DeleteStatus(ctx, user, gateway.SourceUser, "ghosted"))

	// The user moves one job before undoing; that move must survive.
	interview := "interview"
	_, err = env.jobs.UpdateJob(ctx, user, gateway.SourceUser, jobB.ID, UpdateJobParams{StatusID: &interview})
	require.NoError(t, err)

	n := env.notify.Current(user)
	require.NotNil(t, n)
	require.NoError(t, env.notify.Undo(ctx, user, n.ID))

	restoredA, err := env.jobs.GetJob(ctx, user, jobA.ID)
	require.NoError(t, err)
	assert.Equal(t, "ghosted", restoredA.StatusID)

	restoredB, err := env.jobs.GetJob(ctx, user, jobB.ID)
	require.NoError(t, err)
	assert.Equal(t, "interview", restoredB.StatusID)
}

func TestResetStatusesRestoresDefaults(t *testing.T) {
	env, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()

	_, err := env.statuses.CreateStatus(ctx, user, gateway.SourceUser, "Ghosted", "")
	require.NoError(t, err)
	_, err = env.statuses.CreateStatus(ctx, user, gateway.SourceUser, "Applied", "#000000")
	require.NoError(t, err)

	job := env.addJob(t, user, "Acme")
	ghosted := "ghosted"
	_, err = env.jobs.UpdateJob(ctx, user, gateway.SourceUser, job.ID, UpdateJobParams{StatusID: &ghosted})
	require.NoError(t, err)

	applied := env.addJob(t, user, "Globex") // defaults to applied

	require.NoError(t, env.statuses.ResetStatuses(ctx, user, gateway.SourceUser))

	statuses, err := env.statuses.ListStatuses(ctx, user)
	require.NoError(t, err)
	assert.Len(t, statuses, len(domain.DefaultStatuses))

	// Job in the removed custom status moves to the sentinel.
	moved, err := env.jobs.GetJob(ctx, user, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIDNotAllowed, moved.StatusID)

	// Job in a shadowed default keeps its id; it resolves to the default again.
	kept, err := env.jobs.GetJob(ctx, user, applied.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIDApplied, kept.StatusID)

	resolved, err := env.statuses.GetStatus(ctx, user, domain.StatusIDApplied)
	require.NoError(t, err)
	assert.False(t, resolved.Deletable)
}
