package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack-server/internal/errors"
)

func newTestCenter(t *testing.T) (*Center, *time.Time) {
	t.Helper()
	c := NewCenter(15*time.Second, nil, nil)

	now := time.Now()
	c.SetClock(func() time.Time { return now })
	return c, &now
}

func TestSingleVisibleSlotWithQueue(t *testing.T) {
	c, _ := newTestCenter(t)

	first := c.Push("user-1", "Job deleted", LevelInfo, nil)
	second := c.Push("user-1", "Tag removed", LevelInfo, nil)

	// First pushed stays visible; the second waits behind it.
	require.NotNil(t, c.Current("user-1"))
	assert.Equal(t, first.ID, c.Current("user-1").ID)

	list := c.List("user-1")
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[1].ID)

	// Dismissing the visible one advances the queue.
	c.Dismiss("user-1", first.ID)
	require.NotNil(t, c.Current("user-1"))
	assert.Equal(t, second.ID, c.Current("user-1").ID)
}

func TestUndoExecutesInverseOnce(t *testing.T) {
	c, _ := newTestCenter(t)

	calls := 0
	n := c.Push("user-1", "Job deleted", LevelInfo, func(ctx context.Context) error {
		calls++
		return nil
	})
	assert.True(t, n.Undoable)

	require.NoError(t, c.Undo(context.Background(), "user-1", n.ID))
	assert.Equal(t, 1, calls)

	// Second undo of the same notification is rejected.
	err := c.Undo(context.Background(), "user-1", n.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Equal(t, 1, calls)
}

func TestUndoWithoutInverseRejected(t *testing.T) {
	c, _ := newTestCenter(t)

	n := c.Push("user-1", "FYI", LevelInfo, nil)
	assert.False(t, n.Undoable)

	err := c.Undo(context.Background(), "user-1", n.ID)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestExpiryPrunesNotifications(t *testing.T) {
	c, now := newTestCenter(t)

	calls := 0
	n := c.Push("user-1", "Job deleted", LevelInfo, func(ctx context.Context) error {
		calls++
		return nil
	})

	*now = now.Add(16 * time.Second)

	assert.Nil(t, c.Current("user-1"))
	assert.Empty(t, c.List("user-1"))

	// Undo after expiry is rejected and the inverse never runs.
	err := c.Undo(context.Background(), "user-1", n.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Zero(t, calls)
}

func TestUsersAreIsolated(t *testing.T) {
	c, _ := newTestCenter(t)

	n := c.Push("user-1", "Job deleted", LevelInfo, nil)

	assert.Nil(t, c.Current("user-2"))
	// Another user cannot dismiss or see it.
	c.Dismiss("user-2", n.ID)
	require.NotNil(t, c.Current("user-1"))
}
