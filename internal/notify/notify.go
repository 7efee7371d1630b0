// Package notify implements the per-user notification center. One
// notification is visible at a time; the rest wait in a queue. Mutations
// that can be reversed attach an inverse command, surfaced to clients as an
// undo affordance.
package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/applytrack/applytrack-server/internal/errors"
	"github.com/applytrack/applytrack-server/internal/events"
)

// DefaultTTL is how long a notification stays actionable before expiring.
const DefaultTTL = 15 * time.Second

// Level indicates notification severity.
type Level string

// Notification levels.
const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Command reverses the mutation a notification reports. It runs with a
// background-ish context owned by the caller and must be idempotent enough
// to tolerate racing with expiry.
type Command func(ctx context.Context) error

// Notification is a message surfaced to one user.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Level     Level     `json:"level"`
	Undoable  bool      `json:"undoable"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	undo Command
}

// EventEmitter matches the SSE manager's Emit method.
type EventEmitter interface {
	Emit(event any)
}

// Center queues notifications per user.
type Center struct {
	mu     sync.Mutex
	queues map[string][]*Notification

	ttl     time.Duration
	emitter EventEmitter
	logger  *slog.Logger

	clock func() time.Time
}

// NewCenter creates a notification center. A nil emitter disables SSE
// fan-out (tests).
func NewCenter(ttl time.Duration, emitter EventEmitter, logger *slog.Logger) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{
		queues:  make(map[string][]*Notification),
		ttl:     ttl,
		emitter: emitter,
		logger:  logger,
		clock:   time.Now,
	}
}

// Push queues a notification for the user. undo may be nil for purely
// informational messages. Returns the created notification.
func (c *Center) Push(userID, message string, level Level, undo Command) *Notification {
	now := c.clock()
	n := &Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Level:     level,
		Undoable:  undo != nil,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
		undo:      undo,
	}

	c.mu.Lock()
	c.queues[userID] = append(c.queues[userID], n)
	c.mu.Unlock()

	if c.emitter != nil {
		c.emitter.Emit(events.NewNotificationEvent(userID, n))
	}
	return n
}

// Current returns the visible notification for the user, or nil when the
// queue is empty. Expired entries are pruned on the way.
func (c *Center) Current(userID string) *Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked(userID)
	queue := c.queues[userID]
	if len(queue) == 0 {
		return nil
	}
	return queue[0]
}

// List returns the user's pending notifications, visible slot first.
func (c *Center) List(userID string) []*Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked(userID)
	queue := c.queues[userID]
	out := make([]*Notification, len(queue))
	copy(out, queue)
	return out
}

// Dismiss removes a notification, advancing the queue. Dismissing an
// unknown or expired id is a no-op.
func (c *Center) Dismiss(userID, notificationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queues[userID] = slices.DeleteFunc(c.queues[userID], func(n *Notification) bool {
		return n.ID == notificationID
	})
}

// Undo executes a notification's inverse command and removes it from the
// queue. Expired or unknown notifications report not found; notifications
// without an inverse report a validation error.
func (c *Center) Undo(ctx context.Context, userID, notificationID string) error {
	c.mu.Lock()
	c.pruneLocked(userID)

	var target *Notification
	for _, n := range c.queues[userID] {
		if n.ID == notificationID {
			target = n
			break
		}
	}
	if target == nil {
		c.mu.Unlock()
		return errors.NotFound("notification not found or expired")
	}
	if target.undo == nil {
		c.mu.Unlock()
		return errors.Validation("notification is not undoable")
	}

	// Remove before running the inverse so a second undo of the same
	// notification cannot double-apply.
	c.queues[userID] = slices.DeleteFunc(c.queues[userID], func(n *Notification) bool {
		return n.ID == notificationID
	})
	c.mu.Unlock()

	if err := target.undo(ctx); err != nil {
		if c.logger != nil {
			c.logger.Error("undo command failed",
				slog.String("user_id", userID),
				slog.String("notification_id", notificationID),
				slog.String("error", err.Error()))
		}
		return err
	}
	return nil
}

// SetClock overrides the time source for tests.
func (c *Center) SetClock(clock func() time.Time) {
	c.clock = clock
}

// pruneLocked drops expired notifications. Callers hold c.mu.
func (c *Center) pruneLocked(userID string) {
	now := c.clock()
	c.queues[userID] = slices.DeleteFunc(c.queues[userID], func(n *Notification) bool {
		return !n.ExpiresAt.After(now)
	})
	if len(c.queues[userID]) == 0 {
		delete(c.queues, userID)
	}
}
