// Package gateway funnels every mutation through a per-user debounce.
// Rapid repeat writes (double-clicks, looping clients) are rejected before
// they reach the store; trusted internal sources bypass the check so
// cascades are never throttled.
package gateway

import (
	"log/slog"
	"sync"
	"time"

	"github.com/applytrack/applytrack-server/internal/errors"
)

// Source identifies where a mutation originated. User-facing surfaces are
// debounced; internal machinery registers as a bypass source.
const (
	SourceUser   = "user"
	SourceSystem = "system"
)

// Gateway enforces a minimum interval between accepted mutations per user.
// The decision is made against the last ACCEPTED mutation, so a burst of
// rejected calls does not push the window forward.
type Gateway struct {
	mu           sync.Mutex
	lastAccepted map[string]time.Time
	minInterval  time.Duration
	bypass       map[string]bool
	logger       *slog.Logger

	clock func() time.Time
}

// New creates a gateway with the given minimum interval and bypass sources.
func New(minInterval time.Duration, bypassSources []string, logger *slog.Logger) *Gateway {
	bypass := make(map[string]bool, len(bypassSources))
	for _, s := range bypassSources {
		bypass[s] = true
	}

	return &Gateway{
		lastAccepted: make(map[string]time.Time),
		minInterval:  minInterval,
		bypass:       bypass,
		logger:       logger,
		clock:        time.Now,
	}
}

// Allow decides whether a mutation for the user may proceed. Bypass sources
// are always accepted and do not move the debounce window. Rejections return
// a rate-limited error carrying how long the caller should wait.
func (g *Gateway) Allow(userID, source string) error {
	if g.bypass[source] {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock()
	last, ok := g.lastAccepted[userID]
	if ok {
		elapsed := now.Sub(last)
		if elapsed < g.minInterval {
			wait := g.minInterval - elapsed
			if g.logger != nil {
				g.logger.Debug("mutation debounced",
					slog.String("user_id", userID),
					slog.String("source", source),
					slog.Duration("retry_in", wait))
			}
			return errors.RateLimitedf("too many changes, retry in %dms", wait.Milliseconds())
		}
	}

	g.lastAccepted[userID] = now
	return nil
}

// Reset clears the debounce window for a user. Used by tests and by the
// undo path, where the follow-up write is user-intended.
func (g *Gateway) Reset(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.lastAccepted, userID)
}

// SetClock overrides the time source for tests.
func (g *Gateway) SetClock(clock func() time.Time) {
	g.clock = clock
}
