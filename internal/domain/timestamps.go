package domain

import (
	"time"

	"github.com/applytrack/applytrack-server/internal/timefmt"
)

// Timestamps provides common lifecycle fields for every stored entity.
// Fields use timefmt.FlexTime so documents written with legacy timestamp
// representations (epoch millis, {seconds, nanoseconds} objects) normalize
// to canonical times the moment they are fetched.
type Timestamps struct {
	CreatedAt timefmt.FlexTime  `json:"created_at"`
	UpdatedAt timefmt.FlexTime  `json:"updated_at"`
	DeletedAt *timefmt.FlexTime `json:"deleted_at,omitempty"`
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the underlying entity changes.
func (t *Timestamps) Touch() {
	t.UpdatedAt = timefmt.FlexTime{Time: time.Now()}
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (t *Timestamps) InitTimestamps() {
	now := timefmt.FlexTime{Time: time.Now()}
	t.CreatedAt = now
	t.UpdatedAt = now
}

// IsDeleted returns true if this entity has been soft-deleted.
func (t *Timestamps) IsDeleted() bool {
	return t.DeletedAt != nil
}

// MarkDeleted marks this entity as soft-deleted by setting DeletedAt to now.
// This also updates UpdatedAt so the deletion is visible to change feeds.
func (t *Timestamps) MarkDeleted() {
	now := timefmt.FlexTime{Time: time.Now()}
	t.DeletedAt = &now
	t.UpdatedAt = now
}

// EditCooldownRemaining returns how much of the advisory edit cool-down is
// left for this entity. Zero means editing is open. Clients disable their
// Save/Delete controls for this long after an update; it is a UX hint, not
// an enforcement mechanism.
func (t *Timestamps) EditCooldownRemaining(window time.Duration) time.Duration {
	elapsed := time.Since(t.UpdatedAt.Time)
	if elapsed >= window {
		return 0
	}
	return window - elapsed
}
