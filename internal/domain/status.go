package domain

import (
	"time"

	"github.com/applytrack/applytrack-server/internal/timefmt"
)

// Sentinel status IDs. These are fixed identifiers with special meaning;
// they are never user-editable.
const (
	// StatusIDDeleted marks a soft-deleted job. Jobs with this status are
	// excluded from every list and fetch.
	StatusIDDeleted = "deleted"

	// StatusIDNotAllowed is assigned to jobs whose status was removed,
	// so they never reference a dangling status id.
	StatusIDNotAllowed = "notAllowed"

	// StatusIDNotApplied is the fallback returned when a job references an
	// unknown status id.
	StatusIDNotApplied = "notApplied"

	// StatusIDApplied is the default status for newly created jobs.
	StatusIDApplied = "applied"
)

// JobStatus is a pipeline stage for a job application.
// Two provenances share one map: seeded defaults (Deletable=false, immutable)
// and user customs (Deletable=true). On id collision the custom wins.
type JobStatus struct {
	ID        string `json:"id"`
	Name      string `json:"status_name"`
	Color     string `json:"color,omitempty"`
	Deletable bool   `json:"deletable"`

	Timestamps
}

// StatusSeed defines a status for seeding the default pipeline.
type StatusSeed struct {
	ID    string
	Name  string
	Color string
}

// DefaultStatuses is the seeded application pipeline.
// Users can layer custom statuses on top but never edit or remove these.
var DefaultStatuses = []StatusSeed{
	{ID: "created", Name: "Created", Color: "#9e9e9e"},
	{ID: StatusIDApplied, Name: "Applied", Color: "#2196f3"},
	{ID: "interview", Name: "Interview", Color: "#ff9800"},
	{ID: "offer", Name: "Offer", Color: "#4caf50"},
	{ID: "rejected", Name: "Rejected", Color: "#f44336"},
	{ID: StatusIDNotAllowed, Name: "Not Allowed", Color: "#795548"},
	{ID: StatusIDNotApplied, Name: "Not Applied", Color: "#607d8b"},
}

// SeededStatusMap materializes the default statuses as full records.
// Every invocation stamps fresh timestamps; defaults are not persisted.
func SeededStatusMap() map[string]*JobStatus {
	now := timefmt.FlexTime{Time: time.Now()}
	m := make(map[string]*JobStatus, len(DefaultStatuses))
	for _, seed := range DefaultStatuses {
		m[seed.ID] = &JobStatus{
			ID:        seed.ID,
			Name:      seed.Name,
			Color:     seed.Color,
			Deletable: false,
			Timestamps: Timestamps{
				CreatedAt: now,
				UpdatedAt: now,
			},
		}
	}
	return m
}

// MergeStatuses layers custom statuses over the seeded defaults.
// A custom status with a default's id overrides it.
func MergeStatuses(customs map[string]*JobStatus) map[string]*JobStatus {
	merged := SeededStatusMap()
	for id, s := range customs {
		merged[id] = s
	}
	return merged
}

// FallbackStatus is returned when a status id cannot be resolved, so
// lookups never come back empty-handed.
func FallbackStatus() *JobStatus {
	return SeededStatusMap()[StatusIDNotApplied]
}
