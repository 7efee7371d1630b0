package domain

// Tag is a user-owned label applied to jobs.
// The ID is derived from the name (lowercase, whitespace→hyphen), so two
// tags whose names normalize identically are the same tag by construction.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`

	// Count is a cached tally of live jobs carrying this tag. It is
	// recomputed from the job collection rather than incremented in place,
	// and clamped to zero at read time if a stale document drifted negative.
	Count int `json:"count"`

	Timestamps
}

// ClampCount floors a negative stored count at zero. Drift can appear when
// two clients recount concurrently; the next authoritative recount heals it.
func (t *Tag) ClampCount() {
	if t.Count < 0 {
		t.Count = 0
	}
}
