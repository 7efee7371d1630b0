package domain

import "slices"

// Job is a tracked job application. Tags, status, and custom field values
// reference entities owned by their respective stores; the job only carries
// the ids (and, for fields, the values keyed by field id).
type Job struct {
	ID       string `json:"id"`
	Company  string `json:"company"`
	Position string `json:"position"`
	Location string `json:"location,omitempty"`
	URL      string `json:"url,omitempty"`
	Notes    string `json:"notes,omitempty"`

	StatusID string   `json:"status_id"`
	TagIDs   []string `json:"tag_ids,omitempty"`

	// CustomFields maps field definition id → stored value. Values outlive
	// nothing: deleting a field definition cascades their removal.
	CustomFields map[string]any `json:"custom_fields,omitempty"`

	Timestamps
}

// HasTag reports whether the job carries the given tag id.
func (j *Job) HasTag(tagID string) bool {
	return slices.Contains(j.TagIDs, tagID)
}

// RemoveTag strips a tag id from the job. Returns true if it was present.
func (j *Job) RemoveTag(tagID string) bool {
	before := len(j.TagIDs)
	j.TagIDs = slices.DeleteFunc(j.TagIDs, func(id string) bool { return id == tagID })
	return len(j.TagIDs) != before
}

// IsDeleted reports whether the job has been soft-deleted.
// The status sentinel is authoritative; DeletedAt records when.
func (j *Job) IsDeleted() bool {
	return j.StatusID == StatusIDDeleted || j.Timestamps.IsDeleted()
}

// SoftDelete moves the job to the deleted sentinel status and stamps
// DeletedAt. Jobs are never physically removed.
func (j *Job) SoftDelete() {
	j.StatusID = StatusIDDeleted
	j.MarkDeleted()
}
