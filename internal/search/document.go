// Package search provides full-text job search using Bleve. One shared
// index holds every user's jobs; a user_id term filter scopes all queries.
package search

import (
	"github.com/applytrack/applytrack-server/internal/domain"
)

// JobDocument is the document structure for the Bleve index.
// Tag ids are indexed as keywords so compound ids ("remote-friendly") stay
// intact for exact filtering.
type JobDocument struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Company  string `json:"company"`
	Position string `json:"position"`
	Location string `json:"location,omitempty"`
	Notes    string `json:"notes,omitempty"`

	StatusID string   `json:"status_id"`
	Tags     []string `json:"tags,omitempty"`

	// Timestamps for sorting, unix millis.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// NewJobDocument builds an index document from a job.
func NewJobDocument(userID string, job *domain.Job) *JobDocument {
	return &JobDocument{
		ID:        job.ID,
		UserID:    userID,
		Company:   job.Company,
		Position:  job.Position,
		Location:  job.Location,
		Notes:     job.Notes,
		StatusID:  job.StatusID,
		Tags:      job.TagIDs,
		CreatedAt: job.CreatedAt.Time.UnixMilli(),
		UpdatedAt: job.UpdatedAt.Time.UnixMilli(),
	}
}

// ToMap converts the document to a map with lowercase field names so they
// match the index mapping. Bleve defaults to Go struct field names.
func (d *JobDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"user_id":    d.UserID,
		"company":    d.Company,
		"position":   d.Position,
		"status_id":  d.StatusID,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}
	if d.Location != "" {
		m["location"] = d.Location
	}
	if d.Notes != "" {
		m["notes"] = d.Notes
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}
