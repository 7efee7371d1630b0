// Package events implements Server-Sent Events for real-time change
// notifications. Every store mutation fans out here so other clients of the
// same user can refresh without polling.
package events

import (
	"time"

	"github.com/applytrack/applytrack-server/internal/domain"
)

// EventType represents the type of SSE event.
type EventType string

const (
	// EventJobCreated represents a job creation event.
	EventJobCreated EventType = "job.created"
	// EventJobUpdated represents a job update event.
	EventJobUpdated EventType = "job.updated"
	// EventJobDeleted represents a job soft-deletion event.
	EventJobDeleted EventType = "job.deleted"

	// EventTagCreated represents a tag creation event.
	EventTagCreated EventType = "tag.created"
	// EventTagUpdated represents a tag update event, including count changes.
	EventTagUpdated EventType = "tag.updated"
	// EventTagDeleted represents a tag deletion event.
	EventTagDeleted EventType = "tag.deleted"

	// EventStatusCreated represents a custom status creation event.
	EventStatusCreated EventType = "status.created"
	// EventStatusUpdated represents a custom status update event.
	EventStatusUpdated EventType = "status.updated"
	// EventStatusDeleted represents a custom status deletion event.
	EventStatusDeleted EventType = "status.deleted"
	// EventStatusesReset represents a wipe of all custom statuses.
	EventStatusesReset EventType = "status.reset"

	// EventFieldCreated represents a custom field creation event.
	EventFieldCreated EventType = "field.created"
	// EventFieldUpdated represents a custom field update event.
	EventFieldUpdated EventType = "field.updated"
	// EventFieldDeleted represents a custom field deletion event.
	EventFieldDeleted EventType = "field.deleted"

	// EventSettingsUpdated represents a settings change event.
	EventSettingsUpdated EventType = "settings.updated"

	// EventNotification represents a notification pushed to the client.
	EventNotification EventType = "notification"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct
// deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// UserID filters delivery to clients of a single user. All data here is
	// user-owned, so every event carries one.
	UserID string `json:"-"`
}

// JobEventData is the data payload for job create/update events.
type JobEventData struct {
	Job *domain.Job `json:"job"`
}

// JobDeletedEventData is the data payload for job delete events.
type JobDeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	JobID     string    `json:"job_id"`
}

// TagEventData is the data payload for tag create/update events.
type TagEventData struct {
	Tag *domain.Tag `json:"tag"`
}

// TagDeletedEventData is the data payload for tag delete events.
// AffectedJobIDs lists the jobs the tag was stripped from.
type TagDeletedEventData struct {
	TagID          string   `json:"tag_id"`
	AffectedJobIDs []string `json:"affected_job_ids,omitempty"`
}

// StatusEventData is the data payload for status create/update events.
type StatusEventData struct {
	Status *domain.JobStatus `json:"status"`
}

// StatusDeletedEventData is the data payload for status delete events.
// Jobs that carried the status now reference ReassignedTo.
type StatusDeletedEventData struct {
	StatusID     string `json:"status_id"`
	ReassignedTo string `json:"reassigned_to"`
}

// FieldEventData is the data payload for field create/update events.
type FieldEventData struct {
	Field *domain.CustomField `json:"field"`
}

// FieldDeletedEventData is the data payload for field delete events.
type FieldDeletedEventData struct {
	FieldID string `json:"field_id"`
}

// SettingsEventData is the data payload for settings events.
type SettingsEventData struct {
	Settings *domain.Settings `json:"settings"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewJobCreatedEvent creates a job.created event.
func NewJobCreatedEvent(userID string, job *domain.Job) Event {
	return Event{
		Type:      EventJobCreated,
		Data:      JobEventData{Job: job},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewJobUpdatedEvent creates a job.updated event.
func NewJobUpdatedEvent(userID string, job *domain.Job) Event {
	return Event{
		Type:      EventJobUpdated,
		Data:      JobEventData{Job: job},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewJobDeletedEvent creates a job.deleted event.
func NewJobDeletedEvent(userID, jobID string, deletedAt time.Time) Event {
	return Event{
		Type: EventJobDeleted,
		Data: JobDeletedEventData{
			JobID:     jobID,
			DeletedAt: deletedAt,
		},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewTagCreatedEvent creates a tag.created event.
func NewTagCreatedEvent(userID string, tag *domain.Tag) Event {
	return Event{
		Type:      EventTagCreated,
		Data:      TagEventData{Tag: tag},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewTagUpdatedEvent creates a tag.updated event.
func NewTagUpdatedEvent(userID string, tag *domain.Tag) Event {
	return Event{
		Type:      EventTagUpdated,
		Data:      TagEventData{Tag: tag},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewTagDeletedEvent creates a tag.deleted event.
func NewTagDeletedEvent(userID, tagID string, affectedJobIDs []string) Event {
	return Event{
		Type: EventTagDeleted,
		Data: TagDeletedEventData{
			TagID:          tagID,
			AffectedJobIDs: affectedJobIDs,
		},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewStatusCreatedEvent creates a status.created event.
func NewStatusCreatedEvent(userID string, status *domain.JobStatus) Event {
	return Event{
		Type:      EventStatusCreated,
		Data:      StatusEventData{Status: status},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewStatusUpdatedEvent creates a status.updated event.
func NewStatusUpdatedEvent(userID string, status *domain.JobStatus) Event {
	return Event{
		Type:      EventStatusUpdated,
		Data:      StatusEventData{Status: status},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewStatusDeletedEvent creates a status.deleted event.
func NewStatusDeletedEvent(userID, statusID, reassignedTo string) Event {
	return Event{
		Type: EventStatusDeleted,
		Data: StatusDeletedEventData{
			StatusID:     statusID,
			ReassignedTo: reassignedTo,
		},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewStatusesResetEvent creates a status.reset event.
func NewStatusesResetEvent(userID string) Event {
	return Event{
		Type:      EventStatusesReset,
		Data:      struct{}{},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewFieldCreatedEvent creates a field.created event.
func NewFieldCreatedEvent(userID string, field *domain.CustomField) Event {
	return Event{
		Type:      EventFieldCreated,
		Data:      FieldEventData{Field: field},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewFieldUpdatedEvent creates a field.updated event.
func NewFieldUpdatedEvent(userID string, field *domain.CustomField) Event {
	return Event{
		Type:      EventFieldUpdated,
		Data:      FieldEventData{Field: field},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewFieldDeletedEvent creates a field.deleted event.
func NewFieldDeletedEvent(userID, fieldID string) Event {
	return Event{
		Type:      EventFieldDeleted,
		Data:      FieldDeletedEventData{FieldID: fieldID},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewSettingsUpdatedEvent creates a settings.updated event.
func NewSettingsUpdatedEvent(userID string, settings *domain.Settings) Event {
	return Event{
		Type:      EventSettingsUpdated,
		Data:      SettingsEventData{Settings: settings},
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewNotificationEvent creates a notification event with an arbitrary payload.
func NewNotificationEvent(userID string, data any) Event {
	return Event{
		Type:      EventNotification,
		Data:      data,
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: time.Now()},
		Timestamp: time.Now(),
	}
}
