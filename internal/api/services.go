package api

import (
	"github.com/applytrack/applytrack-server/internal/backup"
	"github.com/applytrack/applytrack-server/internal/notify"
	"github.com/applytrack/applytrack-server/internal/search"
	"github.com/applytrack/applytrack-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Job      *service.JobService
	Tag      *service.TagService
	Status   *service.StatusService
	Field    *service.FieldService
	Settings *service.SettingsService
	Notify   *notify.Center
	Search   *search.Index
	Export   *backup.Service
}
