package providers

import (
	"github.com/samber/do/v2"

	"github.com/applytrack/applytrack-server/internal/backup"
	"github.com/applytrack/applytrack-server/internal/config"
	"github.com/applytrack/applytrack-server/internal/gateway"
	"github.com/applytrack/applytrack-server/internal/logger"
	"github.com/applytrack/applytrack-server/internal/notify"
	"github.com/applytrack/applytrack-server/internal/service"
)

// ProvideGateway provides the per-user mutation gateway.
func ProvideGateway(i do.Injector) (*gateway.Gateway, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return gateway.New(cfg.Gateway.MinInterval, cfg.Gateway.BypassSources, log.Logger), nil
}

// ProvideNotifyCenter provides the undo-able notification center.
func ProvideNotifyCenter(i do.Injector) (*notify.Center, error) {
	log := do.MustInvoke[*logger.Logger](i)
	eventsHandle := do.MustInvoke[*EventsManagerHandle](i)

	return notify.NewCenter(0, eventsHandle.Manager, log.Logger), nil
}

// ProvideJobService provides the job service.
func ProvideJobService(i do.Injector) (*service.JobService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	gw := do.MustInvoke[*gateway.Gateway](i)
	nc := do.MustInvoke[*notify.Center](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	tags := do.MustInvoke[*service.TagService](i)
	statuses := do.MustInvoke[*service.StatusService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewJobService(storeHandle.Store, gw, nc, indexHandle.Index, tags, statuses, log.Logger, cfg.Limits.EditCooldown), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	gw := do.MustInvoke[*gateway.Gateway](i)
	nc := do.MustInvoke[*notify.Center](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, gw, nc, log.Logger, cfg.Limits.TagsPerJob), nil
}

// ProvideStatusService provides the status service.
func ProvideStatusService(i do.Injector) (*service.StatusService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	gw := do.MustInvoke[*gateway.Gateway](i)
	nc := do.MustInvoke[*notify.Center](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStatusService(storeHandle.Store, gw, nc, log.Logger), nil
}

// ProvideFieldService provides the custom field service.
func ProvideFieldService(i do.Injector) (*service.FieldService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	gw := do.MustInvoke[*gateway.Gateway](i)
	nc := do.MustInvoke[*notify.Center](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFieldService(storeHandle.Store, gw, nc, log.Logger), nil
}

// ProvideExportService provides the user data export service.
func ProvideExportService(i do.Injector) (*backup.Service, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return backup.NewService(storeHandle.Store, "dev", log.Logger), nil
}

// ProvideSettingsService provides the settings service.
func ProvideSettingsService(i do.Injector) (*service.SettingsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	gw := do.MustInvoke[*gateway.Gateway](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSettingsService(storeHandle.Store, gw, log.Logger), nil
}
