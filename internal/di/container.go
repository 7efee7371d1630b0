// Package di provides dependency injection configuration for the ApplyTrack server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/applytrack/applytrack-server/internal/backup"
	"github.com/applytrack/applytrack-server/internal/config"
	"github.com/applytrack/applytrack-server/internal/di/providers"
	"github.com/applytrack/applytrack-server/internal/gateway"
	"github.com/applytrack/applytrack-server/internal/logger"
	"github.com/applytrack/applytrack-server/internal/notify"
	"github.com/applytrack/applytrack-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideEventsManager)
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Mutation plumbing
	do.Provide(injector, providers.ProvideGateway)
	do.Provide(injector, providers.ProvideNotifyCenter)

	// Business services
	do.Provide(injector, providers.ProvideJobService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideStatusService)
	do.Provide(injector, providers.ProvideFieldService)
	do.Provide(injector, providers.ProvideSettingsService)
	do.Provide(injector, providers.ProvideExportService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.EventsManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*gateway.Gateway](injector)
	_ = do.MustInvoke[*notify.Center](injector)

	// Business services
	_ = do.MustInvoke[*service.JobService](injector)
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.StatusService](injector)
	_ = do.MustInvoke[*service.FieldService](injector)
	_ = do.MustInvoke[*service.SettingsService](injector)
	_ = do.MustInvoke[*backup.Service](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
