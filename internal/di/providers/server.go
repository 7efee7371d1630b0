package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/applytrack/applytrack-server/internal/api"
	"github.com/applytrack/applytrack-server/internal/backup"
	"github.com/applytrack/applytrack-server/internal/config"
	"github.com/applytrack/applytrack-server/internal/logger"
	"github.com/applytrack/applytrack-server/internal/notify"
	"github.com/applytrack/applytrack-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	eventsHandle := do.MustInvoke[*EventsManagerHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	jobService := do.MustInvoke[*service.JobService](i)
	tagService := do.MustInvoke[*service.TagService](i)
	statusService := do.MustInvoke[*service.StatusService](i)
	fieldService := do.MustInvoke[*service.FieldService](i)
	settingsService := do.MustInvoke[*service.SettingsService](i)
	notifyCenter := do.MustInvoke[*notify.Center](i)
	exportService := do.MustInvoke[*backup.Service](i)

	services := &api.Services{
		Job:      jobService,
		Tag:      tagService,
		Status:   statusService,
		Field:    fieldService,
		Settings: settingsService,
		Notify:   notifyCenter,
		Search:   indexHandle.Index,
		Export:   exportService,
	}

	handler := api.NewServer(storeHandle.Store, services, eventsHandle.Manager, log.Logger, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		EdgeRPS:        cfg.Gateway.EdgeRPS,
		EdgeBurst:      cfg.Gateway.EdgeBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
