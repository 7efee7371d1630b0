package api

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack-server/internal/backup"
	"github.com/applytrack/applytrack-server/internal/events"
	"github.com/applytrack/applytrack-server/internal/gateway"
	"github.com/applytrack/applytrack-server/internal/notify"
	"github.com/applytrack/applytrack-server/internal/service"
	"github.com/applytrack/applytrack-server/internal/store"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api     humatest.TestAPI
	cleanup func()
}

// setupTestServer builds a server against a temp Badger store. The gateway
// gets a zero interval so sequential requests are not debounced.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "applytrack-api-test-*")
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "test.db"), nil, store.NewNoopEmitter())
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	gw := gateway.New(0, []string{gateway.SourceSystem}, logger)
	nc := notify.NewCenter(time.Minute, nil, logger)
	eventsManager := events.NewManager(logger)

	tags := service.NewTagService(st, gw, nc, logger, 5)
	statuses := service.NewStatusService(st, gw, nc, logger)

	services := &Services{
		Job:      service.NewJobService(st, gw, nc, nil, tags, statuses, logger, 30*time.Second),
		Tag:      tags,
		Status:   statuses,
		Field:    service.NewFieldService(st, gw, nc, logger),
		Settings: service.NewSettingsService(st, gw, logger),
		Notify:   nc,
		Export:   backup.NewService(st, "test", logger),
	}

	s := NewServer(st, services, eventsManager, logger, Options{})

	cleanup := func() {
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return &testServer{
		Server:  s,
		api:     humatest.Wrap(t, s.api),
		cleanup: cleanup,
	}
}
