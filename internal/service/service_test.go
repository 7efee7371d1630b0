package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/gateway"
	"github.com/applytrack/applytrack-server/internal/notify"
	"github.com/applytrack/applytrack-server/internal/store"
)

// testEnv bundles the services under test against one temporary store.
type testEnv struct {
	store    *store.Store
	gateway  *gateway.Gateway
	notify   *notify.Center
	tags     *TagService
	statuses *StatusService
	fields   *FieldService
	jobs     *JobService
	settings *SettingsService
}

// setupTest wires services against a temp Badger store. The gateway gets a
// zero interval so sequential test calls are not debounced; debounce
// behavior has its own test with a real interval.
func setupTest(t *testing.T) (*testEnv, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "applytrack-service-test-*")
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "test.db"), nil, store.NewNoopEmitter())
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	gw := gateway.New(0, []string{gateway.SourceSystem}, logger)
	nc := notify.NewCenter(time.Minute, nil, logger)

	tags := NewTagService(st, gw, nc, logger, 5)
	statuses := NewStatusService(st, gw, nc, logger)

	env := &testEnv{
		store:    st,
		gateway:  gw,
		notify:   nc,
		tags:     tags,
		statuses: statuses,
		fields:   NewFieldService(st, gw, nc, logger),
		jobs:     NewJobService(st, gw, nc, nil, tags, statuses, logger, 30*time.Second),
		settings: NewSettingsService(st, gw, logger),
	}

	cleanup := func() {
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}
	return env, cleanup
}

// addJob creates a job through the service with sensible defaults.
func (e *testEnv) addJob(t *testing.T, userID, company string) *domain.Job {
	t.Helper()
	job, err := e.jobs.AddJob(context.Background(), userID, gateway.SourceUser, AddJobParams{
		Company:  company,
		Position: "Engineer",
	})
	require.NoError(t, err)
	return job
}
