// Package backup exports a user's data as a single portable document.
package backup

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/errors"
	"github.com/applytrack/applytrack-server/internal/store"
)

// SnapshotVersion is bumped whenever the snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is a complete copy of one user's data. Soft-deleted jobs are
// included so a snapshot round-trips without losing undo history.
type Snapshot struct {
	Version    int                   `json:"version"`
	AppVersion string                `json:"app_version"`
	ExportedAt time.Time             `json:"exported_at"`
	UserID     string                `json:"user_id"`
	Jobs       []*domain.Job         `json:"jobs"`
	Tags       []*domain.Tag         `json:"tags"`
	Statuses   []*domain.JobStatus   `json:"statuses"`
	Fields     []*domain.CustomField `json:"fields"`
	Settings   *domain.Settings      `json:"settings,omitempty"`
}

// Service assembles snapshots from the store.
type Service struct {
	store      *store.Store
	appVersion string
	logger     *slog.Logger
}

// NewService creates an export service. appVersion is recorded in each
// snapshot for debugging imports across releases.
func NewService(st *store.Store, appVersion string, logger *slog.Logger) *Service {
	return &Service{
		store:      st,
		appVersion: appVersion,
		logger:     logger,
	}
}

// Export collects everything the user owns. Only custom statuses are
// exported; defaults are code, not data.
func (s *Service) Export(ctx context.Context, userID string) (*Snapshot, error) {
	jobs, err := s.store.ListAllJobs(ctx, userID)
	if err != nil {
		return nil, err
	}

	tags, err := s.store.ListTags(ctx, userID)
	if err != nil {
		return nil, err
	}

	customStatuses, err := s.store.ListCustomStatuses(ctx, userID)
	if err != nil {
		return nil, err
	}
	statuses := make([]*domain.JobStatus, 0, len(customStatuses))
	for _, st := range customStatuses {
		statuses = append(statuses, st)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].ID < statuses[j].ID })

	fields, err := s.store.ListFields(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrSettingsNotFound) {
		return nil, err
	}

	snap := &Snapshot{
		Version:    SnapshotVersion,
		AppVersion: s.appVersion,
		ExportedAt: time.Now().UTC(),
		UserID:     userID,
		Jobs:       jobs,
		Tags:       tags,
		Statuses:   statuses,
		Fields:     fields,
		Settings:   settings,
	}

	if s.logger != nil {
		s.logger.Info("user data exported",
			slog.String("user_id", userID),
			slog.Int("jobs", len(jobs)),
			slog.Int("tags", len(tags)))
	}
	return snap, nil
}
