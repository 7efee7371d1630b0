package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/errors"
	"github.com/applytrack/applytrack-server/internal/gateway"
	"github.com/applytrack/applytrack-server/internal/notify"
	"github.com/applytrack/applytrack-server/internal/slug"
	"github.com/applytrack/applytrack-server/internal/store"
)

// StatusService manages the status pipeline: seeded defaults merged with
// user customs, immutability of defaults, and the reassignment cascade when
// a custom status is deleted.
type StatusService struct {
	store   *store.Store
	gateway *gateway.Gateway
	notify  *notify.Center
	logger  *slog.Logger
}

// NewStatusService creates a new status service.
func NewStatusService(st *store.Store, gw *gateway.Gateway, nc *notify.Center, logger *slog.Logger) *StatusService {
	return &StatusService{
		store:   st,
		gateway: gw,
		notify:  nc,
		logger:  logger,
	}
}

// ListStatuses returns the merged status map as a slice: seeded defaults
// overlaid with the user's customs, customs winning on id collision.
// Ordered defaults-first in seed order, then customs by name.
func (s *StatusService) ListStatuses(ctx context.Context, userID string) ([]*domain.JobStatus, error) {
	customs, err := s.store.ListCustomStatuses(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := domain.MergeStatuses(customs)

	out := make([]*domain.JobStatus, 0, len(merged))
	for _, seed := range domain.DefaultStatuses {
		out = append(out, merged[seed.ID])
		delete(merged, seed.ID)
	}

	rest := make([]*domain.JobStatus, 0, len(merged))
	for _, status := range merged {
		rest = append(rest, status)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].Name < rest[j].Name })

	return append(out, rest...), nil
}

// GetStatus resolves a status id against customs first, then the seeded
// defaults. Unknown ids resolve to the not-applied fallback so callers
// always get a renderable status.
func (s *StatusService) GetStatus(ctx context.Context, userID, statusID string) (*domain.JobStatus, error) {
	status, err := s.store.GetCustomStatus(ctx, userID, statusID)
	if err == nil {
		return status, nil
	}
	if !errors.Is(err, store.ErrStatusNotFound) {
		return nil, err
	}

	if seeded, ok := domain.SeededStatusMap()[statusID]; ok {
		return seeded, nil
	}
	return domain.FallbackStatus(), nil
}

// StatusExists reports whether a status id resolves to a seeded default or
// one of the user's customs. Job mutations use it to reject ids that would
// strand a job outside the pipeline.
func (s *StatusService) StatusExists(ctx context.Context, userID, statusID string) (bool, error) {
	if _, ok := domain.SeededStatusMap()[statusID]; ok {
		return true, nil
	}

	_, err := s.store.GetCustomStatus(ctx, userID, statusID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrStatusNotFound) {
		return false, nil
	}
	return false, err
}

// CreateStatus adds a custom status. Its id derives from the name; a custom
// whose id matches a seeded default overrides that default in the merged
// view. The deleted sentinel cannot be shadowed.
func (s *StatusService) CreateStatus(ctx context.Context, userID, source, name, color string) (*domain.JobStatus, error) {
	if err := s.gateway.Allow(userID, source); err != nil {
		return nil, err
	}

	statusID := slug.Derive(name)
	if statusID == "" {
		return nil, errors.Validation("status name is empty after normalization")
	}
	if statusID == domain.StatusIDDeleted {
		return nil, errors.Validation("this status name is reserved")
	}

	status := &domain.JobStatus{
		ID:        statusID,
		Name:      name,
		Color:     color,
		Deletable: true,
	}
	status.InitTimestamps()

	if err := s.store.CreateStatus(ctx, userID, status); err != nil {
		if errors.Is(err, store.ErrStatusExists) {
			return nil, errors.AlreadyExistsf("a status named %q already exists", name)
		}
		return nil, err
	}
	return status, nil
}

// UpdateStatus edits a custom status's display name and color. The id is
// fixed at creation. Seeded defaults have no stored record and cannot be
// edited.
func (s *StatusService) UpdateStatus(ctx context.Context, userID, source, statusID, name, color string) (*domain.JobStatus, error) {
	if err := s.gateway.Allow(userID, source); err != nil {
		return nil, err
	}

	status, err := s.store.GetCustomStatus(ctx, userID, statusID)
	if errors.Is(err, store.ErrStatusNotFound) {
		if _, seeded := domain.SeededStatusMap()[statusID]; seeded {
			return nil, errors.Immutable("default statuses cannot be edited")
		}
		return nil, errors.NotFoundf("status %q not found", statusID)
	}
	if err != nil {
		return nil, err
	}

	if name != "" {
		status.Name = name
	}
	if color != "" {
		status.Color = color
	}
	status.Touch()

	if err := s.store.SaveStatus(ctx, userID, status); err != nil {
		return nil, err
	}
	return status, nil
}

// DeleteStatus removes a custom status. Every job in that status is first
// reassigned to the not-allowed sentinel so no job references a dangling
// status id. Defaults are not deletable.
func (s *StatusService) DeleteStatus(ctx context.Context, userID, source, statusID string) error {
	if err := s.gateway.Allow(userID, source); err != nil {
		return err
	}

	status, err := s.store.GetCustomStatus(ctx, userID, statusID)
	if errors.Is(err, store.ErrStatusNotFound) {
		if _, seeded := domain.SeededStatusMap()[statusID]; seeded {
			return errors.Immutable("default statuses cannot be deleted")
		}
		return errors.NotFoundf("status %q not found", statusID)
	}
	if err != nil {
		return err
	}
	if !status.Deletable {
		return errors.Immutable("this status cannot be deleted")
	}

	reassigned, err := s.reassignJobs(ctx, userID, statusID, domain.StatusIDNotAllowed)
	if err != nil {
		return err
	}

	if err := s.store.DeleteStatus(ctx, userID, statusID, domain.StatusIDNotAllowed); err != nil {
		return err
	}

	deleted := *status
	s.notify.Push(userID, fmt.Sprintf("Status %q deleted", status.Name), notify.LevelInfo,
		func(undoCtx context.Context) error {
			return s.restoreStatus(undoCtx, userID, &deleted, reassigned)
		})

	s.logger.Info("status deleted",
		slog.String("user_id", userID),
		slog.String("status_id", statusID),
		slog.Int("jobs_reassigned", len(reassigned)))
	return nil
}

// restoreStatus is the inverse of DeleteStatus: recreate the record and
// move the reassigned jobs back.
func (s *StatusService) restoreStatus(ctx context.Context, userID string, status *domain.JobStatus, jobIDs []string) error {
	status.Touch()
	if err := s.store.CreateStatus(ctx, userID, status); err != nil && !errors.Is(err, store.ErrStatusExists) {
		return err
	}

	for _, jobID := range jobIDs {
		job, err := s.store.GetJob(ctx, userID, jobID)
		if err != nil {
			continue
		}
		if job.StatusID != domain.StatusIDNotAllowed {
			// The user already moved it elsewhere; leave it be.
			continue
		}
		job.StatusID = status.ID
		job.Touch()
		if err := s.store.SaveJob(ctx, userID, job); err != nil {
			return err
		}
	}
	return nil
}

// ResetStatuses wipes all custom statuses, restoring the seeded defaults.
// Jobs left referencing a removed custom are reassigned to the not-allowed
// sentinel like a single delete would.
func (s *StatusService) ResetStatuses(ctx context.Context, userID, source string) error {
	if err := s.gateway.Allow(userID, source); err != nil {
		return err
	}

	customs, err := s.store.ListCustomStatuses(ctx, userID)
	if err != nil {
		return err
	}

	seeded := domain.SeededStatusMap()
	total := 0
	for id := range customs {
		if _, ok := seeded[id]; ok {
			// A custom overriding a default: jobs keep the id, which now
			// resolves to the default again.
			continue
		}
		reassigned, err := s.reassignJobs(ctx, userID, id, domain.StatusIDNotAllowed)
		if err != nil {
			return err
		}
		total += len(reassigned)
	}

	if err := s.store.DeleteAllCustomStatuses(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("statuses reset",
		slog.String("user_id", userID),
		slog.Int("customs_removed", len(customs)),
		slog.Int("jobs_reassigned", total))
	return nil
}

// reassignJobs moves every live job from one status to another, returning
// the affected job ids.
func (s *StatusService) reassignJobs(ctx context.Context, userID, fromID, toID string) ([]string, error) {
	jobs, err := s.store.ListJobsWithStatus(ctx, userID, fromID)
	if err != nil {
		return nil, err
	}

	moved := make([]string, 0, len(jobs))
	for _, job := range jobs {
		job.StatusID = toID
		job.Touch()
		if err := s.store.SaveJob(ctx, userID, job); err != nil {
			return nil, fmt.Errorf("reassign job %s: %w", job.ID, err)
		}
		moved = append(moved, job.ID)
	}
	return moved, nil
}
