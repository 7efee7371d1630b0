// Package service implements the application's semantics on top of the
// store: cascading cleanups, cached count maintenance, the mutation
// gateway, and undo-able notifications.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	tagcolor "github.com/applytrack/applytrack-server/internal/color"
	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/errors"
	"github.com/applytrack/applytrack-server/internal/gateway"
	"github.com/applytrack/applytrack-server/internal/notify"
	"github.com/applytrack/applytrack-server/internal/slug"
	"github.com/applytrack/applytrack-server/internal/store"
)

// TagService orchestrates tag operations: creation with derived ids,
// placeholder creation when tagging, cascade cleanup on delete, and
// recount-based count maintenance.
type TagService struct {
	store      *store.Store
	gateway    *gateway.Gateway
	notify     *notify.Center
	logger     *slog.Logger
	tagsPerJob int
}

// NewTagService creates a new tag service. tagsPerJob caps how many tags a
// single job may carry.
func NewTagService(st *store.Store, gw *gateway.Gateway, nc *notify.Center, logger *slog.Logger, tagsPerJob int) *TagService {
	return &TagService{
		store:      st,
		gateway:    gw,
		notify:     nc,
		logger:     logger,
		tagsPerJob: tagsPerJob,
	}
}

// ListTags returns the user's tags ordered by popularity. Cached counts
// are recomputed on the way out, so drift heals on the next listing.
func (s *TagService) ListTags(ctx context.Context, userID string) ([]*domain.Tag, error) {
	if err := s.RecountAllTags(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListTags(ctx, userID)
}

// GetTag returns a single tag.
func (s *TagService) GetTag(ctx context.Context, userID, tagID string) (*domain.Tag, error) {
	t, err := s.store.GetTag(ctx, userID, tagID)
	if errors.Is(err, store.ErrTagNotFound) {
		return nil, errors.NotFoundf("tag %q not found", tagID)
	}
	return t, err
}

// RecentTags returns up to limit tags ordered by most recent update. Used
// for tag suggestions while typing.
func (s *TagService) RecentTags(ctx context.Context, userID string, limit int) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Re-sort by recency; ListTags orders by count.
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].UpdatedAt.Time.After(tags[j].UpdatedAt.Time)
	})

	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return tags, nil
}

// CreateTag creates a tag from a display name. The id derives from the
// normalized name, so "Remote Work" and "remote work" are one tag.
func (s *TagService) CreateTag(ctx context.Context, userID, source, name, color string) (*domain.Tag, error) {
	if err := s.gateway.Allow(userID, source); err != nil {
		return nil, err
	}

	tagID := slug.Derive(name)
	if tagID == "" {
		return nil, errors.Validation("tag name is empty after normalization")
	}
	if color == "" {
		color = tagcolor.ForTag(tagID)
	}

	t := &domain.Tag{
		ID:    tagID,
		Name:  name,
		Color: color,
	}
	t.InitTimestamps()

	if err := s.store.CreateTag(ctx, userID, t); err != nil {
		if errors.Is(err, store.ErrTagExists) {
			return nil, errors.AlreadyExistsf("a tag named %q already exists", name)
		}
		return nil, err
	}

	s.notify.Push(userID, fmt.Sprintf("Tag %q created", name), notify.LevelInfo,
		func(undoCtx context.Context) error {
			_, err := s.deleteTagCascade(undoCtx, userID, tagID)
			if errors.Is(err, store.ErrTagNotFound) {
				return nil
			}
			return err
		})

	return t, nil
}

// UpdateTagColor changes a tag's color. Names are identity and cannot be
// edited; delete and recreate instead.
func (s *TagService) UpdateTagColor(ctx context.Context, userID, source, tagID, color string) (*domain.Tag, error) {
	if err := s.gateway.Allow(userID, source); err != nil {
		return nil, err
	}

	t, err := s.GetTag(ctx, userID, tagID)
	if err != nil {
		return nil, err
	}

	t.Color = color
	t.Touch()
	if err := s.store.SaveTag(ctx, userID, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTag removes a tag and strips it from every job carrying it. The
// cascade runs before the record disappears so no job is left referencing
// a dangling tag id. An undo notification restores both the tag and the
// job associations.
func (s *TagService) DeleteTag(ctx context.Context, userID, source, tagID string) error {
	if err := s.gateway.Allow(userID, source); err != nil {
		return err
	}

	t, err := s.GetTag(ctx, userID, tagID)
	if err != nil {
		return err
	}

	affected, err := s.deleteTagCascade(ctx, userID, tagID)
	if err != nil {
		return err
	}

	deleted := *t
	s.notify.Push(userID, fmt.Sprintf("Tag %q deleted", t.Name), notify.LevelInfo,
		func(undoCtx context.Context) error {
			return s.restoreTag(undoCtx, userID, &deleted, affected)
		})

	s.logger.Info("tag deleted",
		slog.String("user_id", userID),
		slog.String("tag_id", tagID),
		slog.Int("jobs_stripped", len(affected)))
	return nil
}

// deleteTagCascade strips a tag from every job carrying it, then drops the
// record. Returns the ids of the jobs that were stripped.
func (s *TagService) deleteTagCascade(ctx context.Context, userID, tagID string) ([]string, error) {
	jobs, err := s.store.ListJobsWithTag(ctx, userID, tagID)
	if err != nil {
		return nil, err
	}

	affected := make([]string, 0, len(jobs))
	for _, job := range jobs {
		job.RemoveTag(tagID)
		job.Touch()
		if err := s.store.SaveJob(ctx, userID, job); err != nil {
			return nil, fmt.Errorf("strip tag from job %s: %w", job.ID, err)
		}
		affected = append(affected, job.ID)
	}

	if err := s.store.DeleteTag(ctx, userID, tagID, affected); err != nil {
		return nil, err
	}
	return affected, nil
}

// restoreTag is the inverse of DeleteTag: recreate the record and re-add
// the id to the jobs it was stripped from.
func (s *TagService) restoreTag(ctx context.Context, userID string, t *domain.Tag, jobIDs []string) error {
	t.Touch()
	if err := s.store.CreateTag(ctx, userID, t); err != nil && !errors.Is(err, store.ErrTagExists) {
		return err
	}

	for _, jobID := range jobIDs {
		job, err := s.store.GetJob(ctx, userID, jobID)
		if err != nil {
			// The job may have been deleted since; skip it.
			continue
		}
		if job.HasTag(t.ID) {
			continue
		}
		job.TagIDs = append(job.TagIDs, t.ID)
		job.Touch()
		if err := s.store.SaveJob(ctx, userID, job); err != nil {
			return err
		}
	}

	return s.RecountTag(ctx, userID, t.ID)
}

// AddTagToJob tags a job by display name, creating a placeholder tag when
// none exists. The per-job tag cap is enforced before anything is written,
// and the tag's cached count is recomputed from the job collection after.
// An undo notification detaches the tag again.
func (s *TagService) AddTagToJob(ctx context.Context, userID, source, jobID, rawName string) (*domain.Tag, error) {
	if err := s.gateway.Allow(userID, source); err != nil {
		return nil, err
	}

	t, attached, err := s.attachTag(ctx, userID, jobID, rawName)
	if err != nil {
		return nil, err
	}

	if attached {
		tagID := t.ID
		s.notify.Push(userID, fmt.Sprintf("Tag %q added", t.Name), notify.LevelInfo,
			func(undoCtx context.Context) error {
				_, err := s.detachTag(undoCtx, userID, jobID, tagID)
				if errors.Is(err, errors.ErrNotFound) {
					// The job may have been deleted since; nothing to undo.
					return nil
				}
				return err
			})
	}
	return t, nil
}

// AttachTag applies a tag to a job without the gateway or a notification.
// Placeholder creation, the per-job cap, and the recount all still apply;
// job creation routes initial tags through here.
func (s *TagService) AttachTag(ctx context.Context, userID, jobID, rawName string) (*domain.Tag, error) {
	t, _, err := s.attachTag(ctx, userID, jobID, rawName)
	return t, err
}

// attachTag is the shared attach path. The bool reports whether the job
// actually gained the tag; tagging an already-tagged job is a no-op.
func (s *TagService) attachTag(ctx context.Context, userID, jobID, rawName string) (*domain.Tag, bool, error) {
	tagID := slug.Derive(rawName)
	if tagID == "" {
		return nil, false, errors.Validation("tag name is empty after normalization")
	}

	job, err := s.store.GetJob(ctx, userID, jobID)
	if errors.Is(err, store.ErrJobNotFound) {
		return nil, false, errors.NotFoundf("job %q not found", jobID)
	}
	if err != nil {
		return nil, false, err
	}

	if job.HasTag(tagID) {
		// Idempotent: tagging twice is a no-op.
		t, err := s.GetTag(ctx, userID, tagID)
		return t, false, err
	}

	if len(job.TagIDs) >= s.tagsPerJob {
		return nil, false, errors.TagLimit(fmt.Sprintf("a job can carry at most %d tags", s.tagsPerJob))
	}

	t, err := s.store.GetTag(ctx, userID, tagID)
	if errors.Is(err, store.ErrTagNotFound) {
		// Placeholder tag created on first use.
		t = &domain.Tag{ID: tagID, Name: rawName, Color: tagcolor.ForTag(tagID)}
		t.InitTimestamps()
		if createErr := s.store.CreateTag(ctx, userID, t); createErr != nil && !errors.Is(createErr, store.ErrTagExists) {
			return nil, false, createErr
		}
	} else if err != nil {
		return nil, false, err
	}

	job.TagIDs = append(job.TagIDs, tagID)
	job.Touch()
	if err := s.store.SaveJob(ctx, userID, job); err != nil {
		return nil, false, err
	}

	if err := s.RecountTag(ctx, userID, tagID); err != nil {
		return nil, false, err
	}
	t, err = s.GetTag(ctx, userID, tagID)
	return t, true, err
}

// RemoveTagFromJob untags a job and recounts. A tag whose count reaches
// zero is removed entirely; tags exist only while something carries them.
// An undo notification re-attaches the tag, recreating the record when the
// removal dropped it.
func (s *TagService) RemoveTagFromJob(ctx context.Context, userID, source, jobID, tagID string) error {
	if err := s.gateway.Allow(userID, source); err != nil {
		return err
	}

	snapshot, err := s.store.GetTag(ctx, userID, tagID)
	if err != nil && !errors.Is(err, store.ErrTagNotFound) {
		return err
	}

	removed, err := s.detachTag(ctx, userID, jobID, tagID)
	if err != nil || !removed {
		return err
	}

	name := tagID
	if snapshot != nil {
		name = snapshot.Name
	}
	s.notify.Push(userID, fmt.Sprintf("Tag %q removed", name), notify.LevelInfo,
		func(undoCtx context.Context) error {
			return s.restoreTagOnJob(undoCtx, userID, jobID, tagID, snapshot)
		})
	return nil
}

// detachTag is the shared detach path: untag, recount, and drop the record
// when nothing carries it anymore. The bool reports whether the job
// actually lost the tag.
func (s *TagService) detachTag(ctx context.Context, userID, jobID, tagID string) (bool, error) {
	job, err := s.store.GetJob(ctx, userID, jobID)
	if errors.Is(err, store.ErrJobNotFound) {
		return false, errors.NotFoundf("job %q not found", jobID)
	}
	if err != nil {
		return false, err
	}

	if !job.RemoveTag(tagID) {
		// Idempotent: untagging an untagged job is a no-op.
		return false, nil
	}

	job.Touch()
	if err := s.store.SaveJob(ctx, userID, job); err != nil {
		return false, err
	}

	count, err := s.store.CountJobsWithTag(ctx, userID, tagID)
	if err != nil {
		return false, err
	}

	if count <= 0 {
		err := s.store.DeleteTag(ctx, userID, tagID, nil)
		if errors.Is(err, store.ErrTagNotFound) {
			return true, nil
		}
		return true, err
	}

	t, err := s.store.GetTag(ctx, userID, tagID)
	if errors.Is(err, store.ErrTagNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	t.Count = count
	t.Touch()
	return true, s.store.SaveTag(ctx, userID, t)
}

// restoreTagOnJob is the inverse of a single removal: put the record back
// if the removal dropped it, re-attach, and recount.
func (s *TagService) restoreTagOnJob(ctx context.Context, userID, jobID, tagID string, snapshot *domain.Tag) error {
	name := tagID
	if snapshot != nil {
		t := *snapshot
		t.Touch()
		if err := s.store.CreateTag(ctx, userID, &t); err != nil && !errors.Is(err, store.ErrTagExists) {
			return err
		}
		name = snapshot.Name
	}

	_, _, err := s.attachTag(ctx, userID, jobID, name)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return err
	}
	return s.RecountTag(ctx, userID, tagID)
}

// RecountTag overwrites a tag's cached count with the authoritative tally
// from the job collection. Soft-deleted jobs never count.
func (s *TagService) RecountTag(ctx context.Context, userID, tagID string) error {
	count, err := s.store.CountJobsWithTag(ctx, userID, tagID)
	if err != nil {
		return err
	}

	t, err := s.store.GetTag(ctx, userID, tagID)
	if errors.Is(err, store.ErrTagNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if t.Count == count {
		return nil
	}
	t.Count = count
	t.Touch()
	return s.store.SaveTag(ctx, userID, t)
}

// RecountAllTags repairs every tag's cached count from the job collection.
// ListTags runs it before answering, so drift never survives a listing.
func (s *TagService) RecountAllTags(ctx context.Context, userID string) error {
	tags, err := s.store.ListTags(ctx, userID)
	if err != nil {
		return err
	}

	start := time.Now()
	for _, t := range tags {
		if err := s.RecountTag(ctx, userID, t.ID); err != nil {
			return fmt.Errorf("recount tag %s: %w", t.ID, err)
		}
	}

	s.logger.Debug("recounted all tags",
		slog.String("user_id", userID),
		slog.Int("tags", len(tags)),
		slog.Duration("took", time.Since(start)))
	return nil
}
