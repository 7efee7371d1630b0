package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/events"
)

// Tag errors.
var (
	ErrTagNotFound = errors.New("tag not found")
	ErrTagExists   = errors.New("tag already exists")
)

// CreateTag stores a new tag. The tag id doubles as the uniqueness check:
// ids derive from normalized names, so a name collision is an id collision.
func (s *Store) CreateTag(ctx context.Context, userID string, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := tagKey(userID, t.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrTagExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	s.emit(events.NewTagCreatedEvent(userID, t))
	return nil
}

// GetTag retrieves a tag by id. The cached count is clamped at read time so
// drifted documents never surface a negative count.
func (s *Store) GetTag(ctx context.Context, userID, tagID string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var t domain.Tag
	err := s.getJSON(tagKey(userID, tagID), &t)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}

	t.ClampCount()
	return &t, nil
}

// ListTags returns all of the user's tags ordered by job count (descending),
// then id for stability.
func (s *Store) ListTags(ctx context.Context, userID string) ([]*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tags []*domain.Tag
	err := s.iteratePrefix(tagPrefix(userID), func(val []byte) error {
		var t domain.Tag
		if err := json.Unmarshal(val, &t); err != nil {
			if s.logger != nil {
				s.logger.Warn("skipping corrupt tag document", "user_id", userID, "error", err)
			}
			return nil
		}
		t.ClampCount()
		tags = append(tags, &t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].ID < tags[j].ID
	})

	return tags, nil
}

// SaveTag writes an updated tag back and broadcasts the change.
func (s *Store) SaveTag(ctx context.Context, userID string, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.ClampCount()
	if err := s.setJSON(tagKey(userID, t.ID), t); err != nil {
		return err
	}

	s.emit(events.NewTagUpdatedEvent(userID, t))
	return nil
}

// DeleteTag removes the tag record. Stripping the tag id from jobs is the
// service's job; affectedJobIDs travels on the event so clients can refresh.
func (s *Store) DeleteTag(ctx context.Context, userID, tagID string, affectedJobIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := tagKey(userID, tagID)
	ok, err := s.exists(key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTagNotFound
	}

	if err := s.deleteKey(key); err != nil {
		return err
	}

	s.emit(events.NewTagDeletedEvent(userID, tagID, affectedJobIDs))
	return nil
}
