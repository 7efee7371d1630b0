package store

import (
	"context"
	"encoding/json/v2"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/applytrack/applytrack-server/internal/domain"
	"github.com/applytrack/applytrack-server/internal/events"
)

// Status errors.
var (
	ErrStatusNotFound = errors.New("status not found")
	ErrStatusExists   = errors.New("status already exists")
)

// CreateStatus stores a new custom status. Only custom statuses are
// persisted; the seeded defaults are materialized at read time and merged
// over by the service layer.
func (s *Store) CreateStatus(ctx context.Context, userID string, status *domain.JobStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := statusKey(userID, status.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrStatusExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err := json.Marshal(status)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	s.emit(events.NewStatusCreatedEvent(userID, status))
	return nil
}

// GetCustomStatus retrieves a stored custom status by id. Seeded defaults
// are not stored here and report not found.
func (s *Store) GetCustomStatus(ctx context.Context, userID, statusID string) (*domain.JobStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var status domain.JobStatus
	err := s.getJSON(statusKey(userID, statusID), &status)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrStatusNotFound
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// ListCustomStatuses returns the user's stored custom statuses keyed by id.
func (s *Store) ListCustomStatuses(ctx context.Context, userID string) (map[string]*domain.JobStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	statuses := make(map[string]*domain.JobStatus)
	err := s.iteratePrefix(statusPrefix(userID), func(val []byte) error {
		var status domain.JobStatus
		if err := json.Unmarshal(val, &status); err != nil {
			if s.logger != nil {
				s.logger.Warn("skipping corrupt status document", "user_id", userID, "error", err)
			}
			return nil
		}
		statuses[status.ID] = &status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

// SaveStatus writes an updated custom status back and broadcasts the change.
func (s *Store) SaveStatus(ctx context.Context, userID string, status *domain.JobStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.setJSON(statusKey(userID, status.ID), status); err != nil {
		return err
	}

	s.emit(events.NewStatusUpdatedEvent(userID, status))
	return nil
}

// DeleteStatus removes a custom status record. Reassigning the jobs that
// carried it happens in the service before this is called; reassignedTo
// travels on the event.
func (s *Store) DeleteStatus(ctx context.Context, userID, statusID, reassignedTo string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := statusKey(userID, statusID)
	ok, err := s.exists(key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStatusNotFound
	}

	if err := s.deleteKey(key); err != nil {
		return err
	}

	s.emit(events.NewStatusDeletedEvent(userID, statusID, reassignedTo))
	return nil
}

// DeleteAllCustomStatuses wipes every custom status, restoring the seeded
// defaults as the complete status set.
func (s *Store) DeleteAllCustomStatuses(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := statusPrefix(userID)

	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		var keysToDelete [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keyCopy := make([]byte, len(it.Item().Key()))
			copy(keyCopy, it.Item().Key())
			keysToDelete = append(keysToDelete, keyCopy)
		}

		for _, k := range keysToDelete {
			if err := txn.Delete(k); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.emit(events.NewStatusesResetEvent(userID))
	return nil
}
