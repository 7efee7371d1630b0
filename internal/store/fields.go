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

// Field errors.
var (
	ErrFieldNotFound = errors.New("field not found")
	ErrFieldExists   = errors.New("field already exists")
)

// CreateField stores a new custom field definition.
func (s *Store) CreateField(ctx context.Context, userID string, f *domain.CustomField) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := fieldKey(userID, f.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrFieldExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err := json.Marshal(f)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	s.emit(events.NewFieldCreatedEvent(userID, f))
	return nil
}

// GetField retrieves a custom field definition by id.
func (s *Store) GetField(ctx context.Context, userID, fieldID string) (*domain.CustomField, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var f domain.CustomField
	err := s.getJSON(fieldKey(userID, fieldID), &f)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrFieldNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFields returns all of the user's field definitions ordered by name.
func (s *Store) ListFields(ctx context.Context, userID string) ([]*domain.CustomField, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var fields []*domain.CustomField
	err := s.iteratePrefix(fieldPrefix(userID), func(val []byte) error {
		var f domain.CustomField
		if err := json.Unmarshal(val, &f); err != nil {
			if s.logger != nil {
				s.logger.Warn("skipping corrupt field document", "user_id", userID, "error", err)
			}
			return nil
		}
		fields = append(fields, &f)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Name < fields[j].Name
	})

	return fields, nil
}

// SaveField writes an updated field definition back and broadcasts the
// change.
func (s *Store) SaveField(ctx context.Context, userID string, f *domain.CustomField) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.setJSON(fieldKey(userID, f.ID), f); err != nil {
		return err
	}

	s.emit(events.NewFieldUpdatedEvent(userID, f))
	return nil
}

// DeleteField removes a field definition record. Cleaning the per-job
// values lives in the service, which runs before this is called.
func (s *Store) DeleteField(ctx context.Context, userID, fieldID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := fieldKey(userID, fieldID)
	ok, err := s.exists(key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFieldNotFound
	}

	if err := s.deleteKey(key); err != nil {
		return err
	}

	s.emit(events.NewFieldDeletedEvent(userID, fieldID))
	return nil
}
