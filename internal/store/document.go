package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Document-level helpers. Entity methods build on five primitives: get,
// set, field update by dotted path, field delete by dotted path, and prefix
// query. Path updates decode the stored JSON into a generic map, mutate it,
// and write the whole document back inside one transaction.

// ErrDocumentNotFound is returned when a keyed document does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// updateDocField sets the value at a dotted path inside the document stored
// at key, creating intermediate objects as needed.
func (s *Store) updateDocField(key []byte, path string, value any) error {
	return s.db.Update(func(txn *badger.Txn) error {
		doc, err := readDocMap(txn, key)
		if err != nil {
			return err
		}

		if err := setPath(doc, path, value); err != nil {
			return err
		}

		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// deleteDocField removes the value at a dotted path inside the document
// stored at key. A missing path is a no-op.
func (s *Store) deleteDocField(key []byte, path string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		doc, err := readDocMap(txn, key)
		if err != nil {
			return err
		}

		if !deletePath(doc, path) {
			return nil
		}

		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// iteratePrefix scans all documents under prefix, invoking fn with each raw
// value. fn errors abort the scan.
func (s *Store) iteratePrefix(prefix []byte, fn func(val []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				return fn(val)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// readDocMap loads the document at key into a generic map.
func readDocMap(txn *badger.Txn, key []byte) (map[string]any, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &doc)
	}); err != nil {
		return nil, err
	}
	return doc, nil
}

// setPath writes value at a dotted path, creating intermediate objects.
// Fails if a path segment is occupied by a non-object value.
func setPath(doc map[string]any, path string, value any) error {
	parts := strings.Split(path, ".")
	current := doc

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok || next == nil {
			child := make(map[string]any)
			current[part] = child
			current = child
			continue
		}

		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("path segment %q is not an object", part)
		}
		current = child
	}

	current[parts[len(parts)-1]] = value
	return nil
}

// deletePath removes the value at a dotted path. Returns true if something
// was removed.
func deletePath(doc map[string]any, path string) bool {
	parts := strings.Split(path, ".")
	current := doc

	for _, part := range parts[:len(parts)-1] {
		child, ok := current[part].(map[string]any)
		if !ok {
			return false
		}
		current = child
	}

	leaf := parts[len(parts)-1]
	if _, ok := current[leaf]; !ok {
		return false
	}
	delete(current, leaf)
	return true
}
