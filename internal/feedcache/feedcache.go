// Package feedcache stores the ordered list of post ids composed for a
// viewer. Only identifiers are cached, never post bodies: hydration
// against the live post store keeps engagement numbers fresh while
// membership and order stay cached until TTL or invalidation.
//
// The cache is always advisory. Get reporting a miss, Put failing, or the
// whole store being unavailable all degrade to recomposition.
package feedcache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// MaxCachedIDs bounds the stored list to the first page-0 composition.
const MaxCachedIDs = 100

type Store struct {
	db  *badger.DB
	ttl time.Duration
	log *slog.Logger
}

// Open creates a badger-backed feed list cache. An empty path opens the
// store in memory.
func Open(path string, ttl time.Duration, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open feed cache: %w", err)
	}
	return &Store{db: db, ttl: ttl, log: log}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func key(viewer string) []byte { return []byte("feed:" + viewer) }

// Get returns the cached id list for viewer. ok=false on miss, expiry,
// corruption, or store failure.
func (s *Store) Get(viewer string) (ids []string, ok bool) {
	if s == nil || s.db == nil {
		return nil, false
	}
	err := s.db.View(func(txn *badger.Txn) error {
		item, getErr := txn.Get(key(viewer))
		if getErr == badger.ErrKeyNotFound {
			return nil
		}
		if getErr != nil {
			return getErr
		}
		return item.Value(func(v []byte) error {
			if unmarshalErr := json.Unmarshal(v, &ids); unmarshalErr != nil {
				return unmarshalErr
			}
			ok = true
			return nil
		})
	})
	if err != nil {
		s.log.Warn("feed cache read failure", "viewer", viewer, "error", err)
		return nil, false
	}
	return ids, ok
}

// Put stores up to MaxCachedIDs ids for viewer under the configured TTL.
func (s *Store) Put(viewer string, ids []string) {
	if s == nil || s.db == nil {
		return
	}
	if len(ids) > MaxCachedIDs {
		ids = ids[:MaxCachedIDs]
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		s.log.Warn("feed cache encode failure", "viewer", viewer, "error", err)
		return
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key(viewer), raw).WithTTL(s.ttl))
	})
	if err != nil {
		s.log.Warn("feed cache write failure", "viewer", viewer, "error", err)
	}
}

// Invalidate drops the cached list for viewer.
func (s *Store) Invalidate(viewer string) {
	if s == nil || s.db == nil {
		return
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		delErr := txn.Delete(key(viewer))
		if delErr == badger.ErrKeyNotFound {
			return nil
		}
		return delErr
	})
	if err != nil {
		s.log.Warn("feed cache invalidate failure", "viewer", viewer, "error", err)
	}
}
