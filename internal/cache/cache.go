// Package cache keeps external search responses in a bbolt file so repeated
// fetch runs do not hit the same search endpoint twice within the TTL.
// The cache is derived data: deleting the file is always safe.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const bucketResponses = "responses" // key: request key -> entry JSON

type entry struct {
	StoredAt time.Time `json:"stored_at"`
	Body     []byte    `json:"body"`
}

// Store is a bbolt-backed response cache. A zero TTL keeps entries forever.
type Store struct {
	db  *bbolt.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens (or creates) the cache file at path.
func Open(path string, ttl time.Duration) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache: mkdir: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketResponses))
		return err
	}); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("cache: init: %w", err)
	}

	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

// Close releases the cache file.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) expired(e entry) bool {
	return s.ttl > 0 && s.now().Sub(e.StoredAt) > s.ttl
}

// Get returns the cached body for key. Expired entries count as misses.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var (
		body []byte
		hit  bool
	)

	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(bucketResponses)).Get([]byte(key))
		if raw == nil {
			return nil
		}

		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return err
		}

		if s.expired(e) {
			return nil
		}

		body, hit = e.Body, true

		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("cache: get: %w", err)
	}

	return body, hit, nil
}

// Put stores body under key, replacing any previous entry.
func (s *Store) Put(key string, body []byte) error {
	data, err := json.Marshal(entry{StoredAt: s.now(), Body: body})
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketResponses)).Put([]byte(key), data)
	})
}

// Purge deletes expired entries and returns how many were removed.
func (s *Store) Purge() (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	var n int

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketResponses))

		var stale [][]byte

		if err := b.ForEach(func(k, v []byte) error {
			var e entry
			if err := json.Unmarshal(v, &e); err != nil || s.expired(e) {
				stale = append(stale, append([]byte(nil), k...))
			}

			return nil
		}); err != nil {
			return err
		}

		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}

		n = len(stale)

		return nil
	})

	return n, err
}
