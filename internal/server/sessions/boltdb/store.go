package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/filedepot/filedepot/internal/server/sessions"
)

var bucketSessions = []byte("sessions")

// entry is the stored value: the payload plus its absolute expiry.
type entry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store is a BoltDB-backed session store with per-key TTL. Expired keys are
// dropped lazily on Get and in bulk by Cleanup.
type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

// New creates a new BoltDB session store
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Store, error) {
	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	store := &Store{db: db, now: time.Now}

	if err := store.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketSessions); err != nil {
			return fmt.Errorf("failed to create sessions bucket: %w", err)
		}
		return nil
	})
}

// Get returns the value for key, dropping it first if the TTL has elapsed.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	expired := false

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSessions).Get([]byte(key))
		if data == nil {
			return sessions.ErrNotFound
		}

		var e entry
		if err := json.Unmarshal(data, &e); err != nil {
			return fmt.Errorf("failed to unmarshal session entry: %w", err)
		}

		if s.now().After(e.ExpiresAt) {
			expired = true
			return sessions.ErrNotFound
		}

		value = e.Value
		return nil
	})

	if expired {
		// Lazy eviction; a racing Cleanup doing the same is harmless
		_ = s.Delete(ctx, key)
	}

	if err != nil {
		return "", err
	}

	return value, nil
}

// Set stores value under key with the given time-to-live.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	data, err := json.Marshal(entry{
		Value:     value,
		ExpiresAt: s.now().Add(ttl),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session entry: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketSessions).Put([]byte(key), data); err != nil {
			return fmt.Errorf("failed to save session entry: %w", err)
		}
		return nil
	})
}

// Delete removes key unconditionally.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketSessions).Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete session entry: %w", err)
		}
		return nil
	})
}

// Ping reports whether the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketSessions) == nil {
			return fmt.Errorf("sessions bucket not found")
		}
		return nil
	})
}

// Cleanup removes all expired entries and returns how many were dropped.
func (s *Store) Cleanup(ctx context.Context) (int, error) {
	removed := 0

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSessions)
		cursor := bucket.Cursor()

		var stale [][]byte
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var e entry
			if err := json.Unmarshal(v, &e); err != nil {
				// Unreadable entries are dropped along with expired ones
				stale = append(stale, append([]byte(nil), k...))
				continue
			}
			if s.now().After(e.ExpiresAt) {
				stale = append(stale, append([]byte(nil), k...))
			}
		}

		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return fmt.Errorf("failed to delete expired entry: %w", err)
			}
			removed++
		}

		return nil
	})

	if err != nil {
		return removed, err
	}

	return removed, nil
}
