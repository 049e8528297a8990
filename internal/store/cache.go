package store

import (
	"database/sql"
	"fmt"
	"time"
)

// CacheStore is the local key-value string cache: the first-read source
// of truth on startup, independent of remote availability. Keys are
// plain strings (catalog, packages, app snapshot).
type CacheStore struct {
	store *Store
}

// Put writes a cache entry.
func (c *CacheStore) Put(key, value string) error {
	if key == "" {
		return fmt.Errorf("cache key is required")
	}
	_, err := c.store.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Get reads a cache entry. A missing key returns ("", false, nil).
func (c *CacheStore) Get(key string) (string, bool, error) {
	var value string
	err := c.store.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return value, true, nil
}

// Delete removes a cache entry.
func (c *CacheStore) Delete(key string) error {
	if _, err := c.store.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}
