package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists cached response bodies so warm entries survive a
// restart. Rows are namespaced by cache name, letting the per-resource
// caches share one database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (and migrates) the store at path, creating the
// parent directory if needed.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// WAL keeps concurrent reads cheap
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Infof("Persistent cache store initialized at %s", path)
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS metadata_cache (
			cache TEXT NOT NULL,
			key TEXT NOT NULL,
			body BLOB NOT NULL,
			expires_at TEXT NOT NULL,
			PRIMARY KEY (cache, key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_metadata_cache_expires_at ON metadata_cache(expires_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// Get returns the stored body and expiry for a key. Expired rows are
// purged on access.
func (s *SQLiteStore) Get(cacheName, key string) ([]byte, time.Time, bool) {
	var body []byte
	var expiresStr string
	err := s.db.QueryRow(
		`SELECT body, expires_at FROM metadata_cache WHERE cache = ? AND key = ?`,
		cacheName, key,
	).Scan(&body, &expiresStr)
	if err != nil {
		return nil, time.Time{}, false
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, expiresStr)
	if err != nil {
		log.Warnf("Failed to parse expires_at %q for cache key %q", expiresStr, key)
		return nil, time.Time{}, false
	}

	if time.Now().After(expiresAt) {
		if _, err := s.db.Exec(`DELETE FROM metadata_cache WHERE cache = ? AND key = ?`, cacheName, key); err != nil {
			log.Warnf("Failed to purge expired cache row %q: %v", key, err)
		}
		return nil, time.Time{}, false
	}

	return body, expiresAt, true
}

// Set inserts or replaces a row.
func (s *SQLiteStore) Set(cacheName, key string, body []byte, expiresAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO metadata_cache (cache, key, body, expires_at) VALUES (?, ?, ?, ?)`,
		cacheName, key, body, expiresAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to store cache row: %w", err)
	}
	return nil
}

// Clear removes every row belonging to one cache.
func (s *SQLiteStore) Clear(cacheName string) error {
	_, err := s.db.Exec(`DELETE FROM metadata_cache WHERE cache = ?`, cacheName)
	return err
}
