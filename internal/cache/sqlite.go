package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/inmueble/internal/sqlitedb"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS fallback_cache (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	created_at TEXT NOT NULL
)`

// SQLiteCache stores cache entries in a SQLite table
type SQLiteCache struct {
	db *sql.DB
}

// OpenSQLiteCache opens the cache table in the database at path
func OpenSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sqlitedb.Open(path)
	if err != nil {
		return nil, err
	}
	c, err := NewSQLiteCache(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// NewSQLiteCache uses an already open database
func NewSQLiteCache(db *sql.DB) (*SQLiteCache, error) {
	if err := sqlitedb.Migrate(db, sqliteSchema); err != nil {
		return nil, err
	}
	return &SQLiteCache{db: db}, nil
}

// Get retrieves a value from the table
func (c *SQLiteCache) Get(key string) ([]byte, bool) {
	var value []byte
	err := c.db.QueryRow(`SELECT value FROM fallback_cache WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return nil, false
	}
	return value, true
}

// Set upserts a value; concurrent writers of one key resolve last-write-wins
func (c *SQLiteCache) Set(key string, value []byte) error {
	_, err := c.db.Exec(
		`INSERT INTO fallback_cache (key, value, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, created_at = excluded.created_at`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}
	return nil
}

// Delete removes a value from the table
func (c *SQLiteCache) Delete(key string) error {
	if _, err := c.db.Exec(`DELETE FROM fallback_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry
func (c *SQLiteCache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM fallback_cache`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Len counts the stored entries
func (c *SQLiteCache) Len() (int, error) {
	var n int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM fallback_cache`).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return n, nil
}

// Close closes the underlying database
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
