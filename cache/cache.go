// Package cache stores extraction results in SQLite, keyed by document
// content and extraction settings.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tsawler/pagevisuals/extract"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	key        TEXT PRIMARY KEY,
	page_count INTEGER NOT NULL,
	result     TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// Cache wraps the SQLite database holding cached results.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path.
func Open(path string) (*Cache, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	db.SetMaxOpenConns(4)
	return &Cache{db: db}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key identifies a document extracted with cfg.
func Key(content []byte, cfg extract.Config) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:]) + ":" + cfg.Fingerprint()
}

// Get returns the result stored under key. ok is false on a miss.
func (c *Cache) Get(ctx context.Context, key string) (res *extract.Result, ok bool, err error) {
	var raw string
	err = c.db.QueryRowContext(ctx, `SELECT result FROM results WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache: %w", err)
	}
	res = new(extract.Result)
	if err := json.Unmarshal([]byte(raw), res); err != nil {
		return nil, false, fmt.Errorf("decoding cached result: %w", err)
	}
	return res, true, nil
}

// Put stores res under key, replacing any earlier entry.
func (c *Cache) Put(ctx context.Context, key string, res *extract.Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO results (key, page_count, result) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			page_count = excluded.page_count,
			result = excluded.result,
			created_at = CURRENT_TIMESTAMP
	`, key, res.PageCount, string(raw))
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}
