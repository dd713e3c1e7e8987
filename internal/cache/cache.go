// Package cache stores minify results content-addressed by source
// bytes, so repeated batch runs skip unchanged templates.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// schemaVersion participates in every key, so a policy or schema
// change invalidates old entries without an explicit purge.
const schemaVersion = "tmplmin-1"

// Cache is a SQLite-backed store of minified template text. A single
// process owns the database file; concurrent use within that process
// is safe through database/sql's connection pool.
type Cache struct {
	db *sql.DB
}

// DefaultPath returns the per-user cache database location.
func DefaultPath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache directory: %w", err)
	}
	return filepath.Join(base, "tmplmin", "cache.db"), nil
}

// New opens the cache database at path, creating the file and parent
// directory if needed, and brings the schema up to date.
func New(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Key derives the cache key for source bytes minified under the given
// options fingerprint.
func Key(fingerprint string, source []byte) string {
	h := sha256.New()
	h.Write([]byte(schemaVersion))
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write(source)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached output for key. The second return is false
// when the key is absent.
func (c *Cache) Get(key string) (string, bool, error) {
	var output string
	err := c.db.QueryRow("SELECT output FROM entries WHERE key = ?", key).Scan(&output)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return output, true, nil
}

// Put stores output for key, replacing any previous entry.
func (c *Cache) Put(key, output string, bytesIn, bytesOut int) error {
	_, err := c.db.Exec(`
		INSERT INTO entries (key, output, bytes_in, bytes_out)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			output = excluded.output,
			bytes_in = excluded.bytes_in,
			bytes_out = excluded.bytes_out,
			created_at = CURRENT_TIMESTAMP`,
		key, output, bytesIn, bytesOut)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Purge removes every entry.
func (c *Cache) Purge() error {
	if _, err := c.db.Exec("DELETE FROM entries"); err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}

// Stats returns the entry count and the total bytes saved across all
// cached results.
func (c *Cache) Stats() (entries, bytesSaved int64, err error) {
	row := c.db.QueryRow("SELECT COUNT(*), COALESCE(SUM(bytes_in - bytes_out), 0) FROM entries")
	if err := row.Scan(&entries, &bytesSaved); err != nil {
		return 0, 0, fmt.Errorf("failed to read cache stats: %w", err)
	}
	return entries, bytesSaved, nil
}
