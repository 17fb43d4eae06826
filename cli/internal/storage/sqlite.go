// ABOUTME: SQLite-backed implementation of the item store and cookie jar
// ABOUTME: One database file per data directory, migrated on open

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DBFile is the database file name inside the data directory
const DBFile = "storefront.db"

// DB is the SQLite store
type DB struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ Items   = (*DB)(nil)
	_ Cookies = (*DB)(nil)
)

// Open opens (creating if needed) the database in dataDir and runs migrations
func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dataDir, DBFile)
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Writes are synchronous and ordered; a single connection keeps them so.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &DB{db: sqlDB, now: time.Now}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return d, nil
}

// Close closes the database
func (d *DB) Close() error {
	return d.db.Close()
}

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "001_local_storage",
		sql: `CREATE TABLE IF NOT EXISTS local_storage (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
	},
	{
		name: "002_cookies",
		sql: `CREATE TABLE IF NOT EXISTS cookies (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			path TEXT NOT NULL DEFAULT '/',
			expires_at INTEGER NOT NULL DEFAULT 0,
			secure INTEGER NOT NULL DEFAULT 0,
			same_site TEXT NOT NULL DEFAULT ''
		)`,
	},
}

func (d *DB) migrate() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			applied_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		var count int
		if err := d.db.QueryRow("SELECT COUNT(*) FROM migrations WHERE name = ?", m.name).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		tx, err := d.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
		if _, err := tx.Exec("INSERT INTO migrations (name, applied_at) VALUES (?, ?)", m.name, d.now().Unix()); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// GetItem reads a local storage entry
func (d *DB) GetItem(key string) (string, bool, error) {
	var value string
	err := d.db.QueryRow("SELECT value FROM local_storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, true, nil
}

// SetItem overwrites a local storage entry
func (d *DB) SetItem(key, value string) error {
	_, err := d.db.Exec(`
		INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, d.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// RemoveItem deletes a local storage entry; missing keys are not an error
func (d *DB) RemoveItem(key string) error {
	if _, err := d.db.Exec("DELETE FROM local_storage WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}
	return nil
}

// GetCookie returns the named cookie, or nil when absent or expired.
// Expired rows are deleted on read.
func (d *DB) GetCookie(name string) (*Cookie, error) {
	var (
		c         Cookie
		expiresAt int64
		secure    int
		sameSite  string
	)
	err := d.db.QueryRow(
		"SELECT name, value, path, expires_at, secure, same_site FROM cookies WHERE name = ?", name,
	).Scan(&c.Name, &c.Value, &c.Path, &expiresAt, &secure, &sameSite)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie %q: %w", name, err)
	}

	if expiresAt > 0 {
		c.Expires = time.Unix(expiresAt, 0)
	}
	c.Secure = secure == 1
	c.SameSite = parseSameSite(sameSite)

	if c.Expired(d.now()) {
		if err := d.RemoveCookie(name); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &c, nil
}

// SetCookie stores or replaces a cookie
func (d *DB) SetCookie(c Cookie) error {
	var expiresAt int64
	if !c.Expires.IsZero() {
		expiresAt = c.Expires.Unix()
	}
	secure := 0
	if c.Secure {
		secure = 1
	}
	path := c.Path
	if path == "" {
		path = "/"
	}

	_, err := d.db.Exec(`
		INSERT INTO cookies (name, value, path, expires_at, secure, same_site) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, path = excluded.path,
			expires_at = excluded.expires_at, secure = excluded.secure, same_site = excluded.same_site
	`, c.Name, c.Value, path, expiresAt, secure, sameSiteString(c.SameSite))
	if err != nil {
		return fmt.Errorf("failed to write cookie %q: %w", c.Name, err)
	}
	return nil
}

// RemoveCookie deletes a cookie; missing cookies are not an error
func (d *DB) RemoveCookie(name string) error {
	if _, err := d.db.Exec("DELETE FROM cookies WHERE name = ?", name); err != nil {
		return fmt.Errorf("failed to remove cookie %q: %w", name, err)
	}
	return nil
}
