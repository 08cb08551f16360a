// Package cache provides a SQLite-backed store of rendered page bodies keyed
// by page id, the page's last edit time and the renderer version.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// schemaVersion is stored in PRAGMA user_version. The cache is disposable,
// so a file written with another layout is dropped and rebuilt.
const schemaVersion = 2

const schemaSQL = `
CREATE TABLE IF NOT EXISTS pages (
	id             TEXT PRIMARY KEY,
	last_edited    TEXT NOT NULL,
	render_version TEXT NOT NULL DEFAULT '',
	body           TEXT NOT NULL DEFAULT '',
	updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// PageCache defines the render cache operations. Consumers depend on this
// interface rather than *DB.
type PageCache interface {
	Lookup(ctx context.Context, id string, lastEdited time.Time) (string, bool, error)
	Put(ctx context.Context, id string, lastEdited time.Time, body string) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Verify *DB satisfies PageCache at compile time.
var _ PageCache = (*DB)(nil)

// DB wraps a sql.DB holding the pages table.
type DB struct {
	conn    *sql.DB
	now     func() time.Time
	version string
}

// Option customises a DB.
type Option func(*DB)

// WithRenderVersion tags stored bodies with the renderer version. Entries
// written under another version are treated as misses.
func WithRenderVersion(v string) Option {
	return func(db *DB) { db.version = v }
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string, opts ...Option) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	db := &DB{conn: conn, now: time.Now}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

func migrate(conn *sql.DB) error {
	var current int
	if err := conn.QueryRow(`PRAGMA user_version`).Scan(&current); err != nil {
		return fmt.Errorf("cache: read schema version: %w", err)
	}
	if current != schemaVersion {
		if _, err := conn.Exec(`DROP TABLE IF EXISTS pages`); err != nil {
			return fmt.Errorf("cache: drop old schema: %w", err)
		}
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		return fmt.Errorf("cache: apply schema: %w", err)
	}
	if _, err := conn.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion)); err != nil {
		return fmt.Errorf("cache: set schema version: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// editKey is the stored form of a last edit time. Comparison is textual so
// the stored value must be canonical.
func editKey(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Lookup returns the cached body for id when it was rendered from the
// revision edited at lastEdited by the current renderer version.
func (db *DB) Lookup(ctx context.Context, id string, lastEdited time.Time) (string, bool, error) {
	var body string
	err := db.conn.QueryRowContext(ctx,
		`SELECT body FROM pages WHERE id = ? AND last_edited = ? AND render_version = ?`,
		id, editKey(lastEdited), db.version,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache: lookup %s: %w", id, err)
	}
	return body, true, nil
}

// Put stores the body rendered from the revision edited at lastEdited,
// replacing any older entry.
func (db *DB) Put(ctx context.Context, id string, lastEdited time.Time, body string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO pages (id, last_edited, render_version, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_edited    = excluded.last_edited,
			render_version = excluded.render_version,
			body           = excluded.body,
			updated_at     = excluded.updated_at
	`, id, editKey(lastEdited), db.version, body, db.now().UTC())
	if err != nil {
		return fmt.Errorf("cache: put %s: %w", id, err)
	}
	return nil
}

// Delete removes the entry for id. Deleting a missing entry is not an error.
func (db *DB) Delete(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id); err != nil {
		return fmt.Errorf("cache: delete %s: %w", id, err)
	}
	return nil
}
