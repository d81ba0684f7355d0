package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	conn *sql.DB
	Path string
}

// OpenDB opens a SQLite database with WAL mode and foreign keys enabled,
// creating the schema if it does not exist yet.
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	d := &DB{conn: conn, Path: path}
	if err := d.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return d, nil
}

// migrate creates the schema. Every statement is idempotent, so re-opening
// an existing database is a no-op.
func (d *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at INTEGER DEFAULT (unixepoch())
	);

	CREATE TABLE IF NOT EXISTS members (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		joined_at INTEGER,
		sober_since INTEGER,
		server_comments INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_members_username ON members(username);

	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		author_id TEXT NOT NULL,
		comment_count INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (author_id) REFERENCES members(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id);

	CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		from_id TEXT NOT NULL,
		to_id TEXT NOT NULL,
		created_at INTEGER NOT NULL DEFAULT 0,
		body TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (from_id) REFERENCES members(id) ON DELETE CASCADE,
		FOREIGN KEY (to_id) REFERENCES members(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_comments_from ON comments(from_id);
	CREATE INDEX IF NOT EXISTS idx_comments_to ON comments(to_id);

	CREATE TABLE IF NOT EXISTS risk_scores (
		member_id TEXT PRIMARY KEY,
		risk REAL NOT NULL,
		level TEXT NOT NULL DEFAULT 'unknown',
		FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS layout_positions (
		member_id TEXT PRIMARY KEY,
		x REAL NOT NULL,
		y REAL NOT NULL,
		z REAL NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS layout_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		session INTEGER NOT NULL DEFAULT 0,
		best_seed TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS fitness_history (
		session INTEGER PRIMARY KEY,
		seed TEXT NOT NULL,
		fitness REAL NOT NULL,
		cohesion REAL NOT NULL,
		stability REAL NOT NULL,
		temperature REAL NOT NULL,
		recorded_at INTEGER NOT NULL DEFAULT 0
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.conn.Exec(schema)
	return err
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn returns the underlying sql.DB for custom queries
func (d *DB) Conn() *sql.DB {
	return d.conn
}
