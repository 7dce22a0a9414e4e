// Package cache provides the SQLite-backed local store that mirrors
// every successful read and write, so the client can render instantly
// on reload. It is a write-through cache: reads of live collections
// stay authoritative from the network, and a failed cache write is a
// recoverable warning, never a primary-operation failure.
package cache

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS jobs (
	id     TEXT PRIMARY KEY,
	title  TEXT NOT NULL DEFAULT '',
	slug   TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'active',
	tags   TEXT NOT NULL DEFAULT '[]',
	ord    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_jobs_slug ON jobs(slug);
CREATE INDEX IF NOT EXISTS idx_jobs_ord ON jobs(ord);

CREATE TABLE IF NOT EXISTS candidates (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	stage      TEXT NOT NULL DEFAULT 'applied',
	applied_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_candidates_applied ON candidates(applied_at);

CREATE TABLE IF NOT EXISTS timelines (
	idx          INTEGER PRIMARY KEY AUTOINCREMENT,
	id           TEXT NOT NULL UNIQUE,
	candidate_id TEXT NOT NULL,
	at           TEXT NOT NULL,
	type         TEXT NOT NULL,
	payload      TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_timelines_candidate ON timelines(candidate_id, at);

CREATE TABLE IF NOT EXISTS assessments (
	job_id TEXT PRIMARY KEY,
	doc    TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS responses (
	idx    INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id TEXT NOT NULL,
	at     TEXT NOT NULL,
	doc    TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_responses_job ON responses(job_id, at);
`

// DB wraps a sql.DB with store operations per entity type.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Entity names accepted by Clear.
const (
	EntityJobs        = "jobs"
	EntityCandidates  = "candidates"
	EntityTimelines   = "timelines"
	EntityAssessments = "assessments"
	EntityResponses   = "responses"
)

// Clear removes every row of one entity type.
func (db *DB) Clear(entity string) error {
	switch entity {
	case EntityJobs, EntityCandidates, EntityTimelines, EntityAssessments, EntityResponses:
	default:
		return fmt.Errorf("cache: unknown entity %q", entity)
	}
	if _, err := db.conn.Exec(`DELETE FROM ` + entity); err != nil {
		return fmt.Errorf("cache: clear %s: %w", entity, err)
	}
	return nil
}

// ClearAll removes every row of every entity type.
func (db *DB) ClearAll() error {
	for _, e := range []string{EntityJobs, EntityCandidates, EntityTimelines, EntityAssessments, EntityResponses} {
		if err := db.Clear(e); err != nil {
			return err
		}
	}
	return nil
}
