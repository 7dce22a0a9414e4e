package cache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/starford/raido/internal/models"
)

// CandidateQuery filters and paginates a candidate scan. Search matches
// name and email case-insensitively; Stage is an exact match. Results
// come back newest-applied first, matching the server ordering.
type CandidateQuery struct {
	Search   string
	Stage    models.Stage
	Page     int
	PageSize int
}

// SaveCandidate upserts one candidate by id. A candidate without an id
// is a no-op.
func (db *DB) SaveCandidate(c models.Candidate) error {
	if c.ID == "" {
		return nil
	}
	_, err := db.conn.Exec(`
		INSERT INTO candidates (id, name, email, stage, applied_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name       = excluded.name,
			email      = excluded.email,
			stage      = excluded.stage,
			applied_at = excluded.applied_at
	`, c.ID, c.Name, c.Email, string(c.Stage), c.AppliedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("cache: save candidate: %w", err)
	}
	return nil
}

// BulkSaveCandidates upserts all candidates in one transaction. Empty
// input is a no-op.
func (db *DB) BulkSaveCandidates(list []models.Candidate) error {
	if len(list) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("cache: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(`
		INSERT INTO candidates (id, name, email, stage, applied_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name       = excluded.name,
			email      = excluded.email,
			stage      = excluded.stage,
			applied_at = excluded.applied_at
	`)
	if err != nil {
		return fmt.Errorf("cache: prepare candidate upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range list {
		if c.ID == "" {
			continue
		}
		if _, err := stmt.Exec(c.ID, c.Name, c.Email, string(c.Stage), c.AppliedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("cache: upsert candidate %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// GetCandidate returns the candidate with the given id, or nil when absent.
func (db *DB) GetCandidate(id string) (*models.Candidate, error) {
	row := db.conn.QueryRow(`SELECT id, name, email, stage, applied_at FROM candidates WHERE id = ?`, id)
	c, err := scanCandidate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get candidate: %w", err)
	}
	return &c, nil
}

// ListCandidates runs a filtered, paginated scan ordered by appliedAt
// descending, with a total count over the same predicate.
func (db *DB) ListCandidates(q CandidateQuery) (models.Page[models.Candidate], error) {
	var conds []string
	var args []any
	if q.Stage != "" {
		conds = append(conds, `stage = ?`)
		args = append(args, string(q.Stage))
	}
	if q.Search != "" {
		needle := "%" + strings.ToLower(q.Search) + "%"
		conds = append(conds, `(lower(name) LIKE ? OR lower(email) LIKE ?)`)
		args = append(args, needle, needle)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM candidates`+where, args...).Scan(&total); err != nil {
		return models.Page[models.Candidate]{}, fmt.Errorf("cache: count candidates: %w", err)
	}

	page, pageSize := q.Page, q.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	pages := models.PageCount(total, pageSize)
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	rows, err := db.conn.Query(
		`SELECT id, name, email, stage, applied_at FROM candidates`+where+` ORDER BY applied_at DESC LIMIT ? OFFSET ?`,
		append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return models.Page[models.Candidate]{}, fmt.Errorf("cache: list candidates: %w", err)
	}
	defer rows.Close()

	results := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return models.Page[models.Candidate]{}, err
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return models.Page[models.Candidate]{}, err
	}
	return models.Page[models.Candidate]{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    pages,
		Results:  results,
	}, nil
}

func scanCandidate(r rowScanner) (models.Candidate, error) {
	var c models.Candidate
	var stage, appliedAt string
	if err := r.Scan(&c.ID, &c.Name, &c.Email, &stage, &appliedAt); err != nil {
		return models.Candidate{}, err
	}
	c.Stage = models.Stage(stage)
	c.AppliedAt, _ = time.Parse(time.RFC3339Nano, appliedAt)
	return c, nil
}
