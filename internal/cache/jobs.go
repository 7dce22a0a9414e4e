package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/starford/raido/internal/models"
)

// JobQuery filters and paginates a job scan. Search matches title and
// slug case-insensitively; Status is an exact match. Results come back
// in ascending rank order.
type JobQuery struct {
	Search   string
	Status   models.JobStatus
	Page     int
	PageSize int
}

// SaveJob upserts one job by id. A job without an id is a no-op, callers
// must supply a key.
func (db *DB) SaveJob(j models.Job) error {
	if j.ID == "" {
		return nil
	}
	tagsJSON, _ := json.Marshal(j.Tags)
	_, err := db.conn.Exec(`
		INSERT INTO jobs (id, title, slug, status, tags, ord)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title  = excluded.title,
			slug   = excluded.slug,
			status = excluded.status,
			tags   = excluded.tags,
			ord    = excluded.ord
	`, j.ID, j.Title, j.Slug, string(j.Status), string(tagsJSON), j.Order)
	if err != nil {
		return fmt.Errorf("cache: save job: %w", err)
	}
	return nil
}

// BulkSaveJobs upserts all jobs in one transaction. Empty input is a no-op.
func (db *DB) BulkSaveJobs(jobs []models.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("cache: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	stmt, err := tx.Prepare(`
		INSERT INTO jobs (id, title, slug, status, tags, ord)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title  = excluded.title,
			slug   = excluded.slug,
			status = excluded.status,
			tags   = excluded.tags,
			ord    = excluded.ord
	`)
	if err != nil {
		return fmt.Errorf("cache: prepare job upsert: %w", err)
	}
	defer stmt.Close()

	for _, j := range jobs {
		if j.ID == "" {
			continue
		}
		tagsJSON, _ := json.Marshal(j.Tags)
		if _, err := stmt.Exec(j.ID, j.Title, j.Slug, string(j.Status), string(tagsJSON), j.Order); err != nil {
			return fmt.Errorf("cache: upsert job %s: %w", j.ID, err)
		}
	}
	return tx.Commit()
}

// GetJob returns the job with the given id, or nil when absent.
func (db *DB) GetJob(id string) (*models.Job, error) {
	row := db.conn.QueryRow(`SELECT id, title, slug, status, tags, ord FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get job: %w", err)
	}
	return &j, nil
}

// ListJobs runs a filtered, rank-ordered, paginated scan with a total
// count over the same predicate.
func (db *DB) ListJobs(q JobQuery) (models.Page[models.Job], error) {
	where, args := jobPredicate(q)

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM jobs`+where, args...).Scan(&total); err != nil {
		return models.Page[models.Job]{}, fmt.Errorf("cache: count jobs: %w", err)
	}

	page, pageSize := q.Page, q.PageSize
	if pageSize < 1 {
		pageSize = 10
	}
	pages := models.PageCount(total, pageSize)
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	rows, err := db.conn.Query(
		`SELECT id, title, slug, status, tags, ord FROM jobs`+where+` ORDER BY ord ASC LIMIT ? OFFSET ?`,
		append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return models.Page[models.Job]{}, fmt.Errorf("cache: list jobs: %w", err)
	}
	defer rows.Close()

	results := []models.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return models.Page[models.Job]{}, err
		}
		results = append(results, j)
	}
	if err := rows.Err(); err != nil {
		return models.Page[models.Job]{}, err
	}
	return models.Page[models.Job]{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    pages,
		Results:  results,
	}, nil
}

// JobBySlug returns the job with the given slug, or nil when absent.
func (db *DB) JobBySlug(slug string) (*models.Job, error) {
	row := db.conn.QueryRow(`SELECT id, title, slug, status, tags, ord FROM jobs WHERE slug = ?`, slug)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: job by slug: %w", err)
	}
	return &j, nil
}

func jobPredicate(q JobQuery) (string, []any) {
	var conds []string
	var args []any
	if q.Status != "" {
		conds = append(conds, `status = ?`)
		args = append(args, string(q.Status))
	}
	if q.Search != "" {
		needle := "%" + strings.ToLower(q.Search) + "%"
		conds = append(conds, `(lower(title) LIKE ? OR slug LIKE ?)`)
		args = append(args, needle, needle)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (models.Job, error) {
	var j models.Job
	var status, tags string
	if err := r.Scan(&j.ID, &j.Title, &j.Slug, &status, &tags, &j.Order); err != nil {
		return models.Job{}, err
	}
	j.Status = models.JobStatus(status)
	_ = json.Unmarshal([]byte(tags), &j.Tags)
	return j, nil
}
