package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/raido/internal/models"
)

// SaveAssessment upserts the assessment document for its job. An
// assessment without a jobId is a no-op.
func (db *DB) SaveAssessment(a models.Assessment) error {
	if a.JobID == "" {
		return nil
	}
	doc, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("cache: encode assessment: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO assessments (job_id, doc) VALUES (?, ?)
		ON CONFLICT(job_id) DO UPDATE SET doc = excluded.doc
	`, a.JobID, string(doc))
	if err != nil {
		return fmt.Errorf("cache: save assessment: %w", err)
	}
	return nil
}

// GetAssessment returns the stored assessment for a job, or nil when
// absent.
func (db *DB) GetAssessment(jobID string) (*models.Assessment, error) {
	var doc string
	err := db.conn.QueryRow(`SELECT doc FROM assessments WHERE job_id = ?`, jobID).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get assessment: %w", err)
	}
	var a models.Assessment
	if err := json.Unmarshal([]byte(doc), &a); err != nil {
		return nil, fmt.Errorf("cache: decode assessment: %w", err)
	}
	return &a, nil
}

// SaveResponse appends one submitted response under its job.
func (db *DB) SaveResponse(resp models.Response) error {
	if resp.JobID == "" {
		return nil
	}
	doc, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("cache: encode response: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO responses (job_id, at, doc) VALUES (?, ?, ?)
	`, resp.JobID, resp.At.UTC().Format(time.RFC3339Nano), string(doc))
	if err != nil {
		return fmt.Errorf("cache: save response: %w", err)
	}
	return nil
}

// ResponsesFor returns every stored response for one job, ordered by
// submission time ascending.
func (db *DB) ResponsesFor(jobID string) ([]models.Response, error) {
	rows, err := db.conn.Query(`SELECT doc FROM responses WHERE job_id = ? ORDER BY at ASC, idx ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("cache: responses for %s: %w", jobID, err)
	}
	defer rows.Close()

	var out []models.Response
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var r models.Response
		if err := json.Unmarshal([]byte(doc), &r); err != nil {
			return nil, fmt.Errorf("cache: decode response: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
