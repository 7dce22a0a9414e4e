package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/raido/internal/models"
)

// SaveTimelineEvent appends one event. Events are append-only and keyed
// by their server (or locally generated) id, so re-saving the same event
// is a no-op rather than a duplicate.
func (db *DB) SaveTimelineEvent(ev models.TimelineEvent) error {
	if ev.ID == "" {
		return nil
	}
	payload, _ := json.Marshal(ev.Payload)
	_, err := db.conn.Exec(`
		INSERT OR IGNORE INTO timelines (id, candidate_id, at, type, payload)
		VALUES (?, ?, ?, ?, ?)
	`, ev.ID, ev.CandidateID, ev.At.UTC().Format(time.RFC3339Nano), string(ev.Type), string(payload))
	if err != nil {
		return fmt.Errorf("cache: save timeline event: %w", err)
	}
	return nil
}

// BulkSaveTimeline appends all events in one transaction, skipping any
// already present. Empty input is a no-op.
func (db *DB) BulkSaveTimeline(events []models.TimelineEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("cache: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO timelines (id, candidate_id, at, type, payload)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("cache: prepare timeline insert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if ev.ID == "" {
			continue
		}
		payload, _ := json.Marshal(ev.Payload)
		if _, err := stmt.Exec(ev.ID, ev.CandidateID, ev.At.UTC().Format(time.RFC3339Nano), string(ev.Type), string(payload)); err != nil {
			return fmt.Errorf("cache: insert timeline event %s: %w", ev.ID, err)
		}
	}
	return tx.Commit()
}

// TimelineFor returns every event for one candidate, ordered by At
// ascending.
func (db *DB) TimelineFor(candidateID string) ([]models.TimelineEvent, error) {
	rows, err := db.conn.Query(`
		SELECT id, candidate_id, at, type, payload
		FROM timelines
		WHERE candidate_id = ?
		ORDER BY at ASC, idx ASC
	`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("cache: timeline for %s: %w", candidateID, err)
	}
	defer rows.Close()

	var out []models.TimelineEvent
	for rows.Next() {
		var ev models.TimelineEvent
		var at, typ, payload string
		if err := rows.Scan(&ev.ID, &ev.CandidateID, &at, &typ, &payload); err != nil {
			return nil, err
		}
		ev.At, _ = time.Parse(time.RFC3339Nano, at)
		ev.Type = models.EventType(typ)
		_ = json.Unmarshal([]byte(payload), &ev.Payload)
		out = append(out, ev)
	}
	return out, rows.Err()
}
