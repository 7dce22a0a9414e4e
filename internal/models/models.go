// Package models defines the domain types for Raido.
package models

import (
	"strings"
	"time"
	"unicode"
)

// JobStatus is the lifecycle state of a job listing.
type JobStatus string

// Job statuses.
const (
	JobActive   JobStatus = "active"
	JobArchived JobStatus = "archived"
)

// Valid reports whether s is a known job status.
func (s JobStatus) Valid() bool {
	return s == JobActive || s == JobArchived
}

// Job is a job listing. Order is a dense 1-based rank within the full
// collection: after any accepted reorder the order values of all jobs
// equal their positions, with no gaps and no duplicates.
type Job struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Slug   string    `json:"slug"`
	Status JobStatus `json:"status"`
	Tags   []string  `json:"tags"`
	Order  int       `json:"order"`
}

// Stage is a candidate's position in the hiring pipeline.
type Stage string

// Pipeline stages, in conventional progression order. Transitions are
// unrestricted; the order here is presentational only.
const (
	StageApplied  Stage = "applied"
	StageScreen   Stage = "screen"
	StageTech     Stage = "tech"
	StageOffer    Stage = "offer"
	StageHired    Stage = "hired"
	StageRejected Stage = "rejected"
)

// Stages lists every pipeline stage.
var Stages = []Stage{StageApplied, StageScreen, StageTech, StageOffer, StageHired, StageRejected}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	for _, st := range Stages {
		if s == st {
			return true
		}
	}
	return false
}

// Candidate is an applicant tracked through the pipeline.
type Candidate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Stage     Stage     `json:"stage"`
	AppliedAt time.Time `json:"appliedAt"`
}

// EventType distinguishes timeline event kinds.
type EventType string

// Timeline event types.
const (
	EventStatusChange EventType = "status_change"
	EventNote         EventType = "note"
)

// EventPayload carries the event-specific data. For status_change events
// From/To are set (From is nil on initial creation); for note events Text
// is set.
type EventPayload struct {
	From *Stage `json:"from,omitempty"`
	To   Stage  `json:"to,omitempty"`
	Text string `json:"text,omitempty"`
}

// TimelineEvent is one append-only entry in a candidate's history,
// ordered by At ascending.
type TimelineEvent struct {
	ID          string       `json:"id"`
	CandidateID string       `json:"candidateId"`
	At          time.Time    `json:"at"`
	Type        EventType    `json:"type"`
	Payload     EventPayload `json:"payload"`
}

// Page is the canonical paginated result shape for collection reads.
type Page[T any] struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Pages    int `json:"pages"`
	Results  []T `json:"results"`
}

// PageCount returns max(1, ceil(total/pageSize)).
func PageCount(total, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// NewPage slices items into the canonical paginated shape. The requested
// page is clamped into [1, pages].
func NewPage[T any](items []T, page, pageSize int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	total := len(items)
	pages := PageCount(total, pageSize)
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	results := make([]T, end-start)
	copy(results, items[start:end])
	return Page[T]{Total: total, Page: page, PageSize: pageSize, Pages: pages, Results: results}
}

// Slugify derives a URL slug from a title: lowercased, runs of
// whitespace collapsed to single hyphens, every other non-alphanumeric
// rune stripped. Running Slugify on its own output is a fixed point.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
				inSpace = true
			}
			continue
		}
		inSpace = false
		if r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
