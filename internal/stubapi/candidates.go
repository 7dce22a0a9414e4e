package stubapi

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/starford/raido/internal/models"
)

// GET /api/candidates?search=&stage=&page=&pageSize=
func (s *Server) listCandidates(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))
	stage := r.URL.Query().Get("stage")
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 50)

	s.mu.Lock()
	filtered := make([]models.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		if stage != "" && string(c.Stage) != stage {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) && !strings.Contains(strings.ToLower(c.Email), search) {
			continue
		}
		filtered = append(filtered, c)
	}
	s.mu.Unlock()

	// Newest applications first.
	sort.Slice(filtered, func(i, k int) bool { return filtered[i].AppliedAt.After(filtered[k].AppliedAt) })

	s.delay()
	writeJSON(w, http.StatusOK, models.NewPage(filtered, page, pageSize))
}

// POST /api/candidates
func (s *Server) createCandidate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	name := strings.TrimSpace(body.Name)
	email := strings.TrimSpace(body.Email)
	if name == "" || email == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name and email required"))
		return
	}

	now := time.Now().UTC()
	c := models.Candidate{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Stage:     models.StageApplied,
		AppliedAt: now,
	}

	s.mu.Lock()
	s.candidates = append([]models.Candidate{c}, s.candidates...)
	s.timeline = append(s.timeline, models.TimelineEvent{
		ID:          uuid.NewString(),
		CandidateID: c.ID,
		At:          now,
		Type:        models.EventStatusChange,
		Payload:     models.EventPayload{From: nil, To: c.Stage},
	})
	s.mu.Unlock()

	s.events.PublishChange("candidate", "created", c.ID)
	s.delay()
	writeJSON(w, http.StatusCreated, c)
}

// GET /api/candidates/{id}
func (s *Server) getCandidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	idx := s.candidateIndex(id)
	var c models.Candidate
	if idx >= 0 {
		c = s.candidates[idx]
	}
	s.mu.Unlock()

	if idx < 0 {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	s.delay()
	writeJSON(w, http.StatusOK, c)
}

// PATCH /api/candidates/{id}
func (s *Server) patchCandidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Name  *string       `json:"name"`
		Email *string       `json:"email"`
		Stage *models.Stage `json:"stage"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	s.mu.Lock()
	idx := s.candidateIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, errorBody("candidate not found"))
		return
	}
	c := &s.candidates[idx]
	if body.Stage != nil && *body.Stage != c.Stage {
		from := c.Stage
		c.Stage = *body.Stage
		s.timeline = append(s.timeline, models.TimelineEvent{
			ID:          uuid.NewString(),
			CandidateID: id,
			At:          time.Now().UTC(),
			Type:        models.EventStatusChange,
			Payload:     models.EventPayload{From: &from, To: c.Stage},
		})
	}
	if body.Name != nil && *body.Name != "" {
		c.Name = *body.Name
	}
	if body.Email != nil && *body.Email != "" {
		c.Email = *body.Email
	}
	updated := *c
	s.mu.Unlock()

	s.events.PublishChange("candidate", "updated", id)
	s.delay()
	writeJSON(w, http.StatusOK, updated)
}

// GET /api/candidates/{id}/timeline
func (s *Server) candidateTimeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	events := make([]models.TimelineEvent, 0, 8)
	for _, ev := range s.timeline {
		if ev.CandidateID == id {
			events = append(events, ev)
		}
	}
	s.mu.Unlock()

	sort.Slice(events, func(i, k int) bool { return events[i].At.Before(events[k].At) })

	s.delay()
	writeJSON(w, http.StatusOK, events)
}

// candidateIndex returns the index of the candidate with the given id,
// or -1. Callers must hold s.mu.
func (s *Server) candidateIndex(id string) int {
	for i, c := range s.candidates {
		if c.ID == id {
			return i
		}
	}
	return -1
}
