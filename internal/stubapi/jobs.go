package stubapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/starford/raido/internal/models"
)

func decodeBody(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(v)
}

func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// GET /api/jobs?search=&status=&page=&pageSize=&sort=
func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))
	status := r.URL.Query().Get("status")
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 10)
	sortKey := r.URL.Query().Get("sort")
	if sortKey == "" {
		sortKey = "order"
	}

	s.mu.Lock()
	filtered := make([]models.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if search != "" && !strings.Contains(strings.ToLower(j.Title), search) && !strings.Contains(j.Slug, search) {
			continue
		}
		if status != "" && string(j.Status) != status {
			continue
		}
		filtered = append(filtered, j)
	}
	s.mu.Unlock()

	if sortKey == "order" {
		sort.Slice(filtered, func(i, k int) bool { return filtered[i].Order < filtered[k].Order })
	}

	s.delay()
	writeJSON(w, http.StatusOK, models.NewPage(filtered, page, pageSize))
}

// POST /api/jobs
func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string   `json:"title"`
		Tags  []string `json:"tags"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("Title required"))
		return
	}
	slug := models.Slugify(title)

	s.mu.Lock()
	for _, j := range s.jobs {
		if j.Slug == slug {
			s.mu.Unlock()
			writeJSON(w, http.StatusConflict, errorBody("Slug already exists"))
			return
		}
	}
	maxOrder := 0
	for _, j := range s.jobs {
		if j.Order > maxOrder {
			maxOrder = j.Order
		}
	}
	tags := body.Tags
	if tags == nil {
		tags = []string{}
	}
	job := models.Job{
		ID:     uuid.NewString(),
		Title:  title,
		Slug:   slug,
		Status: models.JobActive,
		Tags:   tags,
		Order:  maxOrder + 1,
	}
	s.jobs = append(s.jobs, job)
	s.mu.Unlock()

	s.events.PublishChange("job", "created", job.ID)
	s.delay()
	writeJSON(w, http.StatusCreated, job)
}

// GET /api/jobs/{id}
func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	idx := s.jobIndex(id)
	var job models.Job
	if idx >= 0 {
		job = s.jobs[idx]
	}
	s.mu.Unlock()

	if idx < 0 {
		writeJSON(w, http.StatusNotFound, errorBody("Job not found"))
		return
	}
	s.delay()
	writeJSON(w, http.StatusOK, job)
}

// PATCH /api/jobs/{id}
func (s *Server) patchJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Title  *string           `json:"title"`
		Status *models.JobStatus `json:"status"`
		Tags   *[]string         `json:"tags"`
		Order  *int              `json:"order"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	s.mu.Lock()
	idx := s.jobIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, errorBody("Job not found"))
		return
	}
	job := &s.jobs[idx]
	if body.Title != nil && *body.Title != "" {
		job.Title = *body.Title
		job.Slug = models.Slugify(*body.Title)
	}
	if body.Status != nil {
		job.Status = *body.Status
	}
	if body.Tags != nil {
		job.Tags = *body.Tags
	}
	if body.Order != nil {
		job.Order = *body.Order
	}
	updated := *job
	s.mu.Unlock()

	s.events.PublishChange("job", "updated", id)
	s.delay()
	writeJSON(w, http.StatusOK, updated)
}

// PATCH /api/jobs/{id}/reorder
func (s *Server) reorderJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		ToOrder int `json:"toOrder"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	s.mu.Lock()
	idx := s.jobIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, errorBody("Job not found"))
		return
	}

	if s.reorderFail > 0 && s.rng.Float64() < s.reorderFail {
		s.mu.Unlock()
		s.delay()
		writeJSON(w, http.StatusInternalServerError, errorBody("Simulated server error (reorder)"))
		return
	}

	sort.Slice(s.jobs, func(i, k int) bool { return s.jobs[i].Order < s.jobs[k].Order })
	idx = s.jobIndex(id)
	moving := s.jobs[idx]
	s.jobs = append(s.jobs[:idx], s.jobs[idx+1:]...)
	insert := body.ToOrder - 1
	if insert < 0 {
		insert = 0
	}
	if insert > len(s.jobs) {
		insert = len(s.jobs)
	}
	s.jobs = append(s.jobs[:insert], append([]models.Job{moving}, s.jobs[insert:]...)...)
	for i := range s.jobs {
		s.jobs[i].Order = i + 1
	}
	snapshot := make([]models.Job, len(s.jobs))
	copy(snapshot, s.jobs)
	s.mu.Unlock()

	s.events.PublishChange("job", "reordered", id)
	s.delay()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "jobs": snapshot})
}

// jobIndex returns the index of the job with the given id, or -1.
// Callers must hold s.mu.
func (s *Server) jobIndex(id string) int {
	for i, j := range s.jobs {
		if j.ID == id {
			return i
		}
	}
	return -1
}

// Jobs returns a copy of the current job collection, rank order. Used by
// tests to inspect canonical state.
func (s *Server) Jobs() []models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Job, len(s.jobs))
	copy(out, s.jobs)
	sort.Slice(out, func(i, k int) bool { return out[i].Order < out[k].Order })
	return out
}
