package stubapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/models"
)

// GET /assessments/{jobID}
func (s *Server) getAssessment(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	s.mu.Lock()
	a, ok := s.assessments[jobID]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("no assessment for job"))
		return
	}
	s.delay()
	writeJSON(w, http.StatusOK, a)
}

// PUT /assessments/{jobID}
func (s *Server) putAssessment(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	var a models.Assessment
	if err := decodeBody(r, &a); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	a.JobID = jobID

	s.mu.Lock()
	s.assessments[jobID] = a
	s.mu.Unlock()

	s.delay()
	writeJSON(w, http.StatusOK, a)
}

// POST /assessments/{jobID}/submit
func (s *Server) submitResponse(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	var resp models.Response
	if err := decodeBody(r, &resp); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	resp.JobID = jobID
	resp.StoredAt = time.Now().UTC()

	s.mu.Lock()
	s.responses[jobID] = append([]models.Response{resp}, s.responses[jobID]...)
	s.mu.Unlock()

	s.delay()
	writeJSON(w, http.StatusCreated, resp)
}
