package hiring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// GetAssessment loads the assessment for a job. The server copy wins;
// when it is absent the cached copy is used, and failing that an empty
// skeleton is returned so builders always start from a valid document.
// The result is normalized (choice questions padded to four options,
// options stripped elsewhere) and written through to the cache.
func (s *Service) GetAssessment(ctx context.Context, jobID string) (*models.Assessment, error) {
	var a *models.Assessment

	raw, err := s.api.Get(ctx, "/assessments/"+jobID, nil)
	switch {
	case err == nil:
		var decoded models.Assessment
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("hiring: decode assessment: %w", err)
		}
		a = &decoded
	case apperr.IsNotFound(err):
		cached, cacheErr := s.cache.GetAssessment(jobID)
		if cacheErr != nil {
			s.warnOnErr("read assessment", cacheErr)
		}
		a = cached
	default:
		return nil, err
	}

	if a == nil {
		a = &models.Assessment{JobID: jobID, Title: "Assessment", Sections: []models.Section{}}
	}
	a.JobID = jobID
	a.Normalize()
	s.warnOnErr("save assessment", s.cache.SaveAssessment(*a))
	return a, nil
}

// SaveAssessment stores the assessment on the server and mirrors the
// confirmed copy into the cache.
func (s *Service) SaveAssessment(ctx context.Context, jobID string, a models.Assessment) (*models.Assessment, error) {
	if err := validation.Validate(jobID, validation.Required); err != nil {
		return nil, apperr.Validation("jobId is required")
	}
	a.JobID = jobID
	a.Normalize()

	raw, err := s.api.Send(ctx, http.MethodPut, "/assessments/"+jobID, nil, a)
	if err != nil {
		return nil, err
	}
	var saved models.Assessment
	if err := json.Unmarshal(raw, &saved); err != nil {
		return nil, fmt.Errorf("hiring: decode saved assessment: %w", err)
	}
	s.warnOnErr("save assessment", s.cache.SaveAssessment(saved))
	return &saved, nil
}

// SubmitResponse submits a filled-out assessment and mirrors the stored
// response locally once the server confirms it.
func (s *Service) SubmitResponse(ctx context.Context, jobID string, answers map[string]string) (*models.Response, error) {
	resp := models.Response{JobID: jobID, At: time.Now().UTC(), Answers: answers}
	raw, err := s.api.Send(ctx, http.MethodPost, "/assessments/"+jobID+"/submit", nil, resp)
	if err != nil {
		return nil, err
	}
	var stored models.Response
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("hiring: decode stored response: %w", err)
	}
	stored.JobID = jobID
	s.warnOnErr("save response", s.cache.SaveResponse(stored))
	return &stored, nil
}

// Responses returns the locally mirrored submissions for a job, oldest
// first.
func (s *Service) Responses(jobID string) ([]models.Response, error) {
	return s.cache.ResponsesFor(jobID)
}
