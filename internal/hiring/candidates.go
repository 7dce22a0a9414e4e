package hiring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/transport"
)

// CandidateFilter selects a page of the candidate collection.
type CandidateFilter struct {
	Search   string
	Stage    models.Stage
	Page     int
	PageSize int
}

// NewCandidate is the payload for creating a candidate.
type NewCandidate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate enforces the local preconditions checked before any network
// call.
func (c NewCandidate) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.By(notBlank)),
		validation.Field(&c.Email, validation.Required, is.Email),
	)
}

// CandidatePatch is a partial candidate update; nil fields are left
// unchanged. Setting Stage records a pipeline transition on the server,
// which appends the corresponding timeline event.
type CandidatePatch struct {
	Name  *string       `json:"name,omitempty"`
	Email *string       `json:"email,omitempty"`
	Stage *models.Stage `json:"stage,omitempty"`
}

// ListCandidates fetches one page of candidates from the API, newest
// applications first. On success the results are written through to the
// cache.
func (s *Service) ListCandidates(ctx context.Context, f CandidateFilter) (models.Page[models.Candidate], error) {
	if f.PageSize < 1 {
		f.PageSize = 50
	}
	if f.Page < 1 {
		f.Page = 1
	}
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Stage != "" {
		q.Set("stage", string(f.Stage))
	}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("pageSize", strconv.Itoa(f.PageSize))

	raw, err := s.api.Get(ctx, "/api/candidates", q)
	if err != nil {
		return models.Page[models.Candidate]{}, err
	}
	page, err := transport.DecodePage[models.Candidate](raw, f.Page, f.PageSize)
	if err != nil {
		return models.Page[models.Candidate]{}, err
	}
	s.warnOnErr("bulk save candidates", s.cache.BulkSaveCandidates(page.Results))
	return page, nil
}

// GetCandidate fetches one candidate by id and writes it through to the
// cache.
func (s *Service) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	raw, err := s.api.Get(ctx, "/api/candidates/"+id, nil)
	if err != nil {
		return nil, err
	}
	var c models.Candidate
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("hiring: decode candidate: %w", err)
	}
	s.warnOnErr("save candidate", s.cache.SaveCandidate(c))
	return &c, nil
}

// CreateCandidate validates locally, posts the create, and writes the
// returned candidate through to the cache. The server records the
// initial status_change event (from absent); it reaches the local log on
// the next Timeline read.
func (s *Service) CreateCandidate(ctx context.Context, payload NewCandidate) (*models.Candidate, error) {
	if err := payload.Validate(); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	raw, err := s.api.Send(ctx, http.MethodPost, "/api/candidates", nil, payload)
	if err != nil {
		return nil, err
	}
	var c models.Candidate
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("hiring: decode created candidate: %w", err)
	}
	s.warnOnErr("save candidate", s.cache.SaveCandidate(c))
	return &c, nil
}

// PatchCandidate applies a partial update and writes the returned
// candidate through to the cache. A stage change causes the server to
// append exactly one status_change event.
func (s *Service) PatchCandidate(ctx context.Context, id string, patch CandidatePatch) (*models.Candidate, error) {
	if patch.Stage != nil && !patch.Stage.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown stage %q", *patch.Stage))
	}
	raw, err := s.api.Send(ctx, http.MethodPatch, "/api/candidates/"+id, nil, patch)
	if err != nil {
		return nil, err
	}
	var c models.Candidate
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("hiring: decode patched candidate: %w", err)
	}
	s.warnOnErr("save candidate", s.cache.SaveCandidate(c))
	return &c, nil
}

// Timeline fetches a candidate's event log from the server, writes it
// through to the cache, and returns the merged local view: server-side
// status changes plus locally recorded notes, ordered by time ascending.
func (s *Service) Timeline(ctx context.Context, candidateID string) ([]models.TimelineEvent, error) {
	raw, err := s.api.Get(ctx, "/api/candidates/"+candidateID+"/timeline", nil)
	if err != nil {
		return nil, err
	}
	var events []models.TimelineEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("hiring: decode timeline: %w", err)
	}
	s.warnOnErr("bulk save timeline", s.cache.BulkSaveTimeline(events))

	merged, err := s.cache.TimelineFor(candidateID)
	if err != nil {
		// The cache read failing must not lose the fetched events.
		s.warnOnErr("read timeline", err)
		return events, nil
	}
	return merged, nil
}

// AddNote records a free-text note on a candidate's timeline. The
// server is touched first with a no-op patch, so the note only lands
// locally once the candidate is confirmed reachable; the append itself
// is local, notes are not a server-side concept.
func (s *Service) AddNote(ctx context.Context, candidateID, text string) (*models.TimelineEvent, error) {
	if text == "" {
		return nil, apperr.Validation("note text is required")
	}
	if _, err := s.api.Send(ctx, http.MethodPatch, "/api/candidates/"+candidateID, nil, CandidatePatch{}); err != nil {
		return nil, err
	}
	ev := models.TimelineEvent{
		ID:          "local-" + uuid.NewString(),
		CandidateID: candidateID,
		At:          time.Now().UTC(),
		Type:        models.EventNote,
		Payload:     models.EventPayload{Text: text},
	}
	if err := s.cache.SaveTimelineEvent(ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
