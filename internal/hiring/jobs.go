package hiring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/transport"
)

// JobFilter selects a page of the job collection.
type JobFilter struct {
	Search   string
	Status   models.JobStatus
	Page     int
	PageSize int
}

// NewJob is the payload for creating a job. The slug is derived from the
// title, not supplied.
type NewJob struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty"`
}

// Validate enforces the local preconditions checked before any network
// call. Titles of only whitespace count as empty.
func (j NewJob) Validate() error {
	return validation.ValidateStruct(&j,
		validation.Field(&j.Title, validation.Required, validation.By(notBlank)),
	)
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

// JobPatch is a partial job update; nil fields are left unchanged.
type JobPatch struct {
	Title  *string           `json:"title,omitempty"`
	Status *models.JobStatus `json:"status,omitempty"`
	Tags   *[]string         `json:"tags,omitempty"`
	Order  *int              `json:"order,omitempty"`
}

// ListJobs fetches one page of jobs from the API, sorted by rank. On
// success the results are written through to the cache.
func (s *Service) ListJobs(ctx context.Context, f JobFilter) (models.Page[models.Job], error) {
	if f.PageSize < 1 {
		f.PageSize = 10
	}
	if f.Page < 1 {
		f.Page = 1
	}
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("pageSize", strconv.Itoa(f.PageSize))
	q.Set("sort", "order")

	raw, err := s.api.Get(ctx, "/api/jobs", q)
	if err != nil {
		return models.Page[models.Job]{}, err
	}
	page, err := transport.DecodePage[models.Job](raw, f.Page, f.PageSize)
	if err != nil {
		return models.Page[models.Job]{}, err
	}
	s.warnOnErr("bulk save jobs", s.cache.BulkSaveJobs(page.Results))
	return page, nil
}

// GetJob fetches one job by id and writes it through to the cache.
func (s *Service) GetJob(ctx context.Context, id string) (*models.Job, error) {
	raw, err := s.api.Get(ctx, "/api/jobs/"+id, nil)
	if err != nil {
		return nil, err
	}
	var job models.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("hiring: decode job: %w", err)
	}
	s.warnOnErr("save job", s.cache.SaveJob(job))
	return &job, nil
}

// CreateJob validates the payload locally, pre-checks the derived slug
// for uniqueness through the collection query path, then posts the
// create. The server's 409 stays the authoritative conflict check; the
// pre-flight only saves a doomed round trip when the listing is
// reachable.
func (s *Service) CreateJob(ctx context.Context, payload NewJob) (*models.Job, error) {
	if err := payload.Validate(); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	slug := models.Slugify(payload.Title)
	if page, err := s.ListJobs(ctx, JobFilter{Search: slug, PageSize: 50}); err == nil {
		for _, j := range page.Results {
			if j.Slug == slug {
				return nil, apperr.Conflict(fmt.Sprintf("slug %q already exists", slug))
			}
		}
	}

	raw, err := s.api.Send(ctx, http.MethodPost, "/api/jobs", nil, payload)
	if err != nil {
		return nil, err
	}
	var job models.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("hiring: decode created job: %w", err)
	}
	s.warnOnErr("save job", s.cache.SaveJob(job))
	return &job, nil
}

// PatchJob applies a partial update and writes the returned entity
// through to the cache. On failure the cache is left untouched.
func (s *Service) PatchJob(ctx context.Context, id string, patch JobPatch) (*models.Job, error) {
	raw, err := s.api.Send(ctx, http.MethodPatch, "/api/jobs/"+id, nil, patch)
	if err != nil {
		return nil, err
	}
	var job models.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("hiring: decode patched job: %w", err)
	}
	if job.ID != "" {
		s.warnOnErr("save job", s.cache.SaveJob(job))
	}
	return &job, nil
}
