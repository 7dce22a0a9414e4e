package hiring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// ReorderState is the lifecycle of a board's reorder operation.
type ReorderState int

// Reorder states. Committed and RolledBack are resting states; the next
// move transitions them back through Pending.
const (
	ReorderIdle ReorderState = iota
	ReorderPending
	ReorderCommitted
	ReorderRolledBack
)

// String implements fmt.Stringer.
func (s ReorderState) String() string {
	switch s {
	case ReorderIdle:
		return "idle"
	case ReorderPending:
		return "pending"
	case ReorderCommitted:
		return "committed"
	case ReorderRolledBack:
		return "rolled_back"
	default:
		return fmt.Sprintf("ReorderState(%d)", int(s))
	}
}

// ErrReorderInFlight is returned when a move is requested while another
// is still pending. Reorders are serialized per board; overlapping moves
// are rejected rather than queued.
var ErrReorderInFlight = &apperr.Error{Kind: apperr.KindConflict, Message: "reorder already in flight"}

// Board holds the currently displayed job sequence for one reorder
// scope. Readers always see either the full pre-move sequence or the
// full post-move sequence; state replacement is atomic.
type Board struct {
	mu    sync.Mutex
	jobs  []models.Job
	state ReorderState
}

// NewBoard creates a board over a copy of the given sequence.
func NewBoard(jobs []models.Job) *Board {
	return &Board{jobs: copyJobs(jobs)}
}

// Jobs returns a copy of the visible sequence.
func (b *Board) Jobs() []models.Job {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copyJobs(b.jobs)
}

// State returns the current reorder state.
func (b *Board) State() ReorderState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Replace swaps the visible sequence wholesale, e.g. after an external
// refresh. It is rejected while a move is pending.
func (b *Board) Replace(jobs []models.Job) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == ReorderPending {
		return ErrReorderInFlight
	}
	b.jobs = copyJobs(jobs)
	b.state = ReorderIdle
	return nil
}

// publish installs the sequence and state atomically.
func (b *Board) publish(jobs []models.Job, state ReorderState) {
	b.mu.Lock()
	b.jobs = jobs
	b.state = state
	b.mu.Unlock()
}

// planMove removes the job from the sequence and reinserts it so that it
// lands at 1-based rank toOrder (clamped into the sequence), then
// assigns dense 1-based ranks to the result. The second return is false
// when the job is absent.
func planMove(jobs []models.Job, jobID string, toOrder int) ([]models.Job, bool) {
	idx := -1
	for i, j := range jobs {
		if j.ID == jobID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, false
	}

	next := copyJobs(jobs)
	moving := next[idx]
	next = append(next[:idx], next[idx+1:]...)

	insert := toOrder - 1
	if insert < 0 {
		insert = 0
	}
	if insert > len(next) {
		insert = len(next)
	}
	next = append(next[:insert], append([]models.Job{moving}, next[insert:]...)...)

	for i := range next {
		next[i].Order = i + 1
	}
	return next, true
}

type reorderRequest struct {
	ToOrder int `json:"toOrder"`
}

type reorderResponse struct {
	Success bool         `json:"success"`
	Jobs    []models.Job `json:"jobs"`
}

// ReorderJob moves a job to a new 1-based rank on the board.
//
// The permutation is published to the board before the network call, so
// readers see the expected order immediately. On success the board is
// reconciled to the server's canonical order via a full re-fetch (the
// local permutation is provisional; concurrent movers may have won). On
// any failure the pre-move snapshot is restored verbatim and the error
// is returned.
//
// A move to the job's current rank is a no-op: no state transition, no
// network call. A move issued while another is pending fails with
// ErrReorderInFlight.
func (s *Service) ReorderJob(ctx context.Context, b *Board, jobID string, toOrder int) error {
	b.mu.Lock()
	if b.state == ReorderPending {
		b.mu.Unlock()
		return ErrReorderInFlight
	}

	current := -1
	for i, j := range b.jobs {
		if j.ID == jobID {
			current = i + 1
			break
		}
	}
	if current == -1 {
		b.mu.Unlock()
		return &apperr.Error{Kind: apperr.KindNotFound, Message: fmt.Sprintf("job %s not on board", jobID)}
	}
	if toOrder == current {
		b.mu.Unlock()
		return nil
	}

	next, _ := planMove(b.jobs, jobID, toOrder)
	snapshot := copyJobs(b.jobs)
	b.jobs = next
	b.state = ReorderPending
	b.mu.Unlock()

	raw, err := s.api.Send(ctx, http.MethodPatch, "/api/jobs/"+jobID+"/reorder", nil, reorderRequest{ToOrder: toOrder})
	if err != nil {
		b.publish(snapshot, ReorderRolledBack)
		return err
	}

	var resp reorderResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		b.publish(snapshot, ReorderRolledBack)
		return fmt.Errorf("hiring: decode reorder response: %w", err)
	}
	s.warnOnErr("bulk save reordered jobs", s.cache.BulkSaveJobs(resp.Jobs))

	// The server's returned list is canonical, but a full re-fetch picks
	// up anything that landed since (and exercises the write-through).
	canonical := resp.Jobs
	size := len(canonical)
	if size < 1 {
		size = len(next)
	}
	if page, err := s.ListJobs(ctx, JobFilter{PageSize: size}); err == nil && len(page.Results) > 0 {
		canonical = page.Results
		if page.Total > len(page.Results) {
			if full, err := s.ListJobs(ctx, JobFilter{PageSize: page.Total}); err == nil {
				canonical = full.Results
			}
		}
	}

	b.publish(canonical, ReorderCommitted)
	return nil
}

func copyJobs(jobs []models.Job) []models.Job {
	out := make([]models.Job, len(jobs))
	copy(out, jobs)
	return out
}
