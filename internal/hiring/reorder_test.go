package hiring_test

import (
	"context"
	"testing"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/hiring"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/stubapi"
	"github.com/starford/raido/internal/testutil"
)

func boardFrom(t *testing.T, svc *hiring.Service) *hiring.Board {
	t.Helper()
	page, err := svc.ListJobs(context.Background(), hiring.JobFilter{PageSize: 50})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	return hiring.NewBoard(page.Results)
}

func boardIDs(b *hiring.Board) []string {
	jobs := b.Jobs()
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestReorderCommit(t *testing.T) {
	svc, _, _ := testutil.TestService(t, stubapi.WithSeed(threeJobs()))
	b := boardFrom(t, svc)

	// Move the first job to the end.
	if err := svc.ReorderJob(context.Background(), b, "a", 3); err != nil {
		t.Fatalf("ReorderJob: %v", err)
	}
	if b.State() != hiring.ReorderCommitted {
		t.Errorf("state = %v, want committed", b.State())
	}
	if got := boardIDs(b); !sameIDs(got, []string{"b", "c", "a"}) {
		t.Errorf("order = %v, want [b c a]", got)
	}

	// Ranks are dense and 1-based after the move.
	for i, j := range b.Jobs() {
		if j.Order != i+1 {
			t.Errorf("job %s order = %d, want %d", j.ID, j.Order, i+1)
		}
	}
}

func TestReorderRollback(t *testing.T) {
	svc, _, _ := testutil.TestService(t,
		stubapi.WithSeed(threeJobs()),
		stubapi.WithReorderFailRate(1))
	b := boardFrom(t, svc)
	before := boardIDs(b)

	err := svc.ReorderJob(context.Background(), b, "a", 3)
	if !apperr.IsServer(err) {
		t.Fatalf("err = %v, want server fault", err)
	}
	if b.State() != hiring.ReorderRolledBack {
		t.Errorf("state = %v, want rolled_back", b.State())
	}
	// The pre-move sequence is restored verbatim.
	if got := boardIDs(b); !sameIDs(got, before) {
		t.Errorf("order = %v, want %v", got, before)
	}
	for i, j := range b.Jobs() {
		if j.Order != i+1 {
			t.Errorf("job %s order = %d, want %d", j.ID, j.Order, i+1)
		}
	}
}

func TestReorderNoOp(t *testing.T) {
	svc, _, _ := testutil.TestService(t,
		stubapi.WithSeed(threeJobs()),
		stubapi.WithReorderFailRate(1))
	b := boardFrom(t, svc)

	// Moving a job to its current rank never hits the network, so the
	// guaranteed server fault cannot fire.
	if err := svc.ReorderJob(context.Background(), b, "b", 2); err != nil {
		t.Fatalf("ReorderJob: %v", err)
	}
	if b.State() != hiring.ReorderIdle {
		t.Errorf("state = %v, want idle", b.State())
	}
}

func TestReorderUnknownJob(t *testing.T) {
	svc, _, _ := testutil.TestService(t, stubapi.WithSeed(threeJobs()))
	b := boardFrom(t, svc)

	err := svc.ReorderJob(context.Background(), b, "zz", 1)
	if !apperr.IsNotFound(err) {
		t.Errorf("err = %v, want not_found", err)
	}
}

func TestReorderClampsTarget(t *testing.T) {
	svc, _, _ := testutil.TestService(t, stubapi.WithSeed(threeJobs()))
	b := boardFrom(t, svc)

	// A target beyond the end lands at the end.
	if err := svc.ReorderJob(context.Background(), b, "a", 99); err != nil {
		t.Fatalf("ReorderJob: %v", err)
	}
	if got := boardIDs(b); !sameIDs(got, []string{"b", "c", "a"}) {
		t.Errorf("order = %v, want [b c a]", got)
	}
}

func TestReorderSerialized(t *testing.T) {
	svc, _, _ := testutil.TestService(t,
		stubapi.WithSeed(threeJobs()),
		stubapi.WithLatency(300*time.Millisecond))
	b := boardFrom(t, svc)

	first := make(chan error, 1)
	go func() {
		first <- svc.ReorderJob(context.Background(), b, "a", 3)
	}()

	// Wait for the optimistic publish, then try an overlapping move.
	deadline := time.Now().Add(2 * time.Second)
	for b.State() != hiring.ReorderPending {
		if time.Now().After(deadline) {
			t.Fatal("first move never became pending")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := svc.ReorderJob(context.Background(), b, "b", 1); err != hiring.ErrReorderInFlight {
		t.Errorf("overlapping move err = %v, want ErrReorderInFlight", err)
	}
	if err := b.Replace(nil); err != hiring.ErrReorderInFlight {
		t.Errorf("replace while pending err = %v, want ErrReorderInFlight", err)
	}

	if err := <-first; err != nil {
		t.Fatalf("first move: %v", err)
	}
	if b.State() != hiring.ReorderCommitted {
		t.Errorf("state = %v, want committed", b.State())
	}
}

func TestBoardReplace(t *testing.T) {
	b := hiring.NewBoard([]models.Job{{ID: "a", Order: 1}})

	// A board at rest accepts replacement.
	if err := b.Replace([]models.Job{{ID: "b", Order: 1}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got := boardIDs(b); !sameIDs(got, []string{"b"}) {
		t.Errorf("order = %v", got)
	}
}
