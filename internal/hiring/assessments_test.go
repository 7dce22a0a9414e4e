package hiring_test

import (
	"context"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/testutil"
)

func TestGetAssessmentSkeleton(t *testing.T) {
	svc, _, _ := testutil.TestService(t)

	// No server copy, no cached copy: a valid empty document.
	a, err := svc.GetAssessment(context.Background(), "j1")
	if err != nil {
		t.Fatalf("GetAssessment: %v", err)
	}
	if a.JobID != "j1" || a.Title != "Assessment" {
		t.Errorf("skeleton = %+v", a)
	}
	if a.Sections == nil || len(a.Sections) != 0 {
		t.Errorf("sections = %v, want empty non-nil", a.Sections)
	}
}

func TestSaveAndGetAssessment(t *testing.T) {
	svc, _, _ := testutil.TestService(t)
	ctx := context.Background()

	doc := models.Assessment{
		Title: "Backend Screen",
		Sections: []models.Section{{
			ID:    "s1",
			Title: "Basics",
			Questions: []models.Question{
				{ID: "q1", Label: "Preferred stack", Type: models.QuestionSingle, Options: []string{"Go", "Rust"}},
				{ID: "q2", Label: "Tell us more", Type: models.QuestionLong, Options: []string{"stale"}},
			},
		}},
	}
	saved, err := svc.SaveAssessment(ctx, "j1", doc)
	if err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}
	// Saved documents come back normalized.
	if got := saved.Sections[0].Questions[0].Options; len(got) != 4 {
		t.Errorf("choice options = %v, want 4 entries", got)
	}
	if got := saved.Sections[0].Questions[1].Options; got != nil {
		t.Errorf("long question options = %v, want none", got)
	}

	a, err := svc.GetAssessment(ctx, "j1")
	if err != nil {
		t.Fatalf("GetAssessment: %v", err)
	}
	if a.Title != "Backend Screen" || len(a.Sections) != 1 {
		t.Errorf("a = %+v", a)
	}

	if _, err := svc.SaveAssessment(ctx, "", doc); !apperr.IsValidation(err) {
		t.Errorf("empty jobId err = %v, want validation", err)
	}
}

func TestSubmitAndListResponses(t *testing.T) {
	svc, _, _ := testutil.TestService(t)
	ctx := context.Background()

	first, err := svc.SubmitResponse(ctx, "j1", map[string]string{"q1": "Go"})
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	if first.StoredAt.IsZero() {
		t.Error("storedAt not set by server")
	}
	if _, err := svc.SubmitResponse(ctx, "j1", map[string]string{"q1": "Rust"}); err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}

	got, err := svc.Responses("j1")
	if err != nil {
		t.Fatalf("Responses: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("responses = %d, want 2", len(got))
	}
	// Oldest first locally.
	if got[0].Answers["q1"] != "Go" || got[1].Answers["q1"] != "Rust" {
		t.Errorf("answers = %v, %v", got[0].Answers, got[1].Answers)
	}

	other, err := svc.Responses("j2")
	if err != nil {
		t.Fatalf("Responses other: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("responses for other job = %d, want 0", len(other))
	}
}
