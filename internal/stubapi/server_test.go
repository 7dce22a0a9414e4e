package stubapi

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
)

func testRouter(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	return New(opts...).Router()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedABC() Seed {
	return Seed{Jobs: []SeedJob{
		{ID: "a", Title: "Alpha", Order: 1},
		{ID: "b", Title: "Beta", Order: 2},
		{ID: "c", Title: "Gamma", Order: 3},
	}}
}

func TestListJobsPaginatedShape(t *testing.T) {
	router := testRouter(t, WithSeed(seedABC()))

	w := doJSON(t, router, http.MethodGet, "/api/jobs?page=2&pageSize=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var page models.Page[models.Job]
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || page.Page != 2 || page.Pages != 2 {
		t.Errorf("page = %+v", page)
	}
	if len(page.Results) != 1 || page.Results[0].ID != "c" {
		t.Errorf("results = %+v", page.Results)
	}
}

func TestCreateJobConflict(t *testing.T) {
	router := testRouter(t, WithSeed(Seed{}))

	w := doJSON(t, router, http.MethodPost, "/api/jobs", map[string]string{"title": "QA Engineer"})
	if w.Code != http.StatusCreated {
		t.Fatalf("first create = %d, body = %s", w.Code, w.Body.String())
	}

	// Same slug, different spacing.
	w = doJSON(t, router, http.MethodPost, "/api/jobs", map[string]string{"title": "  QA   Engineer "})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Message != "Slug already exists" {
		t.Errorf("message = %q", body.Message)
	}

	w = doJSON(t, router, http.MethodPost, "/api/jobs", map[string]string{"title": "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank title = %d, want 400", w.Code)
	}
}

func TestReorderRerank(t *testing.T) {
	stub := New(WithSeed(seedABC()))
	router := stub.Router()

	w := doJSON(t, router, http.MethodPatch, "/api/jobs/c/reorder", map[string]int{"toOrder": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success bool         `json:"success"`
		Jobs    []models.Job `json:"jobs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Error("success = false")
	}

	jobs := stub.Jobs()
	wantIDs := []string{"c", "a", "b"}
	for i, j := range jobs {
		if j.ID != wantIDs[i] {
			t.Errorf("jobs[%d] = %s, want %s", i, j.ID, wantIDs[i])
		}
		if j.Order != i+1 {
			t.Errorf("jobs[%d].Order = %d, want %d", i, j.Order, i+1)
		}
	}

	// Unknown job.
	w = doJSON(t, router, http.MethodPatch, "/api/jobs/zz/reorder", map[string]int{"toOrder": 1})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown job = %d, want 404", w.Code)
	}
}

func TestReorderSimulatedFailure(t *testing.T) {
	stub := New(WithSeed(seedABC()), WithReorderFailRate(1))
	stub.rng = rand.New(rand.NewSource(1))
	router := stub.Router()

	w := doJSON(t, router, http.MethodPatch, "/api/jobs/a/reorder", map[string]int{"toOrder": 3})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	// The dataset is untouched on a simulated fault.
	jobs := stub.Jobs()
	if jobs[0].ID != "a" || jobs[0].Order != 1 {
		t.Errorf("jobs[0] = %+v", jobs[0])
	}
}

func TestPatchJobRederivesSlug(t *testing.T) {
	router := testRouter(t, WithSeed(seedABC()))

	w := doJSON(t, router, http.MethodPatch, "/api/jobs/a", map[string]string{"title": "Alpha Prime"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var job models.Job
	if err := json.Unmarshal(w.Body.Bytes(), &job); err != nil {
		t.Fatal(err)
	}
	if job.Slug != "alpha-prime" {
		t.Errorf("slug = %q", job.Slug)
	}
}

func TestCandidateLifecycle(t *testing.T) {
	router := testRouter(t, WithSeed(Seed{}))

	w := doJSON(t, router, http.MethodPost, "/api/candidates", map[string]string{"name": "Ada", "email": "ada@example.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}
	var c models.Candidate
	if err := json.Unmarshal(w.Body.Bytes(), &c); err != nil {
		t.Fatal(err)
	}
	if c.Stage != models.StageApplied {
		t.Errorf("stage = %q", c.Stage)
	}

	w = doJSON(t, router, http.MethodPatch, "/api/candidates/"+c.ID, map[string]string{"stage": "screen"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/candidates/"+c.ID+"/timeline", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("timeline = %d", w.Code)
	}
	var events []models.TimelineEvent
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Payload.To != models.StageApplied || events[1].Payload.To != models.StageScreen {
		t.Errorf("events = %+v", events)
	}

	w = doJSON(t, router, http.MethodPost, "/api/candidates", map[string]string{"name": "NoMail"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("create without email = %d, want 400", w.Code)
	}
}

func TestAssessmentEndpoints(t *testing.T) {
	router := testRouter(t, WithSeed(Seed{}))

	w := doJSON(t, router, http.MethodGet, "/assessments/j1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing assessment = %d, want 404", w.Code)
	}

	doc := models.Assessment{Title: "Screen", Sections: []models.Section{}}
	w = doJSON(t, router, http.MethodPut, "/assessments/j1", doc)
	if w.Code != http.StatusOK {
		t.Fatalf("put = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/assessments/j1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}
	var got models.Assessment
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.JobID != "j1" || got.Title != "Screen" {
		t.Errorf("got = %+v", got)
	}

	w = doJSON(t, router, http.MethodPost, "/assessments/j1/submit", models.Response{Answers: map[string]string{"q1": "yes"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit = %d", w.Code)
	}
	var stored models.Response
	if err := json.Unmarshal(w.Body.Bytes(), &stored); err != nil {
		t.Fatal(err)
	}
	if stored.JobID != "j1" || stored.StoredAt.IsZero() {
		t.Errorf("stored = %+v", stored)
	}
}

func TestAuthEndpoints(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{"email": "hr@example.com", "password": "password123"})
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.AccessToken == "" {
		t.Error("empty access token")
	}

	w = doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{"email": "hr@example.com", "password": "nope"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login = %d, want 401", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/auth/logout", nil)
	if w.Code != http.StatusOK {
		t.Errorf("logout = %d", w.Code)
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	stub := New(WithSeed(seedABC()))
	defer stub.Close()
	router := stub.Router()

	ch := stub.Events().Subscribe()
	defer stub.Events().Unsubscribe(ch)

	w := doJSON(t, router, http.MethodPatch, "/api/jobs/a", map[string]string{"title": "Alpha Prime"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d", w.Code)
	}

	select {
	case msg := <-ch:
		if !bytes.Contains(msg, []byte("event: job.updated")) {
			t.Errorf("event = %q", msg)
		}
		if !bytes.Contains(msg, []byte(`"id":"a"`)) {
			t.Errorf("event data = %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestLoadSeedFixture(t *testing.T) {
	path := writeFixture(t, `
jobs:
  - title: Platform Engineer
    tags: [go, k8s]
candidates:
  - name: Ada Lovelace
    email: ada@example.com
    stage: screen
`)
	seed, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if len(seed.Jobs) != 1 || seed.Jobs[0].Title != "Platform Engineer" {
		t.Errorf("jobs = %+v", seed.Jobs)
	}

	stub := New(WithSeed(seed))
	jobs := stub.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d", len(jobs))
	}
	// Derived on load.
	if jobs[0].Slug != "platform-engineer" || jobs[0].ID == "" || jobs[0].Order != 1 {
		t.Errorf("job = %+v", jobs[0])
	}
	if jobs[0].Status != models.JobActive {
		t.Errorf("status = %q, want default active", jobs[0].Status)
	}
}
