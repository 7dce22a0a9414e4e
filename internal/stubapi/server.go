// Package stubapi implements a local, in-memory hiring API for
// development and tests. It speaks the same wire contract as the real
// backend: paginated collection reads, slug-conflict job creation,
// dense re-ranking on reorder (with optional simulated failures),
// candidate timelines, assessment storage, and dev login.
package stubapi

import (
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/sse"
)

// Server holds the in-memory dataset behind the stub API.
type Server struct {
	mu          sync.Mutex
	jobs        []models.Job
	candidates  []models.Candidate
	timeline    []models.TimelineEvent
	assessments map[string]models.Assessment
	responses   map[string][]models.Response

	latency      time.Duration
	reorderFail  float64
	rng          *rand.Rand
	loginEmail   string
	loginPass    string
	logger       *slog.Logger
	events       *sse.Broker
}

// Option configures a Server.
type Option func(*Server)

// WithLatency simulates network latency on every handler.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

// WithReorderFailRate sets the probability in [0, 1] that a reorder
// request fails with a simulated 500. Use 1 to force rollbacks in tests.
func WithReorderFailRate(rate float64) Option {
	return func(s *Server) { s.reorderFail = rate }
}

// WithSeed replaces the default synthetic dataset.
func WithSeed(seed Seed) Option {
	return func(s *Server) { s.applySeed(seed) }
}

// WithCredentials sets the accepted dev login.
func WithCredentials(email, password string) Option {
	return func(s *Server) { s.loginEmail, s.loginPass = email, password }
}

// WithLogger sets the server's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New creates a Server seeded with the default dataset unless WithSeed
// overrides it.
func New(opts ...Option) *Server {
	s := &Server{
		assessments: make(map[string]models.Assessment),
		responses:   make(map[string][]models.Response),
		reorderFail: 0,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		loginEmail:  "hr@example.com",
		loginPass:   "password123",
		logger:      slog.Default(),
		events:      sse.NewBroker(2 * time.Second),
	}
	s.applySeed(DefaultSeed(25, 60))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the chi router with every stub route mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/api/jobs", s.listJobs)
	r.Post("/api/jobs", s.createJob)
	r.Get("/api/jobs/{id}", s.getJob)
	r.Patch("/api/jobs/{id}", s.patchJob)
	r.Patch("/api/jobs/{id}/reorder", s.reorderJob)

	r.Get("/api/candidates", s.listCandidates)
	r.Post("/api/candidates", s.createCandidate)
	r.Get("/api/candidates/{id}", s.getCandidate)
	r.Patch("/api/candidates/{id}", s.patchCandidate)
	r.Get("/api/candidates/{id}/timeline", s.candidateTimeline)

	r.Get("/assessments/{jobID}", s.getAssessment)
	r.Put("/assessments/{jobID}", s.putAssessment)
	r.Post("/assessments/{jobID}/submit", s.submitResponse)

	r.Post("/auth/login", s.login)
	r.Post("/auth/logout", s.logout)

	r.Get("/api/events", s.events.ServeHTTP)

	return r
}

// Events exposes the change notification broker.
func (s *Server) Events() *sse.Broker {
	return s.events
}

// Close stops the change notification broker and disconnects its
// subscribers.
func (s *Server) Close() {
	s.events.Close()
}

func (s *Server) delay() {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Email != s.loginEmail || req.Password != s.loginPass {
		writeJSON(w, http.StatusUnauthorized, errorBody("Invalid credentials"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken": "DEV_ACCESS_TOKEN_" + time.Now().UTC().Format("20060102150405"),
		"user": map[string]string{
			"id":    "u_hr_1",
			"email": s.loginEmail,
			"name":  "HR Admin",
			"role":  "hr",
		},
	})
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
