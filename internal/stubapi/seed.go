package stubapi

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/starford/raido/internal/models"
)

// Seed is the dataset the server starts from. It can be generated
// synthetically or loaded from a YAML fixture file.
type Seed struct {
	Jobs       []SeedJob       `yaml:"jobs"`
	Candidates []SeedCandidate `yaml:"candidates"`
}

// SeedJob is a fixture job; the slug and rank are derived on load when
// absent.
type SeedJob struct {
	ID     string   `yaml:"id"`
	Title  string   `yaml:"title"`
	Status string   `yaml:"status"`
	Tags   []string `yaml:"tags"`
	Order  int      `yaml:"order"`
}

// SeedCandidate is a fixture candidate; the initial status_change event
// is derived on load.
type SeedCandidate struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Email     string    `yaml:"email"`
	Stage     string    `yaml:"stage"`
	AppliedAt time.Time `yaml:"applied_at"`
}

// LoadSeed reads a YAML fixture file.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("stubapi: read fixture: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("stubapi: parse fixture: %w", err)
	}
	return seed, nil
}

var seedDisciplines = []string{"Frontend", "Backend", "Fullstack", "Data"}

var seedFirstNames = []string{
	"Ada", "Bram", "Carla", "Dmitri", "Elena", "Farid", "Grace", "Hakim",
	"Ines", "Jonas", "Kira", "Luca", "Mona", "Nils", "Oren", "Priya",
	"Quinn", "Rosa", "Sven", "Tala",
}

var seedLastNames = []string{
	"Andersen", "Becker", "Costa", "Dubois", "Eriksen", "Fischer",
	"Garcia", "Hansen", "Ivanov", "Jensen", "Keller", "Larsen",
}

// DefaultSeed generates a deterministic synthetic dataset: nJobs ranked
// jobs (roughly one in seven archived) and nCandidates spread over the
// pipeline stages with application dates receding into the past year.
func DefaultSeed(nJobs, nCandidates int) Seed {
	seed := Seed{}
	for i := 1; i <= nJobs; i++ {
		status := string(models.JobActive)
		if i%7 == 0 {
			status = string(models.JobArchived)
		}
		tags := []string{"javascript", "react"}
		if i%3 == 0 {
			tags = []string{"node"}
		}
		seed.Jobs = append(seed.Jobs, SeedJob{
			Title:  fmt.Sprintf("Job %d - %s", i, seedDisciplines[i%len(seedDisciplines)]),
			Status: status,
			Tags:   tags,
			Order:  i,
		})
	}

	now := time.Now().UTC()
	for i := 0; i < nCandidates; i++ {
		first := seedFirstNames[i%len(seedFirstNames)]
		last := seedLastNames[(i/len(seedFirstNames))%len(seedLastNames)]
		seed.Candidates = append(seed.Candidates, SeedCandidate{
			Name:      first + " " + last,
			Email:     fmt.Sprintf("%s.%s.%d@example.com", first, last, i),
			Stage:     string(models.Stages[i%len(models.Stages)]),
			AppliedAt: now.Add(-time.Duration(i+1) * 37 * time.Hour),
		})
	}
	return seed
}

// applySeed replaces the server's dataset wholesale.
func (s *Server) applySeed(seed Seed) {
	jobs := make([]models.Job, 0, len(seed.Jobs))
	for i, sj := range seed.Jobs {
		id := sj.ID
		if id == "" {
			id = uuid.NewString()
		}
		status := models.JobStatus(sj.Status)
		if !status.Valid() {
			status = models.JobActive
		}
		order := sj.Order
		if order == 0 {
			order = i + 1
		}
		tags := sj.Tags
		if tags == nil {
			tags = []string{}
		}
		jobs = append(jobs, models.Job{
			ID:     id,
			Title:  sj.Title,
			Slug:   models.Slugify(sj.Title),
			Status: status,
			Tags:   tags,
			Order:  order,
		})
	}

	candidates := make([]models.Candidate, 0, len(seed.Candidates))
	timeline := make([]models.TimelineEvent, 0, len(seed.Candidates))
	for _, sc := range seed.Candidates {
		id := sc.ID
		if id == "" {
			id = uuid.NewString()
		}
		stage := models.Stage(sc.Stage)
		if !stage.Valid() {
			stage = models.StageApplied
		}
		appliedAt := sc.AppliedAt
		if appliedAt.IsZero() {
			appliedAt = time.Now().UTC()
		}
		candidates = append(candidates, models.Candidate{
			ID:        id,
			Name:      sc.Name,
			Email:     sc.Email,
			Stage:     stage,
			AppliedAt: appliedAt,
		})
		timeline = append(timeline, models.TimelineEvent{
			ID:          uuid.NewString(),
			CandidateID: id,
			At:          appliedAt,
			Type:        models.EventStatusChange,
			Payload:     models.EventPayload{From: nil, To: stage},
		})
	}

	s.mu.Lock()
	s.jobs = jobs
	s.candidates = candidates
	s.timeline = timeline
	s.mu.Unlock()
}
