package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Level wraps slog.Level so YAML values parse as either a level name
// ("debug", "info", "warn", "error", with optional ±offset) or a bare
// number.
type Level slog.Level

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Level) UnmarshalYAML(value *yaml.Node) error {
	var n int
	if err := value.Decode(&n); err == nil {
		*l = Level(n)
		return nil
	}
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(raw)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", raw, err)
	}
	*l = Level(parsed)
	return nil
}

// Duration wraps time.Duration so YAML values like "10s" or "200ms"
// parse with time.ParseDuration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	API    APIConfig         `yaml:"api"`
	Stub   StubConfig        `yaml:"stub"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.API.Validate(); err != nil {
		return err
	}
	return c.Stub.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel Level      `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration for the stub API.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds the local cache database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// APIConfig holds the hiring API endpoint the client talks to. By
// default it points at the embedded stub server.
type APIConfig struct {
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"`
}

// Validate validates the API configuration.
func (c *APIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
	)
}

// StubConfig tunes the embedded stub API server.
//
// ReorderFailRate is the probability that a reorder request fails with a
// simulated 500, used to exercise optimistic rollback during
// development. FixturePath, when set, seeds the dataset from a YAML
// file and hot-reloads it on change.
type StubConfig struct {
	SeedJobs        int      `yaml:"seed_jobs"`
	SeedCandidates  int      `yaml:"seed_candidates"`
	ReorderFailRate float64  `yaml:"reorder_fail_rate"`
	Latency         Duration `yaml:"latency"`
	FixturePath     string   `yaml:"fixture_path"`
	LoginEmail      string   `yaml:"login_email"`
	LoginPassword   string   `yaml:"login_password"`
}

// Validate validates the stub configuration.
func (c *StubConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SeedJobs, validation.Min(0)),
		validation.Field(&c.SeedCandidates, validation.Min(0)),
		validation.Field(&c.ReorderFailRate, validation.Min(0.0), validation.Max(1.0)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: Level(slog.LevelInfo),
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./raido.db",
		},
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Timeout: Duration(10 * time.Second),
		},
		Stub: StubConfig{
			SeedJobs:        25,
			SeedCandidates:  200,
			ReorderFailRate: 0.1,
			Latency:         0,
			LoginEmail:      "hr@example.com",
			LoginPassword:   "password123",
		},
	}
}
