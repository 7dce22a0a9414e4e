package internal

// Option configures the application before Run assembles it.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig supplies the loaded configuration. Run refuses to start
// without one.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
