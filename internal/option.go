package internal

import "github.com/starford/aininjas/internal/storage"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	version string
	slots   storage.Slots
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithSlots overrides the configured storage backend.
func WithSlots(s storage.Slots) Option {
	return func(a *application) {
		a.slots = s
	}
}
