package internal

import (
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/starford/aininjas/internal/api"
)

// Auth modes.
const (
	AuthModeDisabled    = api.AuthDisabled
	AuthModeToken       = api.AuthToken
	AuthModeCredentials = api.AuthCredentials
)

// Storage backends.
const (
	BackendFS     = "fs"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Storage StorageConfig     `yaml:"storage"`
	Auth    AuthConfig        `yaml:"auth"`
	Media   MediaConfig       `yaml:"media"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Media.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig selects where slots are persisted.
//
//   - "fs" (default): one JSON file per slot under Dir. With Watch set,
//     changes written by other processes are pushed to open views.
//   - "sqlite": a single slots table in the database at SQLitePath.
//   - "memory": nothing survives a restart.
type StorageConfig struct {
	Backend    string `yaml:"backend"`
	Dir        string `yaml:"dir"`
	SQLitePath string `yaml:"sqlite_path"`
	Watch      bool   `yaml:"watch"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = BackendFS
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendFS, BackendSQLite, BackendMemory)),
		validation.Field(&c.Dir, validation.When(c.Backend == BackendFS, validation.Required)),
		validation.Field(&c.SQLitePath, validation.When(c.Backend == BackendSQLite, validation.Required)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how the authoring routes are protected:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
//   - "credentials": username and bcrypt PasswordHash are exchanged for a
//     session token at POST /api/admin/session.
type AuthConfig struct {
	Mode         string `yaml:"mode"`
	Token        string `yaml:"token"`
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken, AuthModeCredentials)),
	); err != nil {
		return err
	}
	switch c.Mode {
	case AuthModeToken:
		if c.Token == "" {
			return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
		}
	case AuthModeCredentials:
		if strings.TrimSpace(c.Username) == "" || c.PasswordHash == "" {
			return fmt.Errorf("auth: mode is %q but username or password_hash is empty", AuthModeCredentials)
		}
		if _, err := bcrypt.Cost([]byte(c.PasswordHash)); err != nil {
			return fmt.Errorf("auth: password_hash is not a bcrypt hash: %w", err)
		}
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode != AuthModeDisabled
}

// MediaConfig controls uploaded article images.
type MediaConfig struct {
	Dir            string `yaml:"dir"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// Validate validates the media configuration.
func (c *MediaConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.MaxUploadBytes, validation.Min(int64(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Storage: StorageConfig{
			Backend:    BackendFS,
			Dir:        "./data",
			SQLitePath: "./aininjas.db",
			Watch:      true,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Media: MediaConfig{
			Dir:            "./data/media",
			MaxUploadBytes: api.DefaultMaxUploadBytes,
		},
	}
}
