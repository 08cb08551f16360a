package internal

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notionmd/internal/api"
	"github.com/starford/notionmd/internal/mirror"
	"github.com/starford/notionmd/internal/notion"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Notion NotionConfig      `yaml:"notion"`
	Auth   AuthConfig        `yaml:"auth"`
	Cache  CacheConfig       `yaml:"cache"`
	Mirror MirrorConfig      `yaml:"mirror"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Notion.Validate(); err != nil {
		return fmt.Errorf("notion: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if c.Auth.Mode == api.AuthModeStatic && c.Notion.Token == "" {
		return fmt.Errorf("auth: mode is %q but notion.token is empty", api.AuthModeStatic)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Mirror.Validate(); err != nil {
		return fmt.Errorf("mirror: %w", err)
	}
	return nil
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
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.WriteTimeout, validation.Min(time.Duration(0))),
	)
}

// NotionConfig configures the upstream API client.
type NotionConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Version        string        `yaml:"version"`
	Token          string        `yaml:"token"`
	Timeout        time.Duration `yaml:"timeout"`
	RateLimit      float64       `yaml:"rate_limit"`
	Burst          int           `yaml:"burst"`
	MaxConcurrency int           `yaml:"max_concurrency"`
	MaxRetries     int           `yaml:"max_retries"`
}

// Validate validates the Notion configuration.
func (c *NotionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.Version, validation.Required),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.RateLimit, validation.Min(0.0)),
		validation.Field(&c.Burst, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxConcurrency, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxRetries, validation.Min(0), validation.Max(10)),
	)
}

// ClientConfig converts the section into client settings.
func (c *NotionConfig) ClientConfig() notion.Config {
	return notion.Config{
		BaseURL:        c.BaseURL,
		Version:        c.Version,
		Timeout:        c.Timeout,
		RateLimit:      c.RateLimit,
		Burst:          c.Burst,
		MaxConcurrency: c.MaxConcurrency,
		MaxRetries:     c.MaxRetries,
	}
}

// AuthConfig holds authentication configuration.
//
// Mode controls where the upstream token comes from:
//   - "passthrough" (default): clients send their own Notion token.
//   - "static": clients present Token and the server calls Notion with
//     notion.token.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = api.AuthModePassthrough
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(api.AuthModePassthrough, api.AuthModeStatic)),
	); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if c.Mode == api.AuthModeStatic && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", api.AuthModeStatic)
	}
	return nil
}

// CacheConfig configures the SQLite render cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required)),
	)
}

// MirrorConfig configures the database mirror command.
type MirrorConfig struct {
	Path        string `yaml:"path"`
	DatabaseID  string `yaml:"database_id"`
	Frontmatter bool   `yaml:"frontmatter"`
	Prune       bool   `yaml:"prune"`
	Workers     int    `yaml:"workers"`
}

// Validate validates the mirror configuration. The database id is only
// required when the mirror actually runs.
func (c *MirrorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Workers, validation.Required, validation.Min(1), validation.Max(64)),
	)
}

// Options converts the section into mirror run options.
func (c *MirrorConfig) Options(token string) mirror.Options {
	return mirror.Options{
		DatabaseID:  c.DatabaseID,
		Token:       token,
		Frontmatter: c.Frontmatter,
		Prune:       c.Prune,
		Workers:     c.Workers,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:         8080,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 60 * time.Second,
			},
		},
		Notion: NotionConfig{
			BaseURL:        "https://api.notion.com",
			Version:        "2022-06-28",
			Token:          os.Getenv("NOTION_API_TOKEN"),
			Timeout:        30 * time.Second,
			RateLimit:      3,
			Burst:          3,
			MaxConcurrency: 4,
			MaxRetries:     3,
		},
		Auth: AuthConfig{
			Mode: api.AuthModePassthrough,
		},
		Cache: CacheConfig{
			Path: "./notionmd.db",
		},
		Mirror: MirrorConfig{
			Path:        "./vault",
			Frontmatter: true,
			Workers:     4,
		},
	}
}
