package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/notionmd/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if !cfg.Mirror.Frontmatter {
		t.Error("mirror frontmatter should default to true")
	}
	if cfg.Cache.Enabled {
		t.Error("cache should default to disabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsPassthrough(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to passthrough: %v", err)
	}
	if cfg.Mode != "passthrough" {
		t.Errorf("mode = %q, want passthrough", cfg.Mode)
	}
}

func TestAuthConfig_StaticModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "static"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "token is empty") {
		t.Fatalf("err = %v, want empty token error", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestConfig_StaticModeNeedsNotionToken(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth = AuthConfig{Mode: "static", Token: "client-secret"}
	cfg.Notion.Token = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "notion.token") {
		t.Fatalf("err = %v, want notion.token error", err)
	}

	cfg.Notion.Token = "secret_abc"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("static mode with both tokens should pass: %v", err)
	}
}

func TestConfig_SectionErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.App.HTTP.Port = 0 }, "app:"},
		{"burst", func(c *Config) { c.Notion.Burst = 0 }, "notion:"},
		{"negative rate", func(c *Config) { c.Notion.RateLimit = -1 }, "notion:"},
		{"cache path", func(c *Config) { c.Cache = CacheConfig{Enabled: true} }, "cache:"},
		{"workers", func(c *Config) { c.Mirror.Workers = 0 }, "mirror:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.HasPrefix(err.Error(), tt.want) {
				t.Errorf("err = %v, want prefix %q", err, tt.want)
			}
		})
	}
}

func TestConfig_LoadYAML(t *testing.T) {
	t.Setenv("NOTION_API_TOKEN", "secret_from_env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `app:
  log_level: debug
  http:
    port: 9090
    read_timeout: 5s
notion:
  token: ${NOTION_API_TOKEN}
  rate_limit: 2.5
auth:
  mode: static
  token: client
cache:
  enabled: true
  path: /tmp/pages.db
mirror:
  database_id: d9824bdc-8445-4327-be8b-5b47500af6ce
  prune: true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel.String() != "DEBUG" || cfg.App.HTTP.Port != 9090 {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.App.HTTP.ReadTimeout != 5*time.Second || cfg.App.HTTP.WriteTimeout != 60*time.Second {
		t.Errorf("timeouts = %v/%v", cfg.App.HTTP.ReadTimeout, cfg.App.HTTP.WriteTimeout)
	}
	if cfg.Notion.Token != "secret_from_env" || cfg.Notion.RateLimit != 2.5 {
		t.Errorf("notion = %+v", cfg.Notion)
	}
	if cfg.Notion.BaseURL != "https://api.notion.com" {
		t.Errorf("base url default lost: %q", cfg.Notion.BaseURL)
	}

	opts := cfg.Mirror.Options(cfg.Notion.Token)
	if !opts.Frontmatter || !opts.Prune || opts.Workers != 4 || opts.Token != "secret_from_env" {
		t.Errorf("mirror options = %+v", opts)
	}
	if cc := cfg.Notion.ClientConfig(); cc.RateLimit != 2.5 || cc.MaxRetries != 3 {
		t.Errorf("client config = %+v", cc)
	}
}
