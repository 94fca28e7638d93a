// Package config loads the console configuration from YAML. Every setting
// has a default, so the file is optional.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Env overrides.
const (
	EnvBaseURL = "MENUADMIN_BASE_URL"
	EnvConfig  = "MENUADMIN_CONFIG"
)

type Config struct {
	BaseURL    string              `yaml:"base_url"`
	Timeout    time.Duration       `yaml:"timeout"`
	LogLevel   string              `yaml:"log_level"`
	Theme      string              `yaml:"theme"`
	LoginPath  string              `yaml:"login_path"`
	UseKeyring bool                `yaml:"use_keyring"`
	Resources  map[string]Resource `yaml:"resources"`
}

// Resource is the endpoint configuration of one list.
type Resource struct {
	// Path is read with GET. It may contain {param} placeholders, e.g.
	// /restaurants/{restaurant}/items.
	Path string `yaml:"path"`
	// Extract is a jq expression selecting the collection from the
	// response envelope.
	Extract    string   `yaml:"extract"`
	TogglePath string   `yaml:"toggle_path"`
	DeletePath string   `yaml:"delete_path"`
	Search     []string `yaml:"search"`
	Flags      []string `yaml:"flags"`
}

func Default() *Config {
	return &Config{
		BaseURL:    "http://localhost:8080/api",
		Timeout:    15 * time.Second,
		LogLevel:   "warn",
		Theme:      "classic",
		LoginPath:  "/auth/login",
		UseKeyring: true,
		Resources: map[string]Resource{
			"items": {
				Path: "/items", Extract: ".data",
				TogglePath: "/items/toggle", DeletePath: "/items",
			},
			"restaurants": {
				Path: "/restaurants", Extract: ".data",
				TogglePath: "/restaurants/toggle", DeletePath: "/restaurants",
			},
			"restaurant-items": {
				Path:       "/restaurants/{restaurant}/items",
				Extract:    "[.data // {} | to_entries[] | .key as $c | .value[] | .category = $c]",
				TogglePath: "/items/toggle", DeletePath: "/items",
			},
			"customers": {
				Path: "/users", Extract: ".users",
				TogglePath: "/users/toggle", DeletePath: "/users",
			},
			"coupons": {
				Path: "/coupons", Extract: ".data",
				TogglePath: "/coupons/toggle", DeletePath: "/coupons",
			},
			"refunds": {
				Path: "/refunds", Extract: ".data",
				TogglePath: "/refunds/toggle",
			},
			"legal": {
				Path: "/legal", Extract: ".data",
				TogglePath: "/legal/toggle", DeletePath: "/legal",
			},
		},
	}
}

// DefaultPath is ~/.menuadmin/config.yaml, or $MENUADMIN_CONFIG.
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".menuadmin", "config.yaml")
}

// Load reads path on top of the defaults. A missing file is not an error
// unless required is set. Resource entries in the file are merged field by
// field into the defaults of the same name.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.merge(b); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) merge(b []byte) error {
	var file Config
	file.UseKeyring = c.UseKeyring
	if err := yaml.Unmarshal(b, &file); err != nil {
		return fmt.Errorf("yaml: %w", err)
	}
	if file.BaseURL != "" {
		c.BaseURL = file.BaseURL
	}
	if file.Timeout != 0 {
		c.Timeout = file.Timeout
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	if file.Theme != "" {
		c.Theme = file.Theme
	}
	if file.LoginPath != "" {
		c.LoginPath = file.LoginPath
	}
	c.UseKeyring = file.UseKeyring
	for name, r := range file.Resources {
		c.Resources[name] = c.Resources[name].overlay(r)
	}
	return nil
}

func (r Resource) overlay(o Resource) Resource {
	if o.Path != "" {
		r.Path = o.Path
	}
	if o.Extract != "" {
		r.Extract = o.Extract
	}
	if o.TogglePath != "" {
		r.TogglePath = o.TogglePath
	}
	if o.DeletePath != "" {
		r.DeletePath = o.DeletePath
	}
	if o.Search != nil {
		r.Search = o.Search
	}
	if o.Flags != nil {
		r.Flags = o.Flags
	}
	return r
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvBaseURL)); v != "" {
		c.BaseURL = v
	}
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("base_url must be http(s): %q", c.BaseURL))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative: %s", c.Timeout))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	for _, name := range c.ResourceNames() {
		if c.Resources[name].Path == "" {
			errs = append(errs, fmt.Errorf("resources.%s: empty path", name))
		}
	}
	return errors.Join(errs...)
}

// ResourceNames returns the configured resource names, sorted.
func (c *Config) ResourceNames() []string {
	names := make([]string, 0, len(c.Resources))
	for n := range c.Resources {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
