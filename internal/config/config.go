// Package config loads the depbaseline YAML configuration, validates it
// against the embedded JSON schema, and exposes helper accessors with
// sensible defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file or a field is absent.
const (
	DefaultOutputDir    = "security"
	DefaultFormat       = "delimited-table"
	DefaultRepoURL      = "https://repo.maven.apache.org/maven2"
	DefaultWorkers      = 4
	DefaultFetchTimeout = 30 * time.Second
	DefaultFetchRetries = 3
)

// DefaultScopes lists the dependency scopes recorded when none are chosen.
var DefaultScopes = []string{"compile", "runtime"}

// Config is the on-disk configuration shape.
type Config struct {
	Project struct {
		Group    string `yaml:"group"`
		Artifact string `yaml:"artifact"`
	} `yaml:"project"`
	OutputDir  string   `yaml:"output_dir"`
	Format     string   `yaml:"format"`
	Scopes     []string `yaml:"scopes"`
	Transitive *bool    `yaml:"transitive"`
	Resolver   struct {
		Command string `yaml:"command"`
	} `yaml:"resolver"`
	Repository struct {
		URL          string `yaml:"url"`
		FetchTimeout string `yaml:"fetch_timeout"`
		FetchRetries int    `yaml:"fetch_retries"`
	} `yaml:"repository"`
	Workers int `yaml:"workers"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Default returns a config with every default applied and no project
// identity; callers must supply group/artifact via file or flags.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads, schema-validates and decodes a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if len(c.Scopes) == 0 {
		c.Scopes = append([]string(nil), DefaultScopes...)
	}
	if c.Transitive == nil {
		t := true
		c.Transitive = &t
	}
	if c.Repository.URL == "" {
		c.Repository.URL = DefaultRepoURL
	}
	if c.Repository.FetchRetries <= 0 {
		c.Repository.FetchRetries = DefaultFetchRetries
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
}

// FetchTimeout parses the configured fetch timeout, falling back to the
// default on absence.
func (c *Config) FetchTimeout() (time.Duration, error) {
	if c.Repository.FetchTimeout == "" {
		return DefaultFetchTimeout, nil
	}
	d, err := time.ParseDuration(c.Repository.FetchTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid fetch_timeout %q: %w", c.Repository.FetchTimeout, err)
	}
	return d, nil
}

// IncludeTransitive reports whether transitive dependencies are recorded.
func (c *Config) IncludeTransitive() bool {
	return c.Transitive == nil || *c.Transitive
}

// Validate checks the fields no schema can: the project identity that
// drives filename derivation must be present.
func (c *Config) Validate() error {
	if c.Project.Group == "" || c.Project.Artifact == "" {
		return fmt.Errorf("project group and artifact are required (set them in the config file or via --group/--artifact)")
	}
	if c.Resolver.Command == "" {
		return fmt.Errorf("resolver command is required (set resolver.command or --resolver-cmd)")
	}
	return nil
}
