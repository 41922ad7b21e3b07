package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/artagon/depbaseline/internal/baseline"
	"github.com/artagon/depbaseline/internal/config"
	"github.com/artagon/depbaseline/internal/repository"
	"github.com/artagon/depbaseline/internal/resolver"
	"github.com/artagon/depbaseline/internal/signature"
	"github.com/artagon/depbaseline/internal/snapshot"
)

const defaultConfigName = "depbaseline.yaml"

// commonFlags are shared by generate and verify; both commands accept the
// same project/baseline selection.
type commonFlags struct {
	projectRoot string
	outputDir   string
	format      string
	scopes      string
	transitive  bool
	resolverCmd string
	group       string
	artifact    string
	repoURL     string
	workers     int
}

func (f *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.projectRoot, "project-root", ".", "Project root the resolver command runs in")
	fs.StringVar(&f.outputDir, "output-dir", config.DefaultOutputDir, "Directory holding the baseline files")
	fs.StringVar(&f.format, "format", config.DefaultFormat, "Baseline format: delimited-table or key-value")
	fs.StringVar(&f.scopes, "scopes", strings.Join(config.DefaultScopes, ","), "Comma-separated dependency scopes")
	fs.BoolVar(&f.transitive, "transitive", true, "Include transitive dependencies")
	fs.StringVar(&f.resolverCmd, "resolver-cmd", "", "Dependency-resolution command ({scopes} and {transitive} placeholders)")
	fs.StringVar(&f.group, "group", "", "Project group id (baseline filename prefix)")
	fs.StringVar(&f.artifact, "artifact", "", "Project artifact id (baseline filename prefix)")
	fs.StringVar(&f.repoURL, "repo-url", config.DefaultRepoURL, "Artifact repository base URL")
	fs.IntVar(&f.workers, "workers", config.DefaultWorkers, "Concurrent fetch workers")
}

// effectiveConfig loads the config file (explicit --config, or
// <project-root>/depbaseline.yaml when present) and overlays every flag the
// user actually set.
func (f *commonFlags) effectiveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	path := cfgFile
	if path == "" {
		candidate := filepath.Join(f.projectRoot, defaultConfigName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("output-dir") || cfg.OutputDir == "" {
		cfg.OutputDir = f.outputDir
	}
	if flags.Changed("format") {
		cfg.Format = f.format
	}
	if flags.Changed("scopes") {
		cfg.Scopes = splitScopes(f.scopes)
	}
	if flags.Changed("transitive") {
		t := f.transitive
		cfg.Transitive = &t
	}
	if flags.Changed("resolver-cmd") {
		cfg.Resolver.Command = f.resolverCmd
	}
	if flags.Changed("group") {
		cfg.Project.Group = f.group
	}
	if flags.Changed("artifact") {
		cfg.Project.Artifact = f.artifact
	}
	if flags.Changed("repo-url") {
		cfg.Repository.URL = f.repoURL
	}
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitScopes(s string) []string {
	var out []string
	for _, scope := range strings.Split(s, ",") {
		scope = strings.TrimSpace(scope)
		if scope != "" {
			out = append(out, scope)
		}
	}
	return out
}

// newResolver builds the exec resolver rooted at the project directory.
func (f *commonFlags) newResolver(cfg *config.Config) *resolver.ExecResolver {
	return &resolver.ExecResolver{Command: cfg.Resolver.Command, Dir: f.projectRoot}
}

// newCollector wires the repository client and fingerprint extractor into
// the bounded collection pool.
func newCollector(cfg *config.Config, progress bool) (*snapshot.Collector, error) {
	timeout, err := cfg.FetchTimeout()
	if err != nil {
		return nil, err
	}
	client := repository.NewClient(cfg.Repository.URL,
		repository.WithTimeout(timeout),
		repository.WithRetries(cfg.Repository.FetchRetries),
	)
	return &snapshot.Collector{
		Fetcher:       client,
		Fingerprinter: signature.OpenPGP{},
		Workers:       cfg.Workers,
		Progress:      progress,
	}, nil
}

// baselineTarget extracts the project/format pair baseline files are named
// after.
func baselineTarget(cfg *config.Config) (baseline.Project, baseline.Format, error) {
	format, err := baseline.ParseFormat(cfg.Format)
	if err != nil {
		return baseline.Project{}, "", err
	}
	proj := baseline.Project{Group: cfg.Project.Group, Artifact: cfg.Project.Artifact}
	if proj.Group == "" || proj.Artifact == "" {
		return baseline.Project{}, "", fmt.Errorf("project group and artifact are required")
	}
	return proj, format, nil
}
