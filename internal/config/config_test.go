package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "depbaseline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validConfig = `
project:
  group: org.artagon
  artifact: artagon-bom
output_dir: security
format: key-value
scopes: [compile, runtime]
transitive: false
resolver:
  command: "mvn -q dependency:list -DincludeScope={scopes}"
repository:
  url: https://repo.example.com/maven2
  fetch_timeout: 45s
  fetch_retries: 5
workers: 8
logging:
  level: debug
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	require.Equal(t, "org.artagon", cfg.Project.Group)
	require.Equal(t, "artagon-bom", cfg.Project.Artifact)
	require.Equal(t, "key-value", cfg.Format)
	require.Equal(t, []string{"compile", "runtime"}, cfg.Scopes)
	require.False(t, cfg.IncludeTransitive())
	require.Equal(t, "https://repo.example.com/maven2", cfg.Repository.URL)
	require.Equal(t, 5, cfg.Repository.FetchRetries)
	require.Equal(t, 8, cfg.Workers)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())

	timeout, err := cfg.FetchTimeout()
	require.NoError(t, err)
	require.Equal(t, 45*time.Second, timeout)
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
project:
  group: g
  artifact: a
resolver:
  command: "true"
`))
	require.NoError(t, err)

	require.Equal(t, DefaultOutputDir, cfg.OutputDir)
	require.Equal(t, DefaultFormat, cfg.Format)
	require.Equal(t, DefaultScopes, cfg.Scopes)
	require.True(t, cfg.IncludeTransitive())
	require.Equal(t, DefaultRepoURL, cfg.Repository.URL)
	require.Equal(t, DefaultWorkers, cfg.Workers)
	require.Equal(t, DefaultFetchRetries, cfg.Repository.FetchRetries)

	timeout, err := cfg.FetchTimeout()
	require.NoError(t, err)
	require.Equal(t, DefaultFetchTimeout, timeout)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(writeConfig(t, `
project:
  group: g
  artifact: a
outputdir: typo
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "schema validation failed")
}

func TestLoadRejectsBadFormat(t *testing.T) {
	_, err := Load(writeConfig(t, `
format: csv
`))
	require.Error(t, err)
}

func TestLoadRejectsBadWorkerCount(t *testing.T) {
	_, err := Load(writeConfig(t, `
workers: 0
`))
	require.Error(t, err)
}

func TestLoadRejectsBadTimeoutPattern(t *testing.T) {
	_, err := Load(writeConfig(t, `
repository:
  fetch_timeout: eventually
`))
	require.Error(t, err)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateRequiresProjectIdentity(t *testing.T) {
	cfg := Default()
	cfg.Resolver.Command = "true"
	require.Error(t, cfg.Validate())

	cfg.Project.Group = "g"
	cfg.Project.Artifact = "a"
	require.NoError(t, cfg.Validate())
}

func TestValidateRequiresResolverCommand(t *testing.T) {
	cfg := Default()
	cfg.Project.Group = "g"
	cfg.Project.Artifact = "a"
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "resolver command")
}

func TestFetchTimeoutRejectsGarbageAfterDecode(t *testing.T) {
	cfg := Default()
	cfg.Repository.FetchTimeout = "soon"
	_, err := cfg.FetchTimeout()
	require.Error(t, err)
}
