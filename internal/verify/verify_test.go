package verify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/artagon/depbaseline/internal/baseline"
	"github.com/artagon/depbaseline/internal/coordinate"
	"github.com/artagon/depbaseline/internal/snapshot"
)

// fakeResolver returns a fixed coordinate list and counts invocations.
type fakeResolver struct {
	coords []coordinate.Coordinate
	calls  int
}

func (r *fakeResolver) Resolve(ctx context.Context, scopes []string, transitive bool) ([]coordinate.Coordinate, error) {
	r.calls++
	return append([]coordinate.Coordinate(nil), r.coords...), nil
}

type fakeRepo struct {
	artifacts  map[string][]byte
	signatures map[string][]byte
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{artifacts: map[string][]byte{}, signatures: map[string][]byte{}}
}

func (f *fakeRepo) add(coord, content, fingerprint string) {
	f.artifacts[coord] = []byte(content)
	if fingerprint != "" {
		f.signatures[coord] = []byte(fingerprint)
	}
}

func (f *fakeRepo) FetchArtifact(ctx context.Context, c coordinate.Coordinate) ([]byte, error) {
	body, ok := f.artifacts[c.String()]
	if !ok {
		return nil, fmt.Errorf("artifact %s unreachable", c)
	}
	return body, nil
}

func (f *fakeRepo) FetchSignature(ctx context.Context, c coordinate.Coordinate) ([]byte, error) {
	sig, ok := f.signatures[c.String()]
	if !ok {
		return nil, fmt.Errorf("signature %s unreachable", c)
	}
	return sig, nil
}

type fakeFingerprinter struct{}

func (fakeFingerprinter) Extract(sig []byte) (string, error) {
	return string(sig), nil
}

type fixture struct {
	dir      string
	repo     *fakeRepo
	resolver *fakeResolver
	opts     Options
}

// newFixture generates a baseline for the given coordinates so tests can
// then mutate the live state and verify against it.
func newFixture(t *testing.T, ids ...string) *fixture {
	t.Helper()

	dir := t.TempDir()
	repo := newFakeRepo()
	var cs []coordinate.Coordinate
	for _, id := range ids {
		c, err := coordinate.Parse(id)
		require.NoError(t, err)
		cs = append(cs, c)
		repo.add(c.String(), "content-"+c.Artifact, "fp-"+c.Artifact)
	}
	resolver := &fakeResolver{coords: cs}

	opts := Options{
		OutputDir:  dir,
		Project:    baseline.Project{Group: "org.artagon", Artifact: "artagon-bom"},
		Format:     baseline.FormatDelimitedTable,
		Scopes:     []string{"compile"},
		Transitive: true,
	}

	_, err := snapshot.Generate(context.Background(), snapshot.GenerateOptions{
		OutputDir:  opts.OutputDir,
		Project:    opts.Project,
		Format:     opts.Format,
		Scopes:     opts.Scopes,
		Transitive: opts.Transitive,
	}, resolver, &snapshot.Collector{Fetcher: repo, Fingerprinter: fakeFingerprinter{}})
	require.NoError(t, err)

	return &fixture{dir: dir, repo: repo, resolver: resolver, opts: opts}
}

func (f *fixture) run(t *testing.T) *Report {
	t.Helper()
	runner := NewRunner(f.opts, f.resolver,
		&snapshot.Collector{Fetcher: f.repo, Fingerprinter: fakeFingerprinter{}})
	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	return report
}

func findingsOfKind(r *Report, kind FindingKind) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func TestVerifyRoundTripSucceeds(t *testing.T) {
	f := newFixture(t, "g:a:lib:1.0:compile")

	report := f.run(t)
	require.True(t, report.Passed())
	require.Equal(t, StateSuccess, report.State)
	require.Empty(t, report.Findings)
	require.NotEmpty(t, report.RunID)
}

func TestVerifyDetectsBaselineTamperingAndShortCircuits(t *testing.T) {
	f := newFixture(t, "g:a:lib:1.0:compile")

	checksumPath, _ := baseline.Paths(f.dir, f.opts.Project, f.opts.Format)
	data, err := os.ReadFile(checksumPath)
	require.NoError(t, err)
	data[len(data)-2] ^= 0x01
	require.NoError(t, os.WriteFile(checksumPath, data, 0644))

	f.resolver.calls = 0
	report := f.run(t)

	require.False(t, report.Passed())
	require.Equal(t, StateFail, report.State)
	require.NotEmpty(t, findingsOfKind(report, KindSelfIntegrity))
	require.Empty(t, findingsOfKind(report, KindChecksumMismatch))
	require.Empty(t, findingsOfKind(report, KindTrustMismatch))
	require.Zero(t, f.resolver.calls, "drift check must not run after a self-integrity failure")
}

func TestVerifyDetectsCorruptedSidecar(t *testing.T) {
	f := newFixture(t, "g:a:lib:1.0:compile")

	checksumPath, _ := baseline.Paths(f.dir, f.opts.Project, f.opts.Format)
	bogus := make([]byte, 32)
	require.NoError(t, os.WriteFile(checksumPath+".sha256",
		[]byte(hex.EncodeToString(bogus)+"\n"), 0644))

	report := f.run(t)
	require.False(t, report.Passed())
	selfFindings := findingsOfKind(report, KindSelfIntegrity)
	require.Len(t, selfFindings, 1)
	require.Equal(t, checksumPath, selfFindings[0].Subject)
}

func TestVerifyDetectsDigestDrift(t *testing.T) {
	f := newFixture(t, "g:a:lib:1.0:compile", "g:a:other:2.0:compile")

	// Same coordinate, different artifact bytes.
	f.repo.artifacts["g:a:1.0"] = []byte("replaced-content")

	report := f.run(t)
	require.False(t, report.Passed())

	drift := findingsOfKind(report, KindChecksumMismatch)
	require.Len(t, drift, 1)
	require.Equal(t, "g:a:1.0", drift[0].Subject)
	require.Contains(t, drift[0].Detail, "digest drift")

	sum := sha256.Sum256([]byte("replaced-content"))
	require.Contains(t, drift[0].Detail, hex.EncodeToString(sum[:]))
}

func TestVerifyReportsUnrecordedCoordinate(t *testing.T) {
	f := newFixture(t, "g:a:lib:1.0:compile")

	extra, err := coordinate.Parse("g:a:newdep:3.0:compile")
	require.NoError(t, err)
	f.repo.add(extra.String(), "new-content", "fp-new")
	f.resolver.coords = append(f.resolver.coords, extra)

	report := f.run(t)
	require.False(t, report.Passed())

	drift := findingsOfKind(report, KindChecksumMismatch)
	require.Len(t, drift, 1)
	require.Equal(t, "g:a:3.0", drift[0].Subject)
	require.Contains(t, drift[0].Detail, "not recorded")
}

func TestVerifyReportsVanishedCoordinate(t *testing.T) {
	f := newFixture(t, "g:a:lib:1.0:compile", "g:a:gone:2.0:compile")

	f.resolver.coords = f.resolver.coords[:1]

	report := f.run(t)
	require.False(t, report.Passed())

	drift := findingsOfKind(report, KindChecksumMismatch)
	require.Len(t, drift, 1)
	require.Equal(t, "g:a:2.0", drift[0].Subject)
	require.Contains(t, drift[0].Detail, "no longer resolved")
}

func TestVerifyDetectsTrustDrift(t *testing.T) {
	f := newFixture(t, "g:a:lib:1.0:compile")

	f.repo.signatures["g:a:1.0"] = []byte("fp-attacker")

	report := f.run(t)
	require.False(t, report.Passed())

	trust := findingsOfKind(report, KindTrustMismatch)
	require.Len(t, trust, 1)
	require.Equal(t, "g:a:1.0", trust[0].Subject)
	require.Empty(t, findingsOfKind(report, KindChecksumMismatch))
}

func TestVerifyNoKeyBaselineToleratesAnyFingerprint(t *testing.T) {
	// Baseline generated without a signature records noKey.
	dir := t.TempDir()
	repo := newFakeRepo()
	c, err := coordinate.Parse("g:a:lib:1.0:compile")
	require.NoError(t, err)
	repo.add(c.String(), "content-lib", "")
	resolver := &fakeResolver{coords: []coordinate.Coordinate{c}}
	opts := Options{
		OutputDir:  dir,
		Project:    baseline.Project{Group: "g", Artifact: "a"},
		Format:     baseline.FormatDelimitedTable,
		Scopes:     []string{"compile"},
		Transitive: true,
	}
	_, err = snapshot.Generate(context.Background(), snapshot.GenerateOptions{
		OutputDir: dir, Project: opts.Project, Format: opts.Format,
		Scopes: opts.Scopes, Transitive: true,
	}, resolver, &snapshot.Collector{Fetcher: repo, Fingerprinter: fakeFingerprinter{}})
	require.NoError(t, err)

	// A signature appearing later must not be penalized.
	repo.signatures[c.String()] = []byte("fp-new-signer")

	runner := NewRunner(opts, resolver,
		&snapshot.Collector{Fetcher: repo, Fingerprinter: fakeFingerprinter{}})
	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.True(t, report.Passed())
}

func TestVerifySignatureDisappearanceIsTrustDrift(t *testing.T) {
	f := newFixture(t, "g:a:lib:1.0:compile")

	delete(f.repo.signatures, "g:a:1.0")

	report := f.run(t)
	require.False(t, report.Passed())

	trust := findingsOfKind(report, KindTrustMismatch)
	require.Len(t, trust, 1)
	require.Contains(t, trust[0].Detail, "no longer available")
}

func TestVerifyCollectsAllFindings(t *testing.T) {
	f := newFixture(t, "g:a:lib:1.0:compile", "g:a:other:2.0:compile")

	f.repo.artifacts["g:a:1.0"] = []byte("drifted")
	f.repo.signatures["g:a:2.0"] = []byte("fp-attacker")

	report := f.run(t)
	require.False(t, report.Passed())
	require.Len(t, findingsOfKind(report, KindChecksumMismatch), 1)
	require.Len(t, findingsOfKind(report, KindTrustMismatch), 1)
}

func TestVerifyFetchFailureIsAnErrorNotAFinding(t *testing.T) {
	f := newFixture(t, "g:a:lib:1.0:compile")

	delete(f.repo.artifacts, "g:a:1.0")

	runner := NewRunner(f.opts, f.resolver,
		&snapshot.Collector{Fetcher: f.repo, Fingerprinter: fakeFingerprinter{}})
	_, err := runner.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unreachable")
}

func TestReportRenderListsEveryFinding(t *testing.T) {
	report := &Report{RunID: "run-1", State: StateFail}
	report.add(KindChecksumMismatch, "g:a:1.0", "digest drift")
	report.add(KindTrustMismatch, "g:b:1.0", "fingerprint drift")

	text := report.Render()
	require.Contains(t, text, "run-1")
	require.Contains(t, text, "2 discrepancies")
	require.Contains(t, text, "[ChecksumMismatch] g:a:1.0")
	require.Contains(t, text, "[TrustMismatch] g:b:1.0")
}

func TestReportWriteFile(t *testing.T) {
	report := &Report{RunID: "run-2", State: StateSuccess}
	path := t.TempDir() + "/report.txt"
	require.NoError(t, report.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "SUCCESS")
}
