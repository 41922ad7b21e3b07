package snapshot

import (
	"context"
	"fmt"

	"github.com/artagon/depbaseline/internal/baseline"
	"github.com/artagon/depbaseline/internal/sidecar"
	"github.com/artagon/depbaseline/internal/signature"
	"github.com/artagon/depbaseline/internal/utils/logger"
)

// GenerateOptions configures one generate run.
type GenerateOptions struct {
	OutputDir  string
	Project    baseline.Project
	Format     baseline.Format
	Scopes     []string
	Transitive bool
}

// GenerateResult summarizes what a generate run wrote.
type GenerateResult struct {
	ChecksumPath string
	TrustPath    string
	SidecarPaths []string
	Coordinates  int
	Unsigned     int
}

// Generate records a fresh baseline: enumerate, collect, accumulate, write
// both baseline files atomically, then their sidecars in lockstep.
// Interruption at any point leaves the previous baseline visible.
func Generate(ctx context.Context, opts GenerateOptions, r Resolver, c *Collector) (*GenerateResult, error) {
	log := logger.Logger()

	release, err := AcquireLock(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	defer release()

	coords, err := Enumerate(ctx, r, opts.Scopes, opts.Transitive)
	if err != nil {
		return nil, err
	}
	log.Infof("enumerated %d coordinates (scopes=%v transitive=%v)",
		len(coords), opts.Scopes, opts.Transitive)

	outcomes, err := c.Collect(ctx, coords)
	if err != nil {
		return nil, err
	}

	acc := baseline.NewAccumulator()
	unsigned := 0
	for _, out := range outcomes {
		if out.Fingerprint == signature.NoKey {
			unsigned++
		}
		if err := acc.Record(out.Coordinate.String(), out.Digest, out.Fingerprint); err != nil {
			return nil, fmt.Errorf("accumulating outcomes: %w", err)
		}
	}
	if unsigned > 0 {
		log.Warnf("%d of %d coordinates have no verifiable signature", unsigned, len(outcomes))
	}

	checksumPath, trustPath, err := baseline.Write(opts.OutputDir, opts.Project, opts.Format, acc)
	if err != nil {
		return nil, err
	}

	var sidecars []string
	for _, path := range []string{checksumPath, trustPath} {
		if err := sidecar.WriteAll(path); err != nil {
			return nil, err
		}
		sidecars = append(sidecars, sidecar.Names(path)...)
	}

	return &GenerateResult{
		ChecksumPath: checksumPath,
		TrustPath:    trustPath,
		SidecarPaths: sidecars,
		Coordinates:  len(outcomes),
		Unsigned:     unsigned,
	}, nil
}
