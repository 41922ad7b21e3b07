// Package snapshot produces the per-coordinate digest and fingerprint set,
// either to record a new baseline (generate) or to compare against one
// (verify). Collection is concurrent but its output is deterministic.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	digest "github.com/opencontainers/go-digest"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/artagon/depbaseline/internal/coordinate"
	"github.com/artagon/depbaseline/internal/signature"
	"github.com/artagon/depbaseline/internal/utils/logger"
)

// DefaultWorkers bounds concurrent fetches when the caller does not choose.
const DefaultWorkers = 4

// Fetcher retrieves artifact and detached-signature bytes per coordinate.
// The two fetches are decoupled: signature retrieval may fail without
// affecting the content digest.
type Fetcher interface {
	FetchArtifact(ctx context.Context, c coordinate.Coordinate) ([]byte, error)
	FetchSignature(ctx context.Context, c coordinate.Coordinate) ([]byte, error)
}

// Outcome is one coordinate's collected result. Fingerprint is
// signature.NoKey when no signature was available or parseable.
type Outcome struct {
	Coordinate  coordinate.Coordinate
	Digest      string
	Fingerprint string
}

// Collector runs the bounded fetch/hash/fingerprint pool.
type Collector struct {
	Fetcher       Fetcher
	Fingerprinter signature.Fingerprinter
	Workers       int
	Progress      bool
}

// Collect fetches, hashes and fingerprints every coordinate. Outcomes come
// back in input order regardless of fetch completion order, so callers that
// pass sorted coordinates get sorted outcomes. A content-fetch failure
// aborts the whole batch; a signature failure degrades that coordinate to
// noKey.
func (c *Collector) Collect(ctx context.Context, coords []coordinate.Coordinate) ([]Outcome, error) {
	log := logger.Logger()

	workers := c.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var bar *progressbar.ProgressBar
	if c.Progress {
		bar = progressbar.NewOptions(len(coords),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetDescription("collecting"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
		)
	}

	outcomes := make([]Outcome, len(coords))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, coord := range coords {
		i, coord := i, coord
		g.Go(func() error {
			out, err := c.collectOne(ctx, coord)
			if err != nil {
				return err
			}
			outcomes[i] = out
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	log.Infof("collected %d coordinates", len(outcomes))
	return outcomes, nil
}

func (c *Collector) collectOne(ctx context.Context, coord coordinate.Coordinate) (Outcome, error) {
	log := logger.Logger()

	body, err := c.Fetcher.FetchArtifact(ctx, coord)
	if err != nil {
		// Content digest is mandatory; this fails the run.
		return Outcome{}, err
	}
	sum := digest.SHA256.FromBytes(body).Encoded()

	fingerprint := signature.NoKey
	sig, err := c.Fetcher.FetchSignature(ctx, coord)
	if err != nil {
		log.Warnf("no signature for %s: %v", coord, err)
	} else {
		fp, err := c.Fingerprinter.Extract(sig)
		if err != nil {
			log.Warnf("unparseable signature for %s: %v", coord, err)
		} else {
			fingerprint = fp
		}
	}

	return Outcome{Coordinate: coord, Digest: sum, Fingerprint: fingerprint}, nil
}

// Resolver lists a project's dependency coordinates.
type Resolver interface {
	Resolve(ctx context.Context, scopes []string, transitive bool) ([]coordinate.Coordinate, error)
}

// Enumerate resolves the current coordinate set and imposes the baseline
// ordering contract: deduplicated by identity, sorted lexicographically by
// coordinate string, whatever order the resolver produced.
func Enumerate(ctx context.Context, r Resolver, scopes []string, transitive bool) ([]coordinate.Coordinate, error) {
	coords, err := r.Resolve(ctx, scopes, transitive)
	if err != nil {
		return nil, fmt.Errorf("enumerating coordinates: %w", err)
	}
	if len(coords) == 0 {
		return nil, errors.New("resolver produced no coordinates")
	}
	coords = coordinate.Dedupe(coords)
	coordinate.Sort(coords)
	return coords, nil
}
