// Package verify re-checks a recorded baseline: first that the baseline
// files themselves are untampered, then that the live dependency set still
// matches what was recorded.
package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/artagon/depbaseline/internal/baseline"
	"github.com/artagon/depbaseline/internal/sidecar"
	"github.com/artagon/depbaseline/internal/signature"
	"github.com/artagon/depbaseline/internal/snapshot"
	"github.com/artagon/depbaseline/internal/utils/logger"
)

// Options configures one verification run.
type Options struct {
	OutputDir  string
	Project    baseline.Project
	Format     baseline.Format
	Scopes     []string
	Transitive bool
}

// Runner drives the verification state machine.
type Runner struct {
	Options   Options
	Resolver  snapshot.Resolver
	Collector *snapshot.Collector

	state State
}

// NewRunner builds a Runner in INIT.
func NewRunner(opts Options, r snapshot.Resolver, c *snapshot.Collector) *Runner {
	return &Runner{Options: opts, Resolver: r, Collector: c, state: StateInit}
}

// Run executes the full verification. A non-nil error means the run could
// not be carried out (configuration or fetch trouble); discrepancies are
// reported through the Report, not the error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	log := logger.Logger()

	report := &Report{RunID: uuid.NewString(), State: StateInit}
	defer func() { report.State = r.state }()

	checksumPath, trustPath := baseline.Paths(r.Options.OutputDir, r.Options.Project, r.Options.Format)

	// SELF_CHECK: the baseline's own authenticity, before anything else.
	if err := transition(&r.state, StateInit, StateSelfCheck); err != nil {
		return nil, err
	}
	log.Infof("run %s: checking baseline self-integrity", report.RunID)
	if err := sidecar.CheckAll(checksumPath, trustPath); err != nil {
		for _, e := range multierr.Errors(err) {
			report.add(KindSelfIntegrity, subjectOf(e), e.Error())
		}
		// The ground truth itself may be compromised; drift and trust
		// checks are meaningless.
		if err := transition(&r.state, StateSelfCheck, StateFail); err != nil {
			return nil, err
		}
		return report, nil
	}

	snap, err := baseline.Read(r.Options.OutputDir, r.Options.Project, r.Options.Format)
	if err != nil {
		return nil, err
	}

	// DRIFT_CHECK: live coordinates and digests against the baseline,
	// collect-all.
	if err := transition(&r.state, StateSelfCheck, StateDriftCheck); err != nil {
		return nil, err
	}
	coords, err := snapshot.Enumerate(ctx, r.Resolver, r.Options.Scopes, r.Options.Transitive)
	if err != nil {
		return nil, err
	}
	log.Infof("run %s: checking %d live coordinates for drift", report.RunID, len(coords))
	outcomes, err := r.Collector.Collect(ctx, coords)
	if err != nil {
		return nil, err
	}

	live := make(map[string]snapshot.Outcome, len(outcomes))
	for _, out := range outcomes {
		coord := out.Coordinate.String()
		live[coord] = out

		recorded, ok := snap.Digests[coord]
		if !ok {
			report.add(KindChecksumMismatch, coord, "not recorded in baseline")
			continue
		}
		if out.Digest != recorded {
			report.add(KindChecksumMismatch, coord,
				fmt.Sprintf("digest drift: live %s, recorded %s", out.Digest, recorded))
		}
	}
	for coord := range snap.Digests {
		if _, ok := live[coord]; !ok {
			report.add(KindChecksumMismatch, coord, "recorded in baseline but no longer resolved")
		}
	}

	// TRUST_CHECK: fingerprints against the trust baseline. A recorded
	// noKey entry is never penalized, in either direction.
	if err := transition(&r.state, StateDriftCheck, StateTrustCheck); err != nil {
		return nil, err
	}
	for _, out := range outcomes {
		coord := out.Coordinate.String()
		recorded, ok := snap.Trust[coord]
		if !ok {
			// Missing trust entry for a coordinate the checksum baseline
			// knows is already drift; only flag coordinates that were
			// recorded at all.
			if _, known := snap.Digests[coord]; known {
				report.add(KindTrustMismatch, coord, "no trust entry recorded")
			}
			continue
		}
		if recorded == signature.NoKey {
			continue
		}
		if out.Fingerprint != recorded {
			detail := fmt.Sprintf("fingerprint drift: live %s, recorded %s", out.Fingerprint, recorded)
			if out.Fingerprint == signature.NoKey {
				detail = fmt.Sprintf("signature no longer available, recorded %s", recorded)
			}
			report.add(KindTrustMismatch, coord, detail)
		}
	}

	final := StateSuccess
	if len(report.Findings) > 0 {
		final = StateFail
	}
	if err := transition(&r.state, StateTrustCheck, final); err != nil {
		return nil, err
	}
	log.Infof("run %s: %s with %d findings", report.RunID, final, len(report.Findings))
	return report, nil
}

// subjectOf pulls the offending file path out of a sidecar error where
// possible.
func subjectOf(err error) string {
	var ie *sidecar.IntegrityError
	if errors.As(err, &ie) {
		return ie.Path
	}
	return "baseline"
}
