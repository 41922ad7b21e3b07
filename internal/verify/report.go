package verify

import (
	"fmt"
	"strings"

	"github.com/artagon/depbaseline/internal/baseline"
)

// FindingKind classifies one verification failure.
type FindingKind string

const (
	KindSelfIntegrity    FindingKind = "SelfIntegrityFailure"
	KindChecksumMismatch FindingKind = "ChecksumMismatch"
	KindTrustMismatch    FindingKind = "TrustMismatch"
)

// Finding is one discrepancy between the baseline and the live state.
// Subject is a coordinate string for drift/trust findings and a baseline
// file path for self-integrity findings.
type Finding struct {
	Kind    FindingKind
	Subject string
	Detail  string
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s: %s", f.Kind, f.Subject, f.Detail)
}

// Report is the full outcome of one verification run. Findings are
// collect-all: every failing coordinate appears, never a silent partial
// success.
type Report struct {
	RunID    string
	State    State
	Findings []Finding
}

// Passed reports whether the run ended in SUCCESS.
func (r *Report) Passed() bool { return r.State == StateSuccess }

func (r *Report) add(kind FindingKind, subject, detail string) {
	r.Findings = append(r.Findings, Finding{Kind: kind, Subject: subject, Detail: detail})
}

// Render produces the human-readable report text.
func (r *Report) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "verification run %s: %s\n", r.RunID, r.State)
	if len(r.Findings) == 0 {
		b.WriteString("no discrepancies found\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%d discrepancies:\n", len(r.Findings))
	for _, f := range r.Findings {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteFile writes the rendered report to path, atomically. Only invoked
// when the caller explicitly asks for a report file; verification itself
// stays read-only.
func (r *Report) WriteFile(path string) error {
	if err := baseline.WriteAtomic(path, []byte(r.Render())); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
