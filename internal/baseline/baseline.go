// Package baseline holds the recorded snapshot of dependency digests and
// trusted signing-key fingerprints, and its on-disk representation. A
// baseline is always rewritten wholesale; nothing in this package patches an
// existing file.
package baseline

import (
	"fmt"
	"sort"
)

// Project identifies the project a baseline belongs to. Baseline filenames
// are derived from it, so the same project always produces the same names.
type Project struct {
	Group    string
	Artifact string
}

// Row is one serialized baseline entry.
type Row struct {
	Coordinate string
	Value      string
}

// Accumulator collects per-coordinate results during a generate run. It is
// append-only; ordering is imposed at render time, not insert time.
type Accumulator struct {
	digests map[string]string
	trust   map[string]string
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		digests: make(map[string]string),
		trust:   make(map[string]string),
	}
}

// Record adds one coordinate's digest and trust fingerprint. Recording the
// same coordinate twice is a bug upstream (dedup happens at enumeration) and
// is rejected.
func (a *Accumulator) Record(coord, digest, fingerprint string) error {
	if _, ok := a.digests[coord]; ok {
		return fmt.Errorf("duplicate coordinate %q", coord)
	}
	a.digests[coord] = digest
	a.trust[coord] = fingerprint
	return nil
}

// Len returns the number of recorded coordinates.
func (a *Accumulator) Len() int { return len(a.digests) }

// DigestRows returns the checksum rows sorted by coordinate string.
func (a *Accumulator) DigestRows() []Row { return sortedRows(a.digests) }

// TrustRows returns the trust rows sorted by coordinate string.
func (a *Accumulator) TrustRows() []Row { return sortedRows(a.trust) }

func sortedRows(m map[string]string) []Row {
	rows := make([]Row, 0, len(m))
	for coord, val := range m {
		rows = append(rows, Row{Coordinate: coord, Value: val})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Coordinate < rows[j].Coordinate
	})
	return rows
}
