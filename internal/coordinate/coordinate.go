package coordinate

import (
	"fmt"
	"sort"
	"strings"
)

// Coordinate identifies one resolved dependency. Identity for baseline
// purposes is (Group, Artifact, Version); Scope and Transitive carry
// resolution context only and never take part in ordering or dedup.
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Scope      string
	Packaging  string
	Transitive bool
}

// String renders the canonical coordinate form used in baseline rows.
func (c Coordinate) String() string {
	return c.Group + ":" + c.Artifact + ":" + c.Version
}

// Identity returns the dedup key. Same as String today, kept separate so
// callers that mean "identity" do not depend on the row rendering.
func (c Coordinate) Identity() string {
	return c.String()
}

// Parse parses a resolver output line into a Coordinate. Accepted shapes:
//
//	group:artifact:version
//	group:artifact:packaging:version
//	group:artifact:packaging:version:scope
//
// which covers the common dependency-list output of Maven-style resolvers.
func Parse(line string) (Coordinate, error) {
	s := strings.TrimSpace(line)
	if s == "" {
		return Coordinate{}, fmt.Errorf("empty coordinate")
	}
	parts := strings.Split(s, ":")
	for _, p := range parts {
		if p == "" {
			return Coordinate{}, fmt.Errorf("malformed coordinate %q", line)
		}
	}
	switch len(parts) {
	case 3:
		return Coordinate{Group: parts[0], Artifact: parts[1], Version: parts[2]}, nil
	case 4:
		return Coordinate{Group: parts[0], Artifact: parts[1], Packaging: parts[2], Version: parts[3]}, nil
	case 5:
		return Coordinate{
			Group:     parts[0],
			Artifact:  parts[1],
			Packaging: parts[2],
			Version:   parts[3],
			Scope:     parts[4],
		}, nil
	default:
		return Coordinate{}, fmt.Errorf("malformed coordinate %q", line)
	}
}

// Sort orders coordinates lexicographically by their canonical string.
// Resolver and fetch-completion order never leak into baseline output.
func Sort(coords []Coordinate) {
	sort.Slice(coords, func(i, j int) bool {
		return coords[i].String() < coords[j].String()
	})
}

// Dedupe drops coordinates whose identity was already seen, keeping the
// first occurrence. Input order is preserved.
func Dedupe(coords []Coordinate) []Coordinate {
	seen := make(map[string]struct{}, len(coords))
	out := coords[:0]
	for _, c := range coords {
		id := c.Identity()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, c)
	}
	return out
}
