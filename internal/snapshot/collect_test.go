package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/artagon/depbaseline/internal/coordinate"
)

// fakeResolver returns a fixed coordinate list and counts invocations.
type fakeResolver struct {
	coords []coordinate.Coordinate
	err    error
	calls  int
}

func (r *fakeResolver) Resolve(ctx context.Context, scopes []string, transitive bool) ([]coordinate.Coordinate, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return append([]coordinate.Coordinate(nil), r.coords...), nil
}

// fakeRepo serves artifact and signature bytes from memory. Signature
// values double as fingerprints via fakeFingerprinter. An optional jitter
// shuffles completion order to prove ordering does not depend on it.
type fakeRepo struct {
	artifacts  map[string][]byte
	signatures map[string][]byte
	jitter     time.Duration
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		artifacts:  make(map[string][]byte),
		signatures: make(map[string][]byte),
	}
}

func (f *fakeRepo) add(coord coordinate.Coordinate, content, fingerprint string) {
	f.artifacts[coord.String()] = []byte(content)
	if fingerprint != "" {
		f.signatures[coord.String()] = []byte(fingerprint)
	}
}

func (f *fakeRepo) sleep() {
	if f.jitter > 0 {
		time.Sleep(time.Duration(rand.Int63n(int64(f.jitter))))
	}
}

func (f *fakeRepo) FetchArtifact(ctx context.Context, c coordinate.Coordinate) ([]byte, error) {
	f.sleep()
	body, ok := f.artifacts[c.String()]
	if !ok {
		return nil, fmt.Errorf("artifact %s unreachable", c)
	}
	return body, nil
}

func (f *fakeRepo) FetchSignature(ctx context.Context, c coordinate.Coordinate) ([]byte, error) {
	f.sleep()
	sig, ok := f.signatures[c.String()]
	if !ok {
		return nil, fmt.Errorf("signature %s unreachable", c)
	}
	return sig, nil
}

// fakeFingerprinter treats signature bytes as the fingerprint itself.
type fakeFingerprinter struct{}

func (fakeFingerprinter) Extract(sig []byte) (string, error) {
	if string(sig) == "unparseable" {
		return "", errors.New("bad signature")
	}
	return string(sig), nil
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func coords(ids ...string) []coordinate.Coordinate {
	out := make([]coordinate.Coordinate, 0, len(ids))
	for _, id := range ids {
		c, err := coordinate.Parse(id)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}
