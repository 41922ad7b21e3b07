// Package sidecar writes and checks the self-integrity digests that guard
// each baseline file. A baseline file always carries exactly one SHA-256 and
// one SHA-512 sidecar; a sidecar that disagrees with the file's live bytes
// is indistinguishable from tampering.
package sidecar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	digest "github.com/opencontainers/go-digest"
	"go.uber.org/multierr"

	"github.com/artagon/depbaseline/internal/baseline"
	"github.com/artagon/depbaseline/internal/utils/logger"
)

var algorithms = []digest.Algorithm{digest.SHA256, digest.SHA512}

// IntegrityError reports a baseline file whose sidecar digest does not
// match its live bytes.
type IntegrityError struct {
	Path      string
	Algorithm string
	Want      string
	Got       string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("self-integrity failure: %s %s digest %s does not match recorded %s",
		e.Path, e.Algorithm, e.Got, e.Want)
}

// Names returns the sidecar paths for a baseline file, in algorithm order
// (sha256, sha512).
func Names(path string) []string {
	names := make([]string, 0, len(algorithms))
	for _, alg := range algorithms {
		names = append(names, path+"."+string(alg))
	}
	return names
}

// WriteAll computes both digests over the final on-disk bytes of path and
// writes the sidecar files with the same atomic discipline as the baseline
// itself.
func WriteAll(path string) error {
	log := logger.Logger()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s for sidecar digests: %w", path, err)
	}

	for _, alg := range algorithms {
		hex := alg.FromBytes(data).Encoded()
		sidecarPath := path + "." + string(alg)
		// coreutils-compatible: "<hex>  <name>"
		content := fmt.Sprintf("%s  %s\n", hex, filepath.Base(path))
		if err := baseline.WriteAtomic(sidecarPath, []byte(content)); err != nil {
			return fmt.Errorf("writing sidecar %s: %w", sidecarPath, err)
		}
		log.Debugf("wrote sidecar %s", sidecarPath)
	}
	return nil
}

// Check recomputes both digests of path's live bytes and compares them to
// the sidecar files. It returns an *IntegrityError on the first mismatch.
func Check(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	for _, alg := range algorithms {
		sidecarPath := path + "." + string(alg)
		recorded, err := readDigest(sidecarPath)
		if err != nil {
			return fmt.Errorf("reading sidecar %s: %w", sidecarPath, err)
		}
		live := alg.FromBytes(data).Encoded()
		if live != recorded {
			return &IntegrityError{
				Path:      path,
				Algorithm: string(alg),
				Want:      recorded,
				Got:       live,
			}
		}
	}
	return nil
}

// CheckAll checks every given baseline file, aggregating all failures so
// the caller reports every tampered file at once.
func CheckAll(paths ...string) error {
	var errs error
	for _, p := range paths {
		if err := Check(p); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// readDigest reads a sidecar file, accepting either the bare hex form or
// the two-column "<hex>  <name>" form external checksum tools emit.
func readDigest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", fmt.Errorf("empty sidecar")
	}
	return strings.ToLower(fields[0]), nil
}
