package baseline

import (
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot is a baseline read back from disk.
type Snapshot struct {
	ChecksumPath string
	TrustPath    string
	Digests      map[string]string
	Trust        map[string]string
}

// Paths returns the two baseline file paths for p under dir.
func Paths(dir string, p Project, f Format) (checksumPath, trustPath string) {
	return filepath.Join(dir, ChecksumFileName(p, f)), filepath.Join(dir, TrustFileName(p))
}

// Read loads both baseline files for p from dir.
func Read(dir string, p Project, f Format) (*Snapshot, error) {
	checksumPath, trustPath := Paths(dir, p, f)

	digests, err := readRows(checksumPath, f)
	if err != nil {
		return nil, fmt.Errorf("reading checksum baseline: %w", err)
	}
	trust, err := readRows(trustPath, f)
	if err != nil {
		return nil, fmt.Errorf("reading trust baseline: %w", err)
	}

	return &Snapshot{
		ChecksumPath: checksumPath,
		TrustPath:    trustPath,
		Digests:      digests,
		Trust:        trust,
	}, nil
}

func readRows(path string, f Format) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows, err := f.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
