package baseline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/artagon/depbaseline/internal/utils/logger"
)

// WriteAtomic writes data to path via a temporary file in the same
// directory followed by a rename, so readers never observe a half-written
// baseline. A crash mid-write leaves the previous file intact.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming %s over %s: %w", tmpName, path, err)
	}
	return nil
}

// Write serializes the accumulator into the checksum and trust baselines
// under dir and returns their paths. Both files are full rewrites.
func Write(dir string, p Project, f Format, acc *Accumulator) (checksumPath, trustPath string, err error) {
	log := logger.Logger()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	checksumPath = filepath.Join(dir, ChecksumFileName(p, f))
	trustPath = filepath.Join(dir, TrustFileName(p))

	if err := WriteAtomic(checksumPath, f.Encode(acc.DigestRows())); err != nil {
		return "", "", fmt.Errorf("writing checksum baseline: %w", err)
	}
	log.Infof("wrote %d checksum rows to %s", acc.Len(), checksumPath)

	if err := WriteAtomic(trustPath, f.Encode(acc.TrustRows())); err != nil {
		return "", "", fmt.Errorf("writing trust baseline: %w", err)
	}
	log.Infof("wrote %d trust rows to %s", acc.Len(), trustPath)

	return checksumPath, trustPath, nil
}
