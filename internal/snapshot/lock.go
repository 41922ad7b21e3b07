package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const lockFileName = ".depbaseline.lock"

// AcquireLock takes the advisory generate lock for dir. Verification is
// read-only and does not lock; only one generate may run against a baseline
// directory at a time. The returned release function removes the lock.
func AcquireLock(dir string) (func(), error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, lockFileName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("baseline directory %s is locked by another generate run (remove %s if stale)", dir, path)
		}
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}
	_, _ = f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	f.Close()

	return func() { os.Remove(path) }, nil
}
