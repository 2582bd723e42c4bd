// Package filelock writes run artifacts under an advisory lock so that
// concurrent caserun processes sharing an output path never interleave.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockSuffix is appended to a target path to name its lock file.
const LockSuffix = ".lock"

// ReportPerm is the mode given to every file written by this package.
const ReportPerm os.FileMode = 0644

// ArtifactLock guards one output artifact through a sibling lock file.
type ArtifactLock struct {
	flock  *flock.Flock
	target string
}

// NewArtifactLock returns the lock guarding target. The lock file is
// target+LockSuffix and is created on first Lock.
func NewArtifactLock(target string) *ArtifactLock {
	return &ArtifactLock{
		flock:  flock.New(target + LockSuffix),
		target: target,
	}
}

// Path returns the lock file path.
func (l *ArtifactLock) Path() string {
	return l.flock.Path()
}

// Lock blocks until the artifact is exclusively held.
func (l *ArtifactLock) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.Path()), 0755); err != nil {
		return fmt.Errorf("failed to create directory for lock: %w", err)
	}
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.Path(), err)
	}
	return nil
}

// Locked reports whether this handle currently holds the lock.
func (l *ArtifactLock) Locked() bool {
	return l.flock.Locked()
}

// Unlock releases the artifact.
func (l *ArtifactLock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.Path(), err)
	}
	return nil
}

// Write replaces the artifact with data while holding the lock.
func (l *ArtifactLock) Write(data []byte) (err error) {
	if err := l.Lock(); err != nil {
		return err
	}
	defer func() {
		if uerr := l.Unlock(); uerr != nil && err == nil {
			err = uerr
		}
	}()
	return AtomicWrite(l.target, data)
}

// AtomicWrite replaces path with data. The bytes land in a sibling temp file
// first and are renamed over path only once fully synced.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempPath, err := writeTemp(dir, data)
	if err != nil {
		return err
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// writeTemp stores data in a new synced file under dir and returns its path.
// On failure nothing is left behind.
func writeTemp(dir string, data []byte) (tempPath string, err error) {
	f, err := os.CreateTemp(dir, "."+filepath.Base(dir)+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tempPath = f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", tempPath, err)
	}
	if err = f.Chmod(ReportPerm); err != nil {
		return "", fmt.Errorf("failed to set permissions on %s: %w", tempPath, err)
	}
	if err = f.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync %s: %w", tempPath, err)
	}
	if err = f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", tempPath, err)
	}
	return tempPath, nil
}

// LockAndWrite writes path atomically while holding path+LockSuffix.
func LockAndWrite(path string, data []byte) error {
	return NewArtifactLock(path).Write(data)
}
