// Package filelock guards a project tree against concurrent rebrand runs
// and provides atomic file rewrites.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is the lock file created in the project root for the
// duration of an apply run.
const LockFileName = ".rebrand.lock"

// RunLock is an advisory lock held while a rename run mutates the tree.
type RunLock struct {
	flock *flock.Flock
	path  string
}

// Acquire takes the run lock for the project rooted at root without
// blocking. Returns an error if another run already holds it.
func Acquire(root string) (*RunLock, error) {
	path := filepath.Join(root, LockFileName)
	fl := flock.New(path)

	acquired, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	if !acquired {
		return nil, fmt.Errorf("another rebrand run is already in progress (lock held on %s)", path)
	}

	return &RunLock{flock: fl, path: path}, nil
}

// Release releases the lock and removes the lock file.
func (l *RunLock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	// Best effort; a vanished lock file is not an error
	os.Remove(l.path)
	return nil
}

// AtomicWrite writes data to path using a temp file in the same directory
// followed by a rename, so readers never observe a partial rewrite and an
// interrupted run leaves the original content intact.
func AtomicWrite(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)

	tempFile, err := os.CreateTemp(dir, ".rebrand-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tempPath, mode); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	// Atomic within the same filesystem
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	tempFile = nil
	return nil
}
