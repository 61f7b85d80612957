// Package lock implements the single-instance guard spec.md §5 and §7
// describe: at process start the daemon tries to acquire an exclusive
// lock, and a second instance must fail fast with a recognizable error
// rather than fighting the first over the same container tree.
package lock

import (
	"errors"
	"fmt"
	"os"

	"github.com/adrg/xdg"
)

// ErrAlreadyRunning is returned by Acquire when another instance
// already holds the lock. The daemon's caller treats this as "another
// instance is running" and exits (spec.md §7, "Concurrent-startup").
var ErrAlreadyRunning = errors.New("lock: another instance is already running")

const lockRelPath = "corewm/corewm.lock"

// Lock is an owned handle to the single-instance lock file. Its Close
// releases the underlying OS lock, mirroring the teacher's pattern of
// an owned resource whose cleanup is explicit rather than relying on
// finalizers (spec.md §9, "the lock is held by an owned handle whose
// Drop releases it").
type Lock struct {
	file *os.File
}

// Acquire resolves the lock file path via xdg and attempts to take an
// exclusive, non-blocking lock on it. It returns ErrAlreadyRunning if
// another process already holds it.
func Acquire() (*Lock, error) {
	path, err := xdg.CacheFile(lockRelPath)
	if err != nil {
		return nil, fmt.Errorf("lock: resolve path: %w", err)
	}
	return AcquireFile(path)
}

// AcquireFile acquires the lock at an explicit path, used by tests that
// don't want to touch the real XDG cache directory.
func AcquireFile(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("lock: open %s: %w", path, err)
	}
	if err := tryFlock(f); err != nil {
		_ = f.Close()
		if errors.Is(err, errWouldBlock) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("lock: flock %s: %w", path, err)
	}
	return &Lock{file: f}, nil
}

// Close releases the lock and closes the underlying file.
func (l *Lock) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = unlockFile(l.file)
	return l.file.Close()
}
