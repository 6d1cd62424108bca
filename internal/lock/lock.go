// Package lock provides advisory file locking so concurrent planner
// processes do not interleave writes to shared snapshot or artifact files.
package lock

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FileLock holds an advisory lock on a lock file next to the guarded path.
type FileLock struct {
	f *os.File
}

// Acquire takes an exclusive advisory lock on path, creating the file if
// needed. It blocks until the lock is available.
func Acquire(path string) (*FileLock, error) {
	return acquire(path, unix.LOCK_EX)
}

// AcquireShared takes a shared advisory lock on path, allowing concurrent
// readers while excluding writers.
func AcquireShared(path string) (*FileLock, error) {
	return acquire(path, unix.LOCK_SH)
}

// TryAcquire attempts an exclusive lock without blocking. It returns
// (nil, nil) when the lock is held elsewhere.
func TryAcquire(path string) (*FileLock, error) {
	l, err := acquire(path, unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		if fl, ok := err.(*flockError); ok && fl.errno == unix.EWOULDBLOCK {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

// Release drops the lock and closes the underlying file.
func (l *FileLock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	defer l.f.Close()
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("unlock %s: %w", l.f.Name(), err)
	}
	return nil
}

type flockError struct {
	path  string
	errno unix.Errno
}

func (e *flockError) Error() string {
	return fmt.Sprintf("flock %s: %v", e.path, e.errno)
}

func (e *flockError) Unwrap() error { return e.errno }

func acquire(path string, how int) (*FileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), how); err != nil {
		f.Close()
		if errno, ok := err.(unix.Errno); ok {
			return nil, &flockError{path: path, errno: errno}
		}
		return nil, fmt.Errorf("flock %s: %w", path, err)
	}
	return &FileLock{f: f}, nil
}
