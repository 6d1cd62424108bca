package lock

import (
	"path/filepath"
	"testing"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.lock")

	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if l == nil {
		t.Fatal("Acquire returned nil lock")
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestTryAcquireWhileHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.lock")

	held, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	second, err := TryAcquire(path)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	if second != nil {
		second.Release()
		t.Fatal("TryAcquire succeeded while the lock was held")
	}

	if err := held.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	third, err := TryAcquire(path)
	if err != nil {
		t.Fatalf("TryAcquire after release: %v", err)
	}
	if third == nil {
		t.Fatal("TryAcquire failed after the lock was released")
	}
	third.Release()
}

func TestSharedLocksCoexist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.lock")

	a, err := AcquireShared(path)
	if err != nil {
		t.Fatalf("AcquireShared: %v", err)
	}
	b, err := AcquireShared(path)
	if err != nil {
		t.Fatalf("second AcquireShared: %v", err)
	}

	// A writer cannot enter while readers hold the lock.
	w, err := TryAcquire(path)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	if w != nil {
		w.Release()
		t.Fatal("exclusive lock granted alongside shared holders")
	}

	a.Release()
	b.Release()
}

func TestReleaseNilIsSafe(t *testing.T) {
	var l *FileLock
	if err := l.Release(); err != nil {
		t.Fatalf("Release on nil: %v", err)
	}
}
