// Advisory single-instance guard.
//
// fileLock wraps flock(2) / LockFileEx on a sidecar "<path>.lock" file.
// It does not implement multi-writer support — it only raises ErrLocked
// quickly when the same data file is opened twice, instead of letting
// two engines silently corrupt each other's writes. The lock is acquired
// once in Open and held for the lifetime of the engine, released once in
// Close.
package cellar

import (
	"fmt"
	"os"
)

// fileLock holds a non-blocking exclusive advisory lock for the lifetime
// of one engine instance.
type fileLock struct {
	f *os.File
}

// acquireFileLock opens (creating if needed) path and takes a
// non-blocking exclusive lock on it. Returns ErrLocked if another
// instance already holds it.
func acquireFileLock(path string) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cellar: open lock file: %w", err)
	}
	if err := tryLockExclusive(f); err != nil {
		f.Close()
		return nil, ErrLocked
	}
	return &fileLock{f: f}, nil
}

// release unlocks and closes the sidecar lock file.
func (l *fileLock) release() error {
	if l == nil || l.f == nil {
		return nil
	}
	_ = unlockFile(l.f)
	return l.f.Close()
}
