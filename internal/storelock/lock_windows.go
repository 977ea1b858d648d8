//go:build windows

package storelock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const lockFileName = "writer.lock"

// Lock represents an exclusive lock on a store directory.
// Windows locking is best-effort: a PID marker file, not a true flock.
type Lock struct {
	path string
	file *os.File
}

// Acquire attempts to acquire the exclusive writer lock for storeDir.
func Acquire(storeDir string) (*Lock, error) {
	if err := os.MkdirAll(storeDir, 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	path := filepath.Join(storeDir, lockFileName)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if _, err := file.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("writing pid to lock file: %w", err)
	}

	return &Lock{path: path, file: file}, nil
}

// Release releases the lock and removes the lock file.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	_ = l.file.Close()
	_ = os.Remove(l.path)
}
