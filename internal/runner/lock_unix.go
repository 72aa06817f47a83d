//go:build !windows

package runner

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// lockFile is an exclusive advisory lock held for the lifetime of a node
type lockFile struct {
	file *os.File
}

func acquireLock(path string) (*lockFile, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrAlreadyRunning
		}
		return nil, err
	}
	return &lockFile{file: file}, nil
}

func (l *lockFile) Release() error {
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}
