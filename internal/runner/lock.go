package runner

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrAlreadyRunning is returned when another node holds the lock for the
// same interface and port
var ErrAlreadyRunning = errors.New("another instance is already running on this interface")

// lockPath returns the lock file used for iface and port inside dir
func lockPath(dir, iface string, port int) string {
	return filepath.Join(dir, fmt.Sprintf("lancomm_%s_%d.lock", iface, port))
}
