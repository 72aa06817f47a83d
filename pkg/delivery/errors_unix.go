//go:build !windows

package delivery

import (
	"errors"
	"net"

	"golang.org/x/sys/unix"
)

// mapSendError maps a failed write to an Outcome. The mapping is not
// exhaustive, unknown errors are reported as OutcomeOther.
func mapSendError(err error) Outcome {
	switch {
	case errors.Is(err, net.ErrClosed), errors.Is(err, unix.EBADF), errors.Is(err, unix.ENOTSOCK):
		return OutcomeInvalidFD
	case errors.Is(err, unix.EMSGSIZE):
		return OutcomeInvalidLength
	default:
		return OutcomeOther
	}
}
