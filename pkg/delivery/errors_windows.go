package delivery

import (
	"errors"
	"net"

	"golang.org/x/sys/windows"
)

func mapSendError(err error) Outcome {
	switch {
	case errors.Is(err, net.ErrClosed):
		return OutcomeInvalidFD
	case errors.Is(err, windows.WSAEMSGSIZE):
		return OutcomeInvalidLength
	default:
		return OutcomeOther
	}
}
