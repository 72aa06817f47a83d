package transport

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// control sets the socket options that must be in place before bind
func control(ifname string, v6only bool) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			if sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); sockErr != nil {
				return
			}
			if sockErr = unix.BindToDevice(int(fd), ifname); sockErr != nil {
				return
			}
			if v6only {
				sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 1)
			}
		})
		if err != nil {
			return err
		}
		return sockErr
	}
}
