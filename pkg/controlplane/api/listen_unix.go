//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package api

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// listenConfig returns a ListenConfig that sets SO_REUSEADDR and
// SO_REUSEPORT on the socket when reusePort is true, so that several
// processes can bind the same port.
func listenConfig(reusePort bool) net.ListenConfig {
	if !reusePort {
		return net.ListenConfig{}
	}
	return net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				if sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); sockErr != nil {
					return
				}
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
}
