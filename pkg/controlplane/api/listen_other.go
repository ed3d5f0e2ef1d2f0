//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package api

import "net"

// listenConfig ignores reusePort: the platform has no SO_REUSEPORT.
func listenConfig(bool) net.ListenConfig {
	return net.ListenConfig{}
}
