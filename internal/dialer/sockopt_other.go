//go:build !linux
// +build !linux

package dialer

import "syscall"

func (c *SockoptConfig) control(_, _ string, _ syscall.RawConn) error {
	return errSockoptUnsupported
}
