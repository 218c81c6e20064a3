//go:build linux
// +build linux

package dialer

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

func (c *SockoptConfig) control(_, _ string, rc syscall.RawConn) error {
	var serr error
	err := rc.Control(func(fd uintptr) {
		if c.Mark != 0 {
			if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_MARK, c.Mark); err != nil {
				serr = fmt.Errorf("set SO_MARK: %w", err)
				return
			}
		}
		if c.Interface != "" {
			if err := unix.BindToDevice(int(fd), c.Interface); err != nil {
				serr = fmt.Errorf("bind to device %s: %w", c.Interface, err)
			}
		}
	})
	if err != nil {
		return err
	}
	return serr
}
