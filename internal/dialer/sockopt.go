package dialer

import "errors"

// SockoptConfig sets options on the sockets the dialer opens. only supported
// on linux, elsewhere dialing with a non-empty config fails.
type SockoptConfig struct {
	Mark      int    // SO_MARK
	Interface string // SO_BINDTODEVICE
}

var errSockoptUnsupported = errors.New("socket options are not supported on this platform")

func (c *SockoptConfig) empty() bool {
	return c.Mark == 0 && c.Interface == ""
}
