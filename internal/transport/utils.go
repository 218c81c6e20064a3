package transport

import (
	"errors"
	"net"
)

func closedOrNil(err error) bool {
	return err == nil || errors.Is(err, net.ErrClosed)
}
