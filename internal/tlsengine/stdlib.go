//go:build !no_tls
// +build !no_tls

package tlsengine

import (
	"crypto/tls"
	"fmt"
	"net"
)

func init() {
	Register("stdlib", 10, func(variant string) (Engine, error) {
		if variant != "" {
			return nil, fmt.Errorf("tlsengine: stdlib has no variant %q", variant)
		}
		return Stdlib{}, nil
	})
}

// Stdlib uses crypto/tls.
type Stdlib struct{}

func (Stdlib) Name() string { return "stdlib" }

func (Stdlib) Client(conn net.Conn, config *tls.Config) Conn {
	return tls.Client(conn, config)
}
