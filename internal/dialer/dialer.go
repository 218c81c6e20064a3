package dialer

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/frankli0324/go-wsdial/internal/model"
	"github.com/frankli0324/go-wsdial/internal/upgrade"
)

// Dialers open the raw stream a connection attempt runs over. the stream is
// handed to the core as it is, TLS towards the WebSocket server is not the
// Dialer's business.
type Dialer interface {
	Dial(ctx context.Context, r *model.PreparedRequest) (net.Conn, error)
}

type CoreDialer struct {
	// GetProxy selects the proxy for r. a nil URL means a direct connection.
	GetProxy func(ctx context.Context, r *model.PreparedRequest) (*url.URL, error)
	// ProxyTLS configures the handshake with https proxies.
	ProxyTLS *upgrade.Config
	Sockopt  *SockoptConfig
}

func (d *CoreDialer) Clone() *CoreDialer {
	if d == nil {
		return &CoreDialer{}
	}
	c := &CoreDialer{GetProxy: d.GetProxy}
	if d.ProxyTLS != nil {
		c.ProxyTLS = &upgrade.Config{TLSConfig: d.ProxyTLS.TLSConfig.Clone(), Engine: d.ProxyTLS.Engine}
	}
	if d.Sockopt != nil {
		opt := *d.Sockopt
		c.Sockopt = &opt
	}
	return c
}

// Dial connects to the host and port of r, the port defaulting by mode.
// errors are plain wrapped errors, they are not part of the core taxonomy.
func (d *CoreDialer) Dial(ctx context.Context, r *model.PreparedRequest) (net.Conn, error) {
	hp := r.HostPort()
	if d.GetProxy != nil {
		proxy, err := d.GetProxy(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("select proxy: %w", err)
		}
		if proxy != nil {
			return d.DialContextOverProxy(ctx, hp, proxy)
		}
	}

	conn, err := d.netDialer().DialContext(ctx, "tcp", hp)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", hp, err)
	}
	return conn, nil
}

func (d *CoreDialer) netDialer() *net.Dialer {
	nd := &net.Dialer{}
	if d.Sockopt != nil && !d.Sockopt.empty() {
		nd.Control = d.Sockopt.control
	}
	return nd
}
