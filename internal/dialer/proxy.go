package dialer

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"golang.org/x/net/http/httpproxy"
	"golang.org/x/net/proxy"

	"github.com/frankli0324/go-wsdial/internal/model"
	"github.com/frankli0324/go-wsdial/internal/upgrade"
)

var proxyPorts = map[string]string{
	"http": "80", "https": "443", "socks5": "1080", "socks5h": "1080",
}

// FixedProxy returns a GetProxy hook sending every request through u.
func FixedProxy(u *url.URL) func(context.Context, *model.PreparedRequest) (*url.URL, error) {
	return func(context.Context, *model.PreparedRequest) (*url.URL, error) {
		return u, nil
	}
}

// ProxyFromEnvironment is a GetProxy hook following HTTP_PROXY, HTTPS_PROXY and
// NO_PROXY. ws requests are treated as http, wss requests as https.
func ProxyFromEnvironment(_ context.Context, r *model.PreparedRequest) (*url.URL, error) {
	u := *r.U
	u.Scheme = "http"
	if r.Mode == model.ModeTLS {
		u.Scheme = "https"
	}
	return httpproxy.FromEnvironment().ProxyFunc()(&u)
}

func proxyAddr(u *url.URL) string {
	if u.Port() != "" {
		return u.Host
	}
	return net.JoinHostPort(u.Hostname(), proxyPorts[u.Scheme])
}

// DialContextOverProxy opens a tunnel to hostport through an http, https or
// socks5 proxy.
func (d *CoreDialer) DialContextOverProxy(ctx context.Context, hostport string, u *url.URL) (net.Conn, error) {
	switch u.Scheme {
	case "http", "https":
		return d.dialConnect(ctx, hostport, u)
	case "socks5", "socks5h":
		return d.dialSocks(ctx, hostport, u)
	}
	return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
}

func (d *CoreDialer) dialConnect(ctx context.Context, hostport string, u *url.URL) (net.Conn, error) {
	conn, err := d.netDialer().DialContext(ctx, "tcp", proxyAddr(u))
	if err != nil {
		return nil, fmt.Errorf("dial proxy %s: %w", u.Host, err)
	}

	if u.Scheme == "https" {
		domain, err := model.Domain(u)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("proxy url: %w", err)
		}
		s, err := upgrade.Upgrade(ctx, conn, domain, model.ModeTLS, d.ProxyTLS, nil)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("proxy %s: %w", u.Host, err)
		}
		conn = s
	}

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	tunnel, err := connect(conn, hostport, u.User)
	if !stop() {
		conn.Close()
		return nil, ctx.Err()
	}
	if err != nil {
		conn.Close()
		return nil, err
	}
	return tunnel, nil
}

func (d *CoreDialer) dialSocks(ctx context.Context, hostport string, u *url.URL) (net.Conn, error) {
	var auth *proxy.Auth
	if u.User != nil {
		pass, _ := u.User.Password()
		auth = &proxy.Auth{User: u.User.Username(), Password: pass}
	}
	pd, err := proxy.SOCKS5("tcp", proxyAddr(u), auth, d.netDialer())
	if err != nil {
		return nil, err
	}
	conn, err := pd.(proxy.ContextDialer).DialContext(ctx, "tcp", hostport)
	if err != nil {
		return nil, fmt.Errorf("socks5 proxy %s: %w", u.Host, err)
	}
	return conn, nil
}
