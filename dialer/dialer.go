package dialer

import (
	"github.com/frankli0324/go-wsdial/internal/dialer"
)

// Dialers are responsible for opening the raw stream a WebSocket connection is
// established over, for example a TCP connection, or a tunnel through a proxy.
//
// A Dialer never speaks TLS to the WebSocket server itself. the stream it
// returns is upgraded by the caller according to the scheme of the url, so a
// Dialer can be swapped out without changing how the connection is secured.
type Dialer = dialer.Dialer

// CoreDialer is the default implementation of the [Dialer] interface. It
// would be used by [github.com/frankli0324/go-wsdial.Dial] when no Dialer is
// configured.
type CoreDialer = dialer.CoreDialer

// SockoptConfig holds socket options applied before connecting. linux only.
type SockoptConfig = dialer.SockoptConfig

// ProxyError is returned when an http proxy refuses to open a tunnel.
type ProxyError = dialer.ProxyError

var (
	// FixedProxy sends every request through the same proxy, see
	// [CoreDialer.GetProxy]. supported schemes are http, https and socks5.
	FixedProxy = dialer.FixedProxy

	// ProxyFromEnvironment picks the proxy from HTTP_PROXY, HTTPS_PROXY and
	// NO_PROXY, ws urls are matched as http and wss urls as https.
	ProxyFromEnvironment = dialer.ProxyFromEnvironment
)
