//go:build !no_tls
// +build !no_tls

package tlsengine

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	utls "github.com/refraction-networking/utls"
)

// browser fingerprints selectable as utls variants.
var parrots = map[string]utls.ClientHelloID{
	"chrome":     utls.HelloChrome_Auto,
	"firefox":    utls.HelloFirefox_Auto,
	"safari":     utls.HelloSafari_Auto,
	"ios":        utls.HelloIOS_Auto,
	"edge":       utls.HelloEdge_Auto,
	"randomized": utls.HelloRandomizedNoALPN,
}

func init() {
	Register("utls", 20, func(variant string) (Engine, error) {
		if variant == "" {
			variant = "chrome"
		}
		id, ok := parrots[variant]
		if !ok {
			return nil, fmt.Errorf("tlsengine: unknown utls parrot %q", variant)
		}
		return &UTLS{Parrot: id}, nil
	})
}

// UTLS sends the ClientHello of a real browser using refraction-networking/utls.
//
// Browser presets advertise h2 through ALPN, which a WebSocket opening
// handshake cannot use, so the ALPN extension of the preset is rewritten to
// offer http/1.1 only.
type UTLS struct {
	Parrot utls.ClientHelloID
}

func (u *UTLS) Name() string { return "utls" }

// Client honours RootCAs, ServerName, InsecureSkipVerify, MinVersion,
// MaxVersion, VerifyPeerCertificate and KeyLogWriter of config. the parrot
// may override the version range.
func (u *UTLS) Client(conn net.Conn, config *tls.Config) Conn {
	uconfig := &utls.Config{
		RootCAs:               config.RootCAs,
		ServerName:            config.ServerName,
		InsecureSkipVerify:    config.InsecureSkipVerify,
		MinVersion:            config.MinVersion,
		MaxVersion:            config.MaxVersion,
		VerifyPeerCertificate: config.VerifyPeerCertificate,
		KeyLogWriter:          config.KeyLogWriter,
		NextProtos:            []string{"http/1.1"},
	}
	spec, err := utls.UTLSIdToSpec(u.Parrot)
	if err != nil {
		// randomized parrots have no static spec
		return &uconn{UConn: utls.UClient(conn, uconfig, u.Parrot)}
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}
	c := utls.UClient(conn, uconfig, utls.HelloCustom)
	return &uconn{UConn: c, err: c.ApplyPreset(&spec)}
}

type uconn struct {
	*utls.UConn
	err error // from ApplyPreset, reported by the handshake
}

func (c *uconn) HandshakeContext(ctx context.Context) error {
	if c.err != nil {
		return c.err
	}
	return c.UConn.HandshakeContext(ctx)
}

func (c *uconn) ConnectionState() tls.ConnectionState {
	cs := c.UConn.ConnectionState()
	return tls.ConnectionState{
		Version:                     cs.Version,
		HandshakeComplete:           cs.HandshakeComplete,
		DidResume:                   cs.DidResume,
		CipherSuite:                 cs.CipherSuite,
		NegotiatedProtocol:          cs.NegotiatedProtocol,
		ServerName:                  cs.ServerName,
		PeerCertificates:            cs.PeerCertificates,
		VerifiedChains:              cs.VerifiedChains,
		SignedCertificateTimestamps: cs.SignedCertificateTimestamps,
		OCSPResponse:                cs.OCSPResponse,
		TLSUnique:                   cs.TLSUnique,
	}
}
