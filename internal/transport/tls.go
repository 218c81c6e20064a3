//go:build !no_tls
// +build !no_tls

package transport

import (
	"net"
	"sync"

	"github.com/frankli0324/go-wsdial/internal/model"
	"github.com/frankli0324/go-wsdial/internal/tlsengine"
)

// TLS is a raw stream with a completed TLS handshake on top. ConnectionState
// is promoted from the engine connection.
type TLS struct {
	tlsengine.Conn
	raw net.Conn

	closeOnce sync.Once
	closeErr  error
}

// NewTLS must only be given a connection whose handshake succeeded.
func NewTLS(c tlsengine.Conn, raw net.Conn) *TLS {
	return &TLS{Conn: c, raw: raw}
}

func (t *TLS) Mode() model.Mode { return model.ModeTLS }
func (t *TLS) Raw() net.Conn    { return t.raw }
func (t *TLS) variant()         {}

// NetConn mirrors *[crypto/tls.Conn.NetConn].
func (t *TLS) NetConn() net.Conn { return t.raw }

// Close sends close_notify and closes the raw stream. the raw stream is
// closed even if the engine failed to close it.
func (t *TLS) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.Conn.Close()
		if err := t.raw.Close(); t.closeErr == nil && !closedOrNil(err) {
			t.closeErr = err
		}
	})
	return t.closeErr
}
