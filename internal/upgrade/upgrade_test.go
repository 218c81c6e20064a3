//go:build !no_tls
// +build !no_tls

package upgrade_test

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-wsdial/internal/errors"
	"github.com/frankli0324/go-wsdial/internal/log"
	"github.com/frankli0324/go-wsdial/internal/model"
	"github.com/frankli0324/go-wsdial/internal/tlsengine"
	"github.com/frankli0324/go-wsdial/internal/transport"
	"github.com/frankli0324/go-wsdial/internal/upgrade"
)

type spyEngine struct {
	tlsengine.Engine
	clients atomic.Int32
}

func (s *spyEngine) Client(conn net.Conn, config *tls.Config) tlsengine.Conn {
	s.clients.Add(1)
	return s.Engine.Client(conn, config)
}

func newTLSServer(t *testing.T) (*httptest.Server, *x509.CertPool) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(server.Close)
	roots := x509.NewCertPool()
	roots.AddCert(server.Certificate())
	return server, roots
}

func dial(t *testing.T, addr string) *countingConn {
	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	return &countingConn{Conn: c}
}

func TestPlainWrapsWithoutTLS(t *testing.T) {
	local, peer := net.Pipe()
	defer peer.Close()
	raw := &countingConn{Conn: local}
	spy := &spyEngine{Engine: tlsengine.Stdlib{}}

	s, err := upgrade.Upgrade(context.Background(), raw, "example.com", model.ModePlain,
		&upgrade.Config{Engine: spy}, log.Nop{})
	require.NoError(t, err)

	assert.IsType(t, &transport.Plain{}, s)
	assert.Equal(t, model.ModePlain, s.Mode())
	assert.Zero(t, spy.clients.Load())
	assert.Zero(t, raw.ops())
}

func TestTLSUpgrade(t *testing.T) {
	server, roots := newTLSServer(t)
	cfg := &tls.Config{RootCAs: roots}
	spy := &spyEngine{Engine: tlsengine.Stdlib{}}

	raw := dial(t, server.Listener.Addr().String())
	s, err := upgrade.Upgrade(context.Background(), raw, "example.com", model.ModeTLS,
		&upgrade.Config{TLSConfig: cfg, Engine: spy}, log.Nop{})
	require.NoError(t, err)
	defer s.Close()

	require.IsType(t, &transport.TLS{}, s)
	assert.Equal(t, model.ModeTLS, s.Mode())
	assert.Same(t, raw, s.Raw())
	assert.EqualValues(t, 1, spy.clients.Load())

	state := s.(*transport.TLS).ConnectionState()
	assert.True(t, state.HandshakeComplete)
	assert.Equal(t, "example.com", state.ServerName)
	assert.Empty(t, cfg.ServerName, "caller config must not be modified")
}

func TestTLSUpgradeDefaultsToSystemRoots(t *testing.T) {
	server, _ := newTLSServer(t)
	raw := dial(t, server.Listener.Addr().String())

	_, err := upgrade.Upgrade(context.Background(), raw, "example.com", model.ModeTLS, nil, nil)
	require.Error(t, err)

	var verr *tls.CertificateVerificationError
	assert.ErrorAs(t, err, &verr)
}

func TestTLSUpgradeCertificateRejected(t *testing.T) {
	server, roots := newTLSServer(t)
	raw := dial(t, server.Listener.Addr().String())

	// the test certificate is not valid for this name
	_, err := upgrade.Upgrade(context.Background(), raw, "wrong.example", model.ModeTLS,
		&upgrade.Config{TLSConfig: &tls.Config{RootCAs: roots}}, log.Nop{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUpgrade)

	var herr x509.HostnameError
	assert.ErrorAs(t, err, &herr)

	assert.Positive(t, raw.closes.Load(), "raw stream must be closed after a failed upgrade")
}

func TestCancelledHandshakeReleasesStream(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	peerDone := make(chan error, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			peerDone <- err
			return
		}
		defer c.Close()
		// swallow the ClientHello and never answer
		_, err = io.Copy(io.Discard, c)
		peerDone <- err
	}()

	raw := dial(t, ln.Addr().String())
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	_, err = upgrade.Upgrade(ctx, raw, "example.com", model.ModeTLS, nil, log.Nop{})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.ErrorIs(t, err, errors.ErrUpgrade)
	assert.ErrorIs(t, err, context.Canceled)

	select {
	case err := <-peerDone:
		assert.NoError(t, err, "peer should observe a clean close")
	case <-time.After(5 * time.Second):
		t.Fatal("raw stream was not released")
	}
}

func TestUnknownEngineNameIsUnavailable(t *testing.T) {
	_, err := tlsengine.New("openssl", "")
	assert.ErrorIs(t, err, errors.ErrEncryptionUnavailable)
}

func TestReady(t *testing.T) {
	assert.NoError(t, upgrade.Ready(model.ModePlain, nil))
	assert.NoError(t, upgrade.Ready(model.ModeTLS, nil))
	assert.NoError(t, upgrade.Ready(model.ModeTLS, &upgrade.Config{Engine: tlsengine.Stdlib{}}))
	assert.ErrorIs(t, upgrade.Ready(model.Mode(42), nil), errors.ErrURL)
}
