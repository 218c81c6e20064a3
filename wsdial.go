// Package wsdial establishes client WebSocket connections over streams that
// are already open, or opened by a [Dialer].
//
// the scheme of the url decides whether the stream is encrypted first: ws
// streams are used as they are, wss streams go through a TLS handshake bound
// to the host of the url. the opening handshake itself is performed by
// gorilla/websocket, the returned [*Conn] is a regular *websocket.Conn.
//
// binaries built with the no_tls tag carry no TLS code at all. in such builds
// every wss request fails with [ErrEncryptionUnavailable] before the stream is
// touched.
package wsdial

import (
	"context"
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/frankli0324/go-wsdial/internal"
	"github.com/frankli0324/go-wsdial/internal/dialer"
	"github.com/frankli0324/go-wsdial/internal/errors"
	"github.com/frankli0324/go-wsdial/internal/handshake"
	"github.com/frankli0324/go-wsdial/internal/log"
	"github.com/frankli0324/go-wsdial/internal/model"
	"github.com/frankli0324/go-wsdial/internal/tlsengine"
	"github.com/frankli0324/go-wsdial/internal/upgrade"
)

type Request = model.Request
type PreparedRequest = model.PreparedRequest
type Conn = websocket.Conn
type Options = internal.Options

// TLSConfig selects the trust store, verification policy and TLS engine. the
// *tls.Config inside is cloned for every attempt, only ServerName of the clone
// is changed.
type TLSConfig = upgrade.Config

// WebSocketConfig tunes the opening handshake and the resulting connection.
type WebSocketConfig = handshake.Config

type Dialer = dialer.Dialer
type Logger = log.Logger
type TLSEngine = tlsengine.Engine
type TLSEngineConn = tlsengine.Conn

var (
	NewRequest = model.NewRequest
	FromURL    = model.FromURL
	FromHTTP   = model.FromHTTP
)

type Error = errors.Error
type ErrorKind = errors.Kind

const (
	KindUnknown               = errors.KindUnknown
	KindURL                   = errors.KindURL
	KindEncryptionUnavailable = errors.KindEncryptionUnavailable
	KindUpgrade               = errors.KindUpgrade
	KindProtocol              = errors.KindProtocol
)

// use with errors.Is
var (
	ErrURL                   = errors.ErrURL
	ErrEncryptionUnavailable = errors.ErrEncryptionUnavailable
	ErrUpgrade               = errors.ErrUpgrade
	ErrProtocol              = errors.ErrProtocol
)

func KindOf(err error) ErrorKind {
	return errors.KindOf(err)
}

// Connect establishes a WebSocket connection for req over stream.
//
// url and encryption unavailable errors are returned before stream is used,
// it is left open and still owned by the caller. if the TLS handshake or the
// opening handshake fails, stream is closed; a response received from the
// server is returned alongside a protocol error.
func Connect(ctx context.Context, req *Request, stream net.Conn, opts *Options) (*Conn, *http.Response, error) {
	return internal.Connect(ctx, req, stream, opts)
}

// Dial opens a stream with opts.Dialer, a zero [dialer.CoreDialer] by
// default, and continues like [Connect]. the stream is closed on failure.
func Dial(ctx context.Context, req *Request, opts *Options) (*Conn, *http.Response, error) {
	return internal.Dial(ctx, req, opts)
}

// TLSAvailable reports whether this binary can establish wss connections.
func TLSAvailable() bool {
	return tlsengine.Available()
}

// TLSEngines lists the TLS engines compiled into this binary, preferred first.
func TLSEngines() []string {
	return tlsengine.Names()
}

// NewTLSEngine creates an engine for [TLSConfig] by name, e.g. "utls" with
// variant "chrome".
func NewTLSEngine(name, variant string) (TLSEngine, error) {
	return tlsengine.New(name, variant)
}
