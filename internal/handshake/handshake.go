// package handshake runs the WebSocket opening handshake over an already
// resolved [transport.Stream]. the protocol itself is entirely delegated to
// gorilla/websocket; this package only makes sure the library uses our stream
// instead of dialing one of its own.
package handshake

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/frankli0324/go-wsdial/internal/errors"
	"github.com/frankli0324/go-wsdial/internal/log"
	"github.com/frankli0324/go-wsdial/internal/model"
	"github.com/frankli0324/go-wsdial/internal/transport"
)

// Config holds the negotiation parameters forwarded to gorilla/websocket. a nil
// *Config, or zero fields, keep the library defaults.
type Config struct {
	ReadBufferSize  int
	WriteBufferSize int
	WriteBufferPool websocket.BufferPool

	// MaxMessageSize limits the size of a received message, 0 is unlimited.
	MaxMessageSize int64

	Subprotocols      []string
	EnableCompression bool
	Jar               http.CookieJar
}

// target is the URL and header handed to gorilla, which rejects URLs with
// userinfo. the userinfo becomes Basic Authorization unless the caller set
// one, and internationalized host names are sent in their ASCII form.
func target(req *model.PreparedRequest) (string, http.Header) {
	u := *req.U
	u.User = nil
	h := req.Header

	needHost := req.Domain != req.U.Hostname() && h.Get("Host") == ""
	needAuth := req.U.User != nil && h.Get("Authorization") == ""
	if !needHost && !needAuth {
		return u.String(), h
	}
	h = h.Clone()
	if h == nil {
		h = http.Header{}
	}
	if needHost {
		host := req.Domain
		if port := req.U.Port(); port != "" {
			host = net.JoinHostPort(host, port)
		}
		h.Set("Host", host)
	}
	if needAuth {
		pass, _ := req.U.User.Password()
		h.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(req.U.User.Username()+":"+pass)))
	}
	return u.String(), h
}

var errStreamConsumed = stderrors.New("handshake: stream already handed out")

// Handshake sends the opening handshake for req over s and waits for the
// response. on success the stream belongs to the returned connection. on
// failure the stream is closed, and the response is returned if the server
// sent one.
//
// cancelling ctx aborts the handshake by closing the stream.
func Handshake(ctx context.Context, s transport.Stream, req *model.PreparedRequest, cfg *Config, logger log.Logger) (*websocket.Conn, *http.Response, error) {
	logger = log.Or(logger)
	if s.Mode() != req.Mode {
		s.Close()
		return nil, nil, errors.Upgrade(stderrors.New("handshake: stream mode " + s.Mode().String() + " does not match url mode " + req.Mode.String()))
	}
	if cfg == nil {
		cfg = &Config{}
	}

	var handed atomic.Bool
	dial := func(context.Context, string, string) (net.Conn, error) {
		if !handed.CompareAndSwap(false, true) {
			return nil, errStreamConsumed
		}
		return s, nil
	}
	d := &websocket.Dialer{
		NetDialContext:    dial,
		NetDialTLSContext: dial, // the TLS handshake is already done
		Proxy:             nil,
		ReadBufferSize:    cfg.ReadBufferSize,
		WriteBufferSize:   cfg.WriteBufferSize,
		WriteBufferPool:   cfg.WriteBufferPool,
		Subprotocols:      cfg.Subprotocols,
		EnableCompression: cfg.EnableCompression,
		Jar:               cfg.Jar,
	}

	// gorilla only honours deadlines, abort on cancellation ourselves
	stop := context.AfterFunc(ctx, func() { s.Close() })

	logger.Debug("starting websocket handshake")
	rawURL, header := target(req)
	conn, resp, err := d.DialContext(ctx, rawURL, header)
	if !stop() && err == nil {
		conn.Close()
		return nil, resp, errors.Protocol(ctx.Err())
	}
	if err != nil {
		s.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		logger.WithError(err).Debug("websocket handshake failed")
		return nil, resp, errors.Protocol(err)
	}

	if cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}
	logger.WithFields(map[string]interface{}{
		"status": resp.StatusCode, "subprotocol": conn.Subprotocol(),
	}).Debug("websocket handshake complete")
	return conn, resp, nil
}
