package internal

import (
	"context"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/frankli0324/go-wsdial/internal/dialer"
	"github.com/frankli0324/go-wsdial/internal/handshake"
	"github.com/frankli0324/go-wsdial/internal/log"
	"github.com/frankli0324/go-wsdial/internal/model"
	"github.com/frankli0324/go-wsdial/internal/upgrade"
)

// Options bundles everything a connection attempt may be configured with.
// a nil *Options, and nil fields, select the defaults of each step.
type Options struct {
	TLS       *upgrade.Config
	WebSocket *handshake.Config
	Dialer    dialer.Dialer // used by Dial only, defaults to a zero *dialer.CoreDialer
	Logger    log.Logger
}

func (o *Options) tls() *upgrade.Config {
	if o == nil {
		return nil
	}
	return o.TLS
}

func (o *Options) webSocket() *handshake.Config {
	if o == nil {
		return nil
	}
	return o.WebSocket
}

func (o *Options) dialer() dialer.Dialer {
	if o == nil || o.Dialer == nil {
		return &dialer.CoreDialer{}
	}
	return o.Dialer
}

// attemptLogger tags everything logged during one attempt.
func (o *Options) attemptLogger(pr *model.PreparedRequest) log.Logger {
	var l log.Logger
	if o != nil {
		l = o.Logger
	}
	return log.Or(l).WithFields(map[string]interface{}{
		"attempt": uuid.NewString(),
		"url":     pr.U.Redacted(),
		"mode":    pr.Mode.String(),
		"domain":  pr.Domain,
	})
}

// Connect establishes a WebSocket connection over an already open stream.
// the mode is derived from the url scheme, wss upgrades the stream to TLS
// before the opening handshake.
//
// url and encryption unavailable errors are reported before stream is used in
// any way, the caller still owns it. any later failure closes stream.
func Connect(ctx context.Context, req *model.Request, stream net.Conn, opts *Options) (*websocket.Conn, *http.Response, error) {
	pr, err := req.Prepare()
	if err != nil {
		return nil, nil, err
	}
	return connect(ctx, pr, stream, opts, opts.attemptLogger(pr))
}

func connect(ctx context.Context, pr *model.PreparedRequest, stream net.Conn, opts *Options, logger log.Logger) (*websocket.Conn, *http.Response, error) {
	s, err := upgrade.Upgrade(ctx, stream, pr.Domain, pr.Mode, opts.tls(), logger)
	if err != nil {
		return nil, nil, err
	}
	conn, resp, err := handshake.Handshake(ctx, s, pr, opts.webSocket(), logger)
	if err != nil {
		logger.WithError(err).Info("websocket connection failed")
		return nil, resp, err
	}
	logger.Info("websocket connection established")
	return conn, resp, nil
}

// Dial opens the stream with the configured dialer, then continues like
// [Connect]. the stream is closed on every failure.
func Dial(ctx context.Context, req *model.Request, opts *Options) (*websocket.Conn, *http.Response, error) {
	pr, err := req.Prepare()
	if err != nil {
		return nil, nil, err
	}
	if err := upgrade.Ready(pr.Mode, opts.tls()); err != nil {
		return nil, nil, err
	}
	logger := opts.attemptLogger(pr)

	logger.Debug("dialing")
	stream, err := opts.dialer().Dial(ctx, pr)
	if err != nil {
		logger.WithError(err).Info("dial failed")
		return nil, nil, err
	}
	conn, resp, err := connect(ctx, pr, stream, opts, logger)
	if err != nil {
		stream.Close()
	}
	return conn, resp, err
}
