package main

import (
	"context"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/frankli0324/go-wsdial"
	"github.com/frankli0324/go-wsdial/internal/log"
)

// dialWithRetry retries failed attempts with an exponential backoff. url and
// encryption unavailable errors would fail the same way every time and end
// the loop at once.
func dialWithRetry(ctx context.Context, req *wsdial.Request, opts *wsdial.Options, retries int, logger log.Logger) (*wsdial.Conn, *http.Response, error) {
	var (
		conn *wsdial.Conn
		resp *http.Response
	)
	op := func() error {
		c, r, err := wsdial.Dial(ctx, req, opts)
		resp = r
		if err != nil {
			switch wsdial.KindOf(err) {
			case wsdial.KindURL, wsdial.KindEncryptionUnavailable:
				return backoff.Permanent(err)
			}
			return err
		}
		conn = c
		return nil
	}

	params := backoff.NewExponentialBackOff()
	params.InitialInterval = 500 * time.Millisecond
	params.MaxElapsedTime = 0 // bounded by retries
	b := backoff.WithContext(backoff.WithMaxRetries(params, uint64(retries)), ctx)

	err := backoff.RetryNotify(op, b, func(err error, next time.Duration) {
		logger.WithError(err).Warnf("connection failed, retrying in %s", next.Round(time.Millisecond))
	})
	if err != nil {
		return nil, resp, err
	}
	return conn, resp, nil
}
