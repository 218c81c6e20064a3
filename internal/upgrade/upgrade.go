// package upgrade turns the raw stream of a connection attempt into a
// [transport.Stream], running the TLS client handshake when the request asks
// for an encrypted connection.
package upgrade

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/frankli0324/go-wsdial/internal/errors"
	"github.com/frankli0324/go-wsdial/internal/log"
	"github.com/frankli0324/go-wsdial/internal/model"
	"github.com/frankli0324/go-wsdial/internal/tlsengine"
	"github.com/frankli0324/go-wsdial/internal/transport"
)

// Config controls the TLS handshake. a nil *Config, or nil fields, fall back
// to an empty [tls.Config] (system roots, full verification) and the
// preferred registered engine.
type Config struct {
	// TLSConfig is cloned for every handshake and never modified. ServerName
	// of the clone is always set to the domain of the request.
	TLSConfig *tls.Config
	Engine    tlsengine.Engine
}

func (c *Config) engine() tlsengine.Engine {
	if c != nil && c.Engine != nil {
		return c.Engine
	}
	return tlsengine.Default()
}

func (c *Config) tlsConfig() *tls.Config {
	if c == nil || c.TLSConfig == nil {
		return &tls.Config{}
	}
	return c.TLSConfig.Clone()
}

// Ready reports whether a stream of the given mode can be upgraded with cfg,
// without touching any stream.
func Ready(mode model.Mode, cfg *Config) error {
	switch mode {
	case model.ModePlain:
		return nil
	case model.ModeTLS:
		return tlsReady(cfg)
	}
	return errors.URLf("unknown mode %d", mode)
}

// Upgrade wraps raw according to mode. plain streams are wrapped as they are,
// without any I/O. for TLS, the handshake is bound to domain and runs until it
// completes, fails or ctx is done; on failure raw is closed and an upgrade
// error carrying the cause is returned. there is never a fallback to plain.
//
// if TLS support is not compiled in, an encryption unavailable error is
// returned before raw is touched in any way.
func Upgrade(ctx context.Context, raw net.Conn, domain string, mode model.Mode, cfg *Config, logger log.Logger) (transport.Stream, error) {
	switch mode {
	case model.ModePlain:
		return transport.NewPlain(raw), nil
	case model.ModeTLS:
		return upgradeTLS(ctx, raw, domain, cfg, log.Or(logger))
	}
	return nil, errors.URLf("unknown mode %d", mode)
}
