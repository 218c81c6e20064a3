//go:build !no_tls
// +build !no_tls

package upgrade

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/frankli0324/go-wsdial/internal/errors"
	"github.com/frankli0324/go-wsdial/internal/log"
	"github.com/frankli0324/go-wsdial/internal/transport"
)

func tlsReady(cfg *Config) error {
	if cfg.engine() == nil {
		return errors.EncryptionUnavailable("TLS support not compiled in")
	}
	return nil
}

func upgradeTLS(ctx context.Context, raw net.Conn, domain string, cfg *Config, logger log.Logger) (transport.Stream, error) {
	if err := tlsReady(cfg); err != nil {
		return nil, err
	}
	engine := cfg.engine()
	config := cfg.tlsConfig()
	config.ServerName = domain

	logger = logger.WithFields(map[string]interface{}{
		"engine": engine.Name(), "domain": domain,
	})
	logger.Debug("starting tls handshake")

	c := engine.Client(raw, config)
	if err := c.HandshakeContext(ctx); err != nil {
		raw.Close()
		logger.WithError(err).Debug("tls handshake failed")
		return nil, errors.Upgrade(err)
	}

	state := c.ConnectionState()
	logger.WithFields(map[string]interface{}{
		"version": tls.VersionName(state.Version),
		"cipher":  tls.CipherSuiteName(state.CipherSuite),
		"alpn":    state.NegotiatedProtocol,
	}).Debug("tls handshake complete")
	return transport.NewTLS(c, raw), nil
}
