//go:build no_tls
// +build no_tls

package upgrade

import (
	"context"
	"net"

	"github.com/frankli0324/go-wsdial/internal/errors"
	"github.com/frankli0324/go-wsdial/internal/log"
	"github.com/frankli0324/go-wsdial/internal/transport"
)

func tlsReady(*Config) error {
	return errors.EncryptionUnavailable("TLS support not compiled in")
}

func upgradeTLS(_ context.Context, _ net.Conn, domain string, _ *Config, logger log.Logger) (transport.Stream, error) {
	logger.WithField("domain", domain).Debug("tls requested in a build without tls support")
	return nil, tlsReady(nil)
}
