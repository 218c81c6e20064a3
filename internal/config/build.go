package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/url"
	"os"

	"github.com/frankli0324/go-wsdial/internal/dialer"
	"github.com/frankli0324/go-wsdial/internal/handshake"
	"github.com/frankli0324/go-wsdial/internal/tlsengine"
	"github.com/frankli0324/go-wsdial/internal/upgrade"
)

func (c *TLSConfig) tlsConfig() (*tls.Config, error) {
	cfg := &tls.Config{
		InsecureSkipVerify: c.InsecureSkipVerify,
		MinVersion:         tlsVersions[c.MinVersion],
	}
	if c.CAFile != "" {
		pem, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read ca file: %w", err)
		}
		cfg.RootCAs = x509.NewCertPool()
		if !cfg.RootCAs.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %q", c.CAFile)
		}
	}
	return cfg, nil
}

// Build resolves the engine and the trust store. leaving engine and parrot
// empty keeps the preferred engine of the build, even none at all.
func (c *TLSConfig) Build() (*upgrade.Config, error) {
	cfg, err := c.tlsConfig()
	if err != nil {
		return nil, err
	}
	cfg.NextProtos = c.ALPN

	out := &upgrade.Config{TLSConfig: cfg}
	name := c.Engine
	if name == "" && c.Parrot != "" {
		name = "utls"
	}
	if name != "" {
		if out.Engine, err = tlsengine.New(name, c.Parrot); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *WebSocketConfig) Build() *handshake.Config {
	return &handshake.Config{
		ReadBufferSize:    c.ReadBufferSize,
		WriteBufferSize:   c.WriteBufferSize,
		MaxMessageSize:    c.MaxMessageSize,
		Subprotocols:      c.Subprotocols,
		EnableCompression: c.Compression,
	}
}

// Dialer builds the connector. https proxies are verified with the same trust
// store as the server, through the default engine.
func (c *Config) Dialer() (*dialer.CoreDialer, error) {
	d := &dialer.CoreDialer{}
	switch c.Proxy {
	case "":
	case "env":
		d.GetProxy = dialer.ProxyFromEnvironment
	default:
		u, err := url.Parse(c.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		d.GetProxy = dialer.FixedProxy(u)
	}

	proxyTLS, err := c.TLS.tlsConfig()
	if err != nil {
		return nil, err
	}
	d.ProxyTLS = &upgrade.Config{TLSConfig: proxyTLS}

	if c.Dial.Mark != 0 || c.Dial.Interface != "" {
		d.Sockopt = &dialer.SockoptConfig{Mark: c.Dial.Mark, Interface: c.Dial.Interface}
	}
	return d, nil
}
