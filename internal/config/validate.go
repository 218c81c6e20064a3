package config

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/frankli0324/go-wsdial/internal/log"
)

type ValidationError struct {
	Field   string // e.g. "tls.min_version"
	Value   string
	Message string
	Hint    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationResult struct {
	Errors []ValidationError
}

func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid configuration:")
	for _, err := range r.Errors {
		sb.WriteString("\n  ")
		sb.WriteString(err.Error())
		if err.Value != "" {
			fmt.Fprintf(&sb, " (got %q)", err.Value)
		}
		if err.Hint != "" {
			sb.WriteString(", ")
			sb.WriteString(err.Hint)
		}
	}
	return sb.String()
}

func (r *ValidationResult) add(field, value, message, hint string) {
	r.Errors = append(r.Errors, ValidationError{field, value, message, hint})
}

var tlsVersions = map[string]uint16{
	"1.0": tls.VersionTLS10, "1.1": tls.VersionTLS11, "1.2": tls.VersionTLS12, "1.3": tls.VersionTLS13,
}

var proxySchemes = map[string]bool{
	"http": true, "https": true, "socks5": true, "socks5h": true,
}

// Validate checks the values that can be checked without any I/O. the url
// itself is left to the connection attempt, so that its errors are reported
// the same way whatever the source of the url.
func (c *Config) Validate() error {
	r := &ValidationResult{}

	if c.URL == "" {
		r.add("url", "", "is required", "pass it as an argument or set url in the config file")
	}
	if c.Proxy != "" && c.Proxy != "env" {
		if u, err := url.Parse(c.Proxy); err != nil || !proxySchemes[u.Scheme] || u.Host == "" {
			r.add("proxy", c.Proxy, "invalid proxy url", "use http://, https://, socks5:// or env")
		}
	}

	if _, ok := tlsVersions[c.TLS.MinVersion]; c.TLS.MinVersion != "" && !ok {
		r.add("tls.min_version", c.TLS.MinVersion, "unknown TLS version", "one of 1.0, 1.1, 1.2, 1.3")
	}
	for _, proto := range c.TLS.ALPN {
		if proto != "http/1.1" {
			r.add("tls.alpn", proto, "unsupported protocol", "websocket handshakes need http/1.1")
			break
		}
	}
	if c.TLS.Parrot != "" && c.TLS.Engine != "" && c.TLS.Engine != "utls" {
		r.add("tls.parrot", c.TLS.Parrot, "requires the utls engine", "remove tls.engine or set it to utls")
	}

	if c.WebSocket.ReadBufferSize < 0 {
		r.add("websocket.read_buffer_size", fmt.Sprint(c.WebSocket.ReadBufferSize), "must not be negative", "")
	}
	if c.WebSocket.WriteBufferSize < 0 {
		r.add("websocket.write_buffer_size", fmt.Sprint(c.WebSocket.WriteBufferSize), "must not be negative", "")
	}
	if c.WebSocket.MaxMessageSize < 0 {
		r.add("websocket.max_message_size", fmt.Sprint(c.WebSocket.MaxMessageSize), "must not be negative", "0 means unlimited")
	}
	if c.Dial.Mark < 0 {
		r.add("dial.mark", fmt.Sprint(c.Dial.Mark), "must not be negative", "")
	}
	if c.Retries < 0 {
		r.add("retries", fmt.Sprint(c.Retries), "must not be negative", "")
	}

	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			r.add("log.level", c.Log.Level, "unknown log level", "one of debug, info, warn, error")
		}
	}
	if _, err := log.New(log.Config{Format: c.Log.Format}); err != nil {
		r.add("log.format", c.Log.Format, "unknown log format", "text or json")
	}

	if !r.IsValid() {
		return r
	}
	return nil
}
