package model

import (
	"net"
	"net/url"
	"unicode/utf8"

	"golang.org/x/net/idna"

	"github.com/frankli0324/go-wsdial/internal/errors"
)

// Mode tells whether the stream must be encrypted before the handshake.
type Mode uint8

const (
	ModePlain Mode = iota
	ModeTLS
)

func (m Mode) String() string {
	if m == ModeTLS {
		return "tls"
	}
	return "plain"
}

var schemes = map[string]Mode{
	"ws": ModePlain, "wss": ModeTLS,
}

var ports = map[Mode]string{
	ModePlain: "80", ModeTLS: "443",
}

// ResolveMode maps the URL scheme to a Mode. url.Parse already lower-cases
// the scheme.
func ResolveMode(u *url.URL) (Mode, error) {
	m, ok := schemes[u.Scheme]
	if !ok {
		return ModePlain, errors.URLf("unsupported url scheme %q", u.Scheme)
	}
	return m, nil
}

// Domain returns the host used for SNI and certificate verification.
// internationalized names are converted to their ASCII form, IP literals are
// returned without brackets.
func Domain(u *url.URL) (string, error) {
	host := u.Hostname()
	if host == "" {
		return "", errors.URL("no host name in the url")
	}
	if net.ParseIP(host) != nil || isASCII(host) {
		return host, nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", errors.WrapURL("invalid host name", err)
	}
	return ascii, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func DefaultPort(m Mode) string {
	return ports[m]
}
