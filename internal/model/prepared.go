package model

import (
	"net"
	"net/http"
	"net/url"

	"github.com/frankli0324/go-wsdial/internal/errors"
)

type PreparedRequest struct {
	*Request

	U      *url.URL
	Header http.Header
	Domain string
	Mode   Mode
}

// Prepare parses the URL and derives Domain and Mode. it is the only place
// they are computed and it never touches the network.
func (r *Request) Prepare() (*PreparedRequest, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, errors.WrapURL("invalid url", err)
	}

	// domain first, then mode, so a URL without host always reports the
	// missing host whatever its scheme is
	domain, err := Domain(u)
	if err != nil {
		return nil, err
	}
	mode, err := ResolveMode(u)
	if err != nil {
		return nil, err
	}

	return &PreparedRequest{
		Request: r, U: u,
		Header: r.Header.Clone(),
		Domain: domain, Mode: mode,
	}, nil
}

// HostPort is the address to dial, with the default port of the mode filled in.
func (r *PreparedRequest) HostPort() string {
	port := r.U.Port()
	if port == "" {
		port = DefaultPort(r.Mode)
	}
	return net.JoinHostPort(r.Domain, port)
}
