package model

import (
	"net/http"
	"net/url"
)

// Request is what a caller hands to the core: the URL to connect to and the
// extra headers of the opening handshake. it is never mutated.
type Request struct {
	URL    string
	Header http.Header
}

func NewRequest(rawURL string, header http.Header) *Request {
	return &Request{URL: rawURL, Header: header}
}

func FromURL(u *url.URL, header http.Header) *Request {
	return &Request{URL: u.String(), Header: header}
}

// FromHTTP takes the URL and headers of r, the method and body are ignored.
func FromHTTP(r *http.Request) *Request {
	return &Request{URL: r.URL.String(), Header: r.Header}
}
