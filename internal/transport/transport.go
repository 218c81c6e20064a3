package transport

import (
	"net"
	"sync"

	"github.com/frankli0324/go-wsdial/internal/model"
)

// Stream is the union of [*Plain] and [*TLS]. Mode reports which variant is
// active and always equals the mode the stream was created for.
type Stream interface {
	net.Conn
	Mode() model.Mode
	// Raw returns the stream handed in by the connector. reading or writing it
	// directly corrupts a TLS session.
	Raw() net.Conn

	variant()
}

// Plain passes everything through to the raw stream untouched.
type Plain struct {
	net.Conn
	closeOnce sync.Once
	closeErr  error
}

func NewPlain(c net.Conn) *Plain {
	return &Plain{Conn: c}
}

func (p *Plain) Mode() model.Mode { return model.ModePlain }
func (p *Plain) Raw() net.Conn    { return p.Conn }
func (p *Plain) variant()         {}

func (p *Plain) Close() error {
	p.closeOnce.Do(func() { p.closeErr = p.Conn.Close() })
	return p.closeErr
}
