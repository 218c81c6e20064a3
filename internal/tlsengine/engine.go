// package tlsengine holds the TLS client backends that may be linked into the
// binary. backends register themselves from init() in files guarded by the
// no_tls build tag, so a binary built with -tags no_tls has an empty registry
// and every TLS request fails with an encryption unavailable error.
package tlsengine

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sort"
	"sync"

	"github.com/frankli0324/go-wsdial/internal/errors"
)

// Conn is a client side TLS connection that has not completed its handshake yet.
// *[crypto/tls.Conn] implements it, other libraries are adapted to it.
type Conn interface {
	net.Conn
	ConnectionState() tls.ConnectionState
	HandshakeContext(ctx context.Context) error
}

// Engine creates client connections. Implementations must not perform any I/O
// in Client, the handshake only starts with [Conn.HandshakeContext].
type Engine interface {
	Name() string
	Client(conn net.Conn, config *tls.Config) Conn
}

// Factory creates an engine. variant selects an engine specific flavour, e.g.
// the browser fingerprint of utls, and is empty for the default one.
type Factory func(variant string) (Engine, error)

type registration struct {
	name     string
	priority int
	factory  Factory
}

var (
	muRegistry sync.RWMutex
	registry   = map[string]*registration{}
)

// Register makes an engine available under name. lower priority wins when no
// engine is named explicitly.
func Register(name string, priority int, f Factory) {
	muRegistry.Lock()
	registry[name] = &registration{name, priority, f}
	muRegistry.Unlock()
}

func sorted() []*registration {
	muRegistry.RLock()
	regs := make([]*registration, 0, len(registry))
	for _, r := range registry {
		regs = append(regs, r)
	}
	muRegistry.RUnlock()
	sort.Slice(regs, func(i, j int) bool {
		if regs[i].priority == regs[j].priority {
			return regs[i].name < regs[j].name
		}
		return regs[i].priority < regs[j].priority
	})
	return regs
}

// New creates the named engine, or the preferred one when name is empty.
func New(name, variant string) (Engine, error) {
	var reg *registration
	if name == "" {
		if regs := sorted(); len(regs) > 0 {
			reg = regs[0]
		}
	} else {
		muRegistry.RLock()
		reg = registry[name]
		muRegistry.RUnlock()
	}
	if reg == nil {
		if name == "" {
			return nil, errors.EncryptionUnavailable("TLS support not compiled in")
		}
		return nil, errors.EncryptionUnavailable(fmt.Sprintf("tls engine %q not compiled in", name))
	}
	return reg.factory(variant)
}

// Default returns the preferred engine, nil if there is none.
func Default() Engine {
	e, err := New("", "")
	if err != nil {
		return nil
	}
	return e
}

// Names lists the registered engines, preferred first.
func Names() []string {
	regs := sorted()
	names := make([]string, len(regs))
	for i, r := range regs {
		names[i] = r.name
	}
	return names
}

func Available() bool {
	muRegistry.RLock()
	defer muRegistry.RUnlock()
	return len(registry) != 0
}
