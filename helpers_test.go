package wsdial_test

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/frankli0324/go-wsdial"
)

// countingConn records every operation performed on the stream.
type countingConn struct {
	net.Conn
	reads, writes, closes atomic.Int32
}

func (c *countingConn) Read(p []byte) (int, error) {
	c.reads.Add(1)
	return c.Conn.Read(p)
}

func (c *countingConn) Write(p []byte) (int, error) {
	c.writes.Add(1)
	return c.Conn.Write(p)
}

func (c *countingConn) Close() error {
	c.closes.Add(1)
	return c.Conn.Close()
}

func (c *countingConn) ops() int32 {
	return c.reads.Load() + c.writes.Load() + c.closes.Load()
}

// spyEngine fails the test run if it is ever asked for a client.
type spyEngine struct{ clients atomic.Int32 }

func (*spyEngine) Name() string { return "spy" }

func (s *spyEngine) Client(net.Conn, *tls.Config) wsdial.TLSEngineConn {
	s.clients.Add(1)
	return nil
}

type wsServer struct {
	*httptest.Server
	handled atomic.Int32
}

func echoHandler(handled *atomic.Int32) http.Handler {
	var upgrader websocket.Upgrader
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handled.Add(1)
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			mt, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			c.WriteMessage(mt, msg)
		}
	})
}

func newServer(t *testing.T) *wsServer {
	s := &wsServer{}
	s.Server = httptest.NewServer(echoHandler(&s.handled))
	t.Cleanup(s.Close)
	return s
}

func dial(t *testing.T, s *wsServer) *countingConn {
	c, err := net.Dial("tcp", s.Listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	return &countingConn{Conn: c}
}
