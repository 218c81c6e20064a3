package upgrade_test

import (
	"net"
	"sync/atomic"
)

// countingConn records every operation made on the wrapped stream.
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
