package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-wsdial"
	"github.com/frankli0324/go-wsdial/internal/log"
)

func echoServer(t *testing.T) *httptest.Server {
	var upgrader websocket.Upgrader
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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
	}))
	t.Cleanup(server.Close)
	return server
}

func TestParseHeaders(t *testing.T) {
	h, err := parseHeaders([]string{"origin: https://example.com", "X-Token:abc:def"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Origin": "https://example.com", "X-Token": "abc:def"}, h)

	for _, bad := range []string{"no-colon", ": value"} {
		_, err := parseHeaders([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "wsdial.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
url: ws://from.config/
headers:
  Origin: https://from.config
proxy: http://proxy.config:3128
retries: 2
log:
  level: warn
`), 0o600))

	f := &flags{}
	cmd := f.command()
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", file, "-H", "X-Extra: 1", "--retries", "5", "--subprotocol", "chat,superchat",
	}))
	cfg, err := f.load(cmd.Flags(), []string{"wss://from.args/"})
	require.NoError(t, err)

	assert.Equal(t, "wss://from.args/", cfg.URL)
	assert.Equal(t, map[string]string{"Origin": "https://from.config", "X-Extra": "1"}, cfg.Headers)
	assert.Equal(t, "http://proxy.config:3128", cfg.Proxy, "unset flags keep file values")
	assert.Equal(t, 5, cfg.Retries)
	assert.Equal(t, []string{"chat", "superchat"}, cfg.WebSocket.Subprotocols)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestFlagsValidation(t *testing.T) {
	f := &flags{}
	cmd := f.command()
	require.NoError(t, cmd.ParseFlags([]string{"--retries=-1"}))
	_, err := f.load(cmd.Flags(), nil)
	assert.ErrorContains(t, err, "url: is required")
	assert.ErrorContains(t, err, "retries: must not be negative")
}

func TestRunSession(t *testing.T) {
	server := echoServer(t)
	conn, _, err := wsdial.Dial(context.Background(),
		wsdial.NewRequest("ws://"+server.Listener.Addr().String()+"/", nil), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	in := newPlainInput(strings.NewReader("hello\nworld\n"))
	require.NoError(t, runSession(context.Background(), conn, in, newOutput(&buf, true)))

	assert.Equal(t, "< hello\n< world\nclosed by server: 1000 \n", buf.String())
}

// blockingInput never yields a line, ReadLine returns once it is closed.
type blockingInput struct {
	once     sync.Once
	closed   chan struct{}
	returned chan struct{}
}

func (b *blockingInput) ReadLine() (string, error) {
	<-b.closed
	close(b.returned)
	return "", errors.New("input closed")
}

func (b *blockingInput) Close() error {
	b.once.Do(func() { close(b.closed) })
	return nil
}

func TestRunSessionClosesInput(t *testing.T) {
	server := echoServer(t)
	conn, _, err := wsdial.Dial(context.Background(),
		wsdial.NewRequest("ws://"+server.Listener.Addr().String()+"/", nil), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	in := &blockingInput{closed: make(chan struct{}), returned: make(chan struct{})}
	var buf bytes.Buffer
	require.NoError(t, runSession(ctx, conn, in, newOutput(&buf, true)))

	select {
	case <-in.returned:
	case <-time.After(time.Second):
		t.Fatal("input reader still running after the session ended")
	}
}

func TestOutputBinary(t *testing.T) {
	var buf bytes.Buffer
	newOutput(&buf, true).message(websocket.BinaryMessage, []byte{0xde, 0xad})
	assert.Equal(t, "< [2 bytes] dead\n", buf.String())
}

type flakyDialer struct {
	fail  int32
	dials atomic.Int32
}

func (d *flakyDialer) Dial(ctx context.Context, r *wsdial.PreparedRequest) (net.Conn, error) {
	if d.dials.Add(1) <= d.fail {
		return nil, errors.New("connection refused")
	}
	return (&net.Dialer{}).DialContext(ctx, "tcp", r.HostPort())
}

func TestDialWithRetry(t *testing.T) {
	server := echoServer(t)
	d := &flakyDialer{fail: 2}
	conn, _, err := dialWithRetry(context.Background(),
		wsdial.NewRequest("ws://"+server.Listener.Addr().String()+"/", nil),
		&wsdial.Options{Dialer: d}, 3, log.Nop{})
	require.NoError(t, err)
	conn.Close()
	assert.EqualValues(t, 3, d.dials.Load())
}

func TestDialWithRetryStopsOnURLError(t *testing.T) {
	d := &flakyDialer{}
	_, _, err := dialWithRetry(context.Background(),
		wsdial.NewRequest("http://example.com/", nil), &wsdial.Options{Dialer: d}, 5, log.Nop{})
	assert.ErrorIs(t, err, wsdial.ErrURL)
	assert.Zero(t, d.dials.Load())
}

func TestEnginesCmd(t *testing.T) {
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"engines"})
	require.NoError(t, cmd.Execute())

	if wsdial.TLSAvailable() {
		assert.Equal(t, strings.Join(wsdial.TLSEngines(), "\n")+"\n", buf.String())
	} else {
		assert.Contains(t, buf.String(), "no TLS engine")
	}
}
