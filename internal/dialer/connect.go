package dialer

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
)

// bodies of rejected CONNECT replies are cut at this size
const maxErrorBody = 1024

type ProxyError struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       string
}

func (e *ProxyError) Error() string {
	return fmt.Sprintf("proxy server returned error. status:%d, body:%s", e.StatusCode, e.Body)
}

// bufferedConn serves the bytes the proxy sent right after its reply before
// reading from the connection again.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

func connect(conn net.Conn, hostport string, user *url.Userinfo) (net.Conn, error) {
	if err := writeConnect(conn, hostport, user); err != nil {
		return nil, err
	}
	br := bufio.NewReader(conn)
	code, status, header, err := readConnect(textproto.NewReader(br))
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		perr := &ProxyError{StatusCode: code, Status: status, Header: header}
		if cl, err := strconv.ParseInt(header.Get("Content-Length"), 10, 64); err == nil && cl > 0 {
			body, _ := io.ReadAll(io.LimitReader(br, min(cl, maxErrorBody)))
			perr.Body = string(body)
		}
		return nil, perr
	}
	if br.Buffered() > 0 {
		return &bufferedConn{conn, br}, nil
	}
	return conn, nil
}

// writeConnect writes the tunnel request, e.g.:
//
//	CONNECT example.com:443 HTTP/1.1\r\n
//	Host: example.com:443\r\n
//	Proxy-Authorization: Basic dXNlcjpwYXNz\r\n
//	\r\n
func writeConnect(w io.Writer, hostport string, user *url.Userinfo) error {
	header := bufio.NewWriter(w)
	header.WriteString("CONNECT ")
	header.WriteString(hostport)
	header.WriteString(" HTTP/1.1\r\nHost: ")
	header.WriteString(hostport)
	header.WriteString("\r\n")
	if user != nil {
		pass, _ := user.Password()
		header.WriteString("Proxy-Authorization: Basic ")
		header.WriteString(base64.StdEncoding.EncodeToString([]byte(user.Username() + ":" + pass)))
		header.WriteString("\r\n")
	}
	header.WriteString("\r\n")
	return header.Flush()
}

func readConnect(tp *textproto.Reader) (code int, status string, header http.Header, err error) {
	line, err := tp.ReadLine()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, "", nil, err
	}
	proto, status, ok := strings.Cut(line, " ")
	if !ok || !strings.HasPrefix(proto, "HTTP/1.") {
		return 0, "", nil, errors.New("malformed HTTP response from proxy")
	}
	status = strings.TrimLeft(status, " ")

	statusCode, _, _ := strings.Cut(status, " ")
	if len(statusCode) != 3 {
		return 0, "", nil, errors.New("malformed HTTP status code " + statusCode)
	}
	code, err = strconv.Atoi(statusCode)
	if err != nil || code < 0 {
		return 0, "", nil, errors.New("malformed HTTP status code")
	}

	mimeHeader, err := tp.ReadMIMEHeader()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, "", nil, err
	}
	return code, status, http.Header(mimeHeader), nil
}
