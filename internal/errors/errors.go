// package errors contains the error taxonomy of a connection attempt. every
// error leaving the core is an *[Error] carrying one of four kinds, so callers
// can tell a malformed URL from a rejected handshake from a build that cannot
// speak TLS.
package errors

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	KindUnknown Kind = iota
	// KindURL: invalid scheme, missing host or unparseable URL. detected before any I/O.
	KindURL
	// KindEncryptionUnavailable: TLS requested but no engine compiled in. detected before any I/O.
	KindEncryptionUnavailable
	// KindUpgrade: the TLS handshake failed.
	KindUpgrade
	// KindProtocol: the WebSocket opening handshake failed.
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindEncryptionUnavailable:
		return "encryption unavailable"
	case KindUpgrade:
		return "tls upgrade"
	case KindProtocol:
		return "protocol"
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	msg  string
	error
}

func (e *Error) Error() string {
	msg := e.Kind.String() + " error"
	if e.msg != "" {
		msg += ": " + e.msg
	}
	if e.error != nil {
		msg += ": " + e.error.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.error
}

// Is reports whether target is an *Error of the same kind. a target without
// a message (the package level sentinels) matches every error of its kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.msg == "" || t.msg == e.msg)
}

var (
	ErrURL                   = &Error{Kind: KindURL}
	ErrEncryptionUnavailable = &Error{Kind: KindEncryptionUnavailable}
	ErrUpgrade               = &Error{Kind: KindUpgrade}
	ErrProtocol              = &Error{Kind: KindProtocol}
)

func URL(msg string) *Error {
	return &Error{Kind: KindURL, msg: msg}
}

func URLf(format string, args ...interface{}) *Error {
	return URL(fmt.Sprintf(format, args...))
}

// WrapURL keeps cause reachable through errors.As, e.g. *[net/url.Error].
func WrapURL(msg string, cause error) *Error {
	return &Error{KindURL, msg, cause}
}

func EncryptionUnavailable(msg string) *Error {
	return &Error{Kind: KindEncryptionUnavailable, msg: msg}
}

func Upgrade(cause error) *Error {
	return &Error{KindUpgrade, "", cause}
}

func Protocol(cause error) *Error {
	return &Error{KindProtocol, "", cause}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
