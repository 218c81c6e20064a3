// package transport contains the stream a WebSocket opening handshake is
// written to: either the raw stream as it came from the connector, or that
// same stream wrapped in a TLS session.
//
// both variants are plain [net.Conn]s, so the handshake driver and everything
// after it is written once against [Stream] and never asks which one it got.
// the TLS variant only exists in builds without the no_tls tag.
package transport
