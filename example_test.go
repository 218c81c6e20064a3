package wsdial_test

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/frankli0324/go-wsdial"
	"github.com/frankli0324/go-wsdial/dialer"
)

func ExampleDial() {
	conn, resp, err := wsdial.Dial(context.Background(),
		wsdial.NewRequest("wss://echo.example.com/", http.Header{"Origin": {"https://example.com"}}),
		&wsdial.Options{
			TLS:       &wsdial.TLSConfig{TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12}},
			WebSocket: &wsdial.WebSocketConfig{Subprotocols: []string{"chat"}},
			Dialer:    &dialer.CoreDialer{GetProxy: dialer.ProxyFromEnvironment},
		})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer conn.Close()
	fmt.Println(resp.Status, conn.Subprotocol())
}

func ExampleConnect() {
	raw, err := net.Dial("tcp", "echo.example.com:443")
	if err != nil {
		fmt.Println(err)
		return
	}
	conn, _, err := wsdial.Connect(context.Background(), wsdial.NewRequest("wss://echo.example.com/", nil), raw, nil)
	if err != nil {
		if wsdial.KindOf(err) == wsdial.KindURL {
			raw.Close() // not used yet, still ours
		}
		fmt.Println(err)
		return
	}
	defer conn.Close()
	conn.WriteMessage(websocket.TextMessage, []byte("hello"))
}
