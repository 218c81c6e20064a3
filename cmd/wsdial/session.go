package main

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

var errClosed = errors.New("connection closed")

// how long to wait for the server to answer our close frame
const closeTimeout = 5 * time.Second

// runSession sends every line read from in as a text message and prints the
// received messages, until either side closes or ctx is done. the end of the
// input closes the connection gracefully. in is closed before returning.
func runSession(ctx context.Context, conn *websocket.Conn, in lineReader, out *output) error {
	g, gctx := errgroup.WithContext(ctx)

	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := in.ReadLine()
			if err != nil {
				return
			}
			select {
			case lines <- line:
			case <-gctx.Done():
				return
			}
		}
	}()

	g.Go(func() error {
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				if gctx.Err() == nil {
					out.closed(err)
				}
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return errClosed
				}
				return err
			}
			out.message(mt, data)
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					deadline := time.Now().Add(closeTimeout)
					msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
					if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
						return err
					}
					return conn.SetReadDeadline(deadline)
				}
				if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
					return err
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		conn.Close()
		in.Close() // unblocks the pending ReadLine
		return nil
	})

	err := g.Wait()
	if errors.Is(err, errClosed) || ctx.Err() != nil {
		return nil
	}
	return err
}
