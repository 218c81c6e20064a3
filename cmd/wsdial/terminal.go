package main

import (
	"bufio"
	"io"
	"net/http"
	"os"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/gorilla/websocket"
	"github.com/mattn/go-isatty"
)

type lineReader interface {
	ReadLine() (string, error)
	Close() error
}

type readlineInput struct{ *readline.Instance }

func (r readlineInput) ReadLine() (string, error) {
	line, err := r.Readline()
	if err == readline.ErrInterrupt {
		return "", io.EOF
	}
	return line, err
}

type plainInput struct {
	s *bufio.Scanner
	c io.Closer
}

func newPlainInput(r io.Reader) *plainInput {
	in := &plainInput{s: bufio.NewScanner(r)}
	in.c, _ = r.(io.Closer)
	return in
}

func (p *plainInput) Close() error {
	if p.c == nil {
		return nil
	}
	return p.c.Close()
}

func (p *plainInput) ReadLine() (string, error) {
	if p.s.Scan() {
		return p.s.Text(), nil
	}
	if err := p.s.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// newTerminal uses readline when stdin is a terminal, so that received
// messages do not garble the line being typed.
func newTerminal(stdout io.Writer, noColor bool) (lineReader, *output) {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "> ",
			HistoryFile:     os.ExpandEnv("$HOME/.wsdial_history"),
			HistoryLimit:    500,
			InterruptPrompt: "^C",
			EOFPrompt:       "",
			Stdin:           os.Stdin,
			Stdout:          stdout,
			Stderr:          os.Stderr,
		})
		if err == nil {
			return readlineInput{rl}, newOutput(rl.Stdout(), noColor)
		}
	}
	return newPlainInput(os.Stdin), newOutput(stdout, noColor)
}

type output struct {
	w                        io.Writer
	text, binary, info, fail *color.Color
}

func newOutput(w io.Writer, noColor bool) *output {
	o := &output{
		w:      w,
		text:   color.New(color.FgGreen),
		binary: color.New(color.FgMagenta),
		info:   color.New(color.FgCyan),
		fail:   color.New(color.FgRed),
	}
	if noColor {
		for _, c := range []*color.Color{o.text, o.binary, o.info, o.fail} {
			c.DisableColor()
		}
	}
	return o
}

func (o *output) connected(conn *websocket.Conn, resp *http.Response) {
	msg := "connected to " + conn.RemoteAddr().String() + " (" + resp.Status + ")"
	if p := conn.Subprotocol(); p != "" {
		msg += ", subprotocol " + p
	}
	o.info.Fprintln(o.w, msg)
}

func (o *output) message(messageType int, data []byte) {
	switch messageType {
	case websocket.TextMessage:
		o.text.Fprintf(o.w, "< %s\n", data)
	case websocket.BinaryMessage:
		o.binary.Fprintf(o.w, "< [%d bytes] %x\n", len(data), data)
	}
}

func (o *output) closed(err error) {
	if ce, ok := err.(*websocket.CloseError); ok {
		o.info.Fprintf(o.w, "closed by server: %d %s\n", ce.Code, ce.Text)
		return
	}
	o.fail.Fprintf(o.w, "connection lost: %v\n", err)
}
