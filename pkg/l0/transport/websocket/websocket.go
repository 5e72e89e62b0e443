// Package websocket tunnels a link byte stream over a websocket, e.g. to
// reach a UART exposed by a remote serial server.
package websocket

import (
	"golang.org/x/net/websocket"

	"github.com/robotalks/symmetry/pkg/l0/transport/stream"
)

// Conn dials url and returns a connection sending binary frames.
func Conn(url, origin string) (*websocket.Conn, error) {
	conn, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return conn, nil
}

// Dial connects to a websocket serving a raw byte stream.
func Dial(url, origin string) (*stream.Transport, error) {
	conn, err := Conn(url, origin)
	if err != nil {
		return nil, err
	}
	return stream.New(conn), nil
}

// Handler serves each websocket connection as a transport.
// The transport is closed when fn returns.
func Handler(fn func(*stream.Transport)) websocket.Handler {
	return func(conn *websocket.Conn) {
		conn.PayloadType = websocket.BinaryFrame
		t := stream.New(conn)
		defer t.Close()
		fn(t)
	}
}
