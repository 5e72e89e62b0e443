// Package transport holds the byte transports a link.Link runs over.
//
// Each kind of transport has its own package and is chosen when the link
// is constructed:
//
//	stream      any io.ReadWriter (TCP, pty)
//	serialport  hardware UART through go.bug.st/serial
//	tarm        UART through github.com/tarm/serial
//	websocket   byte stream tunnelled over a websocket
//	loopback    in-memory pairs for tests and simulation
package transport
