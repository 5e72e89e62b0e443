package link

import "io"

// Transport is a non-blocking byte transport.
// ReadByte is only called when Available reports pending bytes.
type Transport interface {
	Available() int
	io.ByteReader
	io.ByteWriter
}

// Starter is implemented by transports which open a device on connect.
type Starter interface {
	Begin(baudRate int) error
	End() error
}

// writerFor uses the transport's own Write when it has one.
func writerFor(t Transport) io.Writer {
	if w, ok := t.(io.Writer); ok {
		return w
	}
	return byteWriter{t}
}

type byteWriter struct {
	io.ByteWriter
}

// Write implements io.Writer.
func (w byteWriter) Write(p []byte) (int, error) {
	for n, b := range p {
		if err := w.WriteByte(b); err != nil {
			return n, err
		}
	}
	return len(p), nil
}
