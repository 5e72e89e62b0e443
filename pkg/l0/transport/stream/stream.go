// Package stream adapts blocking io.ReadWriter streams to link.Transport.
package stream

import (
	"errors"
	"io"
	"sync"
)

// DefaultQueueSize is the number of received bytes buffered ahead of Poll.
const DefaultQueueSize = 256

var (
	// ErrNoData is returned by ReadByte when nothing is available.
	ErrNoData = errors.New("no data available")
	// ErrNotOpen indicates the device has not been started.
	ErrNotOpen = errors.New("not open")
)

// Transport reads the stream in the background so that Available never
// blocks. A read error is reported once all bytes received before it have
// been consumed: Available returns 1 and ReadByte returns the error.
type Transport struct {
	rw     io.ReadWriter
	byteCh chan byte
	doneCh chan struct{}

	err       error
	errLock   sync.RWMutex
	closeOnce sync.Once
}

// New wraps rw and starts reading from it.
func New(rw io.ReadWriter) *Transport {
	return NewSize(rw, DefaultQueueSize)
}

// NewSize wraps rw with a receive queue of the given size.
func NewSize(rw io.ReadWriter, size int) *Transport {
	t := &Transport{
		rw:     rw,
		byteCh: make(chan byte, size),
		doneCh: make(chan struct{}),
	}
	go t.readLoop()
	return t
}

// Available implements link.Transport.
func (t *Transport) Available() int {
	if n := len(t.byteCh); n > 0 {
		return n
	}
	if t.Err() != nil {
		return 1
	}
	return 0
}

// ReadByte implements io.ByteReader.
func (t *Transport) ReadByte() (byte, error) {
	select {
	case b := <-t.byteCh:
		return b, nil
	default:
	}
	if err := t.Err(); err != nil {
		return 0, err
	}
	return 0, ErrNoData
}

// WriteByte implements io.ByteWriter.
func (t *Transport) WriteByte(b byte) error {
	_, err := t.rw.Write([]byte{b})
	return err
}

// Write implements io.Writer so frames go out in one write.
func (t *Transport) Write(p []byte) (int, error) {
	return t.rw.Write(p)
}

// Err returns the error which stopped the read loop.
func (t *Transport) Err() error {
	t.errLock.RLock()
	defer t.errLock.RUnlock()
	return t.err
}

// Close stops reading and closes the stream if it is an io.Closer.
func (t *Transport) Close() (err error) {
	t.closeOnce.Do(func() {
		close(t.doneCh)
		if closer, ok := t.rw.(io.Closer); ok {
			err = closer.Close()
		}
	})
	return
}

func (t *Transport) readLoop() {
	buf := make([]byte, 64)
	for {
		n, err := t.rw.Read(buf)
		for _, b := range buf[:n] {
			select {
			case t.byteCh <- b:
			case <-t.doneCh:
				return
			}
		}
		if err != nil {
			t.errLock.Lock()
			t.err = err
			t.errLock.Unlock()
			return
		}
	}
}
