// Package loopback provides in-memory transports.
package loopback

import (
	"errors"
	"sync"
)

var errEmpty = errors.New("loopback: empty")

type queue struct {
	data []byte
	lock sync.Mutex
}

func (q *queue) len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return len(q.data)
}

func (q *queue) pop() (b byte, ok bool) {
	q.lock.Lock()
	defer q.lock.Unlock()
	if len(q.data) == 0 {
		return
	}
	b, q.data = q.data[0], q.data[1:]
	return b, true
}

func (q *queue) push(p ...byte) {
	q.lock.Lock()
	q.data = append(q.data, p...)
	q.lock.Unlock()
}

// End is one side of an in-memory connection.
type End struct {
	in  *queue
	out *queue
}

// Pair creates two crossed ends: what one writes the other reads.
func Pair() (*End, *End) {
	a, b := &queue{}, &queue{}
	return &End{in: a, out: b}, &End{in: b, out: a}
}

// Echo creates an end which reads back what it writes.
func Echo() *End {
	q := &queue{}
	return &End{in: q, out: q}
}

// Available implements link.Transport.
func (e *End) Available() int {
	return e.in.len()
}

// ReadByte implements io.ByteReader.
func (e *End) ReadByte() (byte, error) {
	if b, ok := e.in.pop(); ok {
		return b, nil
	}
	return 0, errEmpty
}

// WriteByte implements io.ByteWriter.
func (e *End) WriteByte(b byte) error {
	e.out.push(b)
	return nil
}

// Write implements io.Writer.
func (e *End) Write(p []byte) (int, error) {
	e.out.push(p...)
	return len(p), nil
}

// Inject makes p available for reading on this end.
func (e *End) Inject(p ...byte) {
	e.in.push(p...)
}
