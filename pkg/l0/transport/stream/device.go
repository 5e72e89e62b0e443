package stream

import "io"

// OpenFunc opens a device at the given baud rate.
type OpenFunc func(baudRate int) (io.ReadWriteCloser, error)

// Device is a Transport over a device opened on link connect and closed
// on disconnect. It implements link.Transport and link.Starter.
type Device struct {
	Open OpenFunc

	transport *Transport
}

// NewDevice creates a Device.
func NewDevice(open OpenFunc) *Device {
	return &Device{Open: open}
}

// Begin implements link.Starter.
func (d *Device) Begin(baudRate int) error {
	if d.transport != nil {
		d.transport.Close()
		d.transport = nil
	}
	rwc, err := d.Open(baudRate)
	if err != nil {
		return err
	}
	d.transport = New(rwc)
	return nil
}

// End implements link.Starter.
func (d *Device) End() error {
	if d.transport == nil {
		return nil
	}
	err := d.transport.Close()
	d.transport = nil
	return err
}

// Available implements link.Transport.
func (d *Device) Available() int {
	if d.transport == nil {
		return 0
	}
	return d.transport.Available()
}

// ReadByte implements io.ByteReader.
func (d *Device) ReadByte() (byte, error) {
	if d.transport == nil {
		return 0, ErrNotOpen
	}
	return d.transport.ReadByte()
}

// WriteByte implements io.ByteWriter.
func (d *Device) WriteByte(b byte) error {
	if d.transport == nil {
		return ErrNotOpen
	}
	return d.transport.WriteByte(b)
}

// Write implements io.Writer.
func (d *Device) Write(p []byte) (int, error) {
	if d.transport == nil {
		return 0, ErrNotOpen
	}
	return d.transport.Write(p)
}
