// Package tarm provides an alternative UART transport on github.com/tarm/serial,
// for platforms where go.bug.st/serial is unavailable.
package tarm

import (
	"fmt"
	"io"

	"github.com/tarm/serial"

	"github.com/robotalks/symmetry/pkg/l0/transport/stream"
)

// New creates a transport for the serial port name.
func New(name string) *stream.Device {
	return stream.NewDevice(func(baudRate int) (io.ReadWriteCloser, error) {
		port, err := serial.OpenPort(&serial.Config{
			Name:   name,
			Baud:   baudRate,
			Size:   serial.DefaultSize,
			Parity: serial.ParityNone,
		})
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		return port, nil
	})
}
