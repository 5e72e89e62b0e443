// Package serialport provides the hardware UART transport.
package serialport

import (
	"fmt"
	"io"

	"go.bug.st/serial"

	"github.com/robotalks/symmetry/pkg/l0/transport/stream"
)

// New creates a transport for the serial port at path, e.g. /dev/ttyUSB0.
// The port is opened 8N1 at the link's baud rate when the link connects.
func New(path string) *stream.Device {
	return stream.NewDevice(func(baudRate int) (io.ReadWriteCloser, error) {
		port, err := serial.Open(path, &serial.Mode{
			BaudRate: baudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		})
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		return port, nil
	})
}

// Ports lists the serial ports present on the system.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
