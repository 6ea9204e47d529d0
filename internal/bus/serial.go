// internal/bus/serial.go
package bus

import (
	"errors"
	"fmt"

	"github.com/goburrow/serial"
	"github.com/rs/zerolog"

	"devlink/internal/packet"
)

// DefaultBaudRate matches the device-side UART configuration.
const DefaultBaudRate = 115200

// SerialBus is the character-device variant of Bus. Once opened,
// ProcessByte behaves byte-for-byte like SocketBus's.
type SerialBus struct {
	stream
	port serial.Port
}

// NewSerialBus creates an unopened SerialBus that will assemble inbound
// frames into rx.
func NewSerialBus(rx *packet.Packet, log zerolog.Logger) *SerialBus {
	return &SerialBus{
		stream: stream{rx: rx, log: log},
	}
}

// Open configures and opens the serial device: 8 data bits, no parity,
// one stop bit, no flow control. The port read timeout provides the
// bounded per-byte wait.
func (b *SerialBus) Open(device string, baudRate int) error {
	port, err := serial.Open(&serial.Config{
		Address:  device,
		BaudRate: baudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  byteWait,
	})
	if err != nil {
		return fmt.Errorf("bus: open %s: %w", device, err)
	}

	b.port = port
	b.rw = port
	b.isTimeout = func(err error) bool {
		return errors.Is(err, serial.ErrTimeout)
	}
	return nil
}
