// internal/bus/bus.go
package bus

import (
	"errors"

	"devlink/internal/packet"
)

// Bus carries frames as raw bytes over some transport.
// Implementations differ only in connection setup; byte-level behavior
// is identical so upstream code stays transport-agnostic.
type Bus interface {
	// WritePacket encodes and transmits one complete frame.
	WritePacket(p *packet.Packet) error

	// ProcessByte pulls at most one byte from the transport and feeds
	// it to the receive-side Packet supplied at construction.
	// A bounded wait with no byte available yields (NotDone, nil).
	ProcessByte() (packet.Status, error)

	// SetDebug toggles byte-trace logging.
	SetDebug(enable bool)

	Close() error
}

var (
	// ErrNotConnected is returned when the transport was never opened
	// or has been closed.
	ErrNotConnected = errors.New("bus: not connected")

	// ErrClosed is returned when the peer closed the connection
	// mid-stream.
	ErrClosed = errors.New("bus: connection closed by peer")
)
