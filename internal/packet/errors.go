// internal/packet/errors.go
package packet

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when a Packet is mutated mid-decode.
var ErrBusy = errors.New("packet: decode in progress")

// FramingError reports a malformed byte sequence or checksum mismatch.
// Local and recoverable: the decoder has already re-armed.
type FramingError struct {
	Reason string
	Byte   byte
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("packet: framing: %s (byte 0x%02x)", e.Reason, e.Byte)
}

// CapacityError reports a payload or frame exceeding the fixed buffer.
// Rejected outright, never truncated.
type CapacityError struct {
	Length int
	Max    int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("packet: payload length %d exceeds capacity %d", e.Length, e.Max)
}
