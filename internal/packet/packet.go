// internal/packet/packet.go
package packet

// Wire framing constants.
// [STX] [LENGTH] [COMMAND] [payload...] [CHECKSUM] [ETX]
// CHECKSUM is the mod-256 sum of LENGTH, COMMAND and payload bytes.
const (
	STX byte = 0x02
	ETX byte = 0x03

	// Overhead is the number of framing bytes per frame.
	Overhead = 5

	// DefaultCapacity matches the buffer size used on the device side.
	DefaultCapacity = 256
)

// Status is the outcome of feeding one byte to the decoder.
type Status int

const (
	// NotDone means the decoder needs more bytes.
	NotDone Status = iota
	// Done means a full frame was decoded and verified.
	Done
	// Failed means the frame was rejected; the decoder has re-armed.
	Failed
)

func (s Status) String() string {
	switch s {
	case NotDone:
		return "NOT_DONE"
	case Done:
		return "DONE"
	case Failed:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ---- DECODER STATES ----

type state int

const (
	waitStart state = iota
	waitLength
	waitCommand
	waitData
	waitChecksum
	waitEnd
)

// Packet is a fixed-capacity buffer holding one command plus payload.
// The same Packet serves as the encode source for outgoing frames and as
// the assembly buffer for the incremental decoder.
type Packet struct {
	capacity int
	command  byte
	data     []byte

	state state
	need  int
	sum   byte
}

// MaxCapacity is the largest usable frame capacity: the LENGTH wire
// byte can only express payloads up to 255 bytes.
const MaxCapacity = 255 + Overhead

// New creates a Packet with the given total frame capacity, clamped to
// what the single-byte LENGTH field can express.
func New(capacity int) *Packet {
	if capacity < Overhead {
		capacity = Overhead
	}
	if capacity > MaxCapacity {
		capacity = MaxCapacity
	}
	return &Packet{
		capacity: capacity,
		data:     make([]byte, 0, capacity-Overhead),
	}
}

// MaxData is the largest payload this Packet can carry.
func (p *Packet) MaxData() int {
	return p.capacity - Overhead
}

// Command returns the command code of the last set or decoded message.
func (p *Packet) Command() byte {
	return p.command
}

// Data returns the payload. The slice is valid until the next decode
// or SetData call.
func (p *Packet) Data() []byte {
	return p.data
}

// SetCommand sets the message command.
// It fails while a decode is in progress.
func (p *Packet) SetCommand(command byte) error {
	if p.state != waitStart {
		return ErrBusy
	}
	p.command = command
	return nil
}

// SetData copies the payload in.
// It fails with a CapacityError if the payload does not fit.
func (p *Packet) SetData(data []byte) error {
	if p.state != waitStart {
		return ErrBusy
	}
	if len(data) > p.MaxData() {
		return &CapacityError{Length: len(data), Max: p.MaxData()}
	}
	p.data = append(p.data[:0], data...)
	return nil
}

// Reset clears command and payload and re-arms the decoder.
func (p *Packet) Reset() {
	p.command = 0
	p.data = p.data[:0]
	p.state = waitStart
	p.need = 0
	p.sum = 0
}

// Encode serializes the packet into one complete frame.
// Output length is always len(Data) + Overhead.
func (p *Packet) Encode() ([]byte, error) {
	if len(p.data) > p.MaxData() {
		return nil, &CapacityError{Length: len(p.data), Max: p.MaxData()}
	}

	out := make([]byte, 0, len(p.data)+Overhead)
	out = append(out, STX)
	out = append(out, byte(len(p.data)))
	out = append(out, p.command)
	out = append(out, p.data...)

	sum := byte(len(p.data)) + p.command
	for _, b := range p.data {
		sum += b
	}
	out = append(out, sum)
	out = append(out, ETX)

	return out, nil
}

// ProcessByte advances the decoder by one byte.
// It returns NotDone until a frame completes (Done) or is rejected
// (Failed, with a non-nil error). On both Done and Failed the decoder
// re-arms to wait for the next frame; no explicit Reset is needed.
//
// A byte equal to STX inside LENGTH/COMMAND/payload positions is data,
// not a resynchronization point.
func (p *Packet) ProcessByte(b byte) (Status, error) {
	switch p.state {
	case waitStart:
		if b != STX {
			return Failed, &FramingError{Reason: "bad start byte", Byte: b}
		}
		p.command = 0
		p.data = p.data[:0]
		p.sum = 0
		p.state = waitLength
		return NotDone, nil

	case waitLength:
		if int(b) > p.MaxData() {
			p.state = waitStart
			return Failed, &CapacityError{Length: int(b), Max: p.MaxData()}
		}
		p.need = int(b)
		p.sum = b
		p.state = waitCommand
		return NotDone, nil

	case waitCommand:
		p.command = b
		p.sum += b
		if p.need == 0 {
			p.state = waitChecksum
		} else {
			p.state = waitData
		}
		return NotDone, nil

	case waitData:
		p.data = append(p.data, b)
		p.sum += b
		p.need--
		if p.need == 0 {
			p.state = waitChecksum
		}
		return NotDone, nil

	case waitChecksum:
		if b != p.sum {
			p.state = waitStart
			return Failed, &FramingError{Reason: "checksum mismatch", Byte: b}
		}
		p.state = waitEnd
		return NotDone, nil

	case waitEnd:
		p.state = waitStart
		if b != ETX {
			return Failed, &FramingError{Reason: "bad end byte", Byte: b}
		}
		return Done, nil
	}

	p.state = waitStart
	return Failed, &FramingError{Reason: "bad decoder state"}
}
