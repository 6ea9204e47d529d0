// internal/bus/stream.go
package bus

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"devlink/internal/packet"
)

const (
	// dialTimeout bounds transport connection setup.
	dialTimeout = 5 * time.Second

	// byteWait bounds a single ProcessByte read so the caller's poll
	// loop keeps control. The overall response deadline belongs to the
	// client, not the bus.
	byteWait = 5 * time.Millisecond
)

// stream is the transport-independent half of a Bus: one read/write
// handle, one receive-side Packet, byte tracing. The concrete buses
// set rw plus the arm/timeout hooks at connection time.
type stream struct {
	rw    io.ReadWriteCloser
	rx    *packet.Packet
	debug bool
	log   zerolog.Logger

	// arm, when set, bounds the next read (deadline-capable transports).
	arm func()
	// isTimeout, when set, classifies a read error as an expired wait.
	isTimeout func(error) bool
}

func (s *stream) WritePacket(p *packet.Packet) error {
	if s.rw == nil {
		return ErrNotConnected
	}

	frame, err := p.Encode()
	if err != nil {
		return err
	}

	if s.debug {
		s.log.Debug().
			Str("dir", "tx").
			Uint8("command", p.Command()).
			Hex("frame", frame).
			Msg("bus write")
	}

	return writeAll(s.rw, frame)
}

func (s *stream) ProcessByte() (packet.Status, error) {
	if s.rw == nil {
		return packet.Failed, ErrNotConnected
	}

	if s.arm != nil {
		s.arm()
	}

	var b [1]byte
	n, err := s.rw.Read(b[:])
	if n > 0 {
		// A byte delivered alongside an error still counts; the error
		// resurfaces on the next read.
		if s.debug {
			s.log.Debug().
				Str("dir", "rx").
				Hex("byte", b[:]).
				Msg("bus read")
		}
		return s.rx.ProcessByte(b[0])
	}
	if err != nil {
		if s.isTimeout != nil && s.isTimeout(err) {
			return packet.NotDone, nil
		}
		if errors.Is(err, io.EOF) {
			return packet.Failed, ErrClosed
		}
		return packet.Failed, fmt.Errorf("bus: read: %w", err)
	}
	return packet.NotDone, nil
}

func (s *stream) SetDebug(enable bool) {
	s.debug = enable
}

func (s *stream) Close() error {
	if s.rw == nil {
		return nil
	}
	err := s.rw.Close()
	s.rw = nil
	return err
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return fmt.Errorf("bus: write: %w", err)
		}
		b = b[n:]
	}
	return nil
}
