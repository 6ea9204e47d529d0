// internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog"

	"devlink/internal/bus"
	"devlink/internal/dispatch"
	"devlink/internal/packet"
)

// Server runs the responder side of the link: pump bytes, dispatch
// decoded commands, write replies. The same loop serves TCP
// connections and serial ports.
type Server struct {
	log   zerolog.Logger
	debug bool
}

// New creates a Server. debug sets the initial byte-trace state for
// each connection; the peer can change it per connection via CmdDebug.
func New(log zerolog.Logger, debug bool) *Server {
	return &Server{log: log, debug: debug}
}

// ListenAndServe accepts TCP connections on addr and runs the dispatch
// loop on each, one goroutine per connection. It returns when ctx is
// cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("server: accept: %w", err)
		}

		go func(conn net.Conn) {
			s.log.Info().Str("peer", conn.RemoteAddr().String()).Msg("connected")

			rx := packet.New(packet.DefaultCapacity)
			b := bus.NewSocketBusConn(conn, rx, s.log)
			defer b.Close()

			if err := s.serveBus(ctx, b, rx); err != nil {
				s.log.Warn().Err(err).Msg("connection ended")
				return
			}
			s.log.Info().Str("peer", conn.RemoteAddr().String()).Msg("disconnected")
		}(conn)
	}
}

// ServeSerial opens the serial device and runs the dispatch loop on it
// until ctx is cancelled or the port fails.
func (s *Server) ServeSerial(ctx context.Context, device string, baudRate int) error {
	rx := packet.New(packet.DefaultCapacity)
	b := bus.NewSerialBus(rx, s.log)
	if err := b.Open(device, baudRate); err != nil {
		return err
	}
	defer b.Close()

	s.log.Info().Str("device", device).Int("baud", baudRate).Msg("serial open")

	return s.serveBus(ctx, b, rx)
}

// serveBus is the transport-agnostic loop. Framing errors are logged
// and absorbed (the decoder has re-armed); transport errors end the
// session. A clean peer close returns nil.
func (s *Server) serveBus(ctx context.Context, b bus.Bus, rx *packet.Packet) error {
	b.SetDebug(s.debug)

	reg := dispatch.NewRegistry(s.log)
	if err := dispatch.RegisterCore(reg, b.SetDebug); err != nil {
		return err
	}

	rsp := packet.New(packet.DefaultCapacity)

	for {
		if ctx.Err() != nil {
			return nil
		}

		st, err := b.ProcessByte()
		switch st {
		case packet.Done:
			if err := reg.Dispatch(rx, rsp); err != nil {
				return err
			}
			if err := b.WritePacket(rsp); err != nil {
				return err
			}

		case packet.Failed:
			var fe *packet.FramingError
			var ce *packet.CapacityError
			if errors.As(err, &fe) || errors.As(err, &ce) {
				s.log.Warn().Err(err).Msg("discarded frame")
				continue
			}
			if errors.Is(err, bus.ErrClosed) {
				return nil
			}
			return err

		case packet.NotDone:
			// Bounded read expired with nothing to do; loop.
		}
	}
}
