// internal/client/client.go
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"devlink/internal/bus"
	"devlink/internal/dispatch"
	"devlink/internal/packet"
)

// ErrTimeout is returned when the response deadline expires.
var ErrTimeout = errors.New("client: response timeout")

// ErrBusy is returned when a request is already in flight.
// One outstanding command per link, no pipelining.
var ErrBusy = errors.New("client: request in flight")

// ProtocolError reports the peer's reserved error reply: the command
// was delivered intact but the peer would not handle it.
type ProtocolError struct {
	Command byte
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("client: peer rejected command 0x%02x", e.Command)
}

// Config is the minimal runtime config the client needs.
type Config struct {
	// Timeout bounds the wait for a response. Zero disables the
	// deadline entirely.
	Timeout time.Duration

	// PollInterval is the sleep between receive attempts.
	PollInterval time.Duration
}

type state int

const (
	idle state = iota
	awaitingResponse
)

// Client drives one request/response exchange at a time over one Bus.
type Client struct {
	cfg Config
	bus bus.Bus
	cmd *packet.Packet
	rsp *packet.Packet
	log zerolog.Logger

	state state
}

// New creates a Client over b. rsp must be the same Packet the bus
// assembles inbound frames into; the client owns both buffers and they
// are never shared across goroutines.
func New(b bus.Bus, rsp *packet.Packet, cfg Config, log zerolog.Logger) (*Client, error) {
	if b == nil {
		return nil, errors.New("client: bus required")
	}
	if rsp == nil {
		return nil, errors.New("client: response packet required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Millisecond
	}
	return &Client{
		cfg: cfg,
		bus: b,
		cmd: packet.New(packet.DefaultCapacity),
		rsp: rsp,
		log: log,
	}, nil
}

// Call sends one command and waits for the decoded response.
// It polls the bus until DONE, ERROR, context cancellation or the
// configured deadline. There is no automatic retry; on any error the
// client is back to idle and the caller decides.
//
// The returned Packet is the client's receive buffer, valid until the
// next Call.
func (c *Client) Call(ctx context.Context, command byte, payload []byte) (*packet.Packet, error) {
	if c.state != idle {
		return nil, ErrBusy
	}

	c.cmd.Reset()
	if err := c.cmd.SetCommand(command); err != nil {
		return nil, err
	}
	if err := c.cmd.SetData(payload); err != nil {
		return nil, err
	}

	if err := c.bus.WritePacket(c.cmd); err != nil {
		return nil, err
	}

	c.state = awaitingResponse
	defer func() { c.state = idle }()

	var deadline time.Time
	if c.cfg.Timeout > 0 {
		deadline = time.Now().Add(c.cfg.Timeout)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		st, err := c.bus.ProcessByte()
		switch st {
		case packet.Done:
			rsp := c.rsp
			if rsp.Command() == dispatch.CmdLog {
				// Peer-side log traffic, not a response. Surface it
				// and keep waiting.
				c.log.Info().Str("peer", string(rsp.Data())).Msg("peer log")
				continue
			}
			if rsp.Command() == dispatch.CmdError {
				rejected := command
				if len(rsp.Data()) > 0 {
					rejected = rsp.Data()[0]
				}
				return nil, &ProtocolError{Command: rejected}
			}
			return rsp, nil

		case packet.Failed:
			return nil, err

		case packet.NotDone:
			if !deadline.IsZero() && time.Now().After(deadline) {
				return nil, ErrTimeout
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.PollInterval):
			}
		}
	}
}
