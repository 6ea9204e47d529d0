// internal/dispatch/registry.go
package dispatch

import (
	"fmt"

	"github.com/rs/zerolog"

	"devlink/internal/packet"
)

// Handler maps a decoded request payload to a response payload.
type Handler interface {
	Handle(req, rsp *packet.Packet) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(req, rsp *packet.Packet) error

func (f HandlerFunc) Handle(req, rsp *packet.Packet) error {
	return f(req, rsp)
}

// Registry maps command codes to handlers. Built once at startup,
// read-only afterwards, so it is safe to share without locking.
type Registry struct {
	handlers map[byte]Handler
	log      zerolog.Logger
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		handlers: make(map[byte]Handler),
		log:      log,
	}
}

// Register binds a handler to a command code.
// Codes are unique; a duplicate registration is a programming error.
func (r *Registry) Register(command byte, h Handler) error {
	if _, exists := r.handlers[command]; exists {
		return fmt.Errorf("dispatch: command 0x%02x already registered", command)
	}
	r.handlers[command] = h
	return nil
}

// Dispatch routes a decoded request to its handler and fills in rsp.
// An unregistered command or a handler failure produces the reserved
// error reply rather than silence; the link never goes quiet.
func (r *Registry) Dispatch(req, rsp *packet.Packet) error {
	command := req.Command()
	rsp.Reset()

	h, ok := r.handlers[command]
	if !ok {
		r.log.Warn().Uint8("command", command).Msg("unregistered command")
		return errorReply(rsp, command)
	}

	if err := h.Handle(req, rsp); err != nil {
		r.log.Error().Err(err).Uint8("command", command).Msg("handler failed")
		return errorReply(rsp, command)
	}

	return nil
}

func errorReply(rsp *packet.Packet, command byte) error {
	rsp.Reset()
	if err := rsp.SetCommand(CmdError); err != nil {
		return err
	}
	return rsp.SetData([]byte{command})
}
