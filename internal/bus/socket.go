// internal/bus/socket.go
package bus

import (
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"devlink/internal/packet"
)

// DefaultPort is the TCP port the responder listens on unless told
// otherwise.
const DefaultPort = "8888"

// SocketBus is the TCP variant of Bus. It serves both roles: the client
// dials via ConnectToServer, the responder wraps accepted connections
// with NewSocketBusConn. Byte handling is identical either way.
type SocketBus struct {
	stream
	conn net.Conn
}

// NewSocketBus creates an unconnected SocketBus that will assemble
// inbound frames into rx.
func NewSocketBus(rx *packet.Packet, log zerolog.Logger) *SocketBus {
	return &SocketBus{
		stream: stream{rx: rx, log: log},
	}
}

// NewSocketBusConn wraps an already established connection, e.g. one
// returned by a listener's Accept.
func NewSocketBusConn(conn net.Conn, rx *packet.Packet, log zerolog.Logger) *SocketBus {
	b := NewSocketBus(rx, log)
	b.attach(conn)
	return b
}

// ConnectToServer resolves host:port and opens the TCP connection.
func (b *SocketBus) ConnectToServer(host, port string) error {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), dialTimeout)
	if err != nil {
		return fmt.Errorf("bus: connect %s:%s: %w", host, port, err)
	}
	b.attach(conn)
	return nil
}

func (b *SocketBus) attach(conn net.Conn) {
	b.conn = conn
	b.rw = conn
	b.arm = func() {
		_ = conn.SetReadDeadline(time.Now().Add(byteWait))
	}
	b.isTimeout = func(err error) bool {
		ne, ok := err.(net.Error)
		return ok && ne.Timeout()
	}
}
