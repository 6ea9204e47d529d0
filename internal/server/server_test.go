// internal/server/server_test.go
package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"devlink/internal/bus"
	"devlink/internal/client"
	"devlink/internal/dispatch"
	"devlink/internal/packet"
)

// startPipeServer runs the dispatch loop on one end of an in-memory
// duplex pipe and hands back a connected client on the other.
func startPipeServer(t *testing.T) *client.Client {
	t.Helper()

	clientConn, serverConn := net.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv := New(zerolog.Nop(), false)
	go func() {
		rx := packet.New(packet.DefaultCapacity)
		b := bus.NewSocketBusConn(serverConn, rx, zerolog.Nop())
		defer b.Close()
		_ = srv.serveBus(ctx, b, rx)
	}()

	rx := packet.New(packet.DefaultCapacity)
	b := bus.NewSocketBusConn(clientConn, rx, zerolog.Nop())
	t.Cleanup(func() { b.Close() })

	c, err := client.New(b, rx, client.Config{
		Timeout:      2 * time.Second,
		PollInterval: time.Millisecond,
	}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestEndToEndPing(t *testing.T) {
	c := startPipeServer(t)

	require.NoError(t, c.Ping(context.Background(), []byte("Ping Data\x00")))
}

func TestEndToEndUnregisteredCommand(t *testing.T) {
	c := startPipeServer(t)

	_, err := c.Call(context.Background(), 0x63, nil)
	var pe *client.ProtocolError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, byte(0x63), pe.Command)
}

func TestEndToEndDebugToggle(t *testing.T) {
	c := startPipeServer(t)

	require.NoError(t, c.SetPeerDebug(context.Background(), true))
	require.NoError(t, c.SetPeerDebug(context.Background(), false))
}

func TestEndToEndUsage(t *testing.T) {
	c := startPipeServer(t)

	_, _, err := c.StackInfo(context.Background())
	require.NoError(t, err)
	used, _, err := c.HeapInfo(context.Background())
	require.NoError(t, err)
	require.NotZero(t, used)
}

func TestEndToEndSurvivesCorruptFrame(t *testing.T) {
	clientConn, serverConn := net.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv := New(zerolog.Nop(), false)
	go func() {
		rx := packet.New(packet.DefaultCapacity)
		b := bus.NewSocketBusConn(serverConn, rx, zerolog.Nop())
		defer b.Close()
		_ = srv.serveBus(ctx, b, rx)
	}()

	// Stray garbage first; the responder must discard and re-arm.
	_, err := clientConn.Write([]byte{0x00, 0xFF, 0x55})
	require.NoError(t, err)

	rx := packet.New(packet.DefaultCapacity)
	b := bus.NewSocketBusConn(clientConn, rx, zerolog.Nop())
	t.Cleanup(func() { b.Close() })

	c, err := client.New(b, rx, client.Config{
		Timeout:      2 * time.Second,
		PollInterval: time.Millisecond,
	}, zerolog.Nop())
	require.NoError(t, err)

	rsp, err := c.Call(context.Background(), dispatch.CmdPing, []byte("still here"))
	require.NoError(t, err)
	require.Equal(t, []byte("still here"), rsp.Data())
}

func TestListenAndServeTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv := New(zerolog.Nop(), false)
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, addr) }()

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	rx := packet.New(packet.DefaultCapacity)
	b := bus.NewSocketBus(rx, zerolog.Nop())

	// The listener may not be up yet; dial with a little patience.
	var connErr error
	for i := 0; i < 100; i++ {
		if connErr = b.ConnectToServer(host, port); connErr == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, connErr)
	t.Cleanup(func() { b.Close() })

	c, err := client.New(b, rx, client.Config{
		Timeout:      2 * time.Second,
		PollInterval: time.Millisecond,
	}, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, c.Ping(context.Background(), []byte("Ping Data\x00")))

	cancel()
	require.NoError(t, <-done)
}
