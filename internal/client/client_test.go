// internal/client/client_test.go
package client

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"devlink/internal/dispatch"
	"devlink/internal/packet"
)

// fakeBus feeds pre-queued frames to the client one byte per
// ProcessByte call, matching the real poll contract.
type fakeBus struct {
	t       *testing.T
	rx      *packet.Packet
	pending []byte
	wrote   [][]byte
}

func newFakeBus(t *testing.T) (*fakeBus, *packet.Packet) {
	rx := packet.New(packet.DefaultCapacity)
	return &fakeBus{t: t, rx: rx}, rx
}

func (f *fakeBus) queue(command byte, payload []byte) {
	p := packet.New(packet.DefaultCapacity)
	require.NoError(f.t, p.SetCommand(command))
	require.NoError(f.t, p.SetData(payload))
	frame, err := p.Encode()
	require.NoError(f.t, err)
	f.pending = append(f.pending, frame...)
}

func (f *fakeBus) WritePacket(p *packet.Packet) error {
	frame, err := p.Encode()
	if err != nil {
		return err
	}
	f.wrote = append(f.wrote, frame)
	return nil
}

func (f *fakeBus) ProcessByte() (packet.Status, error) {
	if len(f.pending) == 0 {
		return packet.NotDone, nil
	}
	b := f.pending[0]
	f.pending = f.pending[1:]
	return f.rx.ProcessByte(b)
}

func (f *fakeBus) SetDebug(bool) {}
func (f *fakeBus) Close() error  { return nil }

func newClient(t *testing.T, fb *fakeBus, rx *packet.Packet, timeout time.Duration) *Client {
	c, err := New(fb, rx, Config{
		Timeout:      timeout,
		PollInterval: time.Millisecond,
	}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestCallRoundTrip(t *testing.T) {
	fb, rx := newFakeBus(t)
	fb.queue(dispatch.CmdPing, []byte("Ping Data\x00"))
	c := newClient(t, fb, rx, time.Second)

	rsp, err := c.Call(context.Background(), dispatch.CmdPing, []byte("Ping Data\x00"))
	require.NoError(t, err)
	require.Equal(t, dispatch.CmdPing, rsp.Command())
	require.Equal(t, []byte("Ping Data\x00"), rsp.Data())
	require.Len(t, fb.wrote, 1)
}

func TestCallErrorReply(t *testing.T) {
	fb, rx := newFakeBus(t)
	fb.queue(dispatch.CmdError, []byte{0x63})
	c := newClient(t, fb, rx, time.Second)

	_, err := c.Call(context.Background(), 0x63, nil)
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, byte(0x63), pe.Command)
}

func TestCallTimeout(t *testing.T) {
	fb, rx := newFakeBus(t)
	c := newClient(t, fb, rx, 20*time.Millisecond)

	_, err := c.Call(context.Background(), dispatch.CmdPing, nil)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestCallContextCancel(t *testing.T) {
	fb, rx := newFakeBus(t)
	c := newClient(t, fb, rx, 0) // no deadline; only ctx stops the loop

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Call(ctx, dispatch.CmdPing, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCallSkipsPeerLog(t *testing.T) {
	fb, rx := newFakeBus(t)
	fb.queue(dispatch.CmdLog, []byte("booting"))
	fb.queue(dispatch.CmdPing, nil)
	c := newClient(t, fb, rx, time.Second)

	rsp, err := c.Call(context.Background(), dispatch.CmdPing, nil)
	require.NoError(t, err)
	require.Equal(t, dispatch.CmdPing, rsp.Command())
}

func TestCallFramingError(t *testing.T) {
	fb, rx := newFakeBus(t)
	fb.queue(dispatch.CmdPing, []byte{0xAA})
	fb.pending[len(fb.pending)-2] ^= 0x01 // break the checksum
	c := newClient(t, fb, rx, time.Second)

	_, err := c.Call(context.Background(), dispatch.CmdPing, []byte{0xAA})
	var fe *packet.FramingError
	require.ErrorAs(t, err, &fe)
}

func TestPingEchoMismatch(t *testing.T) {
	fb, rx := newFakeBus(t)
	fb.queue(dispatch.CmdPing, []byte("other"))
	c := newClient(t, fb, rx, time.Second)

	err := c.Ping(context.Background(), []byte("Ping Data\x00"))
	require.Error(t, err)
}

func TestUsageCommands(t *testing.T) {
	var payload [8]byte
	binary.BigEndian.PutUint32(payload[0:4], 1024)
	binary.BigEndian.PutUint32(payload[4:8], 4096)

	fb, rx := newFakeBus(t)
	fb.queue(dispatch.CmdHeapInfo, payload[:])
	c := newClient(t, fb, rx, time.Second)

	used, free, err := c.HeapInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint32(1024), used)
	require.Equal(t, uint32(4096), free)
}
