// internal/client/commands.go
package client

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"devlink/internal/dispatch"
)

// Ping sends the liveness probe and verifies the echo.
func (c *Client) Ping(ctx context.Context, payload []byte) error {
	rsp, err := c.Call(ctx, dispatch.CmdPing, payload)
	if err != nil {
		return err
	}
	if rsp.Command() != dispatch.CmdPing {
		return fmt.Errorf("client: ping answered with command 0x%02x", rsp.Command())
	}
	if len(rsp.Data()) > 0 && !bytes.Equal(rsp.Data(), payload) {
		return fmt.Errorf("client: ping echo mismatch")
	}
	return nil
}

// SetPeerDebug toggles debug tracing on the peer.
func (c *Client) SetPeerDebug(ctx context.Context, enable bool) error {
	payload := []byte{0}
	if enable {
		payload[0] = 1
	}
	rsp, err := c.Call(ctx, dispatch.CmdDebug, payload)
	if err != nil {
		return err
	}
	if len(rsp.Data()) != 1 || rsp.Data()[0] != payload[0] {
		return fmt.Errorf("client: debug state not applied")
	}
	return nil
}

// StackInfo asks the peer for its stack usage.
func (c *Client) StackInfo(ctx context.Context) (used, free uint32, err error) {
	return c.usage(ctx, dispatch.CmdStackInfo)
}

// HeapInfo asks the peer for its heap usage.
func (c *Client) HeapInfo(ctx context.Context) (used, free uint32, err error) {
	return c.usage(ctx, dispatch.CmdHeapInfo)
}

func (c *Client) usage(ctx context.Context, command byte) (uint32, uint32, error) {
	rsp, err := c.Call(ctx, command, nil)
	if err != nil {
		return 0, 0, err
	}
	if len(rsp.Data()) != 8 {
		return 0, 0, fmt.Errorf("client: usage reply has %d bytes, want 8", len(rsp.Data()))
	}
	used := binary.BigEndian.Uint32(rsp.Data()[0:4])
	free := binary.BigEndian.Uint32(rsp.Data()[4:8])
	return used, free, nil
}
