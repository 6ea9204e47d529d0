// internal/dispatch/commands.go
package dispatch

// Command codes shared by both ends of the link.
// These values are protocol-locked and MUST NOT be renumbered.
const (
	// CmdPing checks that the peer is alive. The responder echoes the
	// payload back without interpreting it.
	CmdPing byte = 0x01

	// CmdDebug enables or disables debug tracing on the responder.
	// Payload byte 0 non-zero enables.
	CmdDebug byte = 0x02

	// CmdLog carries log text from the responder to the host. It is a
	// one-way notification, never a response.
	CmdLog byte = 0x03

	// CmdStackInfo reports stack usage: two big-endian uint32 values
	// (used, free).
	CmdStackInfo byte = 0x04

	// CmdHeapInfo reports heap usage: two big-endian uint32 values
	// (used, free).
	CmdHeapInfo byte = 0x05

	// CmdError is the reserved reply to an unregistered or failed
	// command. Payload is the offending command code.
	CmdError byte = 0xFF
)
