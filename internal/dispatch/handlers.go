// internal/dispatch/handlers.go
package dispatch

import (
	"encoding/binary"
	"runtime"

	"devlink/internal/packet"
)

// DebugSink receives the debug state applied by a CmdDebug request.
type DebugSink func(enable bool)

// RegisterCore installs the reserved command handlers on a registry.
// debugSink may be nil when the front end has nothing to toggle.
func RegisterCore(r *Registry, debugSink DebugSink) error {
	if err := r.Register(CmdPing, HandlerFunc(handlePing)); err != nil {
		return err
	}
	if err := r.Register(CmdDebug, debugHandler(debugSink)); err != nil {
		return err
	}
	if err := r.Register(CmdStackInfo, HandlerFunc(handleStackInfo)); err != nil {
		return err
	}
	return r.Register(CmdHeapInfo, HandlerFunc(handleHeapInfo))
}

// handlePing echoes the request payload back unchanged.
func handlePing(req, rsp *packet.Packet) error {
	if err := rsp.SetCommand(CmdPing); err != nil {
		return err
	}
	return rsp.SetData(req.Data())
}

func debugHandler(sink DebugSink) HandlerFunc {
	return func(req, rsp *packet.Packet) error {
		enable := len(req.Data()) > 0 && req.Data()[0] != 0

		if sink != nil {
			sink(enable)
		}

		applied := byte(0)
		if enable {
			applied = 1
		}
		if err := rsp.SetCommand(CmdDebug); err != nil {
			return err
		}
		return rsp.SetData([]byte{applied})
	}
}

func handleStackInfo(req, rsp *packet.Packet) error {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return usageReply(rsp, CmdStackInfo, ms.StackInuse, ms.StackSys-ms.StackInuse)
}

func handleHeapInfo(req, rsp *packet.Packet) error {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return usageReply(rsp, CmdHeapInfo, ms.HeapAlloc, ms.HeapIdle)
}

// usageReply packs (used, free) as two big-endian uint32 values,
// saturating rather than wrapping on 32-bit overflow.
func usageReply(rsp *packet.Packet, command byte, used, free uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[0:4], clampU32(used))
	binary.BigEndian.PutUint32(buf[4:8], clampU32(free))

	if err := rsp.SetCommand(command); err != nil {
		return err
	}
	return rsp.SetData(buf[:])
}

func clampU32(v uint64) uint32 {
	if v > 0xFFFFFFFF {
		return 0xFFFFFFFF
	}
	return uint32(v)
}
