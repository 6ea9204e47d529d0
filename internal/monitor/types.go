// internal/monitor/types.go
package monitor

import "time"

// Result is the outcome of a single liveness probe.
type Result struct {
	At  time.Time
	RTT time.Duration
	Err error // non-nil means the probe failed
}

// Health is the link state derived from probe results.
type Health uint8

const (
	// HealthUnknown is the boot state before the first probe.
	HealthUnknown Health = iota
	// HealthOK means the last probe was answered.
	HealthOK
	// HealthError means the last probe failed.
	HealthError
)

func (h Health) String() string {
	switch h {
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	default:
		return "unknown"
	}
}
