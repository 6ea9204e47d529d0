// internal/monitor/monitor.go
package monitor

import (
	"context"
	"errors"
	"time"
)

// Pinger abstracts the one operation the monitor needs.
// The link client satisfies it.
type Pinger interface {
	Ping(ctx context.Context, payload []byte) error
}

// Config is the minimal runtime config the monitor needs.
type Config struct {
	Interval time.Duration
	Payload  []byte
}

// Monitor is a dumb, clock-driven prober.
type Monitor struct {
	cfg    Config
	pinger Pinger
}

// New creates a monitor with immutable config.
func New(cfg Config, p Pinger) (*Monitor, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("monitor: interval must be > 0")
	}
	if p == nil {
		return nil, errors.New("monitor: pinger required")
	}
	return &Monitor{cfg: cfg, pinger: p}, nil
}

// ProbeOnce performs exactly one liveness probe.
func (m *Monitor) ProbeOnce(ctx context.Context) Result {
	res := Result{At: time.Now()}
	res.Err = m.pinger.Ping(ctx, m.cfg.Payload)
	res.RTT = time.Since(res.At)
	return res
}

// Run starts the ticker loop and emits a Result per probe on the
// provided channel. One probe at a time. No overlap. No retries.
func (m *Monitor) Run(ctx context.Context, out chan<- Result) {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case <-ctx.Done():
				return
			case out <- m.ProbeOnce(ctx):
			}
		}
	}
}
