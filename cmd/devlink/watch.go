// cmd/devlink/watch.go
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"devlink/internal/client"
	"devlink/internal/logging"
	"devlink/internal/monitor"
)

var flagInterval int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Probe the responder periodically and report link health",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&flagInterval, "interval", 1000, "Probe interval in milliseconds")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logging.New(logging.ProfileRuntime)
	if flagVerbose {
		log = log.Level(zerolog.DebugLevel)
	}

	b, err := openBus(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("connect failed")
		return err
	}
	defer b.Close()

	c, err := client.New(b.bus, b.rx, client.Config{
		Timeout:      cfg.Link.Timeout(),
		PollInterval: cfg.Link.PollInterval(),
	}, log)
	if err != nil {
		return err
	}

	m, err := monitor.New(monitor.Config{
		Interval: time.Duration(flagInterval) * time.Millisecond,
		Payload:  []byte("Ping Data\x00"),
	}, c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := make(chan monitor.Result)
	go m.Run(ctx, out)

	var snap monitor.Snapshot
	for {
		select {
		case <-ctx.Done():
			return nil

		case res := <-out:
			changed := snap.Apply(res)
			if changed {
				if snap.Health == monitor.HealthOK {
					log.Info().Dur("rtt", res.RTT).Msg("link up")
				} else {
					log.Warn().Err(res.Err).Msg("link down")
				}
				continue
			}
			if snap.Health == monitor.HealthOK {
				log.Debug().Dur("rtt", res.RTT).Msg("probe ok")
			} else {
				log.Debug().Err(res.Err).Int("failures", snap.Failures).Msg("probe failed")
			}
		}
	}
}
