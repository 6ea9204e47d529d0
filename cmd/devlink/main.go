// cmd/devlink/main.go
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"devlink/internal/bus"
	"devlink/internal/client"
	"devlink/internal/config"
	"devlink/internal/logging"
	"devlink/internal/packet"
)

var (
	flagConfig  string
	flagHost    string
	flagPort    string
	flagSerial  string
	flagBaud    int
	flagTimeout int
	flagDebug   bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "devlink",
	Short: "Send a command to a devlink responder",
	Long: "Connects to a devlink responder over TCP or a serial line,\n" +
		"sends a PING and reports the response.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	// Shared by the root command and subcommands.
	f := rootCmd.PersistentFlags()
	f.StringVar(&flagConfig, "config", "", "Path to a yaml config file")
	f.StringVar(&flagHost, "host", "", "Host to connect to")
	f.StringVarP(&flagPort, "port", "p", "", "TCP port to connect to")
	f.StringVarP(&flagSerial, "serial", "s", "", "Serial device to use instead of TCP")
	f.IntVar(&flagBaud, "baud", 0, "Serial baud rate")
	f.IntVar(&flagTimeout, "timeout", 0, "Response timeout in milliseconds (-1 waits forever)")
	f.BoolVarP(&flagDebug, "debug", "d", false, "Turn on byte-level debug tracing")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "Turn on verbose messages")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logging.New(logging.ProfileRuntime)
	if flagVerbose {
		log = log.Level(zerolog.DebugLevel)
	}

	if flagVerbose {
		log.Debug().
			Bool("debug", cfg.Link.Debug).
			Str("host", cfg.Link.Connection.Host).
			Str("port", cfg.Link.Connection.Port).
			Str("serial", cfg.Link.Connection.SerialDevice).
			Msg("resolved config")
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

	if err := c.Ping(context.Background(), []byte("Ping Data\x00")); err != nil {
		log.Error().Err(err).Msg("ping failed")
		return err
	}

	log.Info().Msg("ping ok")
	return nil
}

// loadConfig merges the optional config file with flag overrides.
// Flags win over the file; defaults fill the rest.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
	}

	if flagHost != "" {
		cfg.Link.Connection.Host = flagHost
	}
	if flagPort != "" {
		cfg.Link.Connection.Port = flagPort
	}
	if flagSerial != "" {
		cfg.Link.Connection.SerialDevice = flagSerial
	}
	if flagBaud != 0 {
		cfg.Link.Connection.BaudRate = flagBaud
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Link.TimeoutMs = flagTimeout
	}
	if flagDebug {
		cfg.Link.Debug = true
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	config.Normalize(cfg)
	return cfg, nil
}

// openedBus pairs a connected Bus with its receive-side Packet.
type openedBus struct {
	bus bus.Bus
	rx  *packet.Packet
}

func (o openedBus) Close() error { return o.bus.Close() }

func openBus(cfg *config.Config, log zerolog.Logger) (openedBus, error) {
	rx := packet.New(packet.DefaultCapacity)
	conn := cfg.Link.Connection

	if conn.Serial() {
		sb := bus.NewSerialBus(rx, log)
		if err := sb.Open(conn.SerialDevice, conn.BaudRate); err != nil {
			return openedBus{}, err
		}
		sb.SetDebug(cfg.Link.Debug)
		log.Info().Str("device", conn.SerialDevice).Int("baud", conn.BaudRate).Msg("serial open")
		return openedBus{bus: sb, rx: rx}, nil
	}

	tb := bus.NewSocketBus(rx, log)
	if err := tb.ConnectToServer(conn.Host, conn.Port); err != nil {
		return openedBus{}, err
	}
	tb.SetDebug(cfg.Link.Debug)
	log.Info().Str("host", conn.Host).Str("port", conn.Port).Msg("connected")
	return openedBus{bus: tb, rx: rx}, nil
}
