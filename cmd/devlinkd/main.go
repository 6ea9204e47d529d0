// cmd/devlinkd/main.go
package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"devlink/internal/config"
	"devlink/internal/logging"
	"devlink/internal/server"
)

var (
	flagConfig  string
	flagPort    string
	flagSerial  string
	flagBaud    int
	flagDebug   bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "devlinkd",
	Short: "devlink responder",
	Long: "Answers devlink commands on a TCP port or a serial line using\n" +
		"the same packet and dispatch code as the client.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flagConfig, "config", "", "Path to a yaml config file")
	f.StringVarP(&flagPort, "port", "p", "", "TCP port to listen on")
	f.StringVarP(&flagSerial, "serial", "s", "", "Serial device to answer on instead of TCP")
	f.IntVar(&flagBaud, "baud", 0, "Serial baud rate")
	f.BoolVarP(&flagDebug, "debug", "d", false, "Turn on byte-level debug tracing")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "Turn on verbose messages")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logging.New(logging.ProfileRuntime)
	if flagVerbose {
		log = log.Level(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(log, cfg.Link.Debug)

	conn := cfg.Link.Connection
	if conn.Serial() {
		return srv.ServeSerial(ctx, conn.SerialDevice, conn.BaudRate)
	}
	return srv.ListenAndServe(ctx, net.JoinHostPort("", conn.Port))
}

func loadConfig() (*config.Config, error) {
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

	if flagPort != "" {
		cfg.Link.Connection.Port = flagPort
	}
	if flagSerial != "" {
		cfg.Link.Connection.SerialDevice = flagSerial
	}
	if flagBaud != 0 {
		cfg.Link.Connection.BaudRate = flagBaud
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
