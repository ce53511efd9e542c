// Command mced is the mode control daemon. It arbitrates device-wide
// mode state (radio states, call state, display blanking, CPU
// keepalive, LED patterns, user activity, notification windows) across
// D-Bus clients and broadcasts every accepted change.
//
// Usage:
//
//	mced [flags]
//
// Flags:
//
//	-config string     Configuration file path (missing file uses defaults)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-version           Print the version and exit
//
// Examples:
//
//	# Start with defaults on the system bus
//	mced
//
//	# Start with a custom configuration and verbose logging
//	mced -config /etc/mced/mced.yaml -log-level debug
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/modecontrol/mced/internal/dbusif"
	"github.com/modecontrol/mced/pkg/arbiter"
	"github.com/modecontrol/mced/pkg/config"
	"github.com/modecontrol/mced/pkg/log"
	"github.com/modecontrol/mced/pkg/persistence"
	"github.com/modecontrol/mced/pkg/version"
	"github.com/modecontrol/mced/pkg/wire"
)

func main() {
	var (
		configPath   string
		logLevel     string
		printVersion bool
	)
	flag.StringVar(&configPath, "config", "", "Configuration file path")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&printVersion, "version", false, "Print the version and exit")
	flag.Parse()

	if printVersion {
		fmt.Println(version.String())
		return
	}

	logger := newLogger(logLevel)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", configPath).Msg("load configuration")
	}

	store := persistence.NewStateStore(cfg.StateFile)
	saved, err := store.Load()
	if err != nil {
		logger.Warn().Err(err).Msg("saved state unreadable, starting fresh")
	}
	initialRadio := wire.RadioMaster | wire.RadioCellular
	ledDisabled := false
	if saved != nil {
		initialRadio = wire.RadioMask(saved.RadioStates)
		ledDisabled = !saved.LEDEnabled
		logger.Info().Uint32("radio", saved.RadioStates).Msg("saved state restored")
	}

	eventLog, closeLog, err := newEventLog(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open event log")
	}
	defer closeLog()

	// The frontend needs the arbiter and the arbiter needs the frontend
	// as its signal sink; the indirection breaks the cycle. The sink is
	// installed before Start, so no transition escapes unbroadcast.
	var frontend *dbusif.Frontend
	arb := arbiter.New(arbiter.Options{
		Config: cfg,
		Logger: eventLog,
		Sink: arbiter.SinkFunc(func(member string, values ...any) {
			if frontend != nil {
				frontend.Emit(member, values...)
			}
		}),
		Version:            version.String(),
		InitialRadioStates: initialRadio,
		LEDDisabled:        ledDisabled,
	})
	arb.OnSavedStateChange(func(radio wire.RadioMask, ledEnabled bool) {
		err := store.Save(&persistence.SavedState{
			RadioStates: uint32(radio),
			LEDEnabled:  ledEnabled,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("persist state")
		}
	})

	conn, err := dbusif.Connect()
	if err != nil {
		logger.Fatal().Err(err).Msg("connect bus")
	}
	frontend = dbusif.New(dbusif.Options{
		Conn:    conn,
		Arbiter: arb,
		Logger:  logger,
	})

	if err := frontend.Start(); err != nil {
		logger.Fatal().Err(err).Msg("start frontend")
	}
	arb.Start()
	logger.Info().Str("version", version.String()).Msg("mced running")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	arb.Stop()
	if err := frontend.Stop(); err != nil {
		logger.Warn().Err(err).Msg("frontend shutdown")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// newEventLog builds the arbitration event logger: always the zerolog
// mirror, plus the CBOR file log when configured.
func newEventLog(cfg config.Config, logger zerolog.Logger) (log.Logger, func(), error) {
	mirror := log.NewZerologAdapter(logger)
	if cfg.EventLogFile == "" {
		return mirror, func() {}, nil
	}

	file, err := log.NewFileLogger(cfg.EventLogFile)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := file.Close(); err != nil {
			logger.Warn().Err(err).Msg("close event log")
		}
	}
	return log.NewMultiLogger(file, mirror), closer, nil
}
