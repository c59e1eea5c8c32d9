package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"backlightd/internal/app"
	"backlightd/internal/config"
)

const defaultConfigPath = "/etc/backlightd/config.yaml"

func main() {
	// Support both -c and --config for config path
	var configPath string
	flag.StringVar(&configPath, "config", defaultConfigPath, "Path to configuration file")
	flag.StringVar(&configPath, "c", defaultConfigPath, "Path to configuration file (shorthand)")
	flag.Parse()

	// Load configuration; a missing file means the built-in defaults
	// (the stock intel_backlight -> asus_screenpad setup).
	cfg, err := config.Load(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logging
	setupLogging(cfg.Log.Level, cfg.Log.Colors)

	log.Info().Str("config", configPath).Msg("Starting backlightd")

	// Create application; this runs startup validation and exits non-zero
	// if the backlight device files are missing, unreadable, or report an
	// unusable brightness range.
	application, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Startup validation failed")
	}

	// Create context that cancels on shutdown signal
	ctx := app.SignalContext()

	// Start the application
	if err := application.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	// Wait for shutdown
	application.Wait()

	// Graceful shutdown
	if err := application.Stop(); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}

	// A fatal loop error must exit non-zero so a restart-on-failure
	// supervisor brings the daemon back up.
	if err := application.Err(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(level string, colors bool) {
	zerolog.TimeFieldFormat = "2006-01-02 15:04:05"

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    !colors,
		FormatTimestamp: func(i interface{}) string {
			return fmt.Sprintf("[%v]", i)
		},
	})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
