// Package main runs the resonance scoring worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/resonance/internal/config"
	"github.com/thebtf/resonance/internal/worker"
)

var Version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Worker failed")
	}
}

func run() error {
	if err := config.EnsureAll(); err != nil {
		log.Warn().Err(err).Msg("Could not create data directory")
	}

	cfg := config.Get()
	zerolog.SetGlobalLevel(logLevel(cfg.LogLevel))

	log.Info().
		Str("version", Version).
		Str("ledger", cfg.LedgerDriver).
		Int("port", cfg.Port()).
		Msg("Starting resonance worker")

	svc, err := worker.NewService(Version)
	if err != nil {
		return err
	}
	if err := svc.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info().Msg("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := svc.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}

	log.Info().Msg("Worker shutdown complete")
	return nil
}

// logLevel parses raw, falling back to info.
func logLevel(raw string) zerolog.Level {
	level, err := zerolog.ParseLevel(raw)
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Str("level", raw).Msg("Unknown log level, using info")
		return zerolog.InfoLevel
	}
	return level
}
