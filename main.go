package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/fueltrack/receipt-ocr/config"
	"github.com/fueltrack/receipt-ocr/server"
)

func main() {
	cfg := config.LoadConfig()
	cfg.SetupLogger(os.Stderr)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
