package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/tripquery/internal/app"
	"github.com/dharmasatrya/tripquery/internal/config"
	"github.com/dharmasatrya/tripquery/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.New(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	if err := application.Run(10 * time.Second); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
