package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/transit-evaluation/pkg/archiver"
	"github.com/travigo/transit-evaluation/pkg/config"
	"github.com/travigo/transit-evaluation/pkg/evaluation"
	"github.com/travigo/transit-evaluation/pkg/vehicles"
	"github.com/urfave/cli/v2"
)

func main() {
	// A missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	if os.Getenv("TRANSIT_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("TRANSIT_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:        "transit-eval",
		Description: "Reconstructs passenger trips and stop dwells from transit simulation event logs",

		Commands: []*cli.Command{
			evaluation.RegisterCLI(),
			evaluation.RegisterRidershipCLI(),
			evaluation.RegisterPunctualityCLI(),
			vehicles.RegisterCLI(),
			archiver.RegisterCLI(),
			config.RegisterCLI(),
		},
	}

	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
