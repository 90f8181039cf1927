package evaluation

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/transit-evaluation/pkg/config"
	"github.com/travigo/transit-evaluation/pkg/events"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run every enabled reconstruction for every configured scenario",
		Flags: []cli.Flag{
			config.PathFlag,
			&cli.IntFlag{
				Name:  "parallelism",
				Usage: "Override the number of reconstructions run at once",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			if c.IsSet("parallelism") {
				cfg.Parallelism = c.Int("parallelism")
			}

			startTime := time.Now()

			jobs := Jobs(cfg)
			summaries, err := RunAll(c.Context, cfg, jobs)
			if err != nil {
				return err
			}

			log.Info().Int("runs", len(summaries)).Msgf("Evaluation took %s", time.Since(startTime).String())

			return nil
		},
	}
}

func singleRunFlags(output string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "events",
			Usage:    "Simulation event log, optionally .gz, .zst or .xz compressed",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "vehicles",
			Usage:    "Vehicle class table (CSV) or transit vehicle definitions (XML)",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "Output table path",
			Value: output,
		},
		&cli.StringFlag{
			Name:  "root",
			Usage: "Root element of the event log",
			Value: events.DefaultRoot,
		},
		&cli.BoolFlag{
			Name:  "summary",
			Usage: "Write a run summary next to the output table",
			Value: true,
		},
	}
}

// singleRunConfig builds the config of a one-off run from command flags
func singleRunConfig(c *cli.Context, reconstruction Reconstruction) *config.AppConfig {
	enabled := true
	disabled := false
	summary := c.Bool("summary")
	output := c.String("output")

	cfg := &config.AppConfig{
		Events: config.EventsConfig{Root: c.String("root")},
		Scenarios: []config.Scenario{
			{
				Name:     "default",
				Events:   c.String("events"),
				Vehicles: c.String("vehicles"),
				Output:   filepath.Dir(output),
			},
		},
		Summary:     &summary,
		Ridership:   config.RidershipConfig{Enabled: &disabled},
		Punctuality: config.PunctualityConfig{Enabled: &disabled},
	}

	if reconstruction == ReconstructionRidership {
		cfg.Ridership = config.RidershipConfig{
			Enabled:          &enabled,
			TransferActivity: c.String("transfer-activity"),
			Output:           filepath.Base(output),
		}
		if c.IsSet("operator-prefix") {
			operatorPrefix := c.String("operator-prefix")
			cfg.Ridership.OperatorPrefix = &operatorPrefix
		}
	} else {
		cfg.Fleet.Match = c.String("fleet")
		cfg.Punctuality = config.PunctualityConfig{
			Enabled:        &enabled,
			StrictFacility: c.Bool("strict-facility"),
			Output:         filepath.Base(output),
		}
	}

	cfg.ApplyDefaults()

	return cfg
}

func runSingle(c *cli.Context, reconstruction Reconstruction) error {
	cfg := singleRunConfig(c, reconstruction)
	if err := cfg.Validate(); err != nil {
		return err
	}

	_, err := Run(c.Context, cfg, Job{Scenario: cfg.Scenarios[0], Reconstruction: reconstruction})
	return err
}

func RegisterRidershipCLI() *cli.Command {
	return &cli.Command{
		Name:  string(ReconstructionRidership),
		Usage: "Reconstruct passenger trips from a single event log",
		Flags: append(singleRunFlags(config.DefaultRidershipOutput),
			&cli.StringFlag{
				Name:  "operator-prefix",
				Usage: "Exclude travelers whose id starts with this prefix, an empty value excludes nobody",
			},
			&cli.StringFlag{
				Name:  "transfer-activity",
				Usage: "Activity type that does not end a trip",
			},
		),
		Action: func(c *cli.Context) error {
			return runSingle(c, ReconstructionRidership)
		},
	}
}

func RegisterPunctualityCLI() *cli.Command {
	return &cli.Command{
		Name:  "otp",
		Usage: "Reconstruct stop dwells of the monitored fleet from a single event log",
		Flags: append(singleRunFlags(config.DefaultPunctualityOutput),
			&cli.StringFlag{
				Name:  "fleet",
				Usage: "Monitor vehicles whose class contains this text",
				Value: config.DefaultFleetMatch,
			},
			&cli.BoolFlag{
				Name:  "strict-facility",
				Usage: "Discard dwells that depart from a different facility",
			},
		),
		Action: func(c *cli.Context) error {
			return runSingle(c, ReconstructionPunctuality)
		},
	}
}
