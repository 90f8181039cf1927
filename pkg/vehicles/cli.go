package vehicles

import (
	"github.com/travigo/transit-evaluation/pkg/tables"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "vehicles",
		Usage: "Convert transit vehicle definitions into a vehicle class table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Usage:    "Transit vehicle definitions (XML) or an existing vehicle table (CSV)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Vehicle class table to write",
				Value: "vehicles.csv",
			},
		},
		Action: func(c *cli.Context) error {
			rows, err := ReadFile(c.String("input"))
			if err != nil {
				return err
			}

			return tables.WriteCSV(c.String("output"), rows)
		},
	}
}
