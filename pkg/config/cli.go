package config

import (
	"github.com/kr/pretty"
	"github.com/urfave/cli/v2"
)

var PathFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "Path of the evaluation config file",
	Value:   "transit-eval.yaml",
	EnvVars: []string{"TRANSIT_CONFIG"},
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the resolved evaluation config",
		Flags: []cli.Flag{
			PathFlag,
		},
		Action: func(c *cli.Context) error {
			cfg, err := Load(c.String("config"))
			if err != nil {
				return err
			}

			pretty.Println(cfg)

			return nil
		},
	}
}
