package archiver

import (
	"errors"

	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:      "archive",
		Usage:     "Bundle output tables into a tar.xz file",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output-directory",
				Usage:    "Directory to write the bundle to",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Bundle name, without the .tar.xz suffix",
				Value: "evaluation",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("no files to archive")
			}

			archiver := &Archiver{
				OutputDirectory: c.String("output-directory"),
				BundleName:      c.String("name"),
			}

			return archiver.Perform(c.Args().Slice())
		},
	}
}
