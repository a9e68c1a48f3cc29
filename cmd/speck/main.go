package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/benjivesterby/go-speck/internal/log"
)

const (
	FlagRepo     = "repo"
	FlagParams   = "params"
	FlagLogLevel = "log-level"
)

var logger = log.Logger("cmd")

func main() {
	app := &cli.App{
		Name:                 "speck",
		Usage:                "SPECK post-quantum signatures",
		Version:              "0.1.0",
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    FlagRepo,
				EnvVars: []string{"SPECK_PATH"},
				Value:   "~/.speck",
				Usage:   "Specify key repository path.",
			},
			&cli.StringFlag{
				Name:    FlagParams,
				EnvVars: []string{"SPECK_PARAMS"},
				Usage:   "Parameter set name (default: chosen from CPU features).",
			},
			&cli.StringFlag{
				Name:  FlagLogLevel,
				Usage: "Log level (debug/info/warn/error).",
			},
		},
		Before: func(cctx *cli.Context) error {
			if lv := cctx.String(FlagLogLevel); lv != "" {
				return log.SetLogLevel(lv)
			}
			return nil
		},

		Commands: []*cli.Command{
			keygenCmd,
			signCmd,
			verifyCmd,
			batchVerifyCmd,
			infoCmd,
			logCmd,
		},
	}

	app.Setup()

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n\n", err) // nolint:errcheck
		os.Exit(1)
	}
}
