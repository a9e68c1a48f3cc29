package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/benjivesterby/go-speck/internal/log"
)

var logCmd = &cli.Command{
	Name:  "log",
	Usage: "Manage logging",
	Subcommands: []*cli.Command{
		logSetLevel,
	},
}

var logSetLevel = &cli.Command{
	Name:      "set-level",
	Usage:     "Set log level for this invocation and print it",
	ArgsUsage: "[level (debug/info/warn/error)]",
	Action: func(cctx *cli.Context) error {
		if !cctx.Args().Present() {
			return fmt.Errorf("level is required")
		}

		err := log.SetLogLevel(cctx.Args().First())
		if err != nil {
			return err
		}
		fmt.Println(log.GetLogLevel())
		return nil
	},
}
