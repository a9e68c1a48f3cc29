package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/benjivesterby/go-speck/internal/keyfile"
	"github.com/benjivesterby/go-speck/internal/log"
	"github.com/benjivesterby/go-speck/speck"
)

var infoCmd = &cli.Command{
	Name:  "info",
	Usage: "Print parameter sets, sizes and stored keys",
	Action: func(cctx *cli.Context) error {
		fmt.Printf("hardware AES:   %v\n", speck.HasHardwareAES())
		fmt.Printf("default params: %s\n", speck.DefaultParams().Name())
		fmt.Printf("signing key:    %d bytes\n", speck.SigningKeySize())
		fmt.Printf("verifying key:  %d bytes\n", speck.VerifyingKeySize())
		fmt.Printf("log level:      %s\n", log.GetLogLevel())
		fmt.Println()
		fmt.Println("parameter sets (signature bytes):")
		for _, p := range speck.AllParams() {
			fmt.Printf("  %-30s %d\n", p.Name(), p.SignatureSize())
		}

		repo, err := openRepo(cctx)
		if err != nil {
			return err
		}
		names, err := repo.List()
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Printf("keys in %s:\n", repo.Path())
		for _, n := range names {
			k, err := repo.GetPublic(n)
			if err != nil {
				fmt.Printf("  %-16s (unreadable: %s)\n", n, err)
				continue
			}
			fmt.Printf("  %-16s %-30s %s\n", n, k.Params, keyfile.FingerprintString(k.Fingerprint()))
		}
		return nil
	},
}
