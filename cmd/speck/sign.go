package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/benjivesterby/go-speck/internal/keyfile"
	"github.com/benjivesterby/go-speck/speck"
)

var signCmd = &cli.Command{
	Name:  "sign",
	Usage: "Sign a file",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "key",
			Value: "default",
			Usage: "name of the signing key",
		},
		&cli.StringFlag{
			Name:     "in",
			Usage:    "file to sign",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "out",
			Usage: "signature file (default: input path with .sig appended)",
		},
	},
	Action: func(cctx *cli.Context) error {
		repo, err := openRepo(cctx)
		if err != nil {
			return err
		}
		k, err := repo.Get(cctx.String("key"))
		if err != nil {
			return err
		}
		p, err := paramsFromFlag(cctx, k.Params)
		if err != nil {
			return err
		}

		in, err := homedir.Expand(cctx.String("in"))
		if err != nil {
			return err
		}
		msg, err := os.ReadFile(in)
		if err != nil {
			return err
		}

		sig, err := speck.Sign(p, nil, k.Secret, msg)
		if err != nil {
			return xerrors.Errorf("signing %s: %w", in, err)
		}

		out := cctx.String("out")
		if out == "" {
			out = in + ".sig"
		}
		err = keyfile.WriteSignature(out, &keyfile.SigFile{
			Params:      p.Name(),
			Fingerprint: k.Fingerprint(),
			Signature:   sig,
		})
		if err != nil {
			return err
		}

		logger.Infow("file signed", "in", in, "out", out, "params", p.Name(), "size", len(sig))
		fmt.Println(out)
		return nil
	},
}
