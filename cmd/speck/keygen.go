package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/benjivesterby/go-speck/internal/keyfile"
	"github.com/benjivesterby/go-speck/speck"
)

var keygenCmd = &cli.Command{
	Name:  "keygen",
	Usage: "Generate a new key pair in the repository",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "name",
			Value: "default",
			Usage: "key name",
		},
	},
	Action: func(cctx *cli.Context) error {
		repo, err := openRepo(cctx)
		if err != nil {
			return err
		}
		p, err := paramsFromFlag(cctx, "")
		if err != nil {
			return err
		}

		skey, vkey, err := speck.KeyGen(nil)
		if err != nil {
			return err
		}
		k := &keyfile.KeyFile{
			Version: keyfile.Version,
			Params:  p.Name(),
			Public:  vkey,
			Secret:  skey,
		}
		name := cctx.String("name")
		err = repo.Put(name, k)
		if err != nil {
			return err
		}

		fp := keyfile.FingerprintString(k.Fingerprint())
		logger.Infow("key generated", "name", name, "params", p.Name(), "fingerprint", fp)
		fmt.Printf("%s %s %s\n", name, p.Name(), fp)
		return nil
	},
}
