package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/benjivesterby/go-speck/internal/keyfile"
	"github.com/benjivesterby/go-speck/speck"
)

var ErrBadSignature = xerrors.New("signature verification failed")

var verifyCmd = &cli.Command{
	Name:  "verify",
	Usage: "Verify a signed file",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "pub",
			Value: "default",
			Usage: "key name in the repository, or path of a key file",
		},
		&cli.StringFlag{
			Name:     "in",
			Usage:    "signed file",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "sig",
			Usage: "signature file (default: input path with .sig appended)",
		},
	},
	Action: func(cctx *cli.Context) error {
		repo, err := openRepo(cctx)
		if err != nil {
			return err
		}
		k, err := repo.GetPublic(cctx.String("pub"))
		if err != nil {
			return err
		}
		in, err := homedir.Expand(cctx.String("in"))
		if err != nil {
			return err
		}
		sigPath := cctx.String("sig")
		if sigPath == "" {
			sigPath = in + ".sig"
		}

		err = verifyFile(k.Public, in, sigPath, cctx.String(FlagParams))
		if err != nil {
			return err
		}
		fmt.Println("OK")
		return nil
	},
}

// Check one signature file over one message file. The parameter set is
// the one recorded in the signature file; when want is not empty, it
// must match.
func verifyFile(vkey []byte, msgPath, sigPath, want string) error {
	vk, err := speck.ParseVerifyingKey(vkey)
	if err != nil {
		return err
	}
	return verifyFileWith(vk, keyfile.Fingerprint(vkey), msgPath, sigPath, want)
}

func verifyFileWith(vk *speck.VerifyingKey, fp []byte, msgPath, sigPath, want string) error {
	s, err := keyfile.ReadSignature(sigPath)
	if err != nil {
		return err
	}
	if want != "" && want != s.Params {
		return xerrors.Errorf("signature uses %s, not %s", s.Params, want)
	}
	p, err := speck.ParamsByName(s.Params)
	if err != nil {
		return err
	}
	if !bytes.Equal(s.Fingerprint, fp) {
		return xerrors.Errorf("signature was made by key %s, not %s: %w",
			keyfile.FingerprintString(s.Fingerprint), keyfile.FingerprintString(fp), ErrBadSignature)
	}
	msg, err := os.ReadFile(msgPath)
	if err != nil {
		return err
	}
	if !vk.Verify(p, msg, s.Signature) {
		return xerrors.Errorf("%s: %w", msgPath, ErrBadSignature)
	}
	return nil
}
