package main

import (
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/benjivesterby/go-speck/internal/keyfile"
	"github.com/benjivesterby/go-speck/speck"
)

func openRepo(cctx *cli.Context) (*keyfile.Repo, error) {
	return keyfile.NewRepo(cctx.String(FlagRepo))
}

// Parameter set from the global flag; fallback is used when the flag is
// not set, and the CPU-dependent default when fallback is empty too.
func paramsFromFlag(cctx *cli.Context, fallback string) (*speck.Params, error) {
	name := cctx.String(FlagParams)
	if name == "" {
		name = fallback
	}
	if name == "" {
		return speck.DefaultParams(), nil
	}
	p, err := speck.ParamsByName(name)
	if err != nil {
		return nil, xerrors.Errorf("parameter set: %w", err)
	}
	return p, nil
}
