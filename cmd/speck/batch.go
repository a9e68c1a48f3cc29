package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/xerrors"

	"github.com/benjivesterby/go-speck/internal/keyfile"
	"github.com/benjivesterby/go-speck/speck"
)

var batchVerifyCmd = &cli.Command{
	Name:  "batch-verify",
	Usage: "Verify the signatures listed in a manifest",
	Description: "Each manifest line names a public key file, a message file and a signature\n" +
		"file, separated by spaces. Empty lines and lines starting with # are skipped.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "manifest",
			Usage:    "manifest file",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "workers",
			Value: runtime.NumCPU(),
			Usage: "number of signatures verified in parallel",
		},
	},
	Action: func(cctx *cli.Context) error {
		path, err := homedir.Expand(cctx.String("manifest"))
		if err != nil {
			return err
		}
		entries, err := readManifest(path)
		if err != nil {
			return err
		}

		bv, err := newBatchVerifier(cctx.Int("workers"), cctx.String(FlagParams))
		if err != nil {
			return err
		}
		res, err := bv.run(cctx.Context, entries)
		if err != nil {
			return err
		}

		failed := 0
		for i, e := range entries {
			if res[i] != nil {
				failed++
				fmt.Printf("FAIL %s: %s\n", e.msg, res[i])
			} else {
				fmt.Printf("OK   %s\n", e.msg)
			}
		}
		logger.Infow("batch verified", "manifest", path, "total", len(entries), "failed", failed)
		if failed > 0 {
			return xerrors.Errorf("%d of %d signatures: %w", failed, len(entries), ErrBadSignature)
		}
		return nil
	},
}

type manifestEntry struct {
	pub string
	msg string
	sig string
}

func readManifest(path string) ([]manifestEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []manifestEntry
	sc := bufio.NewScanner(f)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fs := strings.Fields(line)
		if len(fs) != 3 {
			return nil, xerrors.Errorf("%s:%d: expected 3 fields, got %d", path, ln, len(fs))
		}
		entries = append(entries, manifestEntry{pub: fs[0], msg: fs[1], sig: fs[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

type parsedKey struct {
	vk *speck.VerifyingKey
	fp []byte
}

// Verifies independent signatures in parallel. Parsed keys are kept in
// an ARC cache, since a manifest usually reuses a few keys many times.
type batchVerifier struct {
	workers int64
	params  string

	lk    sync.Mutex
	cache *lru.ARCCache
}

func newBatchVerifier(workers int, params string) (*batchVerifier, error) {
	if workers < 1 {
		workers = 1
	}
	cache, err := lru.NewARC(1024)
	if err != nil {
		return nil, err
	}
	return &batchVerifier{
		workers: int64(workers),
		params:  params,
		cache:   cache,
	}, nil
}

func (bv *batchVerifier) key(path string) (*parsedKey, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	if v, ok := bv.cache.Get(p); ok {
		return v.(*parsedKey), nil
	}

	// one parse per key, even with many workers asking for it
	bv.lk.Lock()
	defer bv.lk.Unlock()
	if v, ok := bv.cache.Get(p); ok {
		return v.(*parsedKey), nil
	}
	k, err := keyfile.Load(p)
	if err != nil {
		return nil, err
	}
	vk, err := speck.ParseVerifyingKey(k.Public)
	if err != nil {
		return nil, err
	}
	pk := &parsedKey{vk: vk, fp: k.Fingerprint()}
	bv.cache.Add(p, pk)
	return pk, nil
}

// Returns one result per entry (nil when the signature is valid). The
// error is only set when the context is cancelled.
func (bv *batchVerifier) run(ctx context.Context, entries []manifestEntry) ([]error, error) {
	res := make([]error, len(entries))
	sm := semaphore.NewWeighted(bv.workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := range entries {
		err := sm.Acquire(gctx, 1)
		if err != nil {
			break
		}
		i := i
		g.Go(func() error {
			defer sm.Release(1)
			e := entries[i]
			k, err := bv.key(e.pub)
			if err != nil {
				res[i] = err
				return nil
			}
			res[i] = verifyFileWith(k.vk, k.fp, e.msg, e.sig, bv.params)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return res, err
}
