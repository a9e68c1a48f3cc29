package speck

import (
	"bytes"
	"fmt"
	"sort"
	"testing"

	sha3 "golang.org/x/crypto/sha3"
)

func TestUint32Sort(t *testing.T) {
	r := test_rng("uint32-sort")
	for n := 0; n <= 130; n++ {
		for k := 0; k < 20; k++ {
			x := make([]uint32, n)
			for i := range x {
				v := uint32(rand_u64(r))
				// Small values too, to get many equal keys.
				if k&1 != 0 {
					v &= 7
				}
				if k == 2 {
					v |= 0x80000000
				}
				x[i] = v
			}
			y := append([]uint32(nil), x...)
			sort.Slice(y, func(a, b int) bool { return y[a] < y[b] })
			uint32_sort(x)
			for i := range x {
				if x[i] != y[i] {
					t.Fatalf("ERR n=%d: x[%d] = 0x%08X (exp: 0x%08X)\n", n, i, x[i], y[i])
				}
			}
		}
	}
}

func TestPermutation(t *testing.T) {
	r := test_rng("permutation")
	for k := 0; k < 100; k++ {
		seed := rand_bytes(r, seed_bytes)
		var perm [pkp_n]uint8
		perm_set_random(&perm, seed)

		// Same draw, with a reference sort.
		sh := prg_init(nil, seed)
		prg_final(sh, dom_H0_2)
		var exp [pkp_n]uint8
		for {
			var rnd [2 * pkp_n]byte
			sh.Read(rnd[:])
			buf := make([]uint32, pkp_n)
			for i := range buf {
				buf[i] = uint32(rnd[2*i])<<16 | uint32(rnd[2*i+1])<<24 | uint32(i)
			}
			sort.Slice(buf, func(a, b int) bool { return buf[a] < buf[b] })
			ok := true
			for i := 1; i < pkp_n; i++ {
				if buf[i]>>16 == buf[i-1]>>16 {
					ok = false
				}
			}
			if ok {
				for i := range buf {
					exp[i] = uint8(buf[i])
				}
				break
			}
		}
		if perm != exp {
			t.Fatalf("ERR: permutation differs from reference\n")
		}

		var pinv [pkp_n]uint8
		perm_inverse(&pinv, &perm)
		var in, out [pkp_n]uint16
		for i := range in {
			in[i] = rand_gf(r)
		}
		perm_vect_permute(&out, &perm, &in)
		for i := 0; i < pkp_n; i++ {
			if pinv[perm[i]] != uint8(i) {
				t.Fatalf("ERR: inverse permutation\n")
			}
			if out[perm[i]] != in[i] {
				t.Fatalf("ERR: vector permutation\n")
			}
		}
	}
}

// Collisions between random values force a new draw.
func TestPermutationCollision(t *testing.T) {
	found := false
	for k := 0; k < 2000 && !found; k++ {
		seed := rand_bytes(test_rng(fmt.Sprintf("collision-%d", k)), seed_bytes)
		sh := prg_init(nil, seed)
		prg_final(sh, dom_H0_2)
		var rnd [2 * pkp_n]byte
		sh.Read(rnd[:])
		seen := make(map[uint16]bool)
		for i := 0; i < pkp_n; i++ {
			v := uint16(rnd[2*i]) | uint16(rnd[2*i+1])<<8
			if seen[v] {
				found = true
			}
			seen[v] = true
		}
		if !found {
			continue
		}
		var perm [pkp_n]uint8
		perm_set_random(&perm, seed)
		var mark [pkp_n]bool
		for _, x := range perm {
			if mark[x] {
				t.Fatalf("ERR: invalid permutation after a collision\n")
			}
			mark[x] = true
		}
	}
	if !found {
		t.Skip("no colliding draw found")
	}
}

func TestSignStateClear(t *testing.T) {
	p := Speck1FastKeccakKeccak
	seed := rand_bytes(test_rng("sign-state"), seed_bytes)
	ss := p.new_sign_state(seed)
	for i := range ss.tree {
		ss.tree[i] = 0xA5
	}
	for i := range ss.u {
		ss.u[i] = 0x5A
	}
	for _, x := range ss.v {
		x[0] = 1
	}
	ss.st.t[3] = 7
	ss.st.beta[1][2][0].u = 1
	ss.sh.Write([]byte("root"))
	ss.clear()

	for _, x := range [][]byte{ss.tree, ss.u} {
		for i := range x {
			if x[i] != 0 {
				t.Fatalf("ERR: byte %d not cleared\n", i)
			}
		}
	}
	for j, x := range ss.v {
		if x[0] != 0 {
			t.Fatalf("ERR: v[%d] not cleared\n", j)
		}
	}
	if *ss.st != (pkp_prover{}) {
		t.Fatalf("ERR: prover state not cleared\n")
	}

	// The PRG no longer depends on the permutation seed.
	got := make([]byte, 64)
	exp := make([]byte, 64)
	ss.sh.Read(got)
	sha3.NewShake128().Read(exp)
	if !bytes.Equal(got, exp) {
		t.Fatalf("ERR: PRG state not reset\n")
	}
}
