package speck

import (
	"fmt"
	"testing"

	sha3 "golang.org/x/crypto/sha3"
)

// Random VOLE correlation: q[fb] = v[fb] + Delta_fb*u, where Delta_fb is
// bit fb%11 of coefficient fb/11 of delta.
func test_vole(r sha3.ShakeHash) (u []byte, v, q [][]byte, delta tower) {
	u = rand_bytes(r, vole_data_bytes)
	v = new_vole_vectors(rho)
	q = new_vole_vectors(rho)
	delta = rand_tower(r)
	for fb := 0; fb < rho; fb++ {
		r.Read(v[fb])
		copy(q[fb], v[fb])
		if ((delta[fb/q_bits] >> (fb % q_bits)) & 1) != 0 {
			xor_into(q[fb], u)
		}
	}
	return
}

func test_keys(t *testing.T, label string) (*private_key, *public_key) {
	seed := rand_bytes(test_rng(label), 3*seed_bytes)
	skey, _ := keygen_inner(seed)
	sk := new(private_key)
	pk := new(public_key)
	if _, err := decode_private_key(sk, pk, skey); err != nil {
		t.Fatalf("ERR decode_private_key: %v\n", err)
	}
	return sk, pk
}

func TestKeyGenKernel(t *testing.T) {
	for i := 0; i < 10; i++ {
		sk, pk := test_keys(t, fmt.Sprintf("kernel-%d", i))
		var seen [pkp_n]bool
		for _, x := range sk.perm {
			if int(x) >= pkp_n || seen[x] {
				t.Fatalf("ERR invalid permutation: %v\n", sk.perm)
			}
			seen[x] = true
		}
		var pinv [pkp_n]uint8
		perm_inverse(&pinv, &sk.perm)
		var k [pkp_n]uint16
		for j := 0; j < pkp_n; j++ {
			k[j] = pk.x[pinv[j]]
		}
		for r := 0; r < pkp_m; r++ {
			s := uint16(0)
			for j := 0; j < pkp_n; j++ {
				s ^= gf_mul(pk.H[r][j], k[j])
			}
			if s != 0 {
				t.Fatalf("ERR row %d: H*x' = 0x%03X\n", r, s)
			}
		}
		for r := 0; r < pkp_m; r++ {
			for j := 0; j < pkp_m; j++ {
				exp := uint16(0)
				if r == j {
					exp = 1
				}
				if pk.H[r][j] != exp {
					t.Fatalf("ERR H is not systematic at (%d, %d)\n", r, j)
				}
			}
		}
		fmt.Print(".")
	}
	fmt.Println()
}

func TestCheckZeroVToTower(t *testing.T) {
	r := test_rng("check-zero-v")
	for i := 0; i < 20; i++ {
		u, v, q, delta := test_vole(r)
		idx := l_prime + int(rand_u64(r)%uint64(rho))
		var ov, oq, ou, exp tower
		check_zero_v_to_tower(&ov, idx, v)
		check_zero_v_to_tower(&oq, idx, q)
		u_to_tower(&ou, idx, u)
		tower_mul(&exp, &delta, &ou)
		tower_add(&exp, &exp, &ov)
		if !exp.equal(&oq) {
			t.Fatalf("ERR check_zero_v_to_tower is not linear at %d\n", idx)
		}

		var tv, tq tower
		v_to_tower(&tv, idx, v)
		v_to_tower(&tq, idx, q)
		if get_bit(u, idx) != 0 {
			tower_add(&tv, &tv, &delta)
		}
		if !tv.equal(&tq) {
			t.Fatalf("ERR v_to_tower is not linear at %d\n", idx)
		}
	}
}

func TestPKPProof(t *testing.T) {
	r := test_rng("pkp-proof")
	for i := 0; i < 4; i++ {
		sk, pk := test_keys(t, fmt.Sprintf("pkp-%d", i))
		u, v, q, delta := test_vole(r)
		ch2 := rand_bytes(r, ch2_bytes)

		st := new(pkp_prover)
		st.vole_permutation(&sk.perm, u, v)
		var a f_poly
		st.check_pkp(&a, pk, u, v, ch2)
		if !a.u.is_zero() {
			t.Fatalf("ERR honest proof has a non-zero leading coefficient\n")
		}
		if !verify_check_pkp(&a, q, &delta, &st.t, pk, ch2) {
			t.Fatalf("ERR honest proof rejected\n")
		}

		// Altered proof, witness, challenge or point.
		a2 := a
		a2.v[1][3] ^= 0x40
		if verify_check_pkp(&a2, q, &delta, &st.t, pk, ch2) {
			t.Fatalf("ERR altered polynomial accepted\n")
		}
		a2 = a
		a2.u[0] = 1
		if verify_check_pkp(&a2, q, &delta, &st.t, pk, ch2) {
			t.Fatalf("ERR non-zero leading coefficient accepted\n")
		}
		t2 := st.t
		t2[17] ^= 0x04
		if verify_check_pkp(&a, q, &delta, &t2, pk, ch2) {
			t.Fatalf("ERR altered witness accepted\n")
		}
		ch2b := append([]byte(nil), ch2...)
		ch2b[0] ^= 1
		if verify_check_pkp(&a, q, &delta, &st.t, pk, ch2b) {
			t.Fatalf("ERR altered challenge accepted\n")
		}

		// A wrong permutation does not cancel the leading coefficient.
		perm := sk.perm
		perm[0], perm[1] = perm[1], perm[0]
		st2 := new(pkp_prover)
		st2.vole_permutation(&perm, u, v)
		var a3 f_poly
		st2.check_pkp(&a3, pk, u, v, ch2)
		if a3.u.is_zero() {
			t.Fatalf("ERR wrong permutation yields a zero leading coefficient\n")
		}
		fmt.Print(".")
	}
	fmt.Println()
}

func TestExpandWitness(t *testing.T) {
	for pos := 0; pos < pkp_n; pos++ {
		w := encode_num(uint8(pos))
		tv := uint16(w[0]&7) | uint16(w[1]&7)<<3 | uint16(w[2]&7)<<6
		tp := expand_witness(tv)
		for i := 0; i < pkp_d; i++ {
			for j := 0; j < 4; j++ {
				if tp[4*i+j] != (w[i]>>j)&1 {
					t.Fatalf("ERR position %d: block %d bit %d\n", pos, i, j)
				}
			}
		}
	}
}
