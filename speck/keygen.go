package speck

import (
	"crypto/rand"
	"encoding/binary"
	"io"
)

// Decoded public key: the matrix H (expanded from its seed) and the
// public vector x, such that H * (x permuted by the secret permutation)
// is zero.
type public_key struct {
	h_seed [seed_bytes]byte
	x      [pkp_n]uint16
	H      [pkp_m][pkp_n]uint16
}

// Decoded private key.
type private_key struct {
	perm_seed [seed_bytes]byte
	perm      [pkp_n]uint8
}

func (sk *private_key) clear() {
	*sk = private_key{}
}

// Generate a new key pair.
//
//	- rng is random source to use (nil to use the OS RNG).
//
// Output is the new key pair (signing and verifying keys, both encoded).
// An error is reported only if the random source fails. Keys do not
// depend on the parameter set: a key pair may be used with any of the
// published sets.
func KeyGen(rng io.Reader) (skey []byte, vkey []byte, err error) {
	skey = nil
	vkey = nil
	if rng == nil {
		rng = rand.Reader
	}
	var seed [3 * seed_bytes]byte
	_, err = io.ReadFull(rng, seed[:])
	if err != nil {
		return
	}
	skey, vkey = keygen_inner(seed[:])
	clear_bytes(seed[:])
	return
}

// Inner function; the output is deterministic for the provided seed
// (H seed, permutation seed and kernel seed, in that order).
func keygen_inner(seed []byte) (skey []byte, vkey []byte) {
	var pk public_key
	var sk private_key
	copy(pk.h_seed[:], seed[0:seed_bytes])
	copy(sk.perm_seed[:], seed[seed_bytes:2*seed_bytes])
	kernel_seed := seed[2*seed_bytes : 3*seed_bytes]

	expand_H(&pk.H, pk.h_seed[:])

	var kernel [pkp_n]uint16
	sample_kernel_element(&kernel, &pk.H, kernel_seed)

	perm_set_random(&sk.perm, sk.perm_seed[:])
	var pinv [pkp_n]uint8
	perm_inverse(&pinv, &sk.perm)
	perm_vect_permute(&pk.x, &pinv, &kernel)

	vkey = encode_public_key(&pk)
	skey = encode_private_key(&sk, vkey)
	kernel = [pkp_n]uint16{}
	pinv = [pkp_n]uint8{}
	sk.clear()
	return
}

// Expand the matrix H = [I_M | R] from its seed.
func expand_H(H *[pkp_m][pkp_n]uint16, h_seed []byte) {
	sh := prg_init(nil, h_seed)
	prg_final(sh, dom_H0_0)
	rd := newBits11Reader(sh, pkp_m*(pkp_n-pkp_m))
	for i := 0; i < pkp_m; i++ {
		for j := 0; j < pkp_n; j++ {
			H[i][j] = 0
		}
		H[i][i] = 1
		for j := pkp_m; j < pkp_n; j++ {
			H[i][j] = rd.next()
		}
	}
}

// Sample a random element of the right kernel of H, as a combination of
// the kernel basis derived from the systematic form of H.
func sample_kernel_element(kernel *[pkp_n]uint16, H *[pkp_m][pkp_n]uint16, seed []byte) {
	sh := prg_init(nil, seed)
	prg_final(sh, dom_H0_1)
	rd := newBits11Reader(sh, pkp_n-pkp_m)
	for j := 0; j < pkp_n; j++ {
		kernel[j] = 0
	}
	for i := 0; i < pkp_n-pkp_m; i++ {
		c := rd.next()
		// Basis vector i: 1 at position M+i, H[j][M+i] at position j < M.
		kernel[pkp_m+i] ^= c
		for j := 0; j < pkp_m; j++ {
			kernel[j] ^= gf_mul(c, H[j][pkp_m+i])
		}
	}
	sh.Reset()
}

// Derive the secret permutation from its seed: 16-bit random values
// are sorted along with their index; a collision between random values
// triggers a fresh draw. Sorting uses a constant-time network, and the
// collision check scans the whole array.
func perm_set_random(perm *[pkp_n]uint8, seed []byte) {
	sh := prg_init(nil, seed)
	prg_final(sh, dom_H0_2)
	var rnd [2 * pkp_n]byte
	var buf [pkp_n]uint32
	for {
		sh.Read(rnd[:])
		for i := 0; i < pkp_n; i++ {
			buf[i] = uint32(binary.LittleEndian.Uint16(rnd[2*i:]))<<16 | uint32(i)
		}
		uint32_sort(buf[:])
		dup := uint32(0)
		for i := 1; i < pkp_n; i++ {
			d := (buf[i] ^ buf[i-1]) >> 16
			dup |= uint32((uint64(d) - 1) >> 63)
		}
		if dup == 0 {
			break
		}
	}
	for i := 0; i < pkp_n; i++ {
		perm[i] = uint8(buf[i])
	}
	buf = [pkp_n]uint32{}
	clear_bytes(rnd[:])
	sh.Reset()
}

// o[perm[i]] = i, computed by sorting (perm[i], i) pairs.
func perm_inverse(o *[pkp_n]uint8, perm *[pkp_n]uint8) {
	var buf [pkp_n]uint32
	for i := 0; i < pkp_n; i++ {
		buf[i] = uint32(perm[i])<<16 | uint32(i)
	}
	uint32_sort(buf[:])
	for i := 0; i < pkp_n; i++ {
		o[i] = uint8(buf[i])
	}
	buf = [pkp_n]uint32{}
}

// o[perm[i]] = in[i], computed by sorting (perm[i], in[i]) pairs.
func perm_vect_permute(o *[pkp_n]uint16, perm *[pkp_n]uint8, in *[pkp_n]uint16) {
	var buf [pkp_n]uint32
	for i := 0; i < pkp_n; i++ {
		buf[i] = uint32(perm[i])<<16 | uint32(in[i])
	}
	uint32_sort(buf[:])
	for i := 0; i < pkp_n; i++ {
		o[i] = uint16(buf[i])
	}
	buf = [pkp_n]uint32{}
}
