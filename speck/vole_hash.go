package speck

import (
	"encoding/binary"
)

// Number of 128-bit blocks covering the hashed part of a VOLE vector.
const vh_blocks = (l_len + l_bar + 8*seed_bytes - 1) / (8 * seed_bytes)

// Evaluate the part of x0 hashed in GF(2^64), at point t.
func vole_hash_h1(t uint64, x0 []byte) uint64 {
	var tmp [seed_bytes]byte
	copy(tmp[:], x0[(vh_blocks-1)*seed_bytes:((l_len+l_bar)>>3)])

	h1 := uint64(0)
	running := uint64(1)
	i := 0
	for ; i < seed_bytes; i += 8 {
		elt := binary.LittleEndian.Uint64(tmp[seed_bytes-i-8:])
		h1 ^= gf64_mul(running, elt)
		running = gf64_mul(running, t)
	}
	for ; i < vh_blocks*seed_bytes; i += 8 {
		elt := binary.LittleEndian.Uint64(x0[vh_blocks*seed_bytes-i-8:])
		h1 ^= gf64_mul(running, elt)
		running = gf64_mul(running, t)
	}
	return h1
}

// Universal hash of a VOLE vector x (vole_data_bytes) keyed by the first
// challenge sd (ch1_bytes). Output h has vole_hash_bytes bytes. The first
// l_vhm bits of x mask the hash value.
func vole_hash(h []byte, sd []byte, x []byte) {
	r0 := gf128_from_bytes(sd[0*seed_bytes:])
	r1 := gf128_from_bytes(sd[1*seed_bytes:])
	r2 := gf128_from_bytes(sd[2*seed_bytes:])
	r3 := gf128_from_bytes(sd[3*seed_bytes:])
	s := gf128_from_bytes(sd[4*seed_bytes:])
	t := binary.LittleEndian.Uint64(sd[5*seed_bytes:])
	x1 := x[:l_vhm>>3]
	x0 := x[l_vhm>>3:]

	// Top block is partial: only ((l_len + 128) mod 128) bits are used.
	var tmp [seed_bytes]byte
	top := ((l_len + 8*seed_bytes) % (8 * seed_bytes)) >> 3
	if top == 0 {
		top = seed_bytes
	}
	copy(tmp[:], x0[(vh_blocks-1)*seed_bytes:(vh_blocks-1)*seed_bytes+top])
	h0 := gf128_from_bytes(tmp[:])
	running := s
	for i := 1; i < vh_blocks; i++ {
		e := gf128_from_bytes(x0[(vh_blocks-1-i)*seed_bytes:])
		h0 = gf128_add(h0, gf128_mul(running, e))
		running = gf128_mul(running, s)
	}

	h1 := gf128{vole_hash_h1(t, x0), 0}
	h2 := gf128_add(gf128_mul(r0, h0), gf128_mul(r1, h1))
	h3 := gf128_add(gf128_mul(r2, h0), gf128_mul(r3, h1))

	var buf [seed_bytes]byte
	gf128_to_bytes(h[:seed_bytes], h2)
	gf128_to_bytes(buf[:], h3)
	copy(h[seed_bytes:vole_hash_bytes], buf[:uhash_b>>3])
	for i := 0; i < vole_hash_bytes; i++ {
		h[i] ^= x1[i]
	}
}
