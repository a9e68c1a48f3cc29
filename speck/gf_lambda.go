package speck

import (
	"encoding/binary"
)

// Binary fields used by the VOLE universal hash: GF(2^64) and GF(2^128)
// (modulus x^128 + x^7 + x^2 + x + 1). Elements are little-endian.

type gf128 [2]uint64

// Carryless 64x64 -> 128 multiplication.
func clmul64(a, b uint64) (lo, hi uint64) {
	for i := uint(0); i < 64; i++ {
		m := -((b >> i) & 1)
		lo ^= (a << i) & m
		hi ^= (a >> (64 - i)) & m
	}
	return
}

func gf64_mul(a, b uint64) uint64 {
	lo, hi := clmul64(a, b)
	t := hi ^ (hi >> 61) ^ (hi >> 60)
	return lo ^ t ^ (t << 1) ^ (t << 3) ^ (t << 4)
}

func gf128_mul(a, b gf128) gf128 {
	e0, e1 := clmul64(a[0], b[0])
	m0, m1 := clmul64(a[0], b[1])
	n0, n1 := clmul64(a[1], b[0])
	e2, e3 := clmul64(a[1], b[1])
	e1 ^= m0 ^ n0
	e2 ^= m1 ^ n1

	e2 ^= (e3 >> 57) ^ (e3 >> 62) ^ (e3 >> 63)
	e1 ^= (e3 << 7) ^ (e3 << 2) ^ (e3 << 1) ^ e3
	t := e2
	e0 ^= (t << 7) ^ (t << 2) ^ (t << 1) ^ t
	e1 ^= (t >> 57) ^ (t >> 62) ^ (t >> 63)
	return gf128{e0, e1}
}

func gf128_add(a, b gf128) gf128 {
	return gf128{a[0] ^ b[0], a[1] ^ b[1]}
}

func gf128_from_bytes(src []byte) gf128 {
	return gf128{
		binary.LittleEndian.Uint64(src[0:]),
		binary.LittleEndian.Uint64(src[8:]),
	}
}

func gf128_to_bytes(dst []byte, a gf128) {
	binary.LittleEndian.PutUint64(dst[0:], a[0])
	binary.LittleEndian.PutUint64(dst[8:], a[1])
}
