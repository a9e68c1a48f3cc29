package speck

import (
	"encoding/binary"
	"hash"

	sha3 "golang.org/x/crypto/sha3"
)

// Symmetric building blocks: a SHAKE128-based PRG and a SHA3-256 hash,
// both with an optional salt prefix and a final domain separation byte.

// Start a PRG instance; salt and seed are optional (nil).
func prg_init(salt []byte, seed []byte) sha3.ShakeHash {
	sh := sha3.NewShake128()
	sh.Write(salt)
	sh.Write(seed)
	return sh
}

// Absorb the domain separation byte; the instance can then be squeezed.
func prg_final(sh sha3.ShakeHash, domain byte) {
	sh.Write([]byte{domain})
}

// Start a hash instance; salt is optional (nil).
func hash_init(salt []byte) hash.Hash {
	h := sha3.New256()
	h.Write(salt)
	return h
}

// Start a hash instance bound to a tree position (subtree tau, index n).
func hash_init_pos(salt []byte, tau uint8, n uint16) hash.Hash {
	h := hash_init(salt)
	var tmp [3]byte
	tmp[0] = tau
	binary.LittleEndian.PutUint16(tmp[1:], n)
	h.Write(tmp[:])
	return h
}

// Absorb the domain separation byte and write the digest into dst
// (hash_bytes bytes).
func hash_final(h hash.Hash, domain byte, dst []byte) {
	h.Write([]byte{domain})
	var tmp [hash_bytes]byte
	copy(dst[:hash_bytes], h.Sum(tmp[:0]))
}

// Four independent SHAKE128 instances, processed in lockstep. Each lane
// yields exactly what a single instance fed with the same data would.
type shake128x4 struct {
	state [4]sha3.ShakeHash
}

func newSHAKE128x4(salt []byte, seeds *[4][]byte) *shake128x4 {
	r := new(shake128x4)
	for i := 0; i < 4; i++ {
		var seed []byte
		if seeds != nil {
			seed = seeds[i]
		}
		r.state[i] = prg_init(salt, seed)
	}
	return r
}

func (r *shake128x4) write(in *[4][]byte) {
	for i := 0; i < 4; i++ {
		r.state[i].Write(in[i])
	}
}

func (r *shake128x4) final(domain byte) {
	for i := 0; i < 4; i++ {
		prg_final(r.state[i], domain)
	}
}

func (r *shake128x4) read(out *[4][]byte) {
	for i := 0; i < 4; i++ {
		r.state[i].Read(out[i])
	}
}

func (r *shake128x4) clone() *shake128x4 {
	c := new(shake128x4)
	for i := 0; i < 4; i++ {
		c.state[i] = r.state[i].Clone()
	}
	return c
}

// Four independent SHA3-256 instances.
type sha3x4 struct {
	state [4]hash.Hash
}

func newSHA3x4(salt []byte) *sha3x4 {
	r := new(sha3x4)
	for i := 0; i < 4; i++ {
		r.state[i] = hash_init(salt)
	}
	return r
}

func newSHA3x4Pos(salt []byte, tau *[4]uint8, n *[4]uint16) *sha3x4 {
	r := new(sha3x4)
	for i := 0; i < 4; i++ {
		r.state[i] = hash_init_pos(salt, tau[i], n[i])
	}
	return r
}

func (r *sha3x4) write(in *[4][]byte) {
	for i := 0; i < 4; i++ {
		r.state[i].Write(in[i])
	}
}

func (r *sha3x4) final(domain byte, out *[4][]byte) {
	for i := 0; i < 4; i++ {
		hash_final(r.state[i], domain, out[i])
	}
}

// Read consecutive 11-bit values out of a sequence of little-endian
// 64-bit words, as produced by a PRG.
type bits11_reader struct {
	words []uint64
	index int
	pos   uint
}

func newBits11Reader(sh sha3.ShakeHash, count int) *bits11_reader {
	nw := (count*q_bits + 63) >> 6
	buf := make([]byte, nw<<3)
	sh.Read(buf)
	r := &bits11_reader{words: make([]uint64, nw)}
	for i := 0; i < nw; i++ {
		r.words[i] = binary.LittleEndian.Uint64(buf[i<<3:])
	}
	return r
}

func (r *bits11_reader) next() uint16 {
	w := r.words[r.index] >> r.pos
	if r.pos > 64-q_bits {
		w |= r.words[r.index+1] << (64 - r.pos)
	}
	r.pos += q_bits
	if r.pos > 63 {
		r.index++
		r.pos -= 64
	}
	return uint16(w & q_mask)
}
