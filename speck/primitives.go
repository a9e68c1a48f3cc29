package speck

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"hash"
)

// Seed expansion and VOLE generation. An implementation turns a tree
// node seed into its two children (expand), and a leaf seed into one
// VOLE data vector (prg2). The _x4 variants process four independent
// inputs and MUST produce the same output as four single calls.
type seedPRG interface {
	name() string
	expand(salt []byte, idx uint32, seed []byte, out []byte)
	expand_x4(salt []byte, idx *[4]uint32, seed *[4][]byte, out *[4][]byte)
	prg2(salt []byte, seed []byte, out []byte)
	prg2_x4(salt []byte, seed *[4][]byte, out *[4][]byte)
}

// Leaf commitment: a 32-byte commitment to the seed found at leaf n of
// subtree tau.
type leafCommitter interface {
	name() string
	commit(salt []byte, tau uint8, n uint16, seed []byte, out []byte)
	commit_x4(salt []byte, tau *[4]uint8, n *[4]uint16, seed *[4][]byte, out *[4][]byte)
}

// Keccak-based primitives.

type keccakPRG struct{}

func (keccakPRG) name() string { return "keccak" }

func (keccakPRG) expand(salt []byte, idx uint32, seed []byte, out []byte) {
	h := hash_init_idx(salt, idx)
	h.Write(seed)
	hash_final(h, dom_PRG1, out)
}

func (k keccakPRG) expand_x4(salt []byte, idx *[4]uint32, seed *[4][]byte, out *[4][]byte) {
	for i := 0; i < 4; i++ {
		k.expand(salt, idx[i], seed[i], out[i])
	}
}

func (keccakPRG) prg2(salt []byte, seed []byte, out []byte) {
	sh := prg_init(salt, seed)
	prg_final(sh, dom_PRG2)
	sh.Read(out[:vole_data_bytes])
}

func (keccakPRG) prg2_x4(salt []byte, seed *[4][]byte, out *[4][]byte) {
	r := newSHAKE128x4(salt, seed)
	r.final(dom_PRG2)
	r.read(out)
}

// Hash instance for seed expansion: salt then a 16-bit node index.
func hash_init_idx(salt []byte, idx uint32) hash.Hash {
	h := hash_init(salt)
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], uint16(idx))
	h.Write(tmp[:])
	return h
}

type keccakCommitter struct{}

func (keccakCommitter) name() string { return "keccak" }

func (keccakCommitter) commit(salt []byte, tau uint8, n uint16, seed []byte, out []byte) {
	h := hash_init_pos(salt, tau, n)
	h.Write(seed)
	hash_final(h, dom_COM1, out)
}

func (keccakCommitter) commit_x4(salt []byte, tau *[4]uint8, n *[4]uint16, seed *[4][]byte, out *[4][]byte) {
	r := newSHA3x4Pos(salt, tau, n)
	r.write(seed)
	r.final(dom_COM1, out)
}

// AES-based primitives. The seed is used as an AES-128 key; the salt
// provides the tweakable input blocks.

type aesPRG struct{}

func (aesPRG) name() string { return "aes" }

func newAESBlock(seed []byte) cipher.Block {
	bc, err := aes.NewCipher(seed[:seed_bytes])
	if err != nil {
		// Only reachable with a key of invalid length.
		panic(err)
	}
	return bc
}

// Two-block expansion: E(B0) || E(B1), with B0 the first salt block
// tweaked by idx (bytes 1 to 4) and the domain (byte 5), and B1 equal
// to B0 with its first byte flipped.
func aes_expand2(bc cipher.Block, salt []byte, idx uint32, domain byte, out []byte) {
	var b [16]byte
	copy(b[:], salt[:16])
	var ib [4]byte
	binary.LittleEndian.PutUint32(ib[:], idx)
	for i := 0; i < 4; i++ {
		b[1+i] ^= ib[i]
	}
	b[5] ^= domain
	bc.Encrypt(out[0:16], b[:])
	b[0] ^= 1
	bc.Encrypt(out[16:32], b[:])
}

func (aesPRG) expand(salt []byte, idx uint32, seed []byte, out []byte) {
	aes_expand2(newAESBlock(seed), salt, idx, dom_PRG1, out)
}

func (a aesPRG) expand_x4(salt []byte, idx *[4]uint32, seed *[4][]byte, out *[4][]byte) {
	for i := 0; i < 4; i++ {
		a.expand(salt, idx[i], seed[i], out[i])
	}
}

func (aesPRG) prg2(salt []byte, seed []byte, out []byte) {
	bc := newAESBlock(seed)
	var b [16]byte
	var tmp [16]byte
	for i := 0; i*16 < vole_data_bytes; i++ {
		copy(b[:], salt[:16])
		b[5] ^= dom_PRG2
		b[0] ^= byte(i)
		bc.Encrypt(tmp[:], b[:])
		copy(out[i*16:vole_data_bytes], tmp[:])
	}
}

func (a aesPRG) prg2_x4(salt []byte, seed *[4][]byte, out *[4][]byte) {
	for i := 0; i < 4; i++ {
		a.prg2(salt, seed[i], out[i])
	}
}

type aesCommitter struct{}

func (aesCommitter) name() string { return "aes" }

func (aesCommitter) commit(salt []byte, tau uint8, n uint16, seed []byte, out []byte) {
	idx := uint32(tau) | (uint32(n) << 8)
	aes_expand2(newAESBlock(seed), salt, idx, dom_COM1, out)
}

func (a aesCommitter) commit_x4(salt []byte, tau *[4]uint8, n *[4]uint16, seed *[4][]byte, out *[4][]byte) {
	for i := 0; i < 4; i++ {
		a.commit(salt, tau[i], n[i], seed[i], out[i])
	}
}
