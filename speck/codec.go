package speck

import (
	"encoding/binary"
)

// Encoding of keys and signatures. Fixed-width values are packed least
// significant bit first, in a continuous bit stream; unused bits of the
// last byte must be zero.

type bit_writer struct {
	dst     []byte
	j       int
	acc     uint32
	acc_len int
}

func (w *bit_writer) write(x uint32, nbits int) {
	w.acc |= (x & ((uint32(1) << nbits) - 1)) << w.acc_len
	w.acc_len += nbits
	for w.acc_len >= 8 {
		w.dst[w.j] = uint8(w.acc)
		w.j++
		w.acc >>= 8
		w.acc_len -= 8
	}
}

// Flush the remaining bits (if any); the total written size, in bytes,
// is returned.
func (w *bit_writer) flush() int {
	if w.acc_len > 0 {
		w.dst[w.j] = uint8(w.acc)
		w.j++
		w.acc = 0
		w.acc_len = 0
	}
	return w.j
}

type bit_reader struct {
	src     []byte
	i       int
	acc     uint32
	acc_len int
}

func (r *bit_reader) read(nbits int) uint32 {
	for r.acc_len < nbits {
		r.acc |= uint32(r.src[r.i]) << r.acc_len
		r.i++
		r.acc_len += 8
	}
	x := r.acc & ((uint32(1) << nbits) - 1)
	r.acc >>= nbits
	r.acc_len -= nbits
	return x
}

// Check that the bits left in the current byte are all zero.
func (r *bit_reader) check_padding() error {
	if r.acc != 0 {
		return ErrPadding
	}
	return nil
}

// Encode a public key: H seed, then x over 11 bits per value.
func encode_public_key(pk *public_key) []byte {
	vkey := make([]byte, VerifyingKeySize())
	copy(vkey, pk.h_seed[:])
	w := bit_writer{dst: vkey[seed_bytes:]}
	for i := 0; i < pkp_n; i++ {
		w.write(uint32(pk.x[i]), q_bits)
	}
	w.flush()
	return vkey
}

// Decode a public key; H is expanded from its seed.
func decode_public_key(pk *public_key, vkey []byte) error {
	if len(vkey) != VerifyingKeySize() {
		return ErrInvalidVerifyingKey
	}
	copy(pk.h_seed[:], vkey[:seed_bytes])
	r := bit_reader{src: vkey[seed_bytes:]}
	for i := 0; i < pkp_n; i++ {
		pk.x[i] = uint16(r.read(q_bits))
	}
	if err := r.check_padding(); err != nil {
		return err
	}
	expand_H(&pk.H, pk.h_seed[:])
	return nil
}

// Encode a private key: permutation seed followed by the public key.
func encode_private_key(sk *private_key, vkey []byte) []byte {
	skey := make([]byte, SigningKeySize())
	copy(skey, sk.perm_seed[:])
	copy(skey[seed_bytes:], vkey)
	return skey
}

// Decode a private key; the permutation is derived from its seed. The
// embedded public key is returned as a sub-slice of skey.
func decode_private_key(sk *private_key, pk *public_key, skey []byte) ([]byte, error) {
	if len(skey) != SigningKeySize() {
		return nil, ErrInvalidSigningKey
	}
	vkey := skey[seed_bytes:]
	if err := decode_public_key(pk, vkey); err != nil {
		return nil, ErrInvalidSigningKey
	}
	copy(sk.perm_seed[:], skey[:seed_bytes])
	perm_set_random(&sk.perm, sk.perm_seed[:])
	return vkey, nil
}

// Decoded signature.
type signature struct {
	c       [][]byte
	u_tilde [vole_hash_bytes]byte
	pdecom  []byte
	com_e_i []byte
	ctr     uint64
	salt    [salt_bytes]byte
	t       [pkp_n]uint16
	a       f_poly
	ch3     []byte
}

func (p *Params) new_signature() *signature {
	return &signature{
		c:       new_vole_vectors(p.tau - 1),
		pdecom:  make([]byte, p.t_open*seed_bytes),
		com_e_i: make([]byte, p.tau*cmt_bytes),
		ch3:     make([]byte, p.ch3_bytes),
	}
}

func (p *Params) encode_signature(sig *signature) []byte {
	buf := make([]byte, p.SignatureSize())
	j := 0
	for _, c := range sig.c {
		j += copy(buf[j:], c)
	}
	j += copy(buf[j:], sig.u_tilde[:])
	j += copy(buf[j:], sig.pdecom)
	j += copy(buf[j:], sig.com_e_i)
	binary.LittleEndian.PutUint64(buf[j:], sig.ctr)
	j += 8
	j += copy(buf[j:], sig.salt[:])

	w := bit_writer{dst: buf[j:]}
	for i := 0; i < pkp_n; i++ {
		w.write(uint32(sig.t[i]), l_row)
	}
	for k := 0; k < pkp_d; k++ {
		for i := 0; i < tower_ext; i++ {
			w.write(uint32(sig.a.v[k][i]), q_bits)
		}
	}
	// Only the challenge bits of ch3 are sent; the proof-of-work bits
	// that follow are zero in a valid signature.
	for i := 0; i < p.chall_bits; i++ {
		w.write(uint32(get_bit(sig.ch3, i)), 1)
	}
	w.flush()
	return buf
}

func (p *Params) decode_signature(sig *signature, buf []byte) error {
	if len(buf) != p.SignatureSize() {
		return ErrInvalidSignature
	}
	j := 0
	for _, c := range sig.c {
		j += copy(c, buf[j:j+vole_data_bytes])
	}
	j += copy(sig.u_tilde[:], buf[j:])
	j += copy(sig.pdecom, buf[j:])
	j += copy(sig.com_e_i, buf[j:])
	sig.ctr = binary.LittleEndian.Uint64(buf[j:])
	j += 8
	j += copy(sig.salt[:], buf[j:])

	r := bit_reader{src: buf[j:]}
	for i := 0; i < pkp_n; i++ {
		sig.t[i] = uint16(r.read(l_row))
	}
	sig.a.u = tower{}
	for k := 0; k < pkp_d; k++ {
		for i := 0; i < tower_ext; i++ {
			sig.a.v[k][i] = uint16(r.read(q_bits))
		}
	}
	clear_bytes(sig.ch3)
	for i := 0; i < p.chall_bits; i++ {
		sig.ch3[i>>3] |= uint8(r.read(1)) << (i & 7)
	}
	return r.check_padding()
}
