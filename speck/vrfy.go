package speck

// Verify a signature.
//
//	- p is the parameter set the signature was produced with
//	- vkey is the verifying key (public)
//	- msg is the signed message
//	- sig is the signature to verify
//
// Returned value is true for a valid signature, false otherwise. If the
// key or the signature cannot be decoded, then false is returned.
func Verify(p *Params, vkey []byte, msg []byte, sig []byte) bool {
	vk, err := ParseVerifyingKey(vkey)
	if err != nil {
		return false
	}
	return vk.Verify(p, msg, sig)
}

// VerifyingKey is a decoded verifying key. Decoding expands the public
// matrix, so a caller checking many signatures against the same key
// should parse it once.
type VerifyingKey struct {
	pk  public_key
	enc []byte
}

// ParseVerifyingKey decodes an encoded verifying key.
func ParseVerifyingKey(vkey []byte) (*VerifyingKey, error) {
	vk := new(VerifyingKey)
	if err := decode_public_key(&vk.pk, vkey); err != nil {
		return nil, err
	}
	vk.enc = make([]byte, len(vkey))
	copy(vk.enc, vkey)
	return vk, nil
}

// Bytes returns the encoded verifying key.
func (vk *VerifyingKey) Bytes() []byte {
	r := make([]byte, len(vk.enc))
	copy(r, vk.enc)
	return r
}

// Verify checks a signature against this key; see [Verify].
func (vk *VerifyingKey) Verify(p *Params, msg []byte, sig []byte) bool {
	if p == nil {
		return false
	}
	s := p.new_signature()
	if err := p.decode_signature(s, sig); err != nil {
		return false
	}
	return p.verify_core(s, &vk.pk, compute_mu(vk.enc, msg))
}

// Tower element whose coefficients hold the bits of the hidden leaf
// positions, mu bits per subtree; this is Delta, the point at which the
// verifier evaluates every share.
func (p *Params) ivect_to_tower(delta *tower, i_vect []int) {
	*delta = tower{}
	fb := 0
	for e := 0; e < p.tau; e++ {
		_, d := p.subtree_and_leaf(i_vect[e])
		for i := 0; i < p.subtree_mu(e); i++ {
			delta[fb/q_bits] |= uint16((d>>i)&1) << (fb % q_bits)
			fb++
		}
	}
}

func (p *Params) verify_core(s *signature, pk *public_key, mu []byte) bool {
	i_vect := make([]int, p.tau)
	p.challenge_decode(i_vect, s.ch3)

	// Reconstruct the VOLE vectors and the commitment.
	qp := new_vole_vectors(rho)
	var h_com [cmt_bytes]byte
	if err := p.vole_reconstruct(h_com[:], qp, i_vect, s.pdecom, s.com_e_i, s.salt[:]); err != nil {
		return false
	}
	ch1 := gen_first_challenge(mu, h_com[:], s.c, s.salt[:])

	// Apply the corrections to get Q, and hash it. Where the Delta bit is
	// set, the hash of u (u_tilde) is added back.
	q := new_vole_vectors(rho)
	q_tilde := make([][vole_hash_bytes]byte, rho)
	idx := 0
	for e := 0; e < p.tau; e++ {
		_, d := p.subtree_and_leaf(i_vect[e])
		k := p.subtree_k(e)
		for i := 0; i < p.subtree_mu(e); i++ {
			bit := i < k && ((d>>i)&1) != 0
			if e == 0 || (i < k && !bit) {
				copy(q[idx], qp[idx])
			} else if bit {
				xor_vole(q[idx], qp[idx], s.c[e-1])
			}
			vole_hash(q_tilde[idx][:], ch1, q[idx])
			if bit {
				xor_into(q_tilde[idx][:], s.u_tilde[:])
			}
			idx++
		}
	}
	h_V := compute_h_V(q_tilde)
	ch2 := gen_second_challenge(ch1, s.u_tilde[:], h_V, &s.t)

	ch3 := make([]byte, p.ch3_bytes)
	p.gen_third_challenge(ch3, ch2, &s.a, s.ctr)

	var delta tower
	p.ivect_to_tower(&delta, i_vect)
	ok := verify_check_pkp(&s.a, q, &delta, &s.t, pk, ch2)

	// The decoded ch3 has zero proof-of-work bits, so this comparison
	// also enforces the gate.
	for i := range ch3 {
		if ch3[i] != s.ch3[i] {
			return false
		}
	}
	return ok
}
