package speck

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/benjivesterby/go-speck/internal/log"
	sha3 "golang.org/x/crypto/sha3"
	"golang.org/x/xerrors"
)

var logger = log.Logger("speck")

// Length of the per-signature randomness mixed into the root seed and
// the salt.
const sign_rand_bytes = 2 * seed_bytes

// Upper bound on the third-challenge counter; reaching it makes signing
// fail with ErrRetriesExhausted.
var open_retry_limit = max_open_retries

// Sign a message using a given signing key.
//
//	- p is the parameter set
//	- rng is the random source to use (nil to use the OS RNG)
//	- skey is the signing key (private)
//	- msg is the message to sign
//
// Using the OS RNG (i.e. setting rng to nil) is recommended. The
// signature is only valid for the parameter set it was produced with;
// the verifier must use the same set.
func Sign(p *Params, rng io.Reader, skey []byte, msg []byte) ([]byte, error) {
	if p == nil {
		return nil, ErrUnknownParams
	}
	return sign_inner(p, rng, skey, msg)
}

// Inner signature function.
func sign_inner(p *Params, rng io.Reader, skey []byte, msg []byte) ([]byte, error) {
	var rnd [sign_rand_bytes]byte
	if rng == nil {
		rng = rand.Reader
	}
	_, err := io.ReadFull(rng, rnd[:])
	if err != nil {
		return nil, err
	}
	return sign_inner_seeded(p, rnd[:], skey, msg)
}

// Inner signature function with an explicit random input; this is used
// for reproducible test vectors.
func sign_inner_seeded(p *Params, rnd []byte, skey []byte, msg []byte) ([]byte, error) {
	var sk private_key
	var pk public_key
	defer sk.clear()
	vkey, err := decode_private_key(&sk, &pk, skey)
	if err != nil {
		return nil, err
	}

	mu := compute_mu(vkey, msg)
	sig := p.new_signature()
	if err := p.sign_core(sig, &sk, &pk, mu, rnd); err != nil {
		return nil, err
	}
	return p.encode_signature(sig), nil
}

// Message representative: hash of the verifying key and the message.
func compute_mu(vkey []byte, msg []byte) []byte {
	h := hash_init(nil)
	h.Write(vkey)
	h.Write(msg)
	mu := make([]byte, digest_bytes)
	hash_final(h, dom_H1, mu)
	return mu
}

// Secret working state of one signature. clear() wipes every part of
// it, including the PRG state keyed with the permutation seed.
type sign_state struct {
	tree []byte
	u    []byte
	v    [][]byte
	st   *pkp_prover
	sh   sha3.ShakeHash
}

func (p *Params) new_sign_state(perm_seed []byte) *sign_state {
	return &sign_state{
		tree: p.new_tree(),
		u:    make([]byte, vole_data_bytes),
		v:    new_vole_vectors(rho),
		st:   new(pkp_prover),
		sh:   prg_init(nil, perm_seed),
	}
}

func (ss *sign_state) clear() {
	clear_bytes(ss.tree)
	clear_bytes(ss.u)
	for _, x := range ss.v {
		clear_bytes(x)
	}
	ss.st.clear()
	ss.sh.Reset()
}

// Core of the signing process. The secret state is cleared before
// returning, whatever the outcome.
func (p *Params) sign_core(sig *signature, sk *private_key, pk *public_key,
	mu []byte, rnd []byte) error {

	ss := p.new_sign_state(sk.perm_seed[:])
	defer ss.clear()
	tree, u, v, st, sh := ss.tree, ss.u, ss.v, ss.st, ss.sh

	// Root seed and salt.
	sh.Write(mu)
	sh.Write(rnd)
	prg_final(sh, dom_H3)
	sh.Read(node(tree, 0))
	sh.Read(sig.salt[:])
	salt := sig.salt[:]

	// VOLE construction and commitments.
	p.expand_tree(tree, salt)
	cmt := make([]byte, p.leaves*cmt_bytes)
	p.leaf_commitments(cmt, tree, salt)
	var h_com [cmt_bytes]byte
	p.vole_commit(h_com[:], sig.c, u, v, salt, tree, cmt)

	ch1 := gen_first_challenge(mu, h_com[:], sig.c, salt)

	// VOLE consistency check.
	vole_hash(sig.u_tilde[:], ch1, u)
	v_tilde := make([][vole_hash_bytes]byte, rho)
	for i := 0; i < rho; i++ {
		vole_hash(v_tilde[i][:], ch1, v[i])
	}
	h_V := compute_h_V(v_tilde)

	// Witness commitment and PKP proof.
	st.vole_permutation(&sk.perm, u, v)
	sig.t = st.t
	ch2 := gen_second_challenge(ch1, sig.u_tilde[:], h_V, &sig.t)
	st.check_pkp(&sig.a, pk, u, v, ch2)

	i_vect, err := p.open_vector_commitments(sig, tree, ch2)
	if err != nil {
		return err
	}
	for e := 0; e < p.tau; e++ {
		c := i_vect[e] - (p.leaves - 1)
		copy(sig.com_e_i[e*cmt_bytes:(e+1)*cmt_bytes], cmt[c*cmt_bytes:(c+1)*cmt_bytes])
	}
	return nil
}

// First challenge (ch1_bytes), which also keys the VOLE hash.
func gen_first_challenge(mu []byte, h_com []byte, c [][]byte, salt []byte) []byte {
	sh := prg_init(salt, nil)
	sh.Write(mu)
	sh.Write(h_com)
	for _, x := range c {
		sh.Write(x)
	}
	prg_final(sh, dom_H2_1)
	ch1 := make([]byte, ch1_bytes)
	sh.Read(ch1)
	return ch1
}

func gen_second_challenge(ch1 []byte, u_tilde []byte, h_V []byte, t *[pkp_n]uint16) []byte {
	h := hash_init(nil)
	h.Write(ch1)
	h.Write(u_tilde)
	h.Write(h_V)
	var tb [2 * pkp_n]byte
	for i := 0; i < pkp_n; i++ {
		binary.LittleEndian.PutUint16(tb[2*i:], t[i])
	}
	h.Write(tb[:])
	ch2 := make([]byte, ch2_bytes)
	hash_final(h, dom_H2_2, ch2)
	return ch2
}

// Hash of the VOLE hashes of all v (or Q) vectors.
func compute_h_V(tilde [][vole_hash_bytes]byte) []byte {
	h := hash_init(nil)
	for i := range tilde {
		h.Write(tilde[i][:])
	}
	h_V := make([]byte, hash_bytes)
	hash_final(h, dom_H1, h_V)
	return h_V
}

// Serialized f-polynomial, as absorbed by the third challenge: u then
// v[0..D-1], each coefficient over two bytes (little-endian).
func encode_f_poly(a *f_poly) []byte {
	buf := make([]byte, fpoly_bytes)
	j := 0
	put := func(x *tower) {
		for i := 0; i < tower_ext; i++ {
			binary.LittleEndian.PutUint16(buf[j:], x[i])
			j += 2
		}
	}
	put(&a.u)
	for k := 0; k < pkp_d; k++ {
		put(&a.v[k])
	}
	return buf
}

// Clear the bits of ch3 beyond ch3_bits.
func (p *Params) mask_ch3(ch3 []byte) {
	if r := p.ch3_bits & 7; r != 0 {
		ch3[p.ch3_bytes-1] &= uint8((1 << r) - 1)
	}
}

// Third challenge for counter value ctr.
func (p *Params) gen_third_challenge(ch3 []byte, ch2 []byte, a *f_poly, ctr uint64) {
	sh := prg_init(ch2, nil)
	sh.Write(encode_f_poly(a))
	var cb [8]byte
	binary.LittleEndian.PutUint64(cb[:], ctr)
	sh.Write(cb[:])
	prg_final(sh, dom_H2_3)
	sh.Read(ch3[:p.ch3_bytes])
	p.mask_ch3(ch3)
}

// Proof-of-work bits of ch3: the chall_w bits that follow the bits
// decoded into the hidden leaf set.
func (p *Params) pow_bits(ch3 []byte) uint16 {
	w := uint16(0)
	for i := 0; i < chall_w; i++ {
		w |= get_bit(ch3, p.chall_bits+i) << i
	}
	return w
}

// Decode the hidden leaf set from ch3: kappa1 bits for each of the
// first tau1 subtrees, then kappa2 bits for each of the others.
func (p *Params) challenge_decode(i_vect []int, ch3 []byte) {
	r := bit_reader{src: ch3}
	for e := 0; e < p.tau; e++ {
		i_vect[e] = p.leaf_index(e, int(r.read(p.subtree_k(e))))
	}
}

// Search for a counter whose third challenge passes the proof-of-work
// gate and yields a tree opening that fits in t_open seeds. Four
// counter values are tried per batch. On success, sig.ctr, sig.ch3 and
// sig.pdecom are set and the hidden leaf set is returned.
func (p *Params) open_vector_commitments(sig *signature, tree []byte, ch2 []byte) ([]int, error) {
	a := encode_f_poly(&sig.a)
	base := newSHAKE128x4(ch2, nil)
	base.write(&[4][]byte{a, a, a, a})

	ctra := [4]uint64{0, 1, 2, 3}
	var ch3a, cb [4][]byte
	for i := 0; i < 4; i++ {
		ch3a[i] = make([]byte, p.ch3_bytes)
		cb[i] = make([]byte, 8)
	}
	i_vect := make([]int, p.tau)
	rejected := 0
	for {
		for i := 0; i < 4; i++ {
			binary.LittleEndian.PutUint64(cb[i], ctra[i])
		}
		st := base.clone()
		st.write(&cb)
		st.final(dom_H2_3)
		st.read(&ch3a)

		for i := 0; i < 4; i++ {
			if p.pow_bits(ch3a[i]) == 0 {
				p.challenge_decode(i_vect, ch3a[i])
				if err := p.open_tree(sig.pdecom, tree, i_vect); err == nil {
					sig.ctr = ctra[i]
					copy(sig.ch3, ch3a[i])
					p.mask_ch3(sig.ch3)
					logger.Debugw("tree opening found", "params", p.name,
						"ctr", sig.ctr, "rejected", rejected)
					return i_vect, nil
				}
				rejected++
			}
			if ctra[i] >= open_retry_limit {
				sig.ctr = ctra[i]
				return nil, xerrors.Errorf("counter %d: %w", ctra[i], ErrRetriesExhausted)
			}
			ctra[i] += 4
		}
	}
}
