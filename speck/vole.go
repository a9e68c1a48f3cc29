package speck

// VOLE generation from the GGM tree leaves.
//
// For subtree e with 2^k leaves and leaf outputs R(x) = prg2(seed_x):
//
//	u    = XOR of all R(x)
//	v[j] = XOR of R(x) over the x with bit j set
//
// The verifier, who knows every leaf but Delta, computes q[j] as the
// XOR of R(y ^ Delta) over the y != 0 with bit j set, which yields
// q[j] = v[j] ^ Delta_j*u.

func new_vole_vectors(n int) [][]byte {
	buf := make([]byte, n*vole_data_bytes)
	r := make([][]byte, n)
	for i := range r {
		r[i] = buf[i*vole_data_bytes : (i+1)*vole_data_bytes]
	}
	return r
}

func xor_into(dst []byte, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

func xor_vole(dst, a, b []byte) {
	for i := 0; i < vole_data_bytes; i++ {
		dst[i] = a[i] ^ b[i]
	}
}

func clear_bytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Scratch space for the conversion of one subtree.
func (p *Params) new_vole_scratch() [][]byte {
	return new_vole_vectors(1 << (p.kappa1 - 1))
}

// Fold the PRG outputs of the leaves into (u, v). The leaves of subtree e
// are taken in the order leaf(i ^ delta); when permuted is set, the
// output of leaf delta (i = 0) is dropped. u and v[0..mu-1] are
// overwritten; v entries from k to mu-1 are zero. The number of VOLE
// vectors (mu) is returned.
func (p *Params) fold_leaves(e int, delta int, permuted bool,
	tree []byte, salt []byte, u []byte, v [][]byte, r [][]byte) int {

	k := p.subtree_k(e)
	mu := p.subtree_mu(e)
	nl := 1 << k
	for j := 0; j < mu; j++ {
		clear_bytes(v[j])
	}

	var a, b [vole_data_bytes]byte
	for i := 0; i < (nl >> 2); i++ {
		var in [4][]byte
		for m := 0; m < 4; m++ {
			in[m] = node(tree, p.leaf_index(e, (4*i+m)^delta))
		}
		out := [4][]byte{r[2*i], a[:], r[2*i+1], b[:]}
		p.expander.prg2_x4(salt, &in, &out)
		if permuted && i == 0 {
			clear_bytes(r[0])
		}
		for m := 0; m < vole_data_bytes; m++ {
			v[0][m] ^= a[m] ^ b[m]
			r[2*i][m] ^= a[m]
			r[2*i+1][m] ^= b[m]
		}
	}
	for j := 1; j < k; j++ {
		for i := 0; i < (nl >> (j + 1)); i++ {
			xor_into(v[j], r[2*i+1])
			xor_vole(r[i], r[2*i], r[2*i+1])
		}
	}
	if u != nil {
		copy(u, r[0])
	}
	clear_bytes(a[:])
	clear_bytes(b[:])
	return mu
}

// Prover side conversion of subtree e.
func (p *Params) convert_to_vole(e int, tree []byte, salt []byte,
	u []byte, v [][]byte, r [][]byte) int {

	return p.fold_leaves(e, 0, false, tree, salt, u, v, r)
}

// Verifier side conversion of subtree e, whose hidden leaf is delta.
func (p *Params) permute_and_convert_to_vole(e int, delta int, tree []byte,
	salt []byte, q [][]byte, r [][]byte) int {

	return p.fold_leaves(e, delta, true, tree, salt, nil, q, r)
}

// Reference form of permute_and_convert_to_vole, one leaf at a time.
func (p *Params) permute_and_convert_to_vole_ref(e int, delta int,
	tree []byte, salt []byte, q [][]byte) int {

	k := p.subtree_k(e)
	mu := p.subtree_mu(e)
	for j := 0; j < mu; j++ {
		clear_bytes(q[j])
	}
	var tmp [vole_data_bytes]byte
	for i := 1; i < (1 << k); i++ {
		p.expander.prg2(salt, node(tree, p.leaf_index(e, i^delta)), tmp[:])
		for j := 0; j < k; j++ {
			if ((i >> j) & 1) != 0 {
				xor_into(q[j], tmp[:])
			}
		}
	}
	return mu
}

// Final commitment over all leaf commitments (cmt, in leaf order).
func (p *Params) commit_h(h_com []byte, cmt []byte, salt []byte) {
	if p.mode == CommitX1 {
		h := hash_init(salt)
		for e := 0; e < p.tau; e++ {
			for j := 0; j < (1 << p.subtree_k(e)); j++ {
				c := p.leaf_index(e, j) - (p.leaves - 1)
				h.Write(cmt[c*cmt_bytes : (c+1)*cmt_bytes])
			}
		}
		hash_final(h, dom_COM2, h_com)
		return
	}

	qlen := (p.leaves >> 2) * cmt_bytes
	var d [4 * hash_bytes]byte
	var in, out [4][]byte
	for m := 0; m < 4; m++ {
		in[m] = cmt[m*qlen : (m+1)*qlen]
		out[m] = d[m*hash_bytes : (m+1)*hash_bytes]
	}
	r := newSHA3x4(salt)
	r.write(&in)
	r.final(dom_COM2_1, &out)
	h := hash_init(salt)
	h.Write(d[:])
	hash_final(h, dom_COM2_0, h_com)
}

// Prover VOLE commitment. Outputs h_com, the correction vectors c
// (tau-1 of them), the VOLE vectors u and v (rho of them).
func (p *Params) vole_commit(h_com []byte, c [][]byte, u []byte, v [][]byte,
	salt []byte, tree []byte, cmt []byte) {

	p.commit_h(h_com, cmt, salt)

	r := p.new_vole_scratch()
	ue := make([]byte, vole_data_bytes)
	idx := 0
	for e := 0; e < p.tau; e++ {
		if e == 0 {
			idx += p.convert_to_vole(e, tree, salt, u, v[idx:], r)
		} else {
			idx += p.convert_to_vole(e, tree, salt, ue, v[idx:], r)
			xor_vole(c[e-1], u, ue)
		}
	}
	for _, x := range r {
		clear_bytes(x)
	}
	clear_bytes(ue)
}

// Verifier VOLE reconstruction: rebuilds the tree from the opening,
// recomputes h_com using the provided commitments of the hidden leaves,
// and outputs the VOLE vectors q' (rho of them).
func (p *Params) vole_reconstruct(h_com []byte, q [][]byte, i_vect []int,
	pdecom []byte, com_e_i []byte, salt []byte) error {

	tree := p.new_tree()
	if err := p.expand_partial(tree, salt, pdecom, i_vect); err != nil {
		return err
	}
	cmt := make([]byte, p.leaves*cmt_bytes)
	p.leaf_commitments(cmt, tree, salt)
	for e := 0; e < p.tau; e++ {
		c := i_vect[e] - (p.leaves - 1)
		copy(cmt[c*cmt_bytes:(c+1)*cmt_bytes], com_e_i[e*cmt_bytes:(e+1)*cmt_bytes])
	}
	p.commit_h(h_com, cmt, salt)

	r := p.new_vole_scratch()
	idx := 0
	for e := 0; e < p.tau; e++ {
		e1, delta := p.subtree_and_leaf(i_vect[e])
		if e1 != e {
			return errHiddenSet
		}
		idx += p.permute_and_convert_to_vole(e, delta, tree, salt, q[idx:], r)
	}
	return nil
}
