package speck

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// GGM seed tree. The tree is a complete binary tree with 2*L-1 nodes
// stored in a flat byte slice (seed_bytes per node); the children of
// node i are 2*i+1 and 2*i+2, and the leaves are nodes L-1 to 2*L-2.
// Leaves are interleaved among the tau subtrees: leaf j of subtree e is
// found at leaf_index(e, j).

func (p *Params) tree_nodes() int {
	return 2*p.leaves - 1
}

func (p *Params) new_tree() []byte {
	return make([]byte, p.tree_nodes()*seed_bytes)
}

func node(tree []byte, i int) []byte {
	return tree[i*seed_bytes : (i+1)*seed_bytes]
}

func tree_sibling(i int) int {
	if (i & 1) != 0 {
		return i + 1
	}
	return i - 1
}

func tree_parent(i int) int {
	return (i - 1) >> 1
}

// Tree index of leaf j of subtree e.
func (p *Params) leaf_index(e int, j int) int {
	var r int
	if j < (1 << p.kappa2) {
		r = j*p.tau + e
	} else {
		r = (p.tau << p.kappa2) + (j-(1<<p.kappa2))*p.tau1 + e
	}
	return r + p.leaves - 1
}

// Inverse of leaf_index: returns the subtree and the leaf position in
// that subtree.
func (p *Params) subtree_and_leaf(idx int) (e int, j int) {
	idx -= p.leaves - 1
	if idx < (p.tau << p.kappa2) {
		return idx % p.tau, idx / p.tau
	}
	idx -= p.tau << p.kappa2
	return idx % p.tau1, idx/p.tau1 + (1 << p.kappa2)
}

// Expand the tree from its root seed (node 0).
func (p *Params) expand_tree(tree []byte, salt []byte) {
	n := p.leaves - 1
	i := 0
	// Children of node i >= 3 all lie beyond i+3, so four consecutive
	// nodes can be expanded together from there on.
	for ; i < 3 && i < n; i++ {
		p.expander.expand(salt, uint32(i), node(tree, i), tree[(2*i+1)*seed_bytes:(2*i+3)*seed_bytes])
	}
	for ; i+4 <= n; i += 4 {
		var idx [4]uint32
		var in, out [4][]byte
		for k := 0; k < 4; k++ {
			c := i + k
			idx[k] = uint32(c)
			in[k] = node(tree, c)
			out[k] = tree[(2*c+1)*seed_bytes : (2*c+3)*seed_bytes]
		}
		p.expander.expand_x4(salt, &idx, &in, &out)
	}
	for ; i < n; i++ {
		p.expander.expand(salt, uint32(i), node(tree, i), tree[(2*i+1)*seed_bytes:(2*i+3)*seed_bytes])
	}
}

// Compute the commitments of all leaves; cmt receives L commitments
// (cmt_bytes each), in leaf order.
func (p *Params) leaf_commitments(cmt []byte, tree []byte, salt []byte) {
	off := p.leaves - 1
	j := 0
	for ; j+4 <= p.leaves; j += 4 {
		var tau [4]uint8
		var n [4]uint16
		var in, out [4][]byte
		for k := 0; k < 4; k++ {
			e, l := p.subtree_and_leaf(j + k + off)
			tau[k] = uint8(e)
			n[k] = uint16(l)
			in[k] = node(tree, j+k+off)
			out[k] = cmt[(j+k)*cmt_bytes : (j+k+1)*cmt_bytes]
		}
		p.committer.commit_x4(salt, &tau, &n, &in, &out)
	}
	for ; j < p.leaves; j++ {
		e, l := p.subtree_and_leaf(j + off)
		p.committer.commit(salt, uint8(e), uint16(l), node(tree, j+off),
			cmt[j*cmt_bytes:(j+1)*cmt_bytes])
	}
}

// Compute the sorted list of nodes to reveal so that every leaf except
// the hidden ones (i_vect) can be recomputed. The list is the union of
// the co-paths of the hidden leaves, minus the nodes lying on another
// hidden path. False is returned if the list would exceed its bound.
func (p *Params) compute_s_indexes(i_vect []int) ([]int, bool) {
	s := make([]int, 0, p.max_open)
	for _, h := range i_vect {
		nd := h
		for nd > 0 {
			k := sort.SearchInts(s, nd)
			if k < len(s) && s[k] == nd {
				s = append(s[:k], s[k+1:]...)
				break
			}
			sib := tree_sibling(nd)
			k = sort.SearchInts(s, sib)
			if len(s) == p.max_open {
				return nil, false
			}
			s = append(s, 0)
			copy(s[k+1:], s[k:])
			s[k] = sib
			nd = tree_parent(nd)
		}
	}
	return s, true
}

// Produce the opening of the tree that hides the leaves in i_vect. The
// revealed seeds are written in pdecom (t_open slots), in increasing
// node order; unused slots are zero.
func (p *Params) open_tree(pdecom []byte, tree []byte, i_vect []int) error {
	s, ok := p.compute_s_indexes(i_vect)
	if !ok {
		return errHiddenSet
	}
	if len(s) > p.t_open {
		return errOpeningTooLarge
	}
	for k, nd := range s {
		copy(pdecom[k*seed_bytes:(k+1)*seed_bytes], node(tree, nd))
	}
	for k := len(s) * seed_bytes; k < p.t_open*seed_bytes; k++ {
		pdecom[k] = 0
	}
	return nil
}

// Rebuild the tree from an opening. Nodes on the path of a hidden leaf
// (the hidden leaves included) are set to zero.
func (p *Params) expand_partial(tree []byte, salt []byte, pdecom []byte, i_vect []int) error {
	s, ok := p.compute_s_indexes(i_vect)
	if !ok {
		return errHiddenSet
	}
	if len(s) > p.t_open {
		return errOpeningTooLarge
	}
	for k := len(s) * seed_bytes; k < p.t_open*seed_bytes; k++ {
		if pdecom[k] != 0 {
			return errOpeningInvalid
		}
	}

	for k := range tree {
		tree[k] = 0
	}
	valid := bitset.New(uint(p.tree_nodes()))
	k := 0
	for i := 0; i < p.leaves-1; i++ {
		c0 := 2*i + 1
		if k < len(s) && i == tree_parent(s[k]) {
			copy(node(tree, s[k]), pdecom[k*seed_bytes:(k+1)*seed_bytes])
			valid.Set(uint(s[k]))
			k++
		} else if valid.Test(uint(i)) {
			p.expander.expand(salt, uint32(i), node(tree, i), tree[c0*seed_bytes:(c0+2)*seed_bytes])
			valid.Set(uint(c0))
			valid.Set(uint(c0 + 1))
		}
	}
	return nil
}
