package speck

// Prover side of the PKP proof: the secret permutation is embedded row
// by row as elementary vectors, committed through the VOLE vectors u
// and v, and all the constraints are merged into a single polynomial
// whose leading coefficient vanishes for a valid witness.

// Witness encoding of one permuted position: pos = 16*e2 + 4*e1 + e0,
// and each digit is encoded as a one-hot 4-bit value.
func encode_num(pos uint8) (w_prime [pkp_d]uint8) {
	e2 := pos >> 4
	e1 := (pos >> 2) & 3
	e0 := pos & 3
	w_prime[0] = 1 << e0
	w_prime[1] = 1 << e1
	w_prime[2] = 1 << e2
	return
}

// Compute the masked witness t for row `row` (whose permuted position is
// pos). Only the low three bits of each one-hot value are transmitted;
// the fourth bit is implied.
func compute_masked_secret(pos uint8, row int, u []byte) (t uint16, w_prime [pkp_d]uint8) {
	w_prime = encode_num(pos)
	w := uint16(w_prime[0]&7) |
		uint16(w_prime[1]&7)<<3 |
		uint16(w_prime[2]&7)<<6
	t = w ^ extract_bits(u[l_vhm>>3:], row*l_row)
	return
}

// Embed the witness bits of one row as degree-1 shares.
func embed_witness(beta *beta_row, w_prime [pkp_d]uint8, uk_index int, v [][]byte) {
	for i := 0; i < pkp_d; i++ {
		for j := 0; j < 3; j++ {
			beta[i][j].u = (w_prime[i] >> j) & 1
			v_to_tower(&beta[i][j].v, uk_index+l_vhm, v)
			uk_index++
		}
	}
}

// Products of the first two blocks of a row: s[4*i+a] is
// beta[1][i]*beta[0][a], where index 3 stands for the implied value
// X + beta[.][0] + beta[.][1] + beta[.][2].
func ev_expand_deg2(s *[16]share_z, beta *beta_row) {
	for i := 0; i < 3; i++ {
		j := 4 * i
		mul_deg1(&s[j+0], &beta[1][i], &beta[0][0])
		mul_deg1(&s[j+1], &beta[1][i], &beta[0][1])
		mul_deg1(&s[j+2], &beta[1][i], &beta[0][2])
		add_by_x(&s[j+3], &beta[1][i], &s[j+0])
		add_deg2(&s[j+3], &s[j+3], &s[j+1])
		add_deg2(&s[j+3], &s[j+3], &s[j+2])
	}
	for i := 0; i < 3; i++ {
		add_by_x(&s[12+i], &beta[0][i], &s[i])
		add_deg2(&s[12+i], &s[12+i], &s[i+4])
		add_deg2(&s[12+i], &s[12+i], &s[i+8])
	}
	add_deg2(&s[15], &s[12], &s[13])
	add_deg2(&s[15], &s[15], &s[14])
	add_by_x(&s[15], &beta[1][0], &s[15])
	add_by_x(&s[15], &beta[1][1], &s[15])
	add_by_x(&s[15], &beta[1][2], &s[15])
	s[15].u ^= 1
}

// Expand one row into the 64 shares of an elementary vector (the
// one-hot encoding of the permuted position).
func tensor_product_to_ev(row *[pkp_n]share_z, beta *beta_row) {
	var s [16]share_z
	ev_expand_deg2(&s, beta)
	for i := 0; i < 16; i++ {
		z0 := &row[i]
		z1 := &row[i+16]
		z2 := &row[i+32]
		z3 := &row[i+48]
		mul_deg2_by_deg1(z0, &s[i], &beta[2][0])
		mul_deg2_by_deg1(z1, &s[i], &beta[2][1])
		mul_deg2_by_deg1(z2, &s[i], &beta[2][2])

		// The fourth factor is X + beta[2][0] + beta[2][1] + beta[2][2].
		z3.u = z0.u ^ z1.u ^ z2.u ^ s[i].u
		for k := 0; k < pkp_d; k++ {
			tower_add(&z3.v[k], &z0.v[k], &z1.v[k])
			tower_add(&z3.v[k], &z3.v[k], &z2.v[k])
		}
		tower_add(&z3.v[1], &z3.v[1], &s[i].v[0])
		tower_add(&z3.v[2], &z3.v[2], &s[i].v[1])
	}
}

// Each block of a row must be a one-hot vector: the products of its
// values taken by pairs vanish.
func check_elementary_vector(ev []check_ev, beta *beta_row) {
	x := share_deg1{u: 1}
	for i := 0; i < pkp_d; i++ {
		var b3 share_deg1
		add_deg1(&b3, &x, &beta[i][0])
		add_deg1(&b3, &b3, &beta[i][1])
		add_deg1(&b3, &b3, &beta[i][2])
		mul_deg1_ev(&ev[2*i+0], &beta[i][0], &beta[i][1])
		mul_deg1_ev(&ev[2*i+1], &beta[i][2], &b3)
	}
}

// Prover state of the permutation proof.
type pkp_prover struct {
	t    [pkp_n]uint16
	beta [pkp_n]beta_row
	z    [pkp_n][pkp_n]share_z
	col  [pkp_n]share_z
}

func (st *pkp_prover) clear() {
	*st = pkp_prover{}
}

// Commit to the permutation: fills t (masked witness), beta, the
// elementary vectors z and their sums.
func (st *pkp_prover) vole_permutation(perm *[pkp_n]uint8, u []byte, v [][]byte) {
	for i := 0; i < pkp_n; i++ {
		var w_prime [pkp_d]uint8
		st.t[i], w_prime = compute_masked_secret(perm[i], i, u)
		embed_witness(&st.beta[i], w_prime, i*l_row, v)
		tensor_product_to_ev(&st.z[i], &st.beta[i])
	}
	for j := 0; j < pkp_n; j++ {
		c := &st.col[j]
		*c = share_z{}
		for i := 0; i < pkp_n; i++ {
			c.u ^= st.z[j][i].u
			for k := 0; k < pkp_d; k++ {
				tower_add(&c.v[k], &c.v[k], &st.z[j][i].v[k])
			}
		}
		c.u ^= 1
	}
}

// x' = z * x: the public vector permuted back by the committed
// permutation.
func (st *pkp_prover) compute_x_prime(xp *[pkp_n]share_q, pk *public_key) {
	for i := 0; i < pkp_n; i++ {
		xp[i] = share_q{}
		for j := 0; j < pkp_n; j++ {
			z := &st.z[j][i]
			xj := pk.x[j]
			if z.u != 0 {
				xp[i].u ^= xj
			}
			for k := 0; k < pkp_d; k++ {
				var t tower
				tower_scal_mul(&t, &z.v[k], xj)
				tower_add(&xp[i].v[k], &xp[i].v[k], &t)
			}
		}
	}
}

// y = H * x'; zero for a valid witness.
func compute_y(y *[pkp_m]share_q, xp *[pkp_n]share_q, pk *public_key) {
	for i := 0; i < pkp_m; i++ {
		y[i] = share_q{}
		for j := 0; j < pkp_n; j++ {
			h := pk.H[i][j]
			y[i].u ^= gf_mul(xp[j].u, h)
			for k := 0; k < pkp_d; k++ {
				var t tower
				tower_scal_mul(&t, &xp[j].v[k], h)
				tower_add(&y[i].v[k], &y[i].v[k], &t)
			}
		}
	}
}

// Random multipliers for the merge of all constraints, derived from the
// second challenge.
func generate_alpha(ch2 []byte) []tower {
	sh := prg_init(ch2, nil)
	prg_final(sh, dom_H4)
	rd := newBits11Reader(sh, alpha_count*tower_ext)
	alpha := make([]tower, alpha_count)
	for i := range alpha {
		for j := 0; j < tower_ext; j++ {
			alpha[i][j] = rd.next()
		}
	}
	return alpha
}

// Merge the column checks, the elementary vector checks (shifted by one
// degree) and y into f_w.
func merge_polys(f_w *f_poly, col *[pkp_n]share_z, ev []check_ev,
	y *[pkp_m]share_q, alpha []tower) {

	var t, tu tower
	for i := 0; i < pkp_n; i++ {
		a := &alpha[i]
		bit_mul(&tu, col[i].u, a)
		tower_add(&f_w.u, &f_w.u, &tu)
		for k := 0; k < pkp_d; k++ {
			tower_mul(&t, &col[i].v[k], a)
			tower_add(&f_w.v[k], &f_w.v[k], &t)
		}
	}
	for i := 0; i < pkp_n*chall_c; i++ {
		a := &alpha[pkp_n+i]
		bit_mul(&tu, ev[i].u, a)
		tower_add(&f_w.u, &f_w.u, &tu)
		tower_mul(&t, &ev[i].v[1], a)
		tower_add(&f_w.v[pkp_d-1], &f_w.v[pkp_d-1], &t)
		tower_mul(&t, &ev[i].v[0], a)
		tower_add(&f_w.v[pkp_d-2], &f_w.v[pkp_d-2], &t)
	}
	for i := 0; i < pkp_m; i++ {
		a := &alpha[pkp_n+pkp_n*chall_c+i]
		tower_scal_mul(&tu, a, y[i].u)
		tower_add(&f_w.u, &f_w.u, &tu)
		for k := 0; k < pkp_d; k++ {
			tower_mul(&t, &y[i].v[k], a)
			tower_add(&f_w.v[k], &f_w.v[k], &t)
		}
	}
}

// Mask f_w with the extra VOLE correlations, yielding the transmitted
// polynomial a.
func check_zero(a *f_poly, f_w *f_poly, u []byte, v [][]byte) {
	var fs [pkp_d - 1][2]tower
	idx := l_prime
	for i := 0; i < pkp_d-1; i++ {
		u_to_tower(&fs[i][1], idx, u)
		check_zero_v_to_tower(&fs[i][0], idx, v)
		idx += rho
	}
	var mask f_poly
	mask.v[0] = fs[0][0]
	tower_add(&mask.v[1], &fs[1][0], &fs[0][1])
	mask.v[pkp_d-1] = fs[pkp_d-2][1]

	tower_add(&a.u, &f_w.u, &mask.u)
	for k := 0; k < pkp_d; k++ {
		tower_add(&a.v[k], &f_w.v[k], &mask.v[k])
	}
}

// Complete PKP proof: returns the masked polynomial a.
func (st *pkp_prover) check_pkp(a *f_poly, pk *public_key, u []byte, v [][]byte, ch2 []byte) {
	ev := make([]check_ev, pkp_n*chall_c)
	for i := 0; i < pkp_n; i++ {
		check_elementary_vector(ev[i*chall_c:], &st.beta[i])
	}
	var xp [pkp_n]share_q
	var y [pkp_m]share_q
	st.compute_x_prime(&xp, pk)
	compute_y(&y, &xp, pk)
	alpha := generate_alpha(ch2)
	var f_w f_poly
	merge_polys(&f_w, &st.col, ev, &y, alpha)
	check_zero(a, &f_w, u, v)

	for i := range ev {
		ev[i] = check_ev{}
	}
	xp = [pkp_n]share_q{}
	y = [pkp_m]share_q{}
	f_w = f_poly{}
}
