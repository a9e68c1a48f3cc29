package speck

// Verifier side of the PKP proof. Every share is replaced by its
// evaluation at Delta (a tower field element), so all the checks of the
// prover become plain tower field computations.

// Rebuild the four-bit one-hot values of each block from the masked
// witness t.
func expand_witness(t uint16) (tp [4 * pkp_d]uint8) {
	for i := 0; i < pkp_d; i++ {
		b3 := uint8(1)
		for j := 0; j < 3; j++ {
			b := uint8(t>>(3*i+j)) & 1
			tp[4*i+j] = b
			b3 ^= b
		}
		tp[4*i+3] = b3
	}
	return
}

func embed_masked_witness(qb *[4 * pkp_d]tower, delta *tower,
	tp *[4 * pkp_d]uint8, q *[l_row]tower) {

	for i := 0; i < pkp_d; i++ {
		for j := 0; j < 3; j++ {
			qb[4*i+j] = q[3*i+j]
			if tp[4*i+j] != 0 {
				tower_add(&qb[4*i+j], &qb[4*i+j], delta)
			}
		}
		tower_add(&qb[4*i+3], &q[3*i+0], &q[3*i+1])
		tower_add(&qb[4*i+3], &qb[4*i+3], &q[3*i+2])
		if tp[4*i+3] != 0 {
			tower_add(&qb[4*i+3], &qb[4*i+3], delta)
		}
	}
}

func v_tensor_product_to_ev(row *[pkp_n]tower, qb *[4 * pkp_d]tower) {
	var zeta [16]tower
	for i := 0; i < 4; i++ {
		for a := 0; a < 4; a++ {
			tower_mul(&zeta[4*i+a], &qb[4+i], &qb[a])
		}
	}
	for i := 0; i < 16; i++ {
		for b := 0; b < 4; b++ {
			tower_mul(&row[i+16*b], &zeta[i], &qb[8+b])
		}
	}
}

func v_check_elementary_vector(ev []tower, delta *tower, qb *[4 * pkp_d]tower) {
	for i := 0; i < pkp_d; i++ {
		tower_mul(&ev[2*i+0], &qb[4*i+0], &qb[4*i+1])
		tower_mul(&ev[2*i+1], &qb[4*i+2], &qb[4*i+3])
		tower_mul(&ev[2*i+0], &ev[2*i+0], delta)
		tower_mul(&ev[2*i+1], &ev[2*i+1], delta)
	}
}

// Verifier state of the permutation proof.
type pkp_verifier struct {
	qb  [pkp_n][4 * pkp_d]tower
	z   [pkp_n][pkp_n]tower
	col [pkp_n]tower
}

func (st *pkp_verifier) verify_vole_permutation(delta *tower, t *[pkp_n]uint16, q [][]byte) {
	for i := 0; i < pkp_n; i++ {
		var row [l_row]tower
		for j := 0; j < l_row; j++ {
			v_to_tower(&row[j], i*l_row+j+l_vhm, q)
		}
		tp := expand_witness(t[i])
		embed_masked_witness(&st.qb[i], delta, &tp, &row)
		v_tensor_product_to_ev(&st.z[i], &st.qb[i])
	}

	var d3 tower
	tower_expo(&d3, delta, pkp_d)
	for j := 0; j < pkp_n; j++ {
		c := st.z[j][0]
		for i := 1; i < pkp_n; i++ {
			tower_add(&c, &c, &st.z[j][i])
		}
		tower_add(&st.col[j], &c, &d3)
	}
}

func (st *pkp_verifier) compute_x_prime(xp *[pkp_n]tower, pk *public_key) {
	for i := 0; i < pkp_n; i++ {
		xp[i] = tower{}
		for j := 0; j < pkp_n; j++ {
			var t tower
			tower_scal_mul(&t, &st.z[j][i], pk.x[j])
			tower_add(&xp[i], &xp[i], &t)
		}
	}
}

func v_compute_y(y *[pkp_m]tower, xp *[pkp_n]tower, pk *public_key) {
	for i := 0; i < pkp_m; i++ {
		y[i] = tower{}
		for j := 0; j < pkp_n; j++ {
			var t tower
			tower_scal_mul(&t, &xp[j], pk.H[i][j])
			tower_add(&y[i], &y[i], &t)
		}
	}
}

func v_merge_polys(q_f *tower, col *[pkp_n]tower, ev []tower,
	y *[pkp_m]tower, alpha []tower) {

	var t tower
	for i := 0; i < pkp_n; i++ {
		tower_mul(&t, &alpha[i], &col[i])
		tower_add(q_f, q_f, &t)
	}
	for i := 0; i < pkp_n*chall_c; i++ {
		tower_mul(&t, &alpha[pkp_n+i], &ev[i])
		tower_add(q_f, q_f, &t)
	}
	for i := 0; i < pkp_m; i++ {
		tower_mul(&t, &alpha[pkp_n+pkp_n*chall_c+i], &y[i])
		tower_add(q_f, q_f, &t)
	}
}

// Final check: a must have a zero leading coefficient, and its
// evaluation at Delta must match the merged evaluation corrected by
// the masking correlations.
func verify_check_zero(delta *tower, q_f *tower, a *f_poly, q [][]byte) bool {
	if !a.u.is_zero() {
		return false
	}

	var qu [pkp_d - 1]tower
	idx := l_prime
	for i := 0; i < pkp_d-1; i++ {
		check_zero_v_to_tower(&qu[i], idx, q)
		idx += rho
	}

	var q_tilde, dpow, t tower
	for i := 0; i < pkp_d; i++ {
		tower_expo(&dpow, delta, i)
		tower_mul(&t, &a.v[i], &dpow)
		tower_add(&q_tilde, &q_tilde, &t)
	}

	val := *q_f
	for i := 0; i < pkp_d-1; i++ {
		tower_expo(&dpow, delta, i)
		tower_mul(&t, &qu[i], &dpow)
		tower_add(&val, &val, &t)
	}
	return val.equal(&q_tilde)
}

// Complete PKP verification.
func verify_check_pkp(a *f_poly, q [][]byte, delta *tower, t *[pkp_n]uint16,
	pk *public_key, ch2 []byte) bool {

	st := new(pkp_verifier)
	st.verify_vole_permutation(delta, t, q)
	ev := make([]tower, pkp_n*chall_c)
	for i := 0; i < pkp_n; i++ {
		v_check_elementary_vector(ev[i*chall_c:], delta, &st.qb[i])
	}
	var xp [pkp_n]tower
	var y [pkp_m]tower
	st.compute_x_prime(&xp, pk)
	v_compute_y(&y, &xp, pk)
	alpha := generate_alpha(ch2)
	var q_f tower
	v_merge_polys(&q_f, &st.col, ev, &y, alpha)
	return verify_check_zero(delta, &q_f, a, q)
}
