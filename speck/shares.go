package speck

// Shares of the VOLE-committed values. A share of degree d is a
// polynomial u*X^d + v[d-1]*X^(d-1) + ... + v[0] over the tower field;
// the prover holds the coefficients, the verifier holds its evaluation
// at Delta.

// Degree-1 share with a binary leading coefficient (embedded witness
// bit).
type share_deg1 struct {
	u uint8
	v tower
}

// Share of degree up to 3 with a binary leading coefficient. Products of
// two degree-1 shares only use v[0] and v[1].
type share_z struct {
	u uint8
	v [pkp_d]tower
}

// Degree-3 share with a base field leading coefficient.
type share_q struct {
	u uint16
	v [pkp_d]tower
}

// Degree-2 elementary vector check value.
type check_ev struct {
	u uint8
	v [2]tower
}

// Merged polynomial; with an honest prover, u is zero.
type f_poly struct {
	u tower
	v [pkp_d]tower
}

// Beta shares of one permutation row: pkp_d blocks of three values
// (the fourth value of each block is implied).
type beta_row [pkp_d][3]share_deg1

func add_deg1(o, a, b *share_deg1) {
	o.u = a.u ^ b.u
	tower_add(&o.v, &a.v, &b.v)
}

// o = a*b, both of degree 1.
func mul_deg1(o *share_z, a, b *share_deg1) {
	var t1, t2 tower
	tower_mul(&o.v[0], &a.v, &b.v)
	bit_mul(&t1, a.u, &b.v)
	bit_mul(&t2, b.u, &a.v)
	tower_add(&o.v[1], &t1, &t2)
	o.u = a.u & b.u
}

// Same as mul_deg1, into an elementary vector check value.
func mul_deg1_ev(o *check_ev, a, b *share_deg1) {
	var z share_z
	mul_deg1(&z, a, b)
	o.u = z.u
	o.v[0] = z.v[0]
	o.v[1] = z.v[1]
}

// o = a*X + b, with a of degree 1 and b of degree 2.
func add_by_x(o *share_z, a *share_deg1, b *share_z) {
	o.v[0] = b.v[0]
	tower_add(&o.v[1], &a.v, &b.v[1])
	o.u = a.u ^ b.u
}

func add_deg2(o, a, b *share_z) {
	tower_add(&o.v[0], &a.v[0], &b.v[0])
	tower_add(&o.v[1], &a.v[1], &b.v[1])
	o.u = a.u ^ b.u
}

// o = a*b, with a of degree 2 and b of degree 1.
func mul_deg2_by_deg1(o *share_z, a *share_z, b *share_deg1) {
	var t1, t2 tower
	tower_mul(&o.v[0], &a.v[0], &b.v)
	tower_mul(&t1, &a.v[1], &b.v)
	bit_mul(&t2, b.u, &a.v[0])
	tower_add(&o.v[1], &t1, &t2)
	bit_mul(&t1, a.u, &b.v)
	bit_mul(&t2, b.u, &a.v[1])
	tower_add(&o.v[2], &t1, &t2)
	o.u = a.u & b.u
}

// o = bit * a.
func bit_mul(o *tower, bit uint8, a *tower) {
	m := -uint16(bit & 1)
	for i := 0; i < tower_ext; i++ {
		o[i] = a[i] & m
	}
}
