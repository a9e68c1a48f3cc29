package speck

// Arithmetic in GF(2^11) (modulus x^11 + x^2 + 1) and in the degree-12
// tower extension GF(2^11)[Y]/(Y^12 + Y^3 + 1).
//
// Base field elements are held in uint16 values (11 significant bits).
// Unreduced carryless products fit in 21 bits and are kept in uint32.

// Carryless product of two 11-bit values.
func gf_clmul(a, b uint16) uint32 {
	x := uint32(a)
	r := uint32(0)
	for i := 0; i < q_bits; i++ {
		m := -((uint32(b) >> i) & 1)
		r ^= (x << i) & m
	}
	return r
}

// Reduce an unreduced product (up to 22 bits) modulo x^11 + x^2 + 1.
func gf_reduce(x uint32) uint16 {
	for i := 0; i < 2; i++ {
		mod := x >> q_bits
		x &= q_mask
		x ^= mod ^ (mod << 2)
	}
	return uint16(x)
}

func gf_mul(a, b uint16) uint16 {
	return gf_reduce(gf_clmul(a, b))
}

// Inverse in GF(2^11), computed as a^(2^11-2). The inverse of zero is
// zero.
func gf_inv(a uint16) uint16 {
	// 2^11 - 2 = 0b11111111110
	r := uint16(1)
	x := a
	for i := 1; i < q_bits; i++ {
		x = gf_mul(x, x)
		r = gf_mul(r, x)
	}
	return r
}

// Element of the tower field: coefficient i is the factor of Y^i.
type tower [tower_ext]uint16

// Unreduced tower product (coefficients are unreduced GF(2^11) values).
type tower_ur [2*tower_ext - 1]uint32

func tower_add(o, a, b *tower) {
	for i := 0; i < tower_ext; i++ {
		o[i] = a[i] ^ b[i]
	}
}

func (a *tower) is_zero() bool {
	r := uint16(0)
	for i := 0; i < tower_ext; i++ {
		r |= a[i]
	}
	return r == 0
}

func (a *tower) equal(b *tower) bool {
	r := uint16(0)
	for i := 0; i < tower_ext; i++ {
		r |= a[i] ^ b[i]
	}
	return r == 0
}

func tower_one() tower {
	var r tower
	r[0] = 1
	return r
}

// Multiply every coefficient of a by the base field element c.
func tower_scal_mul(o, a *tower, c uint16) {
	for i := 0; i < tower_ext; i++ {
		o[i] = gf_mul(a[i], c)
	}
}

// Multiply two polynomials of identical length n, writing the 2n-1
// unreduced coefficients of the product into out. Karatsuba splitting
// is applied recursively down to length 3.
func karatsuba(out []uint32, a, b []uint16) {
	n := len(a)
	if n <= 3 {
		schoolbook(out, a, b)
		return
	}
	h := n >> 1
	m := n - h

	lo := make([]uint32, 2*h-1)
	hi := make([]uint32, 2*m-1)
	mid := make([]uint32, 2*m-1)
	sa := make([]uint16, m)
	sb := make([]uint16, m)
	karatsuba(lo, a[:h], b[:h])
	karatsuba(hi, a[h:], b[h:])
	copy(sa, a[h:])
	copy(sb, b[h:])
	for i := 0; i < h; i++ {
		sa[i] ^= a[i]
		sb[i] ^= b[i]
	}
	karatsuba(mid, sa, sb)
	for i := range mid {
		mid[i] ^= hi[i]
		if i < len(lo) {
			mid[i] ^= lo[i]
		}
	}

	for i := range out[:2*n-1] {
		out[i] = 0
	}
	for i, x := range lo {
		out[i] ^= x
	}
	for i, x := range hi {
		out[2*h+i] ^= x
	}
	for i, x := range mid {
		out[h+i] ^= x
	}
}

func schoolbook(out []uint32, a, b []uint16) {
	n := len(a)
	for i := 0; i < 2*n-1; i++ {
		out[i] = 0
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i+j] ^= gf_clmul(a[i], b[j])
		}
	}
}

// Reduce an unreduced tower product modulo Y^12 + Y^3 + 1, then reduce
// each coefficient in GF(2^11).
func tower_reduce(o *tower, t *tower_ur) {
	for i := tower_ext - 1; i > 0; i-- {
		top := t[i+tower_ext-1]
		t[i-1] ^= top
		t[i+2] ^= top
		t[i+tower_ext-1] = 0
	}
	for i := 0; i < tower_ext; i++ {
		o[i] = gf_reduce(t[i])
	}
}

func tower_mul(o, a, b *tower) {
	var t tower_ur
	karatsuba(t[:], a[:], b[:])
	tower_reduce(o, &t)
}

// o = a^d; a^0 = 1.
func tower_expo(o, a *tower, d int) {
	r := tower_one()
	for i := 0; i < d; i++ {
		tower_mul(&r, &r, a)
	}
	*o = r
}
