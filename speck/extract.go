package speck

// Extraction of tower field elements out of VOLE data vectors. Bits are
// numbered least significant first within each byte.

func get_bit(b []byte, idx int) uint16 {
	return uint16(b[idx>>3]>>(idx&7)) & 1
}

// Tower element whose coefficient i, bit j, is bit idx of the VOLE
// vector v[i*11+j].
func v_to_tower(o *tower, idx int, v [][]byte) {
	for i := 0; i < tower_ext; i++ {
		x := uint16(0)
		for j := 0; j < q_bits; j++ {
			x |= get_bit(v[i*q_bits+j], idx) << j
		}
		o[i] = x
	}
}

// Tower element whose coefficient i, bit j, is bit idx+i*11+j of u.
func u_to_tower(o *tower, idx int, u []byte) {
	for i := 0; i < tower_ext; i++ {
		x := uint16(0)
		for j := 0; j < q_bits; j++ {
			x |= get_bit(u, idx) << j
			idx++
		}
		o[i] = x
	}
}

// Counterpart of u_to_tower for the v (or q) vectors: the result is
// sum_{a,b} Y^a * x^b * v_to_tower(idx + a*11 + b), so that the VOLE
// relation carries over: if q = v + Delta*u bitwise, then
// check_zero_v_to_tower(q) = check_zero_v_to_tower(v) + Delta*u_to_tower(u).
func check_zero_v_to_tower(o *tower, idx int, v [][]byte) {
	var vi [q_bits]tower
	var ve [tower_ext]tower
	for a := 0; a < tower_ext; a++ {
		base := a*q_bits + idx
		for b := 0; b < q_bits; b++ {
			v_to_tower(&vi[b], base+b, v)
		}
		for c := 0; c < tower_ext; c++ {
			x := uint32(0)
			for b := 0; b < q_bits; b++ {
				x ^= uint32(vi[b][c]) << b
			}
			ve[a][c] = gf_reduce(x)
		}
	}

	var t tower_ur
	for a := 0; a < tower_ext; a++ {
		for c := 0; c < tower_ext; c++ {
			t[a+c] ^= uint32(ve[a][c])
		}
	}
	tower_reduce(o, &t)
}

// Read l_row bits from arr, starting at bit offset off.
func extract_bits(arr []byte, off int) uint16 {
	r := uint32(0)
	b := off >> 3
	s := uint(off & 7)
	for i := 0; i < int((s+l_row+7)>>3); i++ {
		r |= uint32(arr[b+i]) << (8 * i)
	}
	return uint16((r >> s) & ((1 << l_row) - 1))
}
