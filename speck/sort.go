package speck

// Constant-time sorting of 32-bit words (Bernstein's sorting network).
// The sequence of comparisons and memory accesses depends only on the
// array length, never on the values.

// Order a and b (unsigned): on output, a <= b.
func uint32_minmax(a, b *uint32) {
	x := *a
	y := *b
	m := -uint32((uint64(y) - uint64(x)) >> 63)
	t := (x ^ y) & m
	*a = x ^ t
	*b = y ^ t
}

// Sort x in ascending order.
func uint32_sort(x []uint32) {
	n := len(x)
	if n < 2 {
		return
	}
	top := 1
	for top < n-top {
		top += top
	}
	for p := top; p > 0; p >>= 1 {
		for i := 0; i < n-p; i++ {
			if (i & p) == 0 {
				uint32_minmax(&x[i], &x[i+p])
			}
		}
		i := 0
		for q := top; q > p; q >>= 1 {
			for ; i < n-q; i++ {
				if (i & p) == 0 {
					a := x[i+p]
					for r := q; r > p; r >>= 1 {
						uint32_minmax(&a, &x[i+r])
					}
					x[i+p] = a
				}
			}
		}
	}
}
