package speck

import (
	"bytes"
	"testing"
)

func rand_bytes(r interface{ Read([]byte) (int, error) }, n int) []byte {
	b := make([]byte, n)
	r.Read(b)
	return b
}

func TestBits11Reader(t *testing.T) {
	const count = 500
	s1 := test_rng("bits11")
	s2 := test_rng("bits11")
	rd := newBits11Reader(s1, count)
	buf := rand_bytes(s2, ((count*q_bits+63)>>6)<<3)
	for i := 0; i < count; i++ {
		exp := uint16(0)
		for j := 0; j < q_bits; j++ {
			exp |= get_bit(buf, i*q_bits+j) << j
		}
		if x := rd.next(); x != exp {
			t.Fatalf("ERR bits11 reader: value %d -> 0x%03X (exp: 0x%03X)\n", i, x, exp)
		}
	}
}

func TestExtractBits(t *testing.T) {
	buf := rand_bytes(test_rng("extract"), vole_data_bytes)
	for off := 0; off+l_row <= 8*(vole_data_bytes-2); off++ {
		exp := uint16(0)
		for j := 0; j < l_row; j++ {
			exp |= get_bit(buf, off+j) << j
		}
		if x := extract_bits(buf, off); x != exp {
			t.Fatalf("ERR extract_bits: offset %d -> 0x%03X (exp: 0x%03X)\n", off, x, exp)
		}
	}
}

func TestSHAKE128x4(t *testing.T) {
	r := test_rng("shake-x4")
	salt := rand_bytes(r, salt_bytes)
	var seeds, in, out [4][]byte
	for i := 0; i < 4; i++ {
		seeds[i] = rand_bytes(r, seed_bytes)
		in[i] = rand_bytes(r, 10+i)
		out[i] = make([]byte, 77)
	}
	x4 := newSHAKE128x4(salt, &seeds)
	x4.write(&in)
	c := x4.clone()
	x4.final(0x42)
	x4.read(&out)
	for i := 0; i < 4; i++ {
		sh := prg_init(salt, seeds[i])
		sh.Write(in[i])
		prg_final(sh, 0x42)
		exp := make([]byte, 77)
		sh.Read(exp)
		if !bytes.Equal(out[i], exp) {
			t.Fatalf("ERR shake128x4: lane %d\n", i)
		}
	}

	// The clone is not affected by the original's finalization.
	c.final(0x42)
	var out2 [4][]byte
	for i := 0; i < 4; i++ {
		out2[i] = make([]byte, 77)
	}
	c.read(&out2)
	for i := 0; i < 4; i++ {
		if !bytes.Equal(out[i], out2[i]) {
			t.Fatalf("ERR shake128x4: clone, lane %d\n", i)
		}
	}
}

func TestSHA3x4(t *testing.T) {
	r := test_rng("sha3-x4")
	salt := rand_bytes(r, salt_bytes)
	tau := [4]uint8{0, 3, 7, 15}
	n := [4]uint16{1, 256, 1000, 2047}
	var in, out [4][]byte
	for i := 0; i < 4; i++ {
		in[i] = rand_bytes(r, seed_bytes)
		out[i] = make([]byte, hash_bytes)
	}
	x4 := newSHA3x4Pos(salt, &tau, &n)
	x4.write(&in)
	x4.final(dom_COM1, &out)
	for i := 0; i < 4; i++ {
		h := hash_init_pos(salt, tau[i], n[i])
		h.Write(in[i])
		exp := make([]byte, hash_bytes)
		hash_final(h, dom_COM1, exp)
		if !bytes.Equal(out[i], exp) {
			t.Fatalf("ERR sha3x4: lane %d\n", i)
		}
	}
}

func TestPrimitivesX4(t *testing.T) {
	r := test_rng("primitives-x4")
	salt := rand_bytes(r, salt_bytes)
	for _, ex := range []seedPRG{keccakPRG{}, aesPRG{}} {
		var seed, out, out2 [4][]byte
		idx := [4]uint32{5, 6, 7, 4000}
		for i := 0; i < 4; i++ {
			seed[i] = rand_bytes(r, seed_bytes)
			out[i] = make([]byte, 2*seed_bytes)
			out2[i] = make([]byte, vole_data_bytes)
		}
		ex.expand_x4(salt, &idx, &seed, &out)
		ex.prg2_x4(salt, &seed, &out2)
		for i := 0; i < 4; i++ {
			exp := make([]byte, 2*seed_bytes)
			ex.expand(salt, idx[i], seed[i], exp)
			if !bytes.Equal(out[i], exp) {
				t.Fatalf("ERR %s expand_x4: lane %d\n", ex.name(), i)
			}
			// The two children differ.
			if bytes.Equal(exp[:seed_bytes], exp[seed_bytes:]) {
				t.Fatalf("ERR %s expand: identical children\n", ex.name())
			}
			exp = make([]byte, vole_data_bytes)
			ex.prg2(salt, seed[i], exp)
			if !bytes.Equal(out2[i], exp) {
				t.Fatalf("ERR %s prg2_x4: lane %d\n", ex.name(), i)
			}
		}
	}

	for _, cm := range []leafCommitter{keccakCommitter{}, aesCommitter{}} {
		var seed, out [4][]byte
		tau := [4]uint8{0, 1, 8, 15}
		n := [4]uint16{0, 127, 128, 255}
		for i := 0; i < 4; i++ {
			seed[i] = rand_bytes(r, seed_bytes)
			out[i] = make([]byte, cmt_bytes)
		}
		cm.commit_x4(salt, &tau, &n, &seed, &out)
		for i := 0; i < 4; i++ {
			exp := make([]byte, cmt_bytes)
			cm.commit(salt, tau[i], n[i], seed[i], exp)
			if !bytes.Equal(out[i], exp) {
				t.Fatalf("ERR %s commit_x4: lane %d\n", cm.name(), i)
			}
		}
	}
}

func TestKeccakExpand(t *testing.T) {
	// Seed expansion is SHA3-256(salt || idx || seed || PRG1).
	r := test_rng("keccak-expand")
	salt := rand_bytes(r, salt_bytes)
	seed := rand_bytes(r, seed_bytes)
	out := make([]byte, 2*seed_bytes)
	keccakPRG{}.expand(salt, 0x1234, seed, out)

	h := hash_init(salt)
	h.Write([]byte{0x34, 0x12})
	h.Write(seed)
	h.Write([]byte{dom_PRG1})
	if !bytes.Equal(out, h.Sum(nil)) {
		t.Fatalf("ERR keccak expand\n")
	}
}
