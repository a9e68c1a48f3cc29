package speck

import (
	"bytes"
	"fmt"
	"testing"

	"golang.org/x/xerrors"
)

func TestSPECK_Self(t *testing.T) {
	big := make([]byte, 1<<20)
	for i := range big {
		big[i] = uint8(i * 7)
	}
	for _, p0 := range AllParams() {
		for _, p := range []*Params{p0, p0.WithCommitMode(CommitX1)} {
			fmt.Printf("[%s]", p.Name())
			sk, vk, err := KeyGen(nil)
			if err != nil {
				t.Fatal(err)
			}
			if len(sk) != SigningKeySize() {
				t.Fatalf("wrong signing key size: %d\n", len(sk))
			}
			if len(vk) != VerifyingKeySize() {
				t.Fatalf("wrong verifying key size: %d\n", len(vk))
			}
			for _, data := range [][]byte{nil, []byte("test"), big} {
				sig, err := Sign(p, nil, sk, data)
				if err != nil {
					t.Fatal(err)
				}
				if len(sig) != p.SignatureSize() {
					t.Fatalf("wrong signature size (%s): %d\n", p.Name(), len(sig))
				}
				if !Verify(p, vk, data, sig) {
					t.Fatalf("signature verification failed (%s)\n", p.Name())
				}
				fmt.Print(".")
			}
		}
	}
	fmt.Println()
}

func TestSPECK_Reject(t *testing.T) {
	p := Speck1FastAESAES
	sk, vk, err := KeyGen(nil)
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("test")
	sig, err := Sign(p, nil, sk, data)
	if err != nil {
		t.Fatal(err)
	}
	if !Verify(p, vk, data, sig) {
		t.Fatalf("signature verification failed\n")
	}

	// One byte altered in each part of the signature.
	c_len := (p.tau - 1) * vole_data_bytes
	offsets := []int{0, c_len - 1, c_len, c_len + vole_hash_bytes - 1}
	off := c_len + vole_hash_bytes
	offsets = append(offsets, off, off+p.t_open*seed_bytes-1)
	off += p.t_open * seed_bytes
	offsets = append(offsets, off, off+p.tau*cmt_bytes-1)
	off += p.tau * cmt_bytes
	offsets = append(offsets, off, off+7, off+8, off+8+salt_bytes-1)
	off += 8 + salt_bytes
	offsets = append(offsets, off, off+72, off+100, len(sig)-2, len(sig)-1)
	for _, k := range offsets {
		bad := append([]byte(nil), sig...)
		bad[k] ^= 0x01
		if Verify(p, vk, data, bad) {
			t.Fatalf("altered signature accepted (byte %d)\n", k)
		}
	}

	if Verify(p, vk, []byte("tesu"), sig) {
		t.Fatalf("signature accepted for another message\n")
	}
	_, vk2, _ := KeyGen(nil)
	if Verify(p, vk2, data, sig) {
		t.Fatalf("signature accepted for another key\n")
	}
	for _, p2 := range []*Params{Speck1FastAESKeccak, Speck1FastKeccakKeccak, p.WithCommitMode(CommitX1)} {
		if Verify(p2, vk, data, sig) {
			t.Fatalf("signature accepted with set %s\n", p2.Name())
		}
	}
	if Verify(nil, vk, data, sig) {
		t.Fatalf("signature accepted without a parameter set\n")
	}
	if Verify(p, vk[:len(vk)-1], data, sig) {
		t.Fatalf("signature accepted with a truncated key\n")
	}
	if Verify(p, vk, data, sig[:len(sig)-1]) || Verify(Speck1ShortAESAES, vk, data, sig) {
		t.Fatalf("signature of the wrong size accepted\n")
	}
}

// Bit ranges of the fields of an encoded signature.
type sig_field struct {
	name  string
	start int
	len   int
}

func signature_fields(p *Params) []sig_field {
	var f []sig_field
	off := 0
	add := func(name string, nbits int) {
		f = append(f, sig_field{name, off, nbits})
		off += nbits
	}
	add("c", 8*(p.tau-1)*vole_data_bytes)
	add("u_tilde", 8*vole_hash_bytes)
	add("pdecom", 8*p.t_open*seed_bytes)
	add("com_e_i", 8*p.tau*cmt_bytes)
	add("ctr", 64)
	add("salt", 8*salt_bytes)
	add("t", pkp_n*l_row)
	add("a", pkp_d*tower_ext*q_bits)
	add("ch3", p.chall_bits)
	add("padding", 8*p.SignatureSize()-off)
	return f
}

func TestSPECK_BitFlip(t *testing.T) {
	for _, p := range []*Params{Speck1FastKeccakKeccak, Speck1ShortAESAES} {
		sk, vk := keygen_inner(rand_bytes(test_rng("bitflip-"+p.name), 3*seed_bytes))
		data := []byte("bit flip")
		sig, err := Sign(p, nil, sk, data)
		if err != nil {
			t.Fatal(err)
		}
		pvk, err := ParseVerifyingKey(vk)
		if err != nil {
			t.Fatal(err)
		}
		fields := signature_fields(p)
		last := fields[len(fields)-1]
		if last.start+last.len != 8*len(sig) {
			t.Fatalf("ERR %s: field layout does not cover the signature\n", p.name)
		}
		for _, f := range fields {
			// About 24 bits per field, always including its first
			// and last bits.
			step := f.len/24 + 1
			n := 0
			for k := 0; k < f.len; k += step {
				if !check_bit_flip(pvk, p, data, sig, f.start+k) {
					t.Fatalf("ERR %s: flipped bit %d of %s accepted\n", p.name, k, f.name)
				}
				n++
			}
			if !check_bit_flip(pvk, p, data, sig, f.start+f.len-1) {
				t.Fatalf("ERR %s: flipped last bit of %s accepted\n", p.name, f.name)
			}
			fmt.Printf("[%s: %d]", f.name, n+1)
		}
		fmt.Println()
	}
}

// Returns true when the signature with bit k flipped is rejected.
func check_bit_flip(vk *VerifyingKey, p *Params, data []byte, sig []byte, k int) bool {
	bad := append([]byte(nil), sig...)
	bad[k>>3] ^= uint8(1) << (k & 7)
	return !vk.Verify(p, data, bad)
}

func TestSPECK_Errors(t *testing.T) {
	sk, _, err := KeyGen(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Sign(nil, nil, sk, nil); err != ErrUnknownParams {
		t.Fatalf("ERR: missing parameter set (%v)\n", err)
	}
	if _, err := Sign(Speck1FastAESAES, nil, sk[1:], nil); err != ErrInvalidSigningKey {
		t.Fatalf("ERR: short signing key (%v)\n", err)
	}
	if _, _, err := KeyGen(bytes.NewReader(make([]byte, 10))); err == nil {
		t.Fatalf("ERR: short random source accepted\n")
	}
	if _, err := Sign(Speck1FastAESAES, bytes.NewReader(nil), sk, nil); err == nil {
		t.Fatalf("ERR: empty random source accepted\n")
	}
}

func TestSPECK_Deterministic(t *testing.T) {
	seed := rand_bytes(test_rng("deterministic"), 3*seed_bytes)
	sk1, vk1, err := KeyGen(bytes.NewReader(seed))
	if err != nil {
		t.Fatal(err)
	}
	sk2, vk2 := keygen_inner(seed)
	if !bytes.Equal(sk1, sk2) || !bytes.Equal(vk1, vk2) {
		t.Fatalf("ERR: key generation is not deterministic\n")
	}
	for _, p := range test_params {
		rnd := rand_bytes(test_rng("deterministic-"+p.name), sign_rand_bytes)
		sig1, err := Sign(p, bytes.NewReader(rnd), sk1, []byte("message"))
		if err != nil {
			t.Fatal(err)
		}
		sig2, err := sign_inner_seeded(p, rnd, sk1, []byte("message"))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(sig1, sig2) {
			t.Fatalf("ERR %s: signing is not deterministic\n", p.name)
		}
		rnd[0] ^= 1
		sig3, err := sign_inner_seeded(p, rnd, sk1, []byte("message"))
		if err != nil {
			t.Fatal(err)
		}
		if bytes.Equal(sig1, sig3) {
			t.Fatalf("ERR %s: signature ignores the random input\n", p.name)
		}
		if !Verify(p, vk1, []byte("message"), sig3) {
			t.Fatalf("ERR %s: signature verification failed\n", p.name)
		}
	}
}

// The counter found by the opening search is the smallest one whose
// challenge passes the proof-of-work gate and whose opening fits.
func TestOpenVectorCommitments(t *testing.T) {
	for _, p := range test_params {
		tree, _ := test_tree(p, "pow-"+p.name)
		r := test_rng("pow-ch2-" + p.name)
		ch2 := rand_bytes(r, ch2_bytes)
		sig := p.new_signature()
		sig.a.v[0] = rand_tower(r)
		sig.a.v[2] = rand_tower(r)

		i_vect, err := p.open_vector_commitments(sig, tree, ch2)
		if err != nil {
			t.Fatal(err)
		}
		ch3 := make([]byte, p.ch3_bytes)
		p.gen_third_challenge(ch3, ch2, &sig.a, sig.ctr)
		if !bytes.Equal(ch3, sig.ch3) {
			t.Fatalf("ERR %s: ch3 mismatch\n", p.name)
		}
		if p.pow_bits(ch3) != 0 {
			t.Fatalf("ERR %s: proof-of-work bits not zero\n", p.name)
		}
		i2 := make([]int, p.tau)
		p.challenge_decode(i2, ch3)
		for e := range i2 {
			if i2[e] != i_vect[e] {
				t.Fatalf("ERR %s: hidden leaf set mismatch\n", p.name)
			}
		}
		pdecom := make([]byte, p.t_open*seed_bytes)
		if err := p.open_tree(pdecom, tree, i2); err != nil || !bytes.Equal(pdecom, sig.pdecom) {
			t.Fatalf("ERR %s: opening mismatch (%v)\n", p.name, err)
		}
		for ctr := uint64(0); ctr < sig.ctr; ctr++ {
			p.gen_third_challenge(ch3, ch2, &sig.a, ctr)
			if p.pow_bits(ch3) != 0 {
				continue
			}
			p.challenge_decode(i2, ch3)
			if p.open_tree(pdecom, tree, i2) == nil {
				t.Fatalf("ERR %s: counter %d skipped\n", p.name, ctr)
			}
		}
		fmt.Printf("[%s: %d]", p.name, sig.ctr)
	}
	fmt.Println()
}

func TestRetryLimit(t *testing.T) {
	defer func(n uint64) { open_retry_limit = n }(open_retry_limit)
	open_retry_limit = 1

	p := Speck1FastKeccakKeccak
	sk, vk := keygen_inner(rand_bytes(test_rng("retry"), 3*seed_bytes))
	failed := 0
	for i := 0; i < 10; i++ {
		rnd := make([]byte, sign_rand_bytes)
		rnd[0] = uint8(i)
		sig, err := sign_inner_seeded(p, rnd, sk, []byte("retry"))
		if err != nil {
			if !xerrors.Is(err, ErrRetriesExhausted) {
				t.Fatalf("ERR: unexpected error: %v\n", err)
			}
			failed++
			continue
		}
		if !Verify(p, vk, []byte("retry"), sig) {
			t.Fatalf("ERR: signature verification failed\n")
		}
	}
	if failed == 0 {
		t.Fatalf("ERR: retry limit never reached\n")
	}
}

func TestVerifyingKeyReuse(t *testing.T) {
	sk, vk, err := KeyGen(nil)
	if err != nil {
		t.Fatal(err)
	}
	pvk, err := ParseVerifyingKey(vk)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range test_params {
		for i := 0; i < 3; i++ {
			data := []byte(fmt.Sprintf("message %d", i))
			sig, err := Sign(p, nil, sk, data)
			if err != nil {
				t.Fatal(err)
			}
			if !pvk.Verify(p, data, sig) {
				t.Fatalf("ERR %s: verification with parsed key failed\n", p.name)
			}
			if pvk.Verify(p, data[1:], sig) {
				t.Fatalf("ERR %s: parsed key accepts another message\n", p.name)
			}
		}
	}
}

func BenchmarkKeyGen(b *testing.B) {
	for i := 0; i < b.N; i++ {
		KeyGen(nil)
	}
}

func BenchmarkSignFastAES(b *testing.B) {
	bench_sign_inner(b, Speck1FastAESAES)
}

func BenchmarkSignFastKeccak(b *testing.B) {
	bench_sign_inner(b, Speck1FastKeccakKeccak)
}

func BenchmarkSignShortAES(b *testing.B) {
	bench_sign_inner(b, Speck1ShortAESAES)
}

func BenchmarkSignShortKeccak(b *testing.B) {
	bench_sign_inner(b, Speck1ShortKeccakKeccak)
}

func bench_sign_inner(b *testing.B, p *Params) {
	// Make a key pair.
	sk, vk, _ := KeyGen(nil)
	data := []byte("test")

	// A few blank signatures for "warm-up".
	for i := 0; i < 3; i++ {
		sig, err := Sign(p, nil, sk, data)
		if err != nil {
			b.Fatalf("failure, err = %v", err)
		}
		if !Verify(p, vk, data, sig) {
			b.Fatalf("ERR: signature verification failed")
		}
		data = sig[len(sig)-32:]
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sig, _ := Sign(p, nil, sk, data)
		data = sig[len(sig)-32:]
	}
}

func BenchmarkVerifyFastAES(b *testing.B) {
	bench_verify_inner(b, Speck1FastAESAES)
}

func BenchmarkVerifyFastKeccak(b *testing.B) {
	bench_verify_inner(b, Speck1FastKeccakKeccak)
}

func BenchmarkVerifyShortAES(b *testing.B) {
	bench_verify_inner(b, Speck1ShortAESAES)
}

func BenchmarkVerifyShortKeccak(b *testing.B) {
	bench_verify_inner(b, Speck1ShortKeccakKeccak)
}

func bench_verify_inner(b *testing.B, p *Params) {
	// Make a key pair.
	sk, vk, _ := KeyGen(nil)
	data := []byte("test")

	// Compute some signatures.
	var sigs [4][]byte
	for i := 0; i < len(sigs); i++ {
		sigs[i], _ = Sign(p, nil, sk, data)
	}
	pvk, _ := ParseVerifyingKey(vk)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !pvk.Verify(p, data, sigs[i%len(sigs)]) {
			b.Fatal("signature verification failed")
		}
	}
}
