package speck

import (
	"strings"

	"golang.org/x/sys/cpu"
	"golang.org/x/xerrors"
)

// Constants shared by all level-1 parameter sets.
const (
	seed_bytes   = 16
	salt_bytes   = 32
	hash_bytes   = 32
	cmt_bytes    = 32
	digest_bytes = 32

	q_bits    = 11
	q_mask    = (1 << q_bits) - 1
	tower_ext = 12

	pkp_n = 64
	pkp_m = 27
	pkp_d = 3

	l_row   = pkp_d + 6
	rho     = q_bits * tower_ext
	uhash_b = 16
	l_len   = pkp_n * l_row
	l_bar   = (pkp_d - 1) * rho
	l_vhm   = 8*seed_bytes + uhash_b
	l_prime = l_len + l_vhm
	l_hat   = l_bar + l_prime

	vole_data_bytes = (l_hat + 7) >> 3
	vole_hash_bytes = seed_bytes + (uhash_b >> 3)

	ch1_bytes = 5*seed_bytes + 8
	ch2_bytes = hash_bytes

	chall_c = 6
	chall_w = 9

	// Number of tower-field multipliers drawn for the merged polynomial.
	alpha_count = pkp_n + chall_c*pkp_n + pkp_m

	// Encoded f-polynomial, as absorbed by the third challenge.
	fpoly_bytes = 2 * tower_ext * (pkp_d + 1)

	max_open_retries = ^uint64(0)
)

// Domain separation bytes.
const (
	dom_H0_0   = 0x00
	dom_H0_1   = 0x10
	dom_H0_2   = 0x20
	dom_H1     = 0x01
	dom_H2_1   = 0x12
	dom_H2_2   = 0x22
	dom_H2_3   = 0x32
	dom_H3     = 0x03
	dom_H4     = 0x04
	dom_PRG1   = 0x05
	dom_PRG2   = 0x06
	dom_COM1   = 0x07
	dom_COM2_0 = 0x08
	dom_COM2_1 = 0x18
	dom_COM2   = 0x28
)

// Final commitment modes.
const (
	CommitX4 = iota
	CommitX1
)

// Params describes one parameter set. Instances are immutable and
// obtained through [ParamsByName] or [AllParams]; the exported
// variables below are the published sets.
type Params struct {
	name string

	tau1, kappa1 int
	tau2, kappa2 int
	mu1, mu2     int
	tau_prime    int
	t_open       int

	expander  seedPRG
	committer leafCommitter
	mode      int

	// Derived values.
	tau        int
	leaves     int
	max_open   int
	chall_bits int
	ch3_bits   int
	ch3_bytes  int
}

func newParams(name string, tau1, kappa1, tau2, kappa2, mu1, mu2,
	tau_prime, t_open int, ex seedPRG, cm leafCommitter, mode int) *Params {

	p := &Params{
		name:      name,
		tau1:      tau1,
		kappa1:    kappa1,
		tau2:      tau2,
		kappa2:    kappa2,
		mu1:       mu1,
		mu2:       mu2,
		tau_prime: tau_prime,
		t_open:    t_open,
		expander:  ex,
		committer: cm,
		mode:      mode,
	}
	p.tau = tau1 + tau2
	p.leaves = (tau1 << kappa1) + (tau2 << kappa2)
	p.max_open = ceil_log2(p.leaves) * p.tau
	p.chall_bits = kappa1*tau1 + kappa2*tau2
	p.ch3_bits = p.chall_bits + chall_w
	p.ch3_bytes = (p.ch3_bits + 7) >> 3
	if mu1*tau_prime+mu2*(p.tau-tau_prime) != rho {
		panic("speck: inconsistent parameter set " + name)
	}
	return p
}

func ceil_log2(x int) int {
	r := 0
	for (1 << r) < x {
		r++
	}
	return r
}

// Published parameter sets. The first primitive name is the one used
// for seed expansion and VOLE generation, the second one for leaf
// commitments.
var (
	Speck1FastAESAES       = newParams("speck-1-fast-aes-aes", 9, 8, 7, 7, 9, 8, 4, 110, aesPRG{}, aesCommitter{}, CommitX4)
	Speck1FastAESKeccak    = newParams("speck-1-fast-aes-keccak", 9, 8, 7, 7, 9, 8, 4, 110, aesPRG{}, keccakCommitter{}, CommitX4)
	Speck1FastKeccakKeccak = newParams("speck-1-fast-keccak-keccak", 9, 8, 7, 7, 9, 8, 4, 110, keccakPRG{}, keccakCommitter{}, CommitX4)

	Speck1ShortAESAES       = newParams("speck-1-short-aes-aes", 11, 11, 0, 0, 12, 0, 11, 106, aesPRG{}, aesCommitter{}, CommitX4)
	Speck1ShortAESKeccak    = newParams("speck-1-short-aes-keccak", 11, 11, 0, 0, 12, 0, 11, 106, aesPRG{}, keccakCommitter{}, CommitX4)
	Speck1ShortKeccakKeccak = newParams("speck-1-short-keccak-keccak", 11, 11, 0, 0, 12, 0, 11, 106, keccakPRG{}, keccakCommitter{}, CommitX4)
)

var all_params = []*Params{
	Speck1FastAESAES, Speck1FastAESKeccak, Speck1FastKeccakKeccak,
	Speck1ShortAESAES, Speck1ShortAESKeccak, Speck1ShortKeccakKeccak,
}

// AllParams returns the published parameter sets (four-lane final
// commitment mode).
func AllParams() []*Params {
	r := make([]*Params, len(all_params))
	copy(r, all_params)
	return r
}

// ParamsByName returns the parameter set with the provided name. A name
// may carry the "-x1" suffix, which selects the single-hash final
// commitment; such a set produces signatures that are incompatible with
// the default four-lane mode.
func ParamsByName(name string) (*Params, error) {
	base := strings.TrimSuffix(name, "-x1")
	for _, p := range all_params {
		if p.name == base {
			if base != name {
				return p.WithCommitMode(CommitX1), nil
			}
			return p, nil
		}
	}
	return nil, xerrors.Errorf("unknown parameter set %q: %w", name, ErrUnknownParams)
}

// DefaultParams returns the fast parameter set best suited to the
// current CPU: AES-based primitives when the hardware provides AES
// opcodes, Keccak-based primitives otherwise.
func DefaultParams() *Params {
	if HasHardwareAES() {
		return Speck1FastAESAES
	}
	return Speck1FastKeccakKeccak
}

// HasHardwareAES reports whether the CPU exposes AES instructions.
func HasHardwareAES() bool {
	return cpu.X86.HasAES || cpu.ARM64.HasAES || cpu.S390X.HasAES
}

// WithCommitMode returns a copy of p using the given final commitment
// mode (0: four-lane, 1: single hash).
func (p *Params) WithCommitMode(mode int) *Params {
	if mode == p.mode {
		return p
	}
	np := *p
	np.mode = mode
	np.name = strings.TrimSuffix(p.name, "-x1")
	if mode == CommitX1 {
		np.name += "-x1"
	}
	return &np
}

// Name returns the parameter set name.
func (p *Params) Name() string {
	return p.name
}

// Get the size of a signature, in bytes.
func (p *Params) SignatureSize() int {
	bits := pkp_n*l_row + pkp_d*tower_ext*q_bits + p.chall_bits
	return (p.tau-1)*vole_data_bytes + vole_hash_bytes +
		p.t_open*seed_bytes + p.tau*cmt_bytes + 8 + salt_bytes +
		((bits + 7) >> 3)
}

// Get the size of a signing key, in bytes (identical for all sets).
func SigningKeySize() int {
	return seed_bytes + VerifyingKeySize()
}

// Get the size of a verifying key, in bytes (identical for all sets).
func VerifyingKeySize() int {
	return seed_bytes + ((pkp_n*q_bits + 7) >> 3)
}

// Number of leaves in subtree e is 2^subtree_k(e).
func (p *Params) subtree_k(e int) int {
	if e < p.tau1 {
		return p.kappa1
	}
	return p.kappa2
}

// Number of VOLE vectors produced by subtree e.
func (p *Params) subtree_mu(e int) int {
	if e < p.tau_prime {
		return p.mu1
	}
	return p.mu2
}
