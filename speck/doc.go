// This package implements the SPECK signature algorithm, a post-quantum
// signature built on the "VOLE-in-the-head" proof paradigm applied to the
// Permuted Kernel Problem (PKP).
//
// WARNING: the underlying design is a candidate of the NIST additional
// signature call and may still change; when it does, this code will be
// adjusted, very probably breaking backward compatibility. As such, this
// code should right now be used only for tests and concept/prototype
// purposes.
//
// The public key is a random matrix H over GF(2^11) (given by a seed)
// and a vector x; the private key is a secret permutation p of 64
// elements such that H times x permuted by p is zero. A signature is a
// non-interactive proof of knowledge of p, bound to the message through
// the Fiat-Shamir transform with three successive challenges. The last
// challenge selects one hidden leaf per subtree of a GGM seed tree; it is
// subject to a small proof-of-work: a counter is incremented until the
// challenge has nine zero bits and the resulting tree opening fits in the
// signature.
//
// All supported parameter sets target NIST security level 1. They
// differ by their tree shape ("fast" sets have larger but faster to
// compute signatures than "short" sets) and by the symmetric primitive
// used for seed expansion and leaf commitments (AES-128 or Keccak). The
// published sets are exported as variables such as [Speck1FastAESAES],
// and can be looked up by name with [ParamsByName]; [AllParams] lists
// them. Adding the "-x1" suffix to a name selects the single-hash final
// commitment, which yields signatures incompatible with the default
// four-lane mode. [DefaultParams] picks AES-based primitives when the
// CPU has AES opcodes.
//
// A key pair consists of a signing key (private) and a verifying key
// (public). Keys do not depend on the parameter set; their sizes are
// returned by [SigningKeySize] and [VerifyingKeySize]. A new key pair is
// created with the [KeyGen] function, which takes as parameter a source
// of randomness. The random source MUST be cryptographically secure. If
// the source is nil, then the operating system's RNG is used (through
// crypto/rand.Reader).
//
// A signature is generated with [Sign], using a parameter set, a signing
// key and the message. Signatures have a fixed size for a given
// parameter set, returned by [Params.SignatureSize]. Signing is
// randomized; the random source is usually left to nil.
//
// Signature verification is performed with the [Verify] function; the
// parameter set, verifying key, message and signature are provided, and
// the output is Boolean. When many signatures are checked against the
// same key, [ParseVerifyingKey] avoids repeating the expansion of the
// public matrix.
package speck
