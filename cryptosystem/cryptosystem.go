// Package cryptosystem provides the Cryptosystem parameter object every
// other package in the core binds its keys and ciphertexts to: a safe-prime
// group (p, q, g) plus the bit-length it was generated at, verified once and
// treated as immutable thereafter.
package cryptosystem

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/ursaminor/threshold-vote/fingerprint"
	"github.com/ursaminor/threshold-vote/group"
	"github.com/ursaminor/threshold-vote/voteerr"
)

// DefaultMinBits is the minimum accepted bit-length for freshly generated
// parameters, per the spec's "reject below a configurable minimum" rule.
const DefaultMinBits = 1024

// Cryptosystem is an immutable, validated safe-prime group together with
// the bit-length it was generated at. Every PublicKey, PrivateKey, and
// Ciphertext in the core is bound to one by fingerprint.
type Cryptosystem struct {
	nbits int
	grp   *group.SafePrimeGroup
}

// Group exposes the underlying safe-prime group for packages that need
// direct modular arithmetic (elgamal, threshold, mixnet).
func (c *Cryptosystem) Group() *group.SafePrimeGroup { return c.grp }

// NBits returns the bit-length of p this cryptosystem was generated at.
func (c *Cryptosystem) NBits() int { return c.nbits }

// P, Q, G forward to the underlying group for convenience.
func (c *Cryptosystem) P() *big.Int { return c.grp.P() }
func (c *Cryptosystem) Q() *big.Int { return c.grp.Q() }
func (c *Cryptosystem) G() *big.Int { return c.grp.G() }

// Fingerprint is the SHA-256 of the canonical serialization of
// (nbits, p, q, g) in fixed-width big-endian.
func (c *Cryptosystem) Fingerprint() fingerprint.Digest {
	b := fingerprint.NewBuilder()
	b.WriteUint64(uint64(c.nbits))
	b.WriteInt(c.grp.P())
	b.WriteInt(c.grp.Q())
	b.WriteInt(c.grp.G())
	return b.Sum()
}

// Equal compares two cryptosystems by fingerprint, not identity, since the
// same parameters may be loaded independently by different operators.
func (c *Cryptosystem) Equal(other *Cryptosystem) bool {
	if other == nil {
		return false
	}
	return c.Fingerprint() == other.Fingerprint()
}

// New wraps already-validated parameters into a Cryptosystem. Used by Load
// and by tests that construct small fixed groups; Generate is the usual
// entry point for fresh parameters.
func New(nbits int, p, q, g *big.Int) (*Cryptosystem, error) {
	grp, err := group.New(p, q, g)
	if err != nil {
		return nil, err
	}
	return &Cryptosystem{nbits: nbits, grp: grp}, nil
}

// Generate samples fresh safe-prime parameters of bit-length nbits,
// rejecting any request below minBits (0 selects DefaultMinBits).
//
// It samples an (nbits-1)-bit prime candidate for q directly and tests
// p = 2q+1 for primality, the standard safe-prime search strategy.
func Generate(nbits, minBits int, rng io.Reader) (*Cryptosystem, error) {
	if minBits <= 0 {
		minBits = DefaultMinBits
	}
	if nbits < minBits {
		return nil, voteerr.ErrWeakParameters
	}

	for {
		q, err := rand.Prime(rng, nbits-1)
		if err != nil {
			return nil, voteerr.ErrInsufficientRandomness
		}

		p := new(big.Int).Lsh(q, 1)
		p.Add(p, big.NewInt(1))
		if !p.ProbablyPrime(group.MillerRabinRounds) {
			continue
		}

		g, err := findGenerator(p, q, rng)
		if err != nil {
			continue
		}

		grp, err := group.New(p, q, g)
		if err != nil {
			continue
		}
		return &Cryptosystem{nbits: nbits, grp: grp}, nil
	}
}

// findGenerator locates a generator of the order-q subgroup of Z*_p by
// rejection sampling: for random h in (1, p-1), h^2 mod p has order 1, q, or
// 2 (never q exactly unless h has order 2q or q); discard order <= 2.
func findGenerator(p, q *big.Int, rng io.Reader) (*big.Int, error) {
	pMinusTwo := new(big.Int).Sub(p, big.NewInt(2))
	for attempt := 0; attempt < 256; attempt++ {
		h, err := rand.Int(rng, pMinusTwo)
		if err != nil {
			return nil, voteerr.ErrInsufficientRandomness
		}
		h.Add(h, big.NewInt(2)) // h in [2, p-1]

		g := new(big.Int).Exp(h, big.NewInt(2), p)
		if g.Cmp(big.NewInt(1)) == 0 {
			continue
		}
		check := new(big.Int).Exp(g, q, p)
		if check.Cmp(big.NewInt(1)) == 0 {
			return g, nil
		}
	}
	return nil, voteerr.ErrWeakParameters
}
