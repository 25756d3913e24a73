// Package group implements the order-q subgroup of Z*_p used throughout the
// threshold ElGamal core, where p is a safe prime (p = 2q+1) and q is prime.
package group

import (
	"crypto/rand"
	"io"
	"math/big"

	"golang.org/x/xerrors"

	"github.com/ursaminor/threshold-vote/voteerr"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// SafePrimeGroup is the multiplicative subgroup of order q inside Z*_p, with
// p = 2q+1 and g a generator of that subgroup. It mirrors the teacher's
// PedersenSuite (P, G, Q big.Int fields) but validates its parameters instead
// of accepting them as an unchecked struct literal.
type SafePrimeGroup struct {
	p *big.Int
	q *big.Int
	g *big.Int
}

// MillerRabinRounds is the number of Miller-Rabin rounds used to certify p
// and q as prime. 64 rounds give a false-positive probability below 2^-128.
const MillerRabinRounds = 64

// New builds a SafePrimeGroup from caller-supplied parameters, verifying
// every invariant the cryptographic core depends on: p and q prime,
// p = 2q+1, and g a generator of the order-q subgroup (g != 1, g^q == 1).
func New(p, q, g *big.Int) (*SafePrimeGroup, error) {
	if !p.ProbablyPrime(MillerRabinRounds) {
		return nil, xerrors.Errorf("group: p is not prime")
	}
	if !q.ProbablyPrime(MillerRabinRounds) {
		return nil, xerrors.Errorf("group: q is not prime")
	}

	twoQPlusOne := new(big.Int).Mul(two, q)
	twoQPlusOne.Add(twoQPlusOne, one)
	if twoQPlusOne.Cmp(p) != 0 {
		return nil, xerrors.Errorf("group: p != 2q+1")
	}

	grp := &SafePrimeGroup{p: p, q: q, g: g}
	if !grp.IsValidElement(g) || g.Cmp(one) == 0 {
		return nil, xerrors.Errorf("group: g is not a valid generator")
	}

	return grp, nil
}

// P returns the safe prime modulus.
func (grp *SafePrimeGroup) P() *big.Int { return grp.p }

// Q returns the subgroup order.
func (grp *SafePrimeGroup) Q() *big.Int { return grp.q }

// G returns the subgroup generator.
func (grp *SafePrimeGroup) G() *big.Int { return grp.g }

// IsValidElement reports whether x is a non-identity member of the order-q
// subgroup: 1 < x < p and x^q == 1 (mod p).
func (grp *SafePrimeGroup) IsValidElement(x *big.Int) bool {
	if x.Cmp(one) <= 0 || x.Cmp(grp.p) >= 0 {
		return false
	}
	check := new(big.Int).Exp(x, grp.q, grp.p)
	return check.Cmp(one) == 0
}

// Exp computes base^exp mod p.
func (grp *SafePrimeGroup) Exp(base, exp *big.Int) *big.Int {
	return new(big.Int).Exp(base, exp, grp.p)
}

// ExpG computes g^exp mod p.
func (grp *SafePrimeGroup) ExpG(exp *big.Int) *big.Int {
	return grp.Exp(grp.g, exp)
}

// Mul computes (a*b) mod p.
func (grp *SafePrimeGroup) Mul(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, grp.p)
}

// Inverse computes the multiplicative inverse of x mod p.
func (grp *SafePrimeGroup) Inverse(x *big.Int) *big.Int {
	return new(big.Int).ModInverse(x, grp.p)
}

// RandomExponent draws a uniform scalar in [1, q-1], the range private keys,
// polynomial coefficients, and per-block randomizers are drawn from.
func (grp *SafePrimeGroup) RandomExponent(rng io.Reader) (*big.Int, error) {
	qMinusOne := new(big.Int).Sub(grp.q, one)
	r, err := randInt(rng, qMinusOne)
	if err != nil {
		return nil, xerrors.Errorf("group: drawing random exponent: %w", err)
	}
	return r.Add(r, one), nil
}

// RandomExponentMod0 draws a uniform scalar in [0, q-1] (used for Pedersen
// polynomial coefficients, whose constant term the caller redraws while it is
// zero, and for Chaum-Pedersen commitment randomness, where zero is an
// admissible value).
func (grp *SafePrimeGroup) RandomExponentMod0(rng io.Reader) (*big.Int, error) {
	r, err := randInt(rng, grp.q)
	if err != nil {
		return nil, xerrors.Errorf("group: drawing random exponent: %w", err)
	}
	return r, nil
}

// ModQ reduces x modulo q.
func (grp *SafePrimeGroup) ModQ(x *big.Int) *big.Int {
	r := new(big.Int).Mod(x, grp.q)
	return r
}

// InverseModQ computes the multiplicative inverse of x mod q.
func (grp *SafePrimeGroup) InverseModQ(x *big.Int) *big.Int {
	return new(big.Int).ModInverse(grp.ModQ(x), grp.q)
}

func randInt(rng io.Reader, max *big.Int) (*big.Int, error) {
	return rand.Int(rng, max)
}
