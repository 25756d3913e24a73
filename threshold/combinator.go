package threshold

import (
	"math/big"

	"github.com/ursaminor/threshold-vote/bitstream"
	"github.com/ursaminor/threshold-vote/elgamal"
	"github.com/ursaminor/threshold-vote/voteerr"
)

// Combinator accumulates verified partial decryptions for every block of a
// single ciphertext and, once at least K of them are present per block,
// recovers the cleartext by Lagrange interpolation in the exponent.
type Combinator struct {
	tpk *ThresholdPublicKey
	ct  *elgamal.Ciphertext

	// perBlock[i] maps trustee index to that trustee's verified partial
	// decryption for block i.
	perBlock []map[int]*PartialDecryption
}

// NewCombinator prepares a Combinator to decrypt ct against tpk.
func NewCombinator(tpk *ThresholdPublicKey, ct *elgamal.Ciphertext) *Combinator {
	perBlock := make([]map[int]*PartialDecryption, ct.Len())
	for i := range perBlock {
		perBlock[i] = make(map[int]*PartialDecryption)
	}
	return &Combinator{tpk: tpk, ct: ct, perBlock: perBlock}
}

// AddPartialDecryption verifies and records trustee pd.Trustee's
// contribution toward block i, rejecting a bad proof or a duplicate
// trustee for the same block.
func (c *Combinator) AddPartialDecryption(blockIndex int, pd *PartialDecryption) error {
	if blockIndex < 0 || blockIndex >= len(c.perBlock) {
		return voteerr.ErrInvalidCiphertext
	}
	if _, exists := c.perBlock[blockIndex][pd.Trustee]; exists {
		return voteerr.ErrDuplicateRegistration
	}

	gamma, _ := c.ct.Block(blockIndex)
	if err := pd.Verify(c.tpk, gamma); err != nil {
		return err
	}

	c.perBlock[blockIndex][pd.Trustee] = pd
	return nil
}

// Ready reports whether block i has at least K verified partial
// decryptions.
func (c *Combinator) Ready(blockIndex int) bool {
	return len(c.perBlock[blockIndex]) >= c.tpk.k
}

// lagrangeCoefficientAtZero computes the Lagrange basis coefficient for
// index i (as x_i = i+1), evaluated at x = 0, over the set of participating
// trustee indices.
func lagrangeCoefficientAtZero(i int, participants []int, q *big.Int) *big.Int {
	xi := big.NewInt(int64(i + 1))

	num := big.NewInt(1)
	den := big.NewInt(1)
	for _, j := range participants {
		if j == i {
			continue
		}
		xj := big.NewInt(int64(j + 1))

		num.Mul(num, new(big.Int).Neg(xj))
		num.Mod(num, q)

		diff := new(big.Int).Sub(xi, xj)
		diff.Mod(diff, q)
		den.Mul(den, diff)
		den.Mod(den, q)
	}

	denInv := new(big.Int).ModInverse(den, q)
	lambda := new(big.Int).Mul(num, denInv)
	return lambda.Mod(lambda, q)
}

// DecryptToBytes combines, for every block, any K of its verified partial
// decryptions via Lagrange interpolation in the exponent to recover
// m+1 = delta / prod(d_i^{lambda_i}), then unpacks the resulting blocks
// back into the original message bytes.
func (c *Combinator) DecryptToBytes() ([]byte, error) {
	grp := c.tpk.cs.Group()
	chunkBits := c.tpk.cs.NBits() - 1

	r := bitstream.NewReader()
	for i := 0; i < c.ct.Len(); i++ {
		if !c.Ready(i) {
			return nil, &voteerr.NotEnoughSharesError{Have: len(c.perBlock[i]), Need: c.tpk.k}
		}

		participants := make([]int, 0, len(c.perBlock[i]))
		for idx := range c.perBlock[i] {
			participants = append(participants, idx)
		}
		// Use exactly k participants, deterministically the k with the
		// smallest index, so repeated runs with extra shares agree.
		participants = smallestK(participants, c.tpk.k)

		mask := big.NewInt(1)
		for _, idx := range participants {
			lambda := lagrangeCoefficientAtZero(idx, participants, grp.Q())
			pd := c.perBlock[i][idx]
			factor := grp.Exp(pd.D, lambda)
			mask = grp.Mul(mask, factor)
		}

		_, delta := c.ct.Block(i)
		maskInv := grp.Inverse(mask)
		lifted := grp.Mul(delta, maskInv)

		b := new(big.Int).Sub(lifted, big.NewInt(1))
		if b.Sign() < 0 {
			return nil, voteerr.ErrInvalidCiphertext
		}
		r.AppendChunk(b, chunkBits)
	}

	return r.Bytes(c.ct.BitLen()), nil
}

// smallestK returns the k smallest values of xs, sorted ascending.
func smallestK(xs []int, k int) []int {
	sorted := append([]int(nil), xs...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}
