package mixnet

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/ursaminor/threshold-vote/cryptosystem"
	"github.com/ursaminor/threshold-vote/elgamal"
)

// reencryptBlocks re-randomizes every block of ct under public key element
// y, using one independent randomizer per block: gamma' = gamma * g^r,
// delta' = delta * y^r.
func reencryptBlocks(cs *cryptosystem.Cryptosystem, ct *elgamal.Ciphertext, y *big.Int, r []*big.Int) (*elgamal.Ciphertext, error) {
	grp := cs.Group()

	gammas := make([]*big.Int, ct.Len())
	deltas := make([]*big.Int, ct.Len())
	for b := 0; b < ct.Len(); b++ {
		gamma, delta := ct.Block(b)
		gammas[b] = grp.Mul(gamma, grp.ExpG(r[b]))
		deltas[b] = grp.Mul(delta, grp.Exp(y, r[b]))
	}
	return elgamal.NewCiphertext(cs, ct.BitLen(), gammas, deltas)
}

// sampleRandomizers draws one fresh randomizer per block, for use in a
// single item's re-encryption.
func sampleRandomizers(cs *cryptosystem.Cryptosystem, blockCount int, rng io.Reader) ([]*big.Int, error) {
	grp := cs.Group()
	r := make([]*big.Int, blockCount)
	for b := 0; b < blockCount; b++ {
		v, err := grp.RandomExponent(rng)
		if err != nil {
			return nil, err
		}
		r[b] = v
	}
	return r, nil
}

// genPermutation samples a uniform random permutation of {0,...,n-1} with
// the Fisher-Yates shuffle, grounded on the teacher's
// GenerateRandPermutation but drawing each swap index from crypto/rand
// instead of a seeded math/rand source.
func genPermutation(n int, rng io.Reader) ([]int, error) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j, err := rand.Int(rng, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, xerrors.Errorf("mixnet: drawing permutation index: %v: %w", err, voteerr.ErrInsufficientRandomness)
		}
		jj := int(j.Int64())
		perm[i], perm[jj] = perm[jj], perm[i]
	}
	return perm, nil
}

// invertPermutation returns inv such that inv[perm[i]] == i for all i.
func invertPermutation(perm []int) []int {
	inv := make([]int, len(perm))
	for i, p := range perm {
		inv[p] = i
	}
	return inv
}
