package mixnet

import (
	"io"
	"math/big"

	"github.com/ursaminor/threshold-vote/elgamal"
)

// ShuffleWithProof samples a uniform random permutation of c, re-encrypts
// every item under a fresh per-block randomizer, and builds a
// ShufflingProof binding the input and output collections together
// without revealing the permutation.
func (c *Collection) ShuffleWithProof(rng io.Reader) (*Collection, *ShufflingProof, error) {
	return c.shuffleWithProof(rng, 0)
}

// ShuffleWithProofWithWorkers behaves like ShuffleWithProof but fans the
// proof's t independent per-challenge-bit commitments out across workers
// goroutines (0 or 1 runs sequentially).
func (c *Collection) ShuffleWithProofWithWorkers(rng io.Reader, workers int) (*Collection, *ShufflingProof, error) {
	return c.shuffleWithProof(rng, workers)
}

func (c *Collection) shuffleWithProof(rng io.Reader, workers int) (*Collection, *ShufflingProof, error) {
	n := c.Len()
	cs := c.Cryptosystem()

	pi, err := genPermutation(n, rng)
	if err != nil {
		return nil, nil, err
	}

	r := make([][]*big.Int, n)
	outItems := make([]*elgamal.Ciphertext, n)
	for j := 0; j < n; j++ {
		rj, err := sampleRandomizers(cs, c.blockCount, rng)
		if err != nil {
			return nil, nil, err
		}
		r[j] = rj

		reenc, err := reencryptBlocks(cs, c.At(j), c.Y(), rj)
		if err != nil {
			return nil, nil, err
		}
		outItems[pi[j]] = reenc
	}

	output := c.cloneEmpty()
	output.items = outItems

	var proof *ShufflingProof
	if workers > 1 {
		proof, err = proveShuffleWithWorkers(c, output, pi, r, rng, workers)
	} else {
		proof, err = proveShuffle(c, output, pi, r, rng)
	}
	if err != nil {
		return nil, nil, err
	}
	return output, proof, nil
}
