// Package mixnet implements a re-encryption mixnet over elgamal.Ciphertext
// collections, with a Sako-Kilian cut-and-choose zero-knowledge proof of
// correct shuffle.
package mixnet

import (
	"math/big"

	"github.com/ursaminor/threshold-vote/cryptosystem"
	"github.com/ursaminor/threshold-vote/elgamal"
	"github.com/ursaminor/threshold-vote/fingerprint"
	"github.com/ursaminor/threshold-vote/threshold"
	"github.com/ursaminor/threshold-vote/voteerr"
)

// Collection is an append-only ordered list of ciphertexts, all bound to
// the same threshold public key, all sharing the first-added ciphertext's
// block count.
type Collection struct {
	tpk        *threshold.ThresholdPublicKey
	items      []*elgamal.Ciphertext
	blockCount int
}

// NewCollection starts an empty collection that will eventually decrypt
// under tpk.
func NewCollection(tpk *threshold.ThresholdPublicKey) *Collection {
	return &Collection{tpk: tpk, blockCount: -1}
}

// ThresholdPublicKey returns the threshold public key this collection is
// bound to.
func (c *Collection) ThresholdPublicKey() *threshold.ThresholdPublicKey { return c.tpk }

// Y returns the combined public key element the collection decrypts under.
func (c *Collection) Y() *big.Int { return c.tpk.Y() }

// Cryptosystem returns the cryptosystem items in the collection are bound to.
func (c *Collection) Cryptosystem() *cryptosystem.Cryptosystem {
	pub, _ := c.tpk.Combined()
	return pub.Cryptosystem()
}

// Len returns the number of ciphertexts in the collection.
func (c *Collection) Len() int { return len(c.items) }

// At returns the i-th ciphertext.
func (c *Collection) At(i int) *elgamal.Ciphertext { return c.items[i] }

// AddCiphertext appends ct, rejecting a cryptosystem mismatch against the
// collection's threshold public key and a block-count mismatch against the
// first-added ciphertext. The caller is responsible for serializing
// concurrent calls; Collection carries no internal lock.
func (c *Collection) AddCiphertext(ct *elgamal.Ciphertext) error {
	if !ct.Cryptosystem().Equal(c.Cryptosystem()) {
		return voteerr.ErrIncompatibleCryptosystem
	}
	if c.blockCount == -1 {
		c.blockCount = ct.Len()
	} else if ct.Len() != c.blockCount {
		return voteerr.ErrInvalidCiphertext
	}
	c.items = append(c.items, ct)
	return nil
}

// Fingerprint hashes (Y, every item's fingerprint) in order.
func (c *Collection) Fingerprint() fingerprint.Digest {
	b := fingerprint.NewBuilder()
	b.WriteInt(c.Y())
	for _, ct := range c.items {
		fp := ct.Fingerprint()
		b.WriteDigest(fp)
	}
	return b.Sum()
}

// cloneEmpty returns a new, empty Collection bound to the same threshold
// public key and block count.
func (c *Collection) cloneEmpty() *Collection {
	return &Collection{tpk: c.tpk, blockCount: c.blockCount}
}
