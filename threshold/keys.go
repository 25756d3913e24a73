package threshold

import (
	"math/big"

	"github.com/ursaminor/threshold-vote/cryptosystem"
	"github.com/ursaminor/threshold-vote/elgamal"
	"github.com/ursaminor/threshold-vote/fingerprint"
)

// ThresholdPublicKey is the combined public key Y = prod(A_{j,0}) derived
// from every trustee's commitment, together with the per-trustee public
// shares Y_i = g^{s_i} needed to verify partial decryptions.
type ThresholdPublicKey struct {
	cs      *cryptosystem.Cryptosystem
	n, k    int
	y       *big.Int
	yShares map[int]*big.Int
}

// Combined returns an elgamal.PublicKey wrapping Y, usable for ordinary
// single-shot encryption against the whole trustee set.
func (tpk *ThresholdPublicKey) Combined() (*elgamal.PublicKey, error) {
	return elgamal.NewPublicKey(tpk.cs, tpk.y)
}

// Y returns the raw combined public key element.
func (tpk *ThresholdPublicKey) Y() *big.Int { return tpk.y }

// TrusteeShare returns trustee i's public share Y_i = g^{s_i}.
func (tpk *ThresholdPublicKey) TrusteeShare(i int) (*big.Int, bool) {
	y, ok := tpk.yShares[i]
	return y, ok
}

// N returns the registered trustee count.
func (tpk *ThresholdPublicKey) N() int { return tpk.n }

// K returns the decryption threshold.
func (tpk *ThresholdPublicKey) K() int { return tpk.k }

// Fingerprint hashes (cryptosystem fp, n, k, Y, Y_0..Y_{n-1}) in order, so
// two parties holding independently derived ThresholdPublicKeys can confirm
// agreement without comparing every field by hand.
func (tpk *ThresholdPublicKey) Fingerprint() fingerprint.Digest {
	b := fingerprint.NewBuilder()
	csfp := tpk.cs.Fingerprint()
	b.WriteDigest(csfp)
	b.WriteUint64(uint64(tpk.n))
	b.WriteUint64(uint64(tpk.k))
	b.WriteInt(tpk.y)
	for i := 0; i < tpk.n; i++ {
		b.WriteInt(tpk.yShares[i])
	}
	return b.Sum()
}

// ThresholdKeyPair is one trustee's share of a distributed private key: the
// combined public key plus that trustee's own scalar share s_i, sufficient
// to produce a partial decryption but not to decrypt alone.
type ThresholdKeyPair struct {
	Public *ThresholdPublicKey
	Index  int
	Share  *big.Int
}
