// Package threshold implements Pedersen-style verifiable secret sharing
// over private ElGamal channels: the distributed key-generation ceremony,
// threshold keys, partial decryption, and Lagrange-interpolated
// combination.
package threshold

import (
	"io"
	"math/big"

	"github.com/ursaminor/threshold-vote/cryptosystem"
	"github.com/ursaminor/threshold-vote/elgamal"
	"github.com/ursaminor/threshold-vote/fingerprint"
	"github.com/ursaminor/threshold-vote/voteerr"
)

// Commitment is trustee j's contribution to a DKG ceremony: the public
// polynomial coefficients A_{j,0..k-1} and, for every other trustee i, an
// ElGamal-encrypted evaluation share f_j(i+1), under recipient i's public
// key. The entry at index j is a distinguished empty ciphertext.
type Commitment struct {
	Trustee int
	A       []*big.Int
	Shares  []*elgamal.Ciphertext
}

// scalarByteLen is the fixed width used to encode a mod-q scalar before
// ElGamal-encrypting it as a share, so every recipient decodes the same
// number of bytes regardless of leading zero bytes in the scalar.
func scalarByteLen(q *big.Int) int {
	return (q.BitLen() + 7) / 8
}

func encodeScalar(q, s *big.Int) []byte {
	buf := make([]byte, scalarByteLen(q))
	s.FillBytes(buf)
	return buf
}

func decodeScalar(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// evalPolynomial evaluates f(X) = sum(a_t * X^t) mod q at X = x.
func evalPolynomial(a []*big.Int, x, q *big.Int) *big.Int {
	result := new(big.Int)
	power := big.NewInt(1)
	for _, coeff := range a {
		term := new(big.Int).Mul(coeff, power)
		result.Add(result, term)
		power.Mul(power, x)
	}
	return result.Mod(result, q)
}

// generateCommitment samples a degree-(k-1) polynomial with nonzero constant
// term, commits to its coefficients, and encrypts its evaluation at every
// other trustee's index under that trustee's public key.
func generateCommitment(
	cs *cryptosystem.Cryptosystem,
	ownIndex, n, k int,
	pubKeys map[int]*elgamal.PublicKey,
	rng io.Reader,
) (*Commitment, []*big.Int, error) {
	grp := cs.Group()

	a := make([]*big.Int, k)
	for t := 0; t < k; t++ {
		coeff, err := grp.RandomExponentMod0(rng)
		if err != nil {
			return nil, nil, err
		}
		if t == 0 {
			for coeff.Sign() == 0 {
				coeff, err = grp.RandomExponentMod0(rng)
				if err != nil {
					return nil, nil, err
				}
			}
		}
		a[t] = coeff
	}

	A := make([]*big.Int, k)
	for t := 0; t < k; t++ {
		A[t] = grp.ExpG(a[t])
	}

	shares := make([]*elgamal.Ciphertext, n)
	for i := 0; i < n; i++ {
		if i == ownIndex {
			ct, _ := elgamal.NewCiphertext(cs, 0, nil, nil)
			shares[i] = ct
			continue
		}
		x := big.NewInt(int64(i + 1))
		s := evalPolynomial(a, x, grp.Q())

		pk, ok := pubKeys[i]
		if !ok {
			return nil, nil, voteerr.ErrIncompleteSetup
		}
		ct, err := pk.EncryptBytes(encodeScalar(grp.Q(), s), rng)
		if err != nil {
			return nil, nil, err
		}
		shares[i] = ct
	}

	return &Commitment{Trustee: ownIndex, A: A, Shares: shares}, a, nil
}

// verifyShare checks the VSS equation g^share == prod(A_t^((x)^t)) mod p,
// where x = recipient+1, for a commitment made by trustee j.
func verifyShare(cs *cryptosystem.Cryptosystem, cm *Commitment, recipient int, share *big.Int) bool {
	grp := cs.Group()

	lhs := grp.ExpG(share)

	x := big.NewInt(int64(recipient + 1))
	rhs := big.NewInt(1)
	power := big.NewInt(1)
	for _, At := range cm.A {
		factor := grp.Exp(At, power)
		rhs = grp.Mul(rhs, factor)
		power.Mul(power, x)
	}

	return lhs.Cmp(rhs) == 0
}

// Fingerprint hashes the commitment's trustee index, public coefficients,
// and the fingerprints of its encrypted shares, in declared order.
func (cm *Commitment) Fingerprint() fingerprint.Digest {
	b := fingerprint.NewBuilder()
	b.WriteUint64(uint64(cm.Trustee))
	for _, At := range cm.A {
		b.WriteInt(At)
	}
	for _, share := range cm.Shares {
		csfp := share.Fingerprint()
		b.WriteDigest(csfp)
	}
	return b.Sum()
}
