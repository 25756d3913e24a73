package threshold

import (
	"io"
	"math/big"

	"github.com/ursaminor/threshold-vote/fingerprint"
	"github.com/ursaminor/threshold-vote/group"
	"github.com/ursaminor/threshold-vote/voteerr"
)

// DlogEqProof is a non-interactive Chaum-Pedersen proof that two discrete
// logarithms are equal: that d = gamma^x and Y_i = g^x hold for the same x,
// without revealing x. It is Fiat-Shamir transformed against the full
// statement so no interaction with a verifier is required.
type DlogEqProof struct {
	CommitG *big.Int // g^w
	CommitH *big.Int // gamma^w
	Resp    *big.Int // w + c*x mod q
}

// proveDlogEq proves gamma^x == d and g^x == yi for the same x, adapting
// the teacher's ProveDlogEq construction from elliptic-curve points to the
// safe-prime subgroup: commit to a random w, derive the challenge by
// hashing the statement, respond with w + c*x mod q.
func proveDlogEq(grp *group.SafePrimeGroup, x, gamma, d, yi *big.Int, rng io.Reader) (*DlogEqProof, error) {
	w, err := grp.RandomExponentMod0(rng)
	if err != nil {
		return nil, err
	}

	commitG := grp.ExpG(w)
	commitH := grp.Exp(gamma, w)

	c := challengeDlogEq(grp, commitG, commitH, gamma, d, yi)

	resp := new(big.Int).Mul(c, x)
	resp.Add(resp, w)
	resp.Mod(resp, grp.Q())

	return &DlogEqProof{CommitG: commitG, CommitH: commitH, Resp: resp}, nil
}

// verifyDlogEq checks g^resp == commitG * yi^c and gamma^resp == commitH * d^c.
func verifyDlogEq(grp *group.SafePrimeGroup, proof *DlogEqProof, gamma, d, yi *big.Int) bool {
	c := challengeDlogEq(grp, proof.CommitG, proof.CommitH, gamma, d, yi)

	lhs1 := grp.ExpG(proof.Resp)
	rhs1 := grp.Mul(proof.CommitG, grp.Exp(yi, c))
	if lhs1.Cmp(rhs1) != 0 {
		return false
	}

	lhs2 := grp.Exp(gamma, proof.Resp)
	rhs2 := grp.Mul(proof.CommitH, grp.Exp(d, c))
	return lhs2.Cmp(rhs2) == 0
}

// challengeDlogEq derives the Fiat-Shamir challenge
// c = H(g, Y_i, gamma, d, t_1, t_2) mod q from the full statement, binding
// the proof to the exact ciphertext block and public share it was produced
// against.
func challengeDlogEq(grp *group.SafePrimeGroup, commitG, commitH, gamma, d, yi *big.Int) *big.Int {
	b := fingerprint.NewBuilder()
	b.WriteInt(grp.G())
	b.WriteInt(yi)
	b.WriteInt(gamma)
	b.WriteInt(d)
	b.WriteInt(commitG)
	b.WriteInt(commitH)
	digest := b.Sum()
	return grp.ModQ(new(big.Int).SetBytes(digest[:]))
}

// PartialDecryption is one trustee's contribution toward decrypting a
// single ElGamal ciphertext block: d_i = gamma^{s_i}, accompanied by a
// Chaum-Pedersen proof that log_g(Y_i) == log_gamma(d_i).
type PartialDecryption struct {
	Trustee int
	D       *big.Int
	Proof   *DlogEqProof
}

// MakePartialDecryption computes trustee kp.Index's contribution to
// decrypting ciphertext block (gamma, _), proving its correctness against
// the trustee's public share recorded in kp.Public.
func MakePartialDecryption(kp *ThresholdKeyPair, gamma *big.Int, rng io.Reader) (*PartialDecryption, error) {
	grp := kp.Public.cs.Group()

	d := grp.Exp(gamma, kp.Share)

	yi, ok := kp.Public.TrusteeShare(kp.Index)
	if !ok {
		return nil, voteerr.ErrIncompleteSetup
	}

	proof, err := proveDlogEq(grp, kp.Share, gamma, d, yi, rng)
	if err != nil {
		return nil, err
	}

	return &PartialDecryption{Trustee: kp.Index, D: d, Proof: proof}, nil
}

// Verify checks pd's Chaum-Pedersen proof against the ciphertext block it
// claims to decrypt and the trustee's registered public share.
func (pd *PartialDecryption) Verify(tpk *ThresholdPublicKey, gamma *big.Int) error {
	yi, ok := tpk.TrusteeShare(pd.Trustee)
	if !ok {
		return voteerr.ErrIncompleteSetup
	}
	grp := tpk.cs.Group()
	if !verifyDlogEq(grp, pd.Proof, gamma, pd.D, yi) {
		return voteerr.ErrInvalidPartialDecryptionProof
	}
	return nil
}
