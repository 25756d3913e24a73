package threshold

import (
	"io"
	"math/big"

	"github.com/ursaminor/threshold-vote/cryptosystem"
	"github.com/ursaminor/threshold-vote/elgamal"
	"github.com/ursaminor/threshold-vote/fingerprint"
	"github.com/ursaminor/threshold-vote/voteerr"
)

// SetUp mediates a single Pedersen distributed key-generation ceremony for
// n trustees with threshold k. It accumulates trustee-indexed public keys
// and commitments, seals once a threshold key or key pair has been derived
// from them, and after that point refuses further registration.
//
// A trustee drives its own ceremony view through one SetUp instance: it
// registers every trustee's public key, calls GenerateCommitment with its
// own index to produce (and remember) its polynomial, registers every
// trustee's commitment including its own, then calls GenerateKeyPair to
// recover its threshold private share. A non-trustee bulletin board can
// run the same sequence without ever calling GenerateCommitment, and will
// derive the same ThresholdPublicKey and the same Fingerprint.
type SetUp struct {
	cs   *cryptosystem.Cryptosystem
	n, k int

	pubKeys     map[int]*elgamal.PublicKey
	commitments map[int]*Commitment

	ownIndex int
	ownPoly  []*big.Int

	trusteePrivKeys map[int]*elgamal.PrivateKey

	sealed bool
}

// NewSetUp constructs an empty ceremony mediator for n trustees, k of which
// must cooperate to decrypt.
func NewSetUp(cs *cryptosystem.Cryptosystem, n, k int) (*SetUp, error) {
	if n <= 0 || k <= 0 || k > n {
		return nil, voteerr.ErrIncompleteSetup
	}
	return &SetUp{
		cs:              cs,
		n:               n,
		k:               k,
		pubKeys:         make(map[int]*elgamal.PublicKey),
		commitments:     make(map[int]*Commitment),
		ownIndex:        -1,
		trusteePrivKeys: make(map[int]*elgamal.PrivateKey),
	}, nil
}

// N returns the registered trustee count.
func (s *SetUp) N() int { return s.n }

// K returns the decryption threshold.
func (s *SetUp) K() int { return s.k }

// AddTrusteePublicKey registers trustee i's long-term ElGamal public key,
// used to encrypt i's VSS shares confidentially. Each index may be set at
// most once, and never after the setup is sealed.
func (s *SetUp) AddTrusteePublicKey(i int, pk *elgamal.PublicKey) error {
	if s.sealed {
		return voteerr.ErrSetupSealed
	}
	if i < 0 || i >= s.n {
		return voteerr.ErrIncompleteSetup
	}
	if _, exists := s.pubKeys[i]; exists {
		return voteerr.ErrDuplicateRegistration
	}
	if !s.cs.Equal(pk.Cryptosystem()) {
		return voteerr.ErrIncompatibleCryptosystem
	}
	s.pubKeys[i] = pk
	return nil
}

// AddTrusteeCommitment registers trustee i's commitment. Each index may be
// set at most once, and never after the setup is sealed.
func (s *SetUp) AddTrusteeCommitment(i int, cm *Commitment) error {
	if s.sealed {
		return voteerr.ErrSetupSealed
	}
	if i < 0 || i >= s.n {
		return voteerr.ErrIncompleteSetup
	}
	if cm.Trustee != i {
		return voteerr.ErrIncompleteSetup
	}
	if _, exists := s.commitments[i]; exists {
		return voteerr.ErrDuplicateRegistration
	}
	if len(cm.A) != s.k || len(cm.Shares) != s.n {
		return voteerr.ErrIncompleteSetup
	}
	s.commitments[i] = cm
	return nil
}

// GenerateCommitment produces and remembers trustee ownIndex's polynomial,
// returning the Commitment to be broadcast and separately registered via
// AddTrusteeCommitment. Every trustee's public key must already be
// registered.
func (s *SetUp) GenerateCommitment(ownIndex int, rng io.Reader) (*Commitment, error) {
	if s.sealed {
		return nil, voteerr.ErrSetupSealed
	}
	if ownIndex < 0 || ownIndex >= s.n {
		return nil, voteerr.ErrIncompleteSetup
	}
	if len(s.pubKeys) != s.n {
		return nil, voteerr.ErrIncompleteSetup
	}

	cm, poly, err := generateCommitment(s.cs, ownIndex, s.n, s.k, s.pubKeys, rng)
	if err != nil {
		return nil, err
	}
	s.ownIndex = ownIndex
	s.ownPoly = poly
	return cm, nil
}

func (s *SetUp) allCommitmentsPresent() bool {
	return len(s.commitments) == s.n
}

// GeneratePublicKey combines every trustee's constant-term commitment into
// the threshold public key Y and derives every trustee's public share Y_i,
// sealing the setup against further registration. Every trustee's
// commitment must already be registered.
func (s *SetUp) GeneratePublicKey() (*ThresholdPublicKey, error) {
	if !s.allCommitmentsPresent() {
		return nil, voteerr.ErrIncompleteSetup
	}
	s.sealed = true

	grp := s.cs.Group()

	y := big.NewInt(1)
	for i := 0; i < s.n; i++ {
		y = grp.Mul(y, s.commitments[i].A[0])
	}

	yShares := make(map[int]*big.Int, s.n)
	for i := 0; i < s.n; i++ {
		yi := big.NewInt(1)
		x := big.NewInt(int64(i + 1))
		for j := 0; j < s.n; j++ {
			cm := s.commitments[j]
			power := big.NewInt(1)
			factor := big.NewInt(1)
			for _, At := range cm.A {
				term := grp.Exp(At, power)
				factor = grp.Mul(factor, term)
				power.Mul(power, x)
			}
			yi = grp.Mul(yi, factor)
		}
		yShares[i] = yi
	}

	return &ThresholdPublicKey{cs: s.cs, n: s.n, k: s.k, y: y, yShares: yShares}, nil
}

// GenerateKeyPair recovers trustee i's threshold private share s_i by
// decrypting and VSS-verifying the share every other trustee sent it, and
// combining those with its own remembered polynomial evaluation. It may
// only be called on the SetUp instance that produced trustee i's commitment
// via GenerateCommitment. A verification failure names the offending
// trustee via InvalidCommitmentError.
func (s *SetUp) GenerateKeyPair(i int, ownPrivateKey *elgamal.PrivateKey) (*ThresholdKeyPair, error) {
	if !s.allCommitmentsPresent() {
		return nil, voteerr.ErrIncompleteSetup
	}
	if s.ownIndex != i || s.ownPoly == nil {
		return nil, voteerr.ErrIncompleteSetup
	}
	pub, ok := s.pubKeys[i]
	if !ok || pub.H().Cmp(ownPrivateKey.Public().H()) != 0 {
		return nil, voteerr.ErrInvalidPublicKey
	}
	s.sealed = true
	s.trusteePrivKeys[i] = ownPrivateKey

	grp := s.cs.Group()
	q := grp.Q()
	x := big.NewInt(int64(i + 1))

	total := evalPolynomial(s.ownPoly, x, q)

	for j := 0; j < s.n; j++ {
		if j == i {
			continue
		}
		cm := s.commitments[j]
		share, err := decryptShareFrom(ownPrivateKey, cm, i)
		if err != nil {
			return nil, err
		}
		if !verifyShare(s.cs, cm, i, share) {
			return nil, &voteerr.InvalidCommitmentError{Trustee: j}
		}
		total.Add(total, share)
		total.Mod(total, q)
	}

	tpk, err := s.GeneratePublicKey()
	if err != nil {
		return nil, err
	}
	return &ThresholdKeyPair{Public: tpk, Index: i, Share: total}, nil
}

// decryptShareFrom decrypts the scalar share trustee cm.Trustee encrypted
// for recipient under recipient's private key.
func decryptShareFrom(ownPrivateKey *elgamal.PrivateKey, cm *Commitment, recipient int) (*big.Int, error) {
	ct := cm.Shares[recipient]
	raw, err := ownPrivateKey.DecryptToBytes(ct)
	if err != nil {
		return nil, err
	}
	return decodeScalar(raw), nil
}

// Complain lets trustee accuser demonstrate, using the private key it
// supplied to a prior GenerateKeyPair call, whether the share trustee
// accused sent it satisfies the VSS equation. It returns true if the share
// is valid (the accusation is unfounded) and false if accused's commitment
// is provably malformed.
func (s *SetUp) Complain(accuser, accused int) (bool, error) {
	priv, ok := s.trusteePrivKeys[accuser]
	if !ok {
		return false, voteerr.ErrIncompleteSetup
	}
	cm, ok := s.commitments[accused]
	if !ok {
		return false, voteerr.ErrIncompleteSetup
	}
	share, err := decryptShareFrom(priv, cm, accuser)
	if err != nil {
		return false, err
	}
	return verifyShare(s.cs, cm, accuser, share), nil
}

// Fingerprint hashes (cryptosystem fp, n, k, every registered public key,
// every registered commitment) in trustee-index order, so any two
// participants with identical ceremony state agree on the same digest.
func (s *SetUp) Fingerprint() fingerprint.Digest {
	b := fingerprint.NewBuilder()
	csfp := s.cs.Fingerprint()
	b.WriteDigest(csfp)
	b.WriteUint64(uint64(s.n))
	b.WriteUint64(uint64(s.k))
	for i := 0; i < s.n; i++ {
		if pk, ok := s.pubKeys[i]; ok {
			b.WriteInt(pk.H())
		}
	}
	for i := 0; i < s.n; i++ {
		if cm, ok := s.commitments[i]; ok {
			cmfp := cm.Fingerprint()
			b.WriteDigest(cmfp)
		}
	}
	return b.Sum()
}
