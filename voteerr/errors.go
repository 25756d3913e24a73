// Package voteerr collects the typed error values surfaced by the
// threshold-ElGamal core. Cryptographic validation failures are never
// recovered internally: every sentinel here is meant to propagate to the
// caller, who decides whether a failure is fraud, corruption, or a bug.
package voteerr

import (
	"fmt"

	"golang.org/x/xerrors"
)

var (
	// ErrIncompatibleCryptosystem is returned when an operation mixes
	// objects bound to different Cryptosystem fingerprints.
	ErrIncompatibleCryptosystem = xerrors.New("voteerr: incompatible cryptosystem")

	// ErrInvalidPublicKey is returned when a loaded public key element is
	// not a member of the cryptosystem's subgroup.
	ErrInvalidPublicKey = xerrors.New("voteerr: invalid public key")

	// ErrInvalidCiphertext is returned when a ciphertext fails structural
	// or decryption-time validation (bad block count, truncation mismatch).
	ErrInvalidCiphertext = xerrors.New("voteerr: invalid ciphertext")

	// ErrIncompleteSetup is returned when a ThresholdEncryptionSetUp
	// output is requested before all required registrations are present.
	ErrIncompleteSetup = xerrors.New("voteerr: threshold setup incomplete")

	// ErrSetupSealed is returned when a registration is attempted against
	// a ThresholdEncryptionSetUp that has already produced an output.
	ErrSetupSealed = xerrors.New("voteerr: threshold setup sealed")

	// ErrInvalidPartialDecryptionProof is returned when a partial
	// decryption's Chaum-Pedersen proof fails verification.
	ErrInvalidPartialDecryptionProof = xerrors.New("voteerr: invalid partial decryption proof")

	// ErrInvalidShuffleProof is returned when a shuffling proof fails
	// Fiat-Shamir recomputation or any per-bit cut-and-choose check.
	ErrInvalidShuffleProof = xerrors.New("voteerr: invalid shuffle proof")

	// ErrSerialization is returned when a wire-format blob cannot be
	// parsed into its canonical structure.
	ErrSerialization = xerrors.New("voteerr: serialization error")

	// ErrWeakParameters is returned when cryptosystem parameters fail
	// primality or minimum bit-length checks.
	ErrWeakParameters = xerrors.New("voteerr: weak cryptosystem parameters")

	// ErrInsufficientRandomness is returned when the random source is
	// exhausted or returns a short read.
	ErrInsufficientRandomness = xerrors.New("voteerr: insufficient randomness")

	// ErrDuplicateRegistration is returned when a trustee index is
	// registered twice against the same setup or combinator.
	ErrDuplicateRegistration = xerrors.New("voteerr: duplicate registration")
)

// InvalidCommitmentError reports that trustee Trustee's VSS commitment
// failed the verification equation g^share == prod(A_t^(i+1)^t).
type InvalidCommitmentError struct {
	Trustee int
}

func (e *InvalidCommitmentError) Error() string {
	return fmt.Sprintf("voteerr: invalid commitment from trustee %d", e.Trustee)
}

// NotEnoughSharesError reports that fewer than the threshold number of
// partial decryptions were available for combination.
type NotEnoughSharesError struct {
	Have, Need int
}

func (e *NotEnoughSharesError) Error() string {
	return fmt.Sprintf("voteerr: not enough shares: have %d, need %d", e.Have, e.Need)
}
