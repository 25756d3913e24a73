package threshold

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ursaminor/threshold-vote/cryptosystem"
	"github.com/ursaminor/threshold-vote/elgamal"
	"github.com/ursaminor/threshold-vote/voteerr"
)

func testCryptosystem(t *testing.T) *cryptosystem.Cryptosystem {
	cs, err := cryptosystem.Generate(256, 256, rand.Reader)
	require.NoError(t, err)
	return cs
}

// runCeremony drives a full n-of-k DKG ceremony across n independent SetUp
// instances (one per trustee) plus one "server" instance that never
// generates its own commitment, mirroring how a bulletin board would
// observe the same ceremony passively.
func runCeremony(t *testing.T, cs *cryptosystem.Cryptosystem, n, k int) ([]*ThresholdKeyPair, *SetUp) {
	trusteeKeys := make([]*elgamal.KeyPair, n)
	for i := 0; i < n; i++ {
		kp, err := elgamal.NewKeyPair(cs, rand.Reader)
		require.NoError(t, err)
		trusteeKeys[i] = kp
	}

	setups := make([]*SetUp, n)
	server, err := NewSetUp(cs, n, k)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		su, err := NewSetUp(cs, n, k)
		require.NoError(t, err)
		setups[i] = su
	}

	for i := 0; i < n; i++ {
		for _, su := range append(append([]*SetUp{}, setups...), server) {
			require.NoError(t, su.AddTrusteePublicKey(i, trusteeKeys[i].Public))
		}
	}

	commitments := make([]*Commitment, n)
	for i := 0; i < n; i++ {
		cm, err := setups[i].GenerateCommitment(i, rand.Reader)
		require.NoError(t, err)
		commitments[i] = cm
	}

	for i := 0; i < n; i++ {
		for _, su := range append(append([]*SetUp{}, setups...), server) {
			require.NoError(t, su.AddTrusteeCommitment(i, commitments[i]))
		}
	}

	keyPairs := make([]*ThresholdKeyPair, n)
	for i := 0; i < n; i++ {
		kp, err := setups[i].GenerateKeyPair(i, trusteeKeys[i].Private)
		require.NoError(t, err)
		keyPairs[i] = kp
	}

	return keyPairs, server
}

func Test_Ceremony_FingerprintsAgree(t *testing.T) {
	cs := testCryptosystem(t)
	n, k := 5, 3

	keyPairs, server := runCeremony(t, cs, n, k)

	serverPub, err := server.GeneratePublicKey()
	require.NoError(t, err)

	for _, kp := range keyPairs {
		require.Equal(t, serverPub.Fingerprint(), kp.Public.Fingerprint())
	}
}

func Test_Ceremony_ThresholdDecrypt_RoundTrip(t *testing.T) {
	cs := testCryptosystem(t)
	n, k := 5, 3

	keyPairs, _ := runCeremony(t, cs, n, k)

	combinedPub, err := keyPairs[0].Public.Combined()
	require.NoError(t, err)

	plaintext := "threshold decryption works end to end"
	ct, err := combinedPub.EncryptText(plaintext, rand.Reader)
	require.NoError(t, err)

	comb := NewCombinator(keyPairs[0].Public, ct)

	// Only k of the n trustees participate.
	for _, kp := range keyPairs[:k] {
		for blockIdx := 0; blockIdx < ct.Len(); blockIdx++ {
			gamma, _ := ct.Block(blockIdx)
			pd, err := MakePartialDecryption(kp, gamma, rand.Reader)
			require.NoError(t, err)
			require.NoError(t, comb.AddPartialDecryption(blockIdx, pd))
		}
	}

	got, err := comb.DecryptToBytes()
	require.NoError(t, err)
	require.Equal(t, plaintext, string(got))
}

// Test_Ceremony_ThresholdDecrypt_RoundTrip_RandomMessages covers random,
// multi-block, high-bit-set message content, which a fixed ASCII literal
// never exercises: a recovered block value is legally allowed to land
// anywhere below 2^(nbits-1), including at or above q.
func Test_Ceremony_ThresholdDecrypt_RoundTrip_RandomMessages(t *testing.T) {
	cs := testCryptosystem(t)
	n, k := 5, 3

	keyPairs, _ := runCeremony(t, cs, n, k)

	combinedPub, err := keyPairs[0].Public.Combined()
	require.NoError(t, err)

	for trial := 0; trial < 50; trial++ {
		m := make([]byte, trial%23)
		_, err := rand.Read(m)
		require.NoError(t, err)

		ct, err := combinedPub.EncryptBytes(m, rand.Reader)
		require.NoError(t, err)

		comb := NewCombinator(keyPairs[0].Public, ct)
		for _, kp := range keyPairs[:k] {
			for blockIdx := 0; blockIdx < ct.Len(); blockIdx++ {
				gamma, _ := ct.Block(blockIdx)
				pd, err := MakePartialDecryption(kp, gamma, rand.Reader)
				require.NoError(t, err)
				require.NoError(t, comb.AddPartialDecryption(blockIdx, pd))
			}
		}

		got, err := comb.DecryptToBytes()
		require.NoError(t, err)
		require.Equal(t, m, got)
	}
}

func Test_Ceremony_InsufficientShares(t *testing.T) {
	cs := testCryptosystem(t)
	n, k := 4, 3

	keyPairs, _ := runCeremony(t, cs, n, k)

	combinedPub, err := keyPairs[0].Public.Combined()
	require.NoError(t, err)

	ct, err := combinedPub.EncryptText("x", rand.Reader)
	require.NoError(t, err)

	comb := NewCombinator(keyPairs[0].Public, ct)
	for _, kp := range keyPairs[:k-1] {
		gamma, _ := ct.Block(0)
		pd, err := MakePartialDecryption(kp, gamma, rand.Reader)
		require.NoError(t, err)
		require.NoError(t, comb.AddPartialDecryption(0, pd))
	}

	_, err = comb.DecryptToBytes()
	require.Error(t, err)
	var notEnough *voteerr.NotEnoughSharesError
	require.ErrorAs(t, err, &notEnough)
}

func Test_PartialDecryption_RejectsForgedProof(t *testing.T) {
	cs := testCryptosystem(t)
	n, k := 3, 2

	keyPairs, _ := runCeremony(t, cs, n, k)

	combinedPub, err := keyPairs[0].Public.Combined()
	require.NoError(t, err)
	ct, err := combinedPub.EncryptText("x", rand.Reader)
	require.NoError(t, err)

	gamma, _ := ct.Block(0)
	pd, err := MakePartialDecryption(keyPairs[0], gamma, rand.Reader)
	require.NoError(t, err)

	// Tamper with the response scalar; the forged proof must fail.
	pd.Proof.Resp.Add(pd.Proof.Resp, big.NewInt(1))

	comb := NewCombinator(keyPairs[0].Public, ct)
	err = comb.AddPartialDecryption(0, pd)
	require.ErrorIs(t, err, voteerr.ErrInvalidPartialDecryptionProof)
}

func Test_Complain_DetectsBadShare(t *testing.T) {
	cs := testCryptosystem(t)
	n, k := 3, 2

	trusteeKeys := make([]*elgamal.KeyPair, n)
	for i := 0; i < n; i++ {
		kp, err := elgamal.NewKeyPair(cs, rand.Reader)
		require.NoError(t, err)
		trusteeKeys[i] = kp
	}

	setups := make([]*SetUp, n)
	for i := 0; i < n; i++ {
		su, err := NewSetUp(cs, n, k)
		require.NoError(t, err)
		setups[i] = su
	}
	for i := 0; i < n; i++ {
		for _, su := range setups {
			require.NoError(t, su.AddTrusteePublicKey(i, trusteeKeys[i].Public))
		}
	}

	commitments := make([]*Commitment, n)
	for i := 0; i < n; i++ {
		cm, err := setups[i].GenerateCommitment(i, rand.Reader)
		require.NoError(t, err)
		commitments[i] = cm
	}

	// Corrupt trustee 1's share sent to trustee 0 by swapping in trustee 2's
	// encrypted share, which won't satisfy trustee 1's VSS equation for
	// recipient 0.
	commitments[1].Shares[0] = commitments[2].Shares[0]

	for i := 0; i < n; i++ {
		for _, su := range setups {
			require.NoError(t, su.AddTrusteeCommitment(i, commitments[i]))
		}
	}

	_, err := setups[0].GenerateKeyPair(0, trusteeKeys[0].Private)
	require.Error(t, err)

	ok, err := setups[0].Complain(0, 1)
	require.NoError(t, err)
	require.False(t, ok)
}
