package mixnet

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ursaminor/threshold-vote/cryptosystem"
	"github.com/ursaminor/threshold-vote/elgamal"
	"github.com/ursaminor/threshold-vote/threshold"
	"github.com/ursaminor/threshold-vote/voteerr"
)

// singleTrusteeKey builds a trivial 1-of-1 threshold public key, enough to
// exercise the mixnet without dragging a full multi-trustee ceremony into
// every test.
func singleTrusteeKey(t *testing.T) (*cryptosystem.Cryptosystem, *threshold.ThresholdPublicKey) {
	cs, err := cryptosystem.Generate(256, 256, rand.Reader)
	require.NoError(t, err)

	kp, err := elgamal.NewKeyPair(cs, rand.Reader)
	require.NoError(t, err)

	su, err := threshold.NewSetUp(cs, 1, 1)
	require.NoError(t, err)
	require.NoError(t, su.AddTrusteePublicKey(0, kp.Public))

	cm, err := su.GenerateCommitment(0, rand.Reader)
	require.NoError(t, err)
	require.NoError(t, su.AddTrusteeCommitment(0, cm))

	tkp, err := su.GenerateKeyPair(0, kp.Private)
	require.NoError(t, err)

	return cs, tkp.Public
}

func buildCollection(t *testing.T, cs *cryptosystem.Cryptosystem, tpk *threshold.ThresholdPublicKey, messages []string) *Collection {
	pub, err := tpk.Combined()
	require.NoError(t, err)

	c := NewCollection(tpk)
	for _, m := range messages {
		ct, err := pub.EncryptText(m, rand.Reader)
		require.NoError(t, err)
		require.NoError(t, c.AddCiphertext(ct))
	}
	return c
}

func Test_Collection_AddCiphertext_RejectsBlockCountMismatch(t *testing.T) {
	_, tpk := singleTrusteeKey(t)
	pub, err := tpk.Combined()
	require.NoError(t, err)

	c := NewCollection(tpk)
	short, err := pub.EncryptText("a", rand.Reader)
	require.NoError(t, err)
	require.NoError(t, c.AddCiphertext(short))

	long, err := pub.EncryptText("a much longer message that spans more blocks than the first one did by far", rand.Reader)
	require.NoError(t, err)
	err = c.AddCiphertext(long)
	require.ErrorIs(t, err, voteerr.ErrInvalidCiphertext)
}

func Test_ShuffleWithProof_DecryptsToSameMultiset(t *testing.T) {
	cs, err := cryptosystem.Generate(256, 256, rand.Reader)
	require.NoError(t, err)

	kp, err := elgamal.NewKeyPair(cs, rand.Reader)
	require.NoError(t, err)

	su, err := threshold.NewSetUp(cs, 1, 1)
	require.NoError(t, err)
	require.NoError(t, su.AddTrusteePublicKey(0, kp.Public))
	cm, err := su.GenerateCommitment(0, rand.Reader)
	require.NoError(t, err)
	require.NoError(t, su.AddTrusteeCommitment(0, cm))
	tkp, err := su.GenerateKeyPair(0, kp.Private)
	require.NoError(t, err)

	messages := []string{"vote-a", "vote-b", "vote-c", "vote-d", "vote-e"}
	input := buildCollection(t, cs, tkp.Public, messages)

	output, proof, err := input.ShuffleWithProof(rand.Reader)
	require.NoError(t, err)
	require.NoError(t, VerifyShuffle(input, output, proof))

	got := make([]string, output.Len())
	for i := 0; i < output.Len(); i++ {
		set, err := threshold.MakePartialDecryptionSet(tkp, output.At(i), rand.Reader)
		require.NoError(t, err)
		comb := threshold.NewCombinator(tkp.Public, output.At(i))
		require.NoError(t, comb.AddPartialDecryptionSet(set))
		pt, err := comb.DecryptToBytes()
		require.NoError(t, err)
		got[i] = string(pt)
	}
	require.ElementsMatch(t, messages, got)
}

func Test_VerifyShuffle_RejectsTamperedOutput(t *testing.T) {
	cs, tpk := singleTrusteeKey(t)
	input := buildCollection(t, cs, tpk, []string{"vote-a", "vote-b", "vote-c"})

	output, proof, err := input.ShuffleWithProof(rand.Reader)
	require.NoError(t, err)

	tamperedPub, err := tpk.Combined()
	require.NoError(t, err)
	extra, err := tamperedPub.EncryptText("injected", rand.Reader)
	require.NoError(t, err)
	require.NoError(t, output.AddCiphertext(extra))

	err = VerifyShuffle(input, output, proof)
	require.ErrorIs(t, err, voteerr.ErrInvalidShuffleProof)
}

func Test_ShuffleWithProofWithWorkers_MatchesSequential(t *testing.T) {
	cs, tpk := singleTrusteeKey(t)
	input := buildCollection(t, cs, tpk, []string{"vote-a", "vote-b", "vote-c"})

	output, proof, err := input.ShuffleWithProofWithWorkers(rand.Reader, 4)
	require.NoError(t, err)
	require.NoError(t, VerifyShuffleWithWorkers(input, output, proof, 4))
	require.NoError(t, VerifyShuffle(input, output, proof))
}
