package threshold

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ThresholdPublicKey_MarshalRoundTrip(t *testing.T) {
	cs := testCryptosystem(t)
	keyPairs, _ := runCeremony(t, cs, 3, 2)

	data, err := keyPairs[0].Public.MarshalBinary()
	require.NoError(t, err)

	loaded, err := UnmarshalThresholdPublicKey(cs, data)
	require.NoError(t, err)
	require.Equal(t, keyPairs[0].Public.Fingerprint(), loaded.Fingerprint())
}

func Test_ThresholdKeyPair_SaveLoadShare_RoundTrip(t *testing.T) {
	cs := testCryptosystem(t)
	keyPairs, _ := runCeremony(t, cs, 3, 2)

	var buf bytes.Buffer
	require.NoError(t, keyPairs[0].SaveShare(&buf))

	loaded, err := LoadShare(cs, &buf)
	require.NoError(t, err)
	require.Equal(t, keyPairs[0].Index, loaded.Index)
	require.Equal(t, keyPairs[0].Share, loaded.Share)
}

func Test_PartialDecryptionSet_MarshalRoundTrip(t *testing.T) {
	cs := testCryptosystem(t)
	keyPairs, _ := runCeremony(t, cs, 3, 2)

	combinedPub, err := keyPairs[0].Public.Combined()
	require.NoError(t, err)
	ct, err := combinedPub.EncryptText("hello", rand.Reader)
	require.NoError(t, err)

	set, err := MakePartialDecryptionSet(keyPairs[0], ct, rand.Reader)
	require.NoError(t, err)

	data, err := set.MarshalBinary(cs, keyPairs[0].Public)
	require.NoError(t, err)

	loaded, err := UnmarshalPartialDecryptionSet(cs, keyPairs[0].Public, data)
	require.NoError(t, err)

	comb := NewCombinator(keyPairs[0].Public, ct)
	require.NoError(t, comb.AddPartialDecryptionSet(loaded))
}
