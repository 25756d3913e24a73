package elgamal

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ursaminor/threshold-vote/cryptosystem"
	"github.com/ursaminor/threshold-vote/voteerr"
)

func testCryptosystem(t *testing.T) *cryptosystem.Cryptosystem {
	cs, err := cryptosystem.Generate(256, 256, rand.Reader)
	require.NoError(t, err)
	return cs
}

func Test_EncryptDecrypt_RoundTrip(t *testing.T) {
	cs := testCryptosystem(t)
	kp, err := NewKeyPair(cs, rand.Reader)
	require.NoError(t, err)

	messages := []string{
		"",
		"a",
		"Dummy vote #0",
		"Dummy vote #19, a somewhat longer message to span multiple blocks of the chosen bit-length.",
	}

	for _, m := range messages {
		ct, err := kp.Public.EncryptText(m, rand.Reader)
		require.NoError(t, err)

		got, err := kp.Private.DecryptToBytes(ct)
		require.NoError(t, err)
		require.Equal(t, m, string(got))
	}
}

// Test_EncryptDecrypt_RoundTrip_RandomMessages covers the class of message
// the fixed ASCII literals above never exercise: high-bit-set bytes and
// random lengths spanning several blocks, where a block's recovered value
// can legally land anywhere below 2^(nbits-1), including at or above q.
func Test_EncryptDecrypt_RoundTrip_RandomMessages(t *testing.T) {
	cs := testCryptosystem(t)
	kp, err := NewKeyPair(cs, rand.Reader)
	require.NoError(t, err)

	for trial := 0; trial < 200; trial++ {
		n := trial % 37 // vary length, including 0, across trials
		m := make([]byte, n)
		_, err := rand.Read(m)
		require.NoError(t, err)

		ct, err := kp.Public.EncryptBytes(m, rand.Reader)
		require.NoError(t, err)

		got, err := kp.Private.DecryptToBytes(ct)
		require.NoError(t, err)
		require.Equal(t, m, got)
	}
}

func Test_Decrypt_RejectsIncompatibleCryptosystem(t *testing.T) {
	cs1 := testCryptosystem(t)
	cs2 := testCryptosystem(t)

	kp1, err := NewKeyPair(cs1, rand.Reader)
	require.NoError(t, err)
	kp2, err := NewKeyPair(cs2, rand.Reader)
	require.NoError(t, err)

	ct, err := kp1.Public.EncryptText("hello", rand.Reader)
	require.NoError(t, err)

	_, err = kp2.Private.DecryptToBytes(ct)
	require.ErrorIs(t, err, voteerr.ErrIncompatibleCryptosystem)
}

func Test_Ciphertext_Fingerprint_Deterministic(t *testing.T) {
	cs := testCryptosystem(t)
	kp, err := NewKeyPair(cs, rand.Reader)
	require.NoError(t, err)

	ct, err := kp.Public.EncryptText("Dummy vote #3", rand.Reader)
	require.NoError(t, err)

	data, err := ct.MarshalBinary()
	require.NoError(t, err)

	roundTripped, err := UnmarshalCiphertext(cs, data)
	require.NoError(t, err)
	require.Equal(t, ct.Fingerprint(), roundTripped.Fingerprint())
}

func Test_NewPublicKey_RejectsElementOutsideGroup(t *testing.T) {
	cs := testCryptosystem(t)
	_, err := NewPublicKey(cs, cs.P())
	require.ErrorIs(t, err, voteerr.ErrInvalidPublicKey)
}
