package cryptosystem

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ursaminor/threshold-vote/voteerr"
)

func smallCryptosystem(t *testing.T) *Cryptosystem {
	// p = 2*11+1 = 23, a safe prime; g = 4 generates the order-11 subgroup.
	cs, err := New(8, big.NewInt(23), big.NewInt(11), big.NewInt(4))
	require.NoError(t, err)
	return cs
}

func Test_Generate_RejectsBelowMinBits(t *testing.T) {
	_, err := Generate(256, 512, bytes.NewReader(make([]byte, 0)))
	require.ErrorIs(t, err, voteerr.ErrWeakParameters)
}

func Test_Fingerprint_Deterministic(t *testing.T) {
	cs1 := smallCryptosystem(t)
	cs2 := smallCryptosystem(t)
	require.Equal(t, cs1.Fingerprint(), cs2.Fingerprint())
	require.True(t, cs1.Equal(cs2))
}

func Test_Fingerprint_DiffersOnParameterChange(t *testing.T) {
	cs1 := smallCryptosystem(t)
	cs2, err := New(8, big.NewInt(23), big.NewInt(11), big.NewInt(2))
	require.NoError(t, err)
	require.NotEqual(t, cs1.Fingerprint(), cs2.Fingerprint())
}

func Test_SaveLoad_RoundTrip(t *testing.T) {
	cs := smallCryptosystem(t)

	var buf bytes.Buffer
	require.NoError(t, cs.Save(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	require.True(t, cs.Equal(loaded))
	require.Equal(t, cs.NBits(), loaded.NBits())
}

func Test_New_RejectsInvalidGroup(t *testing.T) {
	_, err := New(8, big.NewInt(24), big.NewInt(11), big.NewInt(4))
	require.Error(t, err)
}
