package group

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// A small, fast safe prime for tests, chosen so q = (p-1)/2 is also prime.
// The group is fixed at the known safe prime p = 23 instead of depending on
// parameter generation here.
func testGroup(t *testing.T) *SafePrimeGroup {
	// p = 2*11+1 = 23 is a safe prime with q = 11.
	p := big.NewInt(23)
	q := big.NewInt(11)
	g := big.NewInt(4) // 4^11 mod 23 == 1, and 4 != 1.

	grp, err := New(p, q, g)
	require.NoError(t, err)
	return grp
}

func Test_New_RejectsNonSafePrime(t *testing.T) {
	p := big.NewInt(25) // not prime
	q := big.NewInt(11)
	g := big.NewInt(4)
	_, err := New(p, q, g)
	require.Error(t, err)
}

func Test_New_RejectsBadGenerator(t *testing.T) {
	p := big.NewInt(23)
	q := big.NewInt(11)
	g := big.NewInt(1) // identity is not a valid generator
	_, err := New(p, q, g)
	require.Error(t, err)
}

func Test_IsValidElement(t *testing.T) {
	grp := testGroup(t)
	require.True(t, grp.IsValidElement(grp.G()))
	require.False(t, grp.IsValidElement(big.NewInt(1)))
	require.False(t, grp.IsValidElement(big.NewInt(0)))
	require.False(t, grp.IsValidElement(grp.P()))
}

func Test_ExpAndInverse(t *testing.T) {
	grp := testGroup(t)
	x, err := grp.RandomExponent(rand.Reader)
	require.NoError(t, err)

	h := grp.ExpG(x)
	require.True(t, grp.IsValidElement(h))

	inv := grp.Inverse(h)
	product := grp.Mul(h, inv)
	require.Equal(t, int64(1), product.Int64())
}

func Test_RandomExponent_InRange(t *testing.T) {
	grp := testGroup(t)
	for i := 0; i < 50; i++ {
		x, err := grp.RandomExponent(rand.Reader)
		require.NoError(t, err)
		require.True(t, x.Sign() > 0)
		require.True(t, x.Cmp(grp.Q()) < 0)
	}
}
