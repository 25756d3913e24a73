package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ursaminor/threshold-vote/voteerr"
)

const sampleRoster = `
n: 3
k: 2
cryptosystem_file: ceremony.pvcryptosys
trustees:
  - index: 0
    name: alice
    address: 10.0.0.1:9001
  - index: 1
    name: bob
    address: 10.0.0.2:9001
  - index: 2
    name: carol
    address: 10.0.0.3:9001
`

func Test_Load_Valid(t *testing.T) {
	roster, err := Load(strings.NewReader(sampleRoster))
	require.NoError(t, err)
	require.Equal(t, 3, roster.N)
	require.Equal(t, 2, roster.K)

	tr, ok := roster.ByIndex(1)
	require.True(t, ok)
	require.Equal(t, "bob", tr.Name)
}

func Test_Load_RejectsTrusteeCountMismatch(t *testing.T) {
	bad := strings.Replace(sampleRoster, "n: 3", "n: 4", 1)
	_, err := Load(strings.NewReader(bad))
	require.Error(t, err)
}

func Test_Load_RejectsDuplicateIndex(t *testing.T) {
	bad := strings.Replace(sampleRoster, "index: 2", "index: 1", 1)
	_, err := Load(strings.NewReader(bad))
	require.ErrorIs(t, err, voteerr.ErrDuplicateRegistration)
}

func Test_Load_RejectsKGreaterThanN(t *testing.T) {
	bad := strings.Replace(sampleRoster, "k: 2", "k: 9", 1)
	_, err := Load(strings.NewReader(bad))
	require.Error(t, err)
}
