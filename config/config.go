// Package config loads the operational metadata a ceremony run needs
// alongside the cryptographic core: which trustees participate, how many
// of them must cooperate, and where the cryptosystem parameter file lives.
// None of this is fingerprinted; it is routing information, not
// cryptographic state, mirroring the teacher's peer.Configuration as a
// plain data holder assembled once at startup.
package config

import (
	"io"
	"os"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"

	"github.com/ursaminor/threshold-vote/voteerr"
)

// Trustee is one participant's routing metadata: a stable index into the
// ceremony, a human-readable name, and the network address or identifier
// used to reach it (never interpreted by the core, only carried for the
// caller's own transport).
type Trustee struct {
	Index   int    `yaml:"index"`
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

// TrusteeRoster is the ordered list of trustees participating in a
// ceremony together with the threshold parameters n and k.
type TrusteeRoster struct {
	N          int       `yaml:"n"`
	K          int       `yaml:"k"`
	CryptoFile string    `yaml:"cryptosystem_file"`
	Trustees   []Trustee `yaml:"trustees"`
}

// Validate checks internal consistency: n matches the trustee count, k is
// in range, and indices are a permutation of 0..n-1 with no duplicates or
// gaps.
func (r *TrusteeRoster) Validate() error {
	if r.N <= 0 || r.K <= 0 || r.K > r.N {
		return xerrors.Errorf("config: invalid threshold n=%d k=%d", r.N, r.K)
	}
	if len(r.Trustees) != r.N {
		return xerrors.Errorf("config: roster lists %d trustees, want %d", len(r.Trustees), r.N)
	}

	seen := make(map[int]bool, r.N)
	for _, tr := range r.Trustees {
		if tr.Index < 0 || tr.Index >= r.N {
			return xerrors.Errorf("config: trustee index %d out of range [0,%d)", tr.Index, r.N)
		}
		if seen[tr.Index] {
			return voteerr.ErrDuplicateRegistration
		}
		seen[tr.Index] = true
	}
	return nil
}

// ByIndex returns the trustee registered at i, if any.
func (r *TrusteeRoster) ByIndex(i int) (Trustee, bool) {
	for _, tr := range r.Trustees {
		if tr.Index == i {
			return tr, true
		}
	}
	return Trustee{}, false
}

// Load parses a YAML ceremony-roster document from r and validates it.
func Load(r io.Reader) (*TrusteeRoster, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, xerrors.Errorf("config: reading roster: %w", err)
	}

	var roster TrusteeRoster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, xerrors.Errorf("config: parsing roster: %w", err)
	}
	if err := roster.Validate(); err != nil {
		return nil, err
	}
	return &roster, nil
}

// LoadFile opens path and parses it as a ceremony-roster document.
func LoadFile(path string) (*TrusteeRoster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("config: opening roster file: %w", err)
	}
	defer f.Close()
	return Load(f)
}
