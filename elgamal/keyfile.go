package elgamal

import (
	"github.com/ursaminor/threshold-vote/cryptosystem"
	"github.com/ursaminor/threshold-vote/fingerprint"
	"github.com/ursaminor/threshold-vote/voteerr"
)

// KeyFileVersion is the wire version tag for key files.
const KeyFileVersion uint32 = 1

// MarshalBinary serializes the public key as (version, cryptosystem fp, h).
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	var buf []byte
	buf = appendUint32(buf, KeyFileVersion)
	csfp := pk.cs.Fingerprint()
	buf = append(buf, csfp[:]...)
	buf = appendBigInt(buf, pk.h)
	return buf, nil
}

// UnmarshalPublicKey parses a public key file, rebinding it to cs and
// rejecting an element outside the subgroup or a fingerprint mismatch.
func UnmarshalPublicKey(cs *cryptosystem.Cryptosystem, data []byte) (*PublicKey, error) {
	r := &byteReader{data: data}

	version, err := r.readUint32()
	if err != nil || version != KeyFileVersion {
		return nil, voteerr.ErrSerialization
	}

	var wantFP fingerprint.Digest
	if err := r.readFixed(wantFP[:]); err != nil {
		return nil, voteerr.ErrSerialization
	}
	if wantFP != cs.Fingerprint() {
		return nil, voteerr.ErrIncompatibleCryptosystem
	}

	h, err := r.readBigInt()
	if err != nil {
		return nil, voteerr.ErrSerialization
	}
	return NewPublicKey(cs, h)
}

// MarshalBinary serializes the private key as (version, cryptosystem fp, x).
func (sk *PrivateKey) MarshalBinary() ([]byte, error) {
	var buf []byte
	buf = appendUint32(buf, KeyFileVersion)
	csfp := sk.pub.cs.Fingerprint()
	buf = append(buf, csfp[:]...)
	buf = appendBigInt(buf, sk.x)
	return buf, nil
}

// UnmarshalPrivateKey parses a private key file, rebinding it to cs and
// deriving the matching public key h = g^x.
func UnmarshalPrivateKey(cs *cryptosystem.Cryptosystem, data []byte) (*PrivateKey, error) {
	r := &byteReader{data: data}

	version, err := r.readUint32()
	if err != nil || version != KeyFileVersion {
		return nil, voteerr.ErrSerialization
	}

	var wantFP fingerprint.Digest
	if err := r.readFixed(wantFP[:]); err != nil {
		return nil, voteerr.ErrSerialization
	}
	if wantFP != cs.Fingerprint() {
		return nil, voteerr.ErrIncompatibleCryptosystem
	}

	x, err := r.readBigInt()
	if err != nil {
		return nil, voteerr.ErrSerialization
	}

	grp := cs.Group()
	h := grp.ExpG(x)
	pub := &PublicKey{cs: cs, h: h}
	return &PrivateKey{pub: pub, x: x}, nil
}
