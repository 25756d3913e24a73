// Package elgamal implements single-recipient ElGamal key pairs and
// byte-message encryption/decryption over a cryptosystem's safe-prime
// subgroup.
package elgamal

import (
	"io"
	"math/big"

	"github.com/ursaminor/threshold-vote/bitstream"
	"github.com/ursaminor/threshold-vote/cryptosystem"
	"github.com/ursaminor/threshold-vote/voteerr"
)

// PublicKey is an ElGamal public key h = g^x mod p, bound to a cryptosystem.
type PublicKey struct {
	cs *cryptosystem.Cryptosystem
	h  *big.Int
}

// PrivateKey is an ElGamal private key x together with its matching
// PublicKey.
type PrivateKey struct {
	pub *PublicKey
	x   *big.Int
}

// KeyPair bundles a PublicKey and its matching PrivateKey.
type KeyPair struct {
	Public  *PublicKey
	Private *PrivateKey
}

// NewPublicKey wraps an already-validated group element as a public key
// bound to cs. It rejects elements outside the subgroup.
func NewPublicKey(cs *cryptosystem.Cryptosystem, h *big.Int) (*PublicKey, error) {
	if !cs.Group().IsValidElement(h) {
		return nil, voteerr.ErrInvalidPublicKey
	}
	return &PublicKey{cs: cs, h: h}, nil
}

// Cryptosystem returns the cryptosystem this key is bound to.
func (pk *PublicKey) Cryptosystem() *cryptosystem.Cryptosystem { return pk.cs }

// H returns the public group element g^x mod p.
func (pk *PublicKey) H() *big.Int { return pk.h }

// Cryptosystem returns the cryptosystem this key is bound to.
func (sk *PrivateKey) Cryptosystem() *cryptosystem.Cryptosystem { return sk.pub.cs }

// Public returns the matching public key.
func (sk *PrivateKey) Public() *PublicKey { return sk.pub }

// X returns the private scalar x in [1, q-1].
func (sk *PrivateKey) X() *big.Int { return sk.x }

// NewKeyPair draws a uniform x in [1, q-1] and derives h = g^x mod p.
func NewKeyPair(cs *cryptosystem.Cryptosystem, rng io.Reader) (*KeyPair, error) {
	x, err := cs.Group().RandomExponent(rng)
	if err != nil {
		return nil, err
	}

	h := cs.Group().ExpG(x)
	pub := &PublicKey{cs: cs, h: h}
	priv := &PrivateKey{pub: pub, x: x}
	return &KeyPair{Public: pub, Private: priv}, nil
}

// blockBits is the number of cleartext bits packed per ElGamal block: one
// bit fewer than the prime's bit-length, so the +1-lifted block value is at
// most 2^(nbits-1), stays below p, and is recovered exactly on decryption.
// A block value may be at or above q, in which case the lifted value is not
// a member of the order-q subgroup.
func blockBits(cs *cryptosystem.Cryptosystem) int {
	return cs.NBits() - 1
}

// EncryptBytes splits msg into blocks of (nbits-1) bits, ElGamal-encrypts
// each block with an independent randomizer, and records msg's exact
// bit-length so decryption can discard the final block's zero padding.
func (pk *PublicKey) EncryptBytes(msg []byte, rng io.Reader) (*Ciphertext, error) {
	grp := pk.cs.Group()
	chunkBits := blockBits(pk.cs)

	w := bitstream.NewWriter()
	w.WriteBytes(msg)
	bitLen := w.Len()
	blocks := w.Chunks(chunkBits)

	ct := newCiphertext(pk.cs, bitLen)
	for _, b := range blocks {
		r, err := grp.RandomExponent(rng)
		if err != nil {
			return nil, err
		}

		gamma := grp.ExpG(r)
		mask := grp.Exp(pk.h, r)
		lifted := new(big.Int).Add(b, big.NewInt(1))
		delta := grp.Mul(mask, lifted)

		ct.append(gamma, delta)
	}
	return ct, nil
}

// EncryptText is EncryptBytes for a UTF-8 string argument.
func (pk *PublicKey) EncryptText(s string, rng io.Reader) (*Ciphertext, error) {
	return pk.EncryptBytes([]byte(s), rng)
}

// DecryptToBytes recovers the original message bytes, rejecting ciphertexts
// bound to a different cryptosystem.
func (sk *PrivateKey) DecryptToBytes(ct *Ciphertext) ([]byte, error) {
	if !sk.pub.cs.Equal(ct.cs) {
		return nil, voteerr.ErrIncompatibleCryptosystem
	}

	grp := sk.pub.cs.Group()
	chunkBits := blockBits(sk.pub.cs)

	r := bitstream.NewReader()
	for i := 0; i < ct.Len(); i++ {
		gamma, delta := ct.Block(i)
		mask := grp.Exp(gamma, sk.x)
		maskInv := grp.Inverse(mask)
		lifted := grp.Mul(delta, maskInv)

		b := new(big.Int).Sub(lifted, big.NewInt(1))
		if b.Sign() < 0 {
			return nil, voteerr.ErrInvalidCiphertext
		}
		r.AppendChunk(b, chunkBits)
	}

	return r.Bytes(ct.bitLen), nil
}
