// Package fingerprint implements the canonical, fixed-width big-endian
// serialization every cryptographic object in the core is hashed under.
// Two independently produced serializations of equal objects must produce
// byte-identical output, since fingerprints persist across files and are
// compared across operators.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"
)

// Size is the length in bytes of a fingerprint.
const Size = sha256.Size

// Digest is a SHA-256 fingerprint.
type Digest = [Size]byte

// Builder accumulates a canonical pre-image and hashes it on Sum. Each field
// is written as its bit-length (64-bit big-endian unsigned) followed by its
// bytes, zero-padded on the left to a multiple of 8 bits.
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty canonical-serialization builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WriteInt appends x's bit-length header and big-endian bytes.
func (b *Builder) WriteInt(x *big.Int) *Builder {
	bitLen := uint64(x.BitLen())
	b.writeUint64(bitLen)

	byteLen := (x.BitLen() + 7) / 8
	padded := make([]byte, byteLen)
	x.FillBytes(padded)
	b.buf = append(b.buf, padded...)
	return b
}

// WriteUint64 appends a raw 64-bit field, with bit-length header fixed at 64.
func (b *Builder) WriteUint64(x uint64) *Builder {
	b.writeUint64(64)
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], x)
	b.buf = append(b.buf, tmp[:]...)
	return b
}

// WriteBytes appends a length-prefixed opaque byte field. Used for digests
// and other fields that are not canonically integers.
func (b *Builder) WriteBytes(data []byte) *Builder {
	b.writeUint64(uint64(len(data)) * 8)
	b.buf = append(b.buf, data...)
	return b
}

// WriteDigest appends a child fingerprint verbatim; container fingerprints
// are the hash of their children's fingerprints concatenated in order.
func (b *Builder) WriteDigest(d Digest) *Builder {
	b.buf = append(b.buf, d[:]...)
	return b
}

func (b *Builder) writeUint64(x uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], x)
	b.buf = append(b.buf, tmp[:]...)
}

// Bytes returns the accumulated canonical pre-image.
func (b *Builder) Bytes() []byte {
	return b.buf
}

// Sum hashes the accumulated canonical pre-image with SHA-256.
func (b *Builder) Sum() Digest {
	return sha256.Sum256(b.buf)
}

// Of is a convenience for hashing a single already-built pre-image.
func Of(preimage []byte) Digest {
	return sha256.Sum256(preimage)
}
