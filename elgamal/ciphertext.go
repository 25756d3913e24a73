package elgamal

import (
	"encoding/binary"
	"io"
	"math/big"

	"github.com/ursaminor/threshold-vote/cryptosystem"
	"github.com/ursaminor/threshold-vote/fingerprint"
	"github.com/ursaminor/threshold-vote/voteerr"
)

// block is a single ElGamal pair (gamma, delta) within a Ciphertext.
type block struct {
	gamma *big.Int
	delta *big.Int
}

// Ciphertext is an ordered sequence of ElGamal blocks plus the bit-length
// of the cleartext they encode, immutable except for the internal append
// used by encryption and by the mixnet's shuffle.
type Ciphertext struct {
	cs     *cryptosystem.Cryptosystem
	bitLen int
	blocks []block
}

func newCiphertext(cs *cryptosystem.Cryptosystem, bitLen int) *Ciphertext {
	return &Ciphertext{cs: cs, bitLen: bitLen}
}

// NewCiphertext builds a Ciphertext from already-computed blocks, used by
// the mixnet package when assembling a re-encrypted collection.
func NewCiphertext(cs *cryptosystem.Cryptosystem, bitLen int, gammas, deltas []*big.Int) (*Ciphertext, error) {
	if len(gammas) != len(deltas) {
		return nil, voteerr.ErrInvalidCiphertext
	}
	ct := newCiphertext(cs, bitLen)
	for i := range gammas {
		ct.append(gammas[i], deltas[i])
	}
	return ct, nil
}

func (ct *Ciphertext) append(gamma, delta *big.Int) {
	ct.blocks = append(ct.blocks, block{gamma: gamma, delta: delta})
}

// Cryptosystem returns the cryptosystem this ciphertext is bound to.
func (ct *Ciphertext) Cryptosystem() *cryptosystem.Cryptosystem { return ct.cs }

// BitLen returns the recorded cleartext bit-length L.
func (ct *Ciphertext) BitLen() int { return ct.bitLen }

// Len returns the number of blocks m.
func (ct *Ciphertext) Len() int { return len(ct.blocks) }

// Block returns the i-th (gamma, delta) pair.
func (ct *Ciphertext) Block(i int) (gamma, delta *big.Int) {
	b := ct.blocks[i]
	return b.gamma, b.delta
}

// Fingerprint is SHA-256 over (C.fingerprint, L, [gamma_i, delta_i]) in
// fixed-width big-endian.
func (ct *Ciphertext) Fingerprint() fingerprint.Digest {
	b := fingerprint.NewBuilder()
	csfp := ct.cs.Fingerprint()
	b.WriteDigest(csfp)
	b.WriteUint64(uint64(ct.bitLen))
	for _, blk := range ct.blocks {
		b.WriteInt(blk.gamma)
		b.WriteInt(blk.delta)
	}
	return b.Sum()
}

// FileVersion is the wire version tag for ciphertext files.
const FileVersion uint32 = 1

// MarshalBinary implements the ciphertext file format of §6:
// (version, cryptosystem fp, bit-length L, m, [(gamma_i, delta_i)]).
func (ct *Ciphertext) MarshalBinary() ([]byte, error) {
	var buf []byte
	buf = appendUint32(buf, FileVersion)
	csfp := ct.cs.Fingerprint()
	buf = append(buf, csfp[:]...)
	buf = appendUint32(buf, uint32(ct.bitLen))
	buf = appendUint32(buf, uint32(len(ct.blocks)))
	for _, blk := range ct.blocks {
		buf = appendBigInt(buf, blk.gamma)
		buf = appendBigInt(buf, blk.delta)
	}
	return buf, nil
}

// UnmarshalCiphertext parses the ciphertext file format and rebinds the
// result to cs, rejecting a fingerprint mismatch.
func UnmarshalCiphertext(cs *cryptosystem.Cryptosystem, data []byte) (*Ciphertext, error) {
	r := &byteReader{data: data}

	version, err := r.readUint32()
	if err != nil || version != FileVersion {
		return nil, voteerr.ErrSerialization
	}

	var wantFP fingerprint.Digest
	if err := r.readFixed(wantFP[:]); err != nil {
		return nil, voteerr.ErrSerialization
	}
	if wantFP != cs.Fingerprint() {
		return nil, voteerr.ErrIncompatibleCryptosystem
	}

	bitLen, err := r.readUint32()
	if err != nil {
		return nil, voteerr.ErrSerialization
	}
	m, err := r.readUint32()
	if err != nil {
		return nil, voteerr.ErrSerialization
	}

	ct := newCiphertext(cs, int(bitLen))
	for i := uint32(0); i < m; i++ {
		gamma, err := r.readBigInt()
		if err != nil {
			return nil, voteerr.ErrSerialization
		}
		delta, err := r.readBigInt()
		if err != nil {
			return nil, voteerr.ErrSerialization
		}
		ct.append(gamma, delta)
	}
	return ct, nil
}

func appendUint32(buf []byte, x uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], x)
	return append(buf, tmp[:]...)
}

func appendBigInt(buf []byte, x *big.Int) []byte {
	data := x.Bytes()
	buf = appendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) readUint32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *byteReader) readFixed(dst []byte) error {
	if r.pos+len(dst) > len(r.data) {
		return io.ErrUnexpectedEOF
	}
	copy(dst, r.data[r.pos:r.pos+len(dst)])
	r.pos += len(dst)
	return nil
}

func (r *byteReader) readBigInt() (*big.Int, error) {
	n, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	if r.pos+int(n) > len(r.data) {
		return nil, io.ErrUnexpectedEOF
	}
	v := new(big.Int).SetBytes(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return v, nil
}
