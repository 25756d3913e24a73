package threshold

import (
	"encoding/binary"
	"io"
	"math/big"

	"github.com/ursaminor/threshold-vote/cryptosystem"
	"github.com/ursaminor/threshold-vote/elgamal"
	"github.com/ursaminor/threshold-vote/fingerprint"
	"github.com/ursaminor/threshold-vote/voteerr"
)

// FileVersion is the wire version tag for threshold-package files.
const FileVersion uint32 = 1

// MarshalBinary serializes the threshold public key as (version,
// cryptosystem fp, n, k, Y, [Y_0..Y_{n-1}]).
func (tpk *ThresholdPublicKey) MarshalBinary() ([]byte, error) {
	var buf []byte
	buf = appendUint32(buf, FileVersion)
	csfp := tpk.cs.Fingerprint()
	buf = append(buf, csfp[:]...)
	buf = appendUint32(buf, uint32(tpk.n))
	buf = appendUint32(buf, uint32(tpk.k))
	buf = appendBigInt(buf, tpk.y)
	for i := 0; i < tpk.n; i++ {
		buf = appendBigInt(buf, tpk.yShares[i])
	}
	return buf, nil
}

// UnmarshalThresholdPublicKey parses a threshold public key file, rebinding
// it to cs and rejecting a fingerprint mismatch.
func UnmarshalThresholdPublicKey(cs *cryptosystem.Cryptosystem, data []byte) (*ThresholdPublicKey, error) {
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

	n, err := r.readUint32()
	if err != nil {
		return nil, voteerr.ErrSerialization
	}
	k, err := r.readUint32()
	if err != nil {
		return nil, voteerr.ErrSerialization
	}
	y, err := r.readBigInt()
	if err != nil {
		return nil, voteerr.ErrSerialization
	}

	yShares := make(map[int]*big.Int, n)
	for i := uint32(0); i < n; i++ {
		yi, err := r.readBigInt()
		if err != nil {
			return nil, voteerr.ErrSerialization
		}
		yShares[int(i)] = yi
	}

	return &ThresholdPublicKey{cs: cs, n: int(n), k: int(k), y: y, yShares: yShares}, nil
}

// SaveShare writes this trustee's private key pair as (threshold public
// key file, index i, share s_i).
func (kp *ThresholdKeyPair) SaveShare(w io.Writer) error {
	pubData, err := kp.Public.MarshalBinary()
	if err != nil {
		return err
	}

	var buf []byte
	buf = appendUint32(buf, FileVersion)
	buf = appendUint32(buf, uint32(len(pubData)))
	buf = append(buf, pubData...)
	buf = appendUint32(buf, uint32(kp.Index))
	buf = appendBigInt(buf, kp.Share)

	_, err = w.Write(buf)
	return err
}

// LoadShare parses a private key-pair share file written by SaveShare,
// rebinding its embedded threshold public key to cs.
func LoadShare(cs *cryptosystem.Cryptosystem, r io.Reader) (*ThresholdKeyPair, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	br := &byteReader{data: data}

	version, err := br.readUint32()
	if err != nil || version != FileVersion {
		return nil, voteerr.ErrSerialization
	}
	size, err := br.readUint32()
	if err != nil {
		return nil, voteerr.ErrSerialization
	}
	pubData, err := br.readFixedCopy(int(size))
	if err != nil {
		return nil, voteerr.ErrSerialization
	}
	pub, err := UnmarshalThresholdPublicKey(cs, pubData)
	if err != nil {
		return nil, err
	}

	index, err := br.readUint32()
	if err != nil {
		return nil, voteerr.ErrSerialization
	}
	share, err := br.readBigInt()
	if err != nil {
		return nil, voteerr.ErrSerialization
	}

	return &ThresholdKeyPair{Public: pub, Index: int(index), Share: share}, nil
}

// PartialDecryptionSet bundles one trustee's partial decryption of every
// block of a single ciphertext, the unit actually exchanged between
// trustees and a combinator.
type PartialDecryptionSet struct {
	Trustee      int
	CiphertextFP fingerprint.Digest
	Blocks       []*PartialDecryption
}

// MakePartialDecryptionSet computes trustee kp.Index's partial decryption
// of every block of ct.
func MakePartialDecryptionSet(kp *ThresholdKeyPair, ct *elgamal.Ciphertext, rng io.Reader) (*PartialDecryptionSet, error) {
	blocks := make([]*PartialDecryption, ct.Len())
	for b := 0; b < ct.Len(); b++ {
		gamma, _ := ct.Block(b)
		pd, err := MakePartialDecryption(kp, gamma, rng)
		if err != nil {
			return nil, err
		}
		blocks[b] = pd
	}
	return &PartialDecryptionSet{Trustee: kp.Index, CiphertextFP: ct.Fingerprint(), Blocks: blocks}, nil
}

// AddPartialDecryptionSet verifies and records every block of set against
// comb's ciphertext, rejecting a set computed for a different ciphertext.
func (c *Combinator) AddPartialDecryptionSet(set *PartialDecryptionSet) error {
	if set.CiphertextFP != c.ct.Fingerprint() {
		return voteerr.ErrInvalidCiphertext
	}
	if len(set.Blocks) != c.ct.Len() {
		return voteerr.ErrInvalidCiphertext
	}
	for b, pd := range set.Blocks {
		if err := c.AddPartialDecryption(b, pd); err != nil {
			return err
		}
	}
	return nil
}

// MarshalBinary serializes the partial decryption set as (version,
// cryptosystem fp, threshold pub fp, ciphertext fp, trustee i,
// [(d_b, t1_b, t2_b, u_b)]).
func (set *PartialDecryptionSet) MarshalBinary(cs *cryptosystem.Cryptosystem, tpk *ThresholdPublicKey) ([]byte, error) {
	var buf []byte
	buf = appendUint32(buf, FileVersion)
	csfp := cs.Fingerprint()
	buf = append(buf, csfp[:]...)
	tpkfp := tpk.Fingerprint()
	buf = append(buf, tpkfp[:]...)
	buf = append(buf, set.CiphertextFP[:]...)
	buf = appendUint32(buf, uint32(set.Trustee))
	buf = appendUint32(buf, uint32(len(set.Blocks)))
	for _, pd := range set.Blocks {
		buf = appendBigInt(buf, pd.D)
		buf = appendBigInt(buf, pd.Proof.CommitG)
		buf = appendBigInt(buf, pd.Proof.CommitH)
		buf = appendBigInt(buf, pd.Proof.Resp)
	}
	return buf, nil
}

// UnmarshalPartialDecryptionSet parses a partial decryption file, checking
// that it targets cs and tpk.
func UnmarshalPartialDecryptionSet(cs *cryptosystem.Cryptosystem, tpk *ThresholdPublicKey, data []byte) (*PartialDecryptionSet, error) {
	r := &byteReader{data: data}

	version, err := r.readUint32()
	if err != nil || version != FileVersion {
		return nil, voteerr.ErrSerialization
	}

	var csfp, tpkfp, ctfp fingerprint.Digest
	if err := r.readFixed(csfp[:]); err != nil {
		return nil, voteerr.ErrSerialization
	}
	if csfp != cs.Fingerprint() {
		return nil, voteerr.ErrIncompatibleCryptosystem
	}
	if err := r.readFixed(tpkfp[:]); err != nil {
		return nil, voteerr.ErrSerialization
	}
	if tpkfp != tpk.Fingerprint() {
		return nil, voteerr.ErrIncompatibleCryptosystem
	}
	if err := r.readFixed(ctfp[:]); err != nil {
		return nil, voteerr.ErrSerialization
	}

	trustee, err := r.readUint32()
	if err != nil {
		return nil, voteerr.ErrSerialization
	}
	m, err := r.readUint32()
	if err != nil {
		return nil, voteerr.ErrSerialization
	}

	blocks := make([]*PartialDecryption, m)
	for b := uint32(0); b < m; b++ {
		d, err := r.readBigInt()
		if err != nil {
			return nil, voteerr.ErrSerialization
		}
		t1, err := r.readBigInt()
		if err != nil {
			return nil, voteerr.ErrSerialization
		}
		t2, err := r.readBigInt()
		if err != nil {
			return nil, voteerr.ErrSerialization
		}
		u, err := r.readBigInt()
		if err != nil {
			return nil, voteerr.ErrSerialization
		}
		blocks[b] = &PartialDecryption{
			Trustee: int(trustee),
			D:       d,
			Proof:   &DlogEqProof{CommitG: t1, CommitH: t2, Resp: u},
		}
	}

	return &PartialDecryptionSet{Trustee: int(trustee), CiphertextFP: ctfp, Blocks: blocks}, nil
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

func (r *byteReader) readFixedCopy(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, io.ErrUnexpectedEOF
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+n])
	r.pos += n
	return out, nil
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
