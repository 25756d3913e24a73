package mixnet

import (
	"encoding/binary"
	"io"
	"math/big"

	"github.com/ursaminor/threshold-vote/elgamal"
	"github.com/ursaminor/threshold-vote/threshold"
	"github.com/ursaminor/threshold-vote/voteerr"
)

// FileVersion is the wire version tag for collection and shuffling-proof
// files.
const FileVersion uint32 = 1

// MarshalBinary serializes the collection as (version, item count, each
// item's ciphertext encoding).
func (c *Collection) MarshalBinary() ([]byte, error) {
	var buf []byte
	buf = appendUint32(buf, FileVersion)
	buf = appendUint32(buf, uint32(c.Len()))
	for _, ct := range c.items {
		data, err := ct.MarshalBinary()
		if err != nil {
			return nil, err
		}
		buf = appendUint32(buf, uint32(len(data)))
		buf = append(buf, data...)
	}
	return buf, nil
}

// UnmarshalCollection parses a collection file, binding every ciphertext
// to tpk's cryptosystem.
func UnmarshalCollection(tpk *threshold.ThresholdPublicKey, data []byte) (*Collection, error) {
	pub, err := tpk.Combined()
	if err != nil {
		return nil, err
	}
	cs := pub.Cryptosystem()

	r := &byteReader{data: data}
	version, err := r.readUint32()
	if err != nil || version != FileVersion {
		return nil, voteerr.ErrSerialization
	}
	n, err := r.readUint32()
	if err != nil {
		return nil, voteerr.ErrSerialization
	}

	c := NewCollection(tpk)
	for i := uint32(0); i < n; i++ {
		size, err := r.readUint32()
		if err != nil {
			return nil, voteerr.ErrSerialization
		}
		chunk, err := r.readFixedCopy(int(size))
		if err != nil {
			return nil, voteerr.ErrSerialization
		}
		ct, err := elgamal.UnmarshalCiphertext(cs, chunk)
		if err != nil {
			return nil, err
		}
		if err := c.AddCiphertext(ct); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MarshalBinary serializes the shuffling proof as (version, input fp,
// output fp, Y fp, t, [M_l encodings], [branch encodings]).
func (p *ShufflingProof) MarshalBinary() ([]byte, error) {
	var buf []byte
	buf = appendUint32(buf, FileVersion)
	buf = append(buf, p.InputFP[:]...)
	buf = append(buf, p.OutputFP[:]...)
	buf = append(buf, p.YFP[:]...)
	buf = appendUint32(buf, uint32(len(p.M)))

	for _, m := range p.M {
		data, err := m.MarshalBinary()
		if err != nil {
			return nil, err
		}
		buf = appendUint32(buf, uint32(len(data)))
		buf = append(buf, data...)
	}

	for _, br := range p.branches {
		buf = appendBranch(buf, br)
	}

	return buf, nil
}

func appendBranch(buf []byte, br branch) []byte {
	if br.IsRerand {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1)
	}
	buf = appendUint32(buf, uint32(len(br.Perm)))
	for _, p := range br.Perm {
		buf = appendUint32(buf, uint32(p))
	}
	buf = appendUint32(buf, uint32(len(br.Rand)))
	for _, row := range br.Rand {
		buf = appendUint32(buf, uint32(len(row)))
		for _, v := range row {
			buf = appendBigInt(buf, v)
		}
	}
	return buf
}

// UnmarshalShufflingProof parses a shuffling proof file, binding every
// intermediate collection to tpk's cryptosystem.
func UnmarshalShufflingProof(tpk *threshold.ThresholdPublicKey, data []byte) (*ShufflingProof, error) {
	r := &byteReader{data: data}

	version, err := r.readUint32()
	if err != nil || version != FileVersion {
		return nil, voteerr.ErrSerialization
	}

	p := &ShufflingProof{}
	if err := r.readFixed(p.InputFP[:]); err != nil {
		return nil, voteerr.ErrSerialization
	}
	if err := r.readFixed(p.OutputFP[:]); err != nil {
		return nil, voteerr.ErrSerialization
	}
	if err := r.readFixed(p.YFP[:]); err != nil {
		return nil, voteerr.ErrSerialization
	}

	t, err := r.readUint32()
	if err != nil {
		return nil, voteerr.ErrSerialization
	}

	p.M = make([]*Collection, t)
	for l := uint32(0); l < t; l++ {
		size, err := r.readUint32()
		if err != nil {
			return nil, voteerr.ErrSerialization
		}
		chunk, err := r.readFixedCopy(int(size))
		if err != nil {
			return nil, voteerr.ErrSerialization
		}
		m, err := UnmarshalCollection(tpk, chunk)
		if err != nil {
			return nil, err
		}
		p.M[l] = m
	}

	p.branches = make([]branch, t)
	for l := uint32(0); l < t; l++ {
		br, err := readBranch(r)
		if err != nil {
			return nil, err
		}
		p.branches[l] = br
	}

	return p, nil
}

func readBranch(r *byteReader) (branch, error) {
	tag, err := r.readByte()
	if err != nil {
		return branch{}, voteerr.ErrSerialization
	}
	br := branch{IsRerand: tag == 0}

	permLen, err := r.readUint32()
	if err != nil {
		return branch{}, voteerr.ErrSerialization
	}
	br.Perm = make([]int, permLen)
	for i := range br.Perm {
		v, err := r.readUint32()
		if err != nil {
			return branch{}, voteerr.ErrSerialization
		}
		br.Perm[i] = int(v)
	}

	randLen, err := r.readUint32()
	if err != nil {
		return branch{}, voteerr.ErrSerialization
	}
	br.Rand = make([][]*big.Int, randLen)
	for i := range br.Rand {
		rowLen, err := r.readUint32()
		if err != nil {
			return branch{}, voteerr.ErrSerialization
		}
		row := make([]*big.Int, rowLen)
		for j := range row {
			v, err := r.readBigInt()
			if err != nil {
				return branch{}, voteerr.ErrSerialization
			}
			row[j] = v
		}
		br.Rand[i] = row
	}

	return br, nil
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

func (r *byteReader) readByte() (byte, error) {
	if r.pos+1 > len(r.data) {
		return 0, io.ErrUnexpectedEOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
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
