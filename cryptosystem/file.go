package cryptosystem

import (
	"encoding/binary"
	"io"
	"math/big"

	"golang.org/x/xerrors"
)

// FileVersion is the wire version tag written to .pvcryptosys files.
const FileVersion uint32 = 1

// Save writes the canonical .pvcryptosys encoding: a version tag followed
// by (nbits, p, q, g) as length-prefixed big-endian unsigned integers.
func (c *Cryptosystem) Save(w io.Writer) error {
	if err := writeUint32(w, FileVersion); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(c.nbits)); err != nil {
		return err
	}
	if err := writeBigInt(w, c.grp.P()); err != nil {
		return err
	}
	if err := writeBigInt(w, c.grp.Q()); err != nil {
		return err
	}
	return writeBigInt(w, c.grp.G())
}

// Load reads a .pvcryptosys encoding and fully re-verifies its parameters
// (primality, p = 2q+1, g a valid generator) before returning.
func Load(r io.Reader) (*Cryptosystem, error) {
	version, err := readUint32(r)
	if err != nil {
		return nil, xerrors.Errorf("cryptosystem: reading version: %w", err)
	}
	if version != FileVersion {
		return nil, xerrors.Errorf("cryptosystem: unsupported file version %d", version)
	}

	nbits, err := readUint32(r)
	if err != nil {
		return nil, xerrors.Errorf("cryptosystem: reading nbits: %w", err)
	}

	p, err := readBigInt(r)
	if err != nil {
		return nil, xerrors.Errorf("cryptosystem: reading p: %w", err)
	}
	q, err := readBigInt(r)
	if err != nil {
		return nil, xerrors.Errorf("cryptosystem: reading q: %w", err)
	}
	g, err := readBigInt(r)
	if err != nil {
		return nil, xerrors.Errorf("cryptosystem: reading g: %w", err)
	}

	return New(int(nbits), p, q, g)
}

func writeUint32(w io.Writer, x uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], x)
	_, err := w.Write(buf[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// writeBigInt writes a byte-length-prefixed big-endian unsigned integer.
func writeBigInt(w io.Writer, x *big.Int) error {
	data := x.Bytes()
	if err := writeUint32(w, uint32(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

func readBigInt(r io.Reader) (*big.Int, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(data), nil
}
