package bitstream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Writer_Chunks_RoundTrip(t *testing.T) {
	w := NewWriter()
	msg := []byte("Dummy vote #7")
	w.WriteBytes(msg)

	chunkBits := 31
	chunks := w.Chunks(chunkBits)
	require.NotEmpty(t, chunks)

	r := NewReader()
	for _, c := range chunks {
		r.AppendChunk(c, chunkBits)
	}

	got := r.Bytes(w.Len())
	require.Equal(t, msg, got)
}

func Test_Writer_Chunks_EmptyMessage(t *testing.T) {
	w := NewWriter()
	chunks := w.Chunks(31)
	require.Len(t, chunks, 1)
	require.Equal(t, int64(0), chunks[0].Int64())
}

func Test_Reader_Bytes_TruncatesPadding(t *testing.T) {
	w := NewWriter()
	msg := []byte("x")
	w.WriteBytes(msg)

	chunkBits := 31
	chunks := w.Chunks(chunkBits)

	r := NewReader()
	for _, c := range chunks {
		r.AppendChunk(c, chunkBits)
	}

	// Block is wider than the message; truncating to the real bit-length
	// must discard the zero padding rather than return the padded bytes.
	got := r.Bytes(8)
	require.Equal(t, msg, got)
}
