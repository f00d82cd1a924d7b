package wrpl

import (
	"bytes"
	"compress/zlib"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestFindZlibOffset_FindsEarliestMagic(t *testing.T) {
	data := append([]byte{0x01, 0x02, 0x03}, 0x78, 0xDA, 0xAA, 0xBB)
	off, ok := FindZlibOffset(data, 0)
	require.True(t, ok)
	require.Equal(t, 3, off)
}

func TestFindZlibOffset_NoMatch(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	_, ok := FindZlibOffset(data, 0)
	require.False(t, ok)
}

func TestFindZlibOffset_AcrossChunkBoundary(t *testing.T) {
	// place the magic pair straddling the chunk boundary at zlibSearchChunkSize-1/0
	data := make([]byte, zlibSearchChunkSize+2)
	data[zlibSearchChunkSize-1] = 0x78
	data[zlibSearchChunkSize] = 0x5E
	off, ok := FindZlibOffset(data, 0)
	require.True(t, ok)
	require.Equal(t, zlibSearchChunkSize-1, off)
}

func TestNewStreamReader_OffsetBeyondEOF(t *testing.T) {
	_, err := NewStreamReader([]byte{1, 2, 3}, 10, true, zerolog.Nop())
	require.Error(t, err)
	var beyond *OffsetBeyondEOFError
	require.ErrorAs(t, err, &beyond)
}

func TestNewStreamReader_SkipZlibReadsRaw(t *testing.T) {
	data := []byte{0xAA, 0xBB, 0xCC}
	r, err := NewStreamReader(data, 0, true, zerolog.Nop())
	require.NoError(t, err)
	out := make([]byte, 3)
	n, err := r.Read(out)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, data, out)
}

func TestNewStreamReader_InflatesZlib(t *testing.T) {
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	_, err := zw.Write([]byte{0x40, 0x00, 0x08, 0x01})
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	r, err := NewStreamReader(compressed.Bytes(), 0, false, zerolog.Nop())
	require.NoError(t, err)
	out := make([]byte, 4)
	n, err := r.Read(out)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte{0x40, 0x00, 0x08, 0x01}, out)
}
