package wrpl

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadPacketHeader_ElidedTimestamp(t *testing.T) {
	r := bytes.NewReader([]byte{0x13}) // 0x10 flag set, type = 0x03 once unmasked
	packetType, ts, n, err := ReadPacketHeader(r, 1234)
	require.NoError(t, err)
	require.Equal(t, uint8(0x03), packetType)
	require.Equal(t, uint32(1234), ts)
	require.Equal(t, 1, n)
}

func TestReadPacketHeader_AbsoluteTimestamp(t *testing.T) {
	r := bytes.NewReader([]byte{0x03, 0x78, 0x56, 0x34, 0x12})
	packetType, ts, n, err := ReadPacketHeader(r, 0)
	require.NoError(t, err)
	require.Equal(t, uint8(0x03), packetType)
	require.Equal(t, uint32(0x12345678), ts)
	require.Equal(t, 5, n)
}

func TestReadPacketHeader_TruncatedTimestampIsNonFatal(t *testing.T) {
	r := bytes.NewReader([]byte{0x03, 0x78, 0x56})
	packetType, ts, n, err := ReadPacketHeader(r, 999)
	require.NoError(t, err)
	require.Equal(t, uint8(0x03), packetType)
	require.Equal(t, uint32(999), ts)
	require.Equal(t, 1, n)
}

func TestReadPacketHeader_CleanEOF(t *testing.T) {
	r := bytes.NewReader(nil)
	_, _, _, err := ReadPacketHeader(r, 0)
	require.Error(t, err)
}
