package wrpl

import (
	"bytes"
	"compress/zlib"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func buildFullReplay(t *testing.T) []byte {
	t.Helper()
	header := buildHeader(t)

	var eventStream bytes.Buffer
	eventStream.Write(encodeFrame(uint8(StartMarker), nil))
	eventStream.Write(encodeFrame(uint8(Chat), buildChatPayload("P1", "hi", nil)))
	eventStream.Write(encodeFrame(uint8(EndMarker), nil))

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	_, err := zw.Write(eventStream.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return append(header, compressed.Bytes()...)
}

func TestDecode_FullPipelineWithAutoDetectedOffset(t *testing.T) {
	data := buildFullReplay(t)

	replay, err := Decode(context.Background(), data, DecodeOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.NotNil(t, replay.Header)
	require.Equal(t, uint32(42), replay.Header.Version)
	require.Len(t, replay.ChatMessages, 1)
	require.Equal(t, "P1", replay.ChatMessages[0].Sender)
	require.Equal(t, uint64(3), replay.PacketCount)
	require.Nil(t, replay.Results)
}

func TestDecode_ExplicitOffsetSkipsAutoDetection(t *testing.T) {
	data := buildFullReplay(t)
	offset := uint64(HeaderSize)

	replay, err := Decode(context.Background(), data, DecodeOptions{
		Offset: &offset,
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	require.Equal(t, uint64(3), replay.PacketCount)
}

func TestDecode_ZeroByteInputYieldsEmptyResultNoError(t *testing.T) {
	replay, err := Decode(context.Background(), nil, DecodeOptions{SkipZlib: true, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.Nil(t, replay.Header)
	require.Empty(t, replay.Packets)
	require.Empty(t, replay.ChatMessages)
}

func TestDecode_ShortNonMagicInputIsTreatedAsRawStream(t *testing.T) {
	// too short to be a wrpl header and doesn't start with E5 AC: must not
	// be routed into ParseHeader at all.
	replay, err := Decode(context.Background(), []byte{0x01, 0x02, 0x03}, DecodeOptions{SkipZlib: true, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.Nil(t, replay.Header)
}

func TestDecode_WithResultsParsing(t *testing.T) {
	data := buildFullReplay(t)
	// point rez_offset at a location carrying decompressor-fed JSON; the
	// stub decompressor ignores the actual bytes, so any non-zero, in-range
	// offset works here.
	binaryPatchRezOffset(data, uint32(len(data)-1))

	dec := &stubDecompressor{json: `{"status":"success","player":[],"uiScriptsData":{"playersInfo":{}}}`}
	replay, err := Decode(context.Background(), data, DecodeOptions{
		ParseResults: true,
		Decompressor: dec,
		Logger:       zerolog.Nop(),
	})
	require.NoError(t, err)
	require.NotNil(t, replay.Results)
	require.Equal(t, "success", replay.Results.Status)
}

// binaryPatchRezOffset overwrites the rez_offset field in place within an
// already-built header buffer.
func binaryPatchRezOffset(data []byte, value uint32) {
	pos := headerMagicSize + headerVersionSize + headerLevelSize + headerLevelSettingsSize +
		headerBattleTypeSize + headerEnvironmentSize + headerVisibilitySize
	data[pos] = byte(value)
	data[pos+1] = byte(value >> 8)
	data[pos+2] = byte(value >> 16)
	data[pos+3] = byte(value >> 24)
}
