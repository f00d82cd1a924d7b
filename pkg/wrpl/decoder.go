package wrpl

import (
	"bytes"
	"errors"
	"io"

	"github.com/rs/zerolog"
)

// Decoder drives the packet loop (§4.6) over a sequential byte source.
// TraceHook, when set, is invoked with the leading subtype/flag byte of
// every chat payload before it's discarded — an escape hatch for deeper
// analysis without changing ParseChatPayload's contract (§9 Open
// Question: chat subtype/flag byte).
type Decoder struct {
	Logger    zerolog.Logger
	TraceHook func(subtypeByte byte)
}

// streamResult accumulates everything the packet loop produces.
type streamResult struct {
	packets      []Packet
	chatMessages []ChatInfo
	packetCount  uint64
	decodedBytes uint64
}

// run executes the packet loop described in §4.6 against r, which should
// already be positioned at the start of the (decompressed) event stream.
func (d *Decoder) run(r io.Reader) (*streamResult, error) {
	res := &streamResult{}
	var lastTimestampMs uint32

	for {
		size, prefixBytes, err := ReadVarSize(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				d.Logger.Debug().Msg("clean EOF reading size prefix, end of stream")
				break
			}
			var truncated *TruncatedPrefixError
			if errors.As(err, &truncated) {
				d.Logger.Warn().Msg("incomplete size prefix at end of stream, treating as EOF")
				break
			}
			d.Logger.Error().Err(err).Msg("failed to read size prefix")
			return res, err
		}
		res.decodedBytes += uint64(prefixBytes)

		if size == 0 {
			d.Logger.Warn().Msg("zero-size packet payload encountered, continuing")
			res.packetCount++
			continue
		}

		frame := make([]byte, size)
		n, readErr := io.ReadFull(r, frame)
		if readErr != nil {
			if n == 0 {
				d.Logger.Info().Msg("no payload data read after size prefix, stopping")
				break
			}
			d.Logger.Warn().Int("expected", int(size)).Int("got", n).Msg("incomplete packet payload, truncating frame")
			frame = frame[:n]
		}
		res.decodedBytes += uint64(n)

		rawType, timestampMs, headerBytes, err := ReadPacketHeader(bytes.NewReader(frame), lastTimestampMs)
		if err != nil {
			if errors.Is(err, io.EOF) || readErr != nil {
				d.Logger.Warn().Msg("unexpected EOF reading packet header from partial frame, stopping")
				break
			}
			d.Logger.Error().Err(err).Msg("failed to parse packet header on a complete frame")
			return res, newBadPacketHeaderError(err.Error())
		}
		lastTimestampMs = timestampMs

		payload := frame[headerBytes:]
		packet := Packet{
			Type:        packetTypeFromByte(rawType),
			RawType:     rawType,
			TimestampMs: timestampMs,
			Payload:     payload,
		}
		res.packets = append(res.packets, packet)

		if packet.Type == Chat {
			if d.TraceHook != nil && len(payload) > 0 {
				d.TraceHook(payload[0])
			}
			if chat := ParseChatPayload(payload, timestampMs); chat != nil {
				res.chatMessages = append(res.chatMessages, *chat)
			}
		}

		res.packetCount++
	}

	d.Logger.Info().Uint64("packets", res.packetCount).Uint64("bytes", res.decodedBytes).Msg("processed event stream")
	return res, nil
}
