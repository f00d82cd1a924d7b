package wrpl

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

// DecodeOptions configures the Orchestrator (§4.8).
type DecodeOptions struct {
	// Offset, when non-nil, is used verbatim as the start of the event
	// stream instead of being resolved from the header or a zlib scan.
	Offset *uint64

	// SkipZlib treats the event stream as already-decompressed bytes
	// rather than a zlib stream.
	SkipZlib bool

	// ParseResults, when true, attempts to locate and decode the trailing
	// blk results block using Decompressor.
	ParseResults bool

	// Decompressor supplies the blk-decompression step. Required only
	// when ParseResults is true; LocateResults is skipped otherwise.
	Decompressor BlkDecompressor

	// Logger receives structured progress/diagnostic output. The zero
	// value (a Logger writing to no-op) is used when unset.
	Logger zerolog.Logger

	// TraceHook, see Decoder.TraceHook.
	TraceHook func(subtypeByte byte)
}

// Decode runs the full pipeline described in §4.8: magic-byte detection,
// header parse, event stream offset resolution, packet loop, and
// (optionally) results decoding. It is the package's main public entry
// point; ParseHeaderOnly and DecodeStream cover narrower uses.
//
// Detection: if data begins with the standard E5 AC signature, the header
// is present and is parsed; otherwise the input is treated as a raw
// stream and no header is produced.
//
// Offset resolution follows this precedence, matching the original CLI's
// control flow exactly:
//  1. opts.Offset, if set, is used as-is.
//  2. Otherwise, when the header is present and SkipZlib is false, the
//     input is scanned for the earliest zlib magic pair starting at byte
//     2 (not past the header — this mirrors the original tool's search,
//     quirks and all).
//  3. Otherwise, offset 0.
func Decode(ctx context.Context, data []byte, opts DecodeOptions) (*Replay, error) {
	logger := opts.Logger

	headerPresent := HasMagic(data)

	var header *ReplayHeader
	if headerPresent {
		h, err := ParseHeader(data)
		if err != nil {
			return nil, err
		}
		header = h
	} else {
		logger.Warn().Msg("input does not start with the standard wrpl signature, treating as raw stream")
	}

	offset, err := resolveStreamOffset(data, headerPresent, opts, logger)
	if err != nil {
		return nil, err
	}

	reader, err := NewStreamReader(data, offset, opts.SkipZlib, logger)
	if err != nil {
		return nil, err
	}

	dec := &Decoder{Logger: logger, TraceHook: opts.TraceHook}
	streamRes, err := dec.run(reader)
	if err != nil {
		return nil, err
	}

	replay := &Replay{
		Header:       header,
		Packets:      streamRes.packets,
		ChatMessages: streamRes.chatMessages,
		PacketCount:  streamRes.packetCount,
		DecodedBytes: streamRes.decodedBytes,
	}

	if opts.ParseResults && opts.Decompressor != nil && header != nil && header.HasResults(len(data)) {
		results, err := LocateResults(ctx, data, header.RezOffset, opts.Decompressor)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to decode results block, continuing without it")
		} else {
			replay.Results = results
		}
	}

	return replay, nil
}

// resolveStreamOffset implements the precedence rule documented on Decode.
func resolveStreamOffset(data []byte, headerPresent bool, opts DecodeOptions, logger zerolog.Logger) (uint64, error) {
	if opts.Offset != nil {
		return *opts.Offset, nil
	}

	if !headerPresent || opts.SkipZlib {
		return 0, nil
	}

	const scanStart = 2
	off, ok := FindZlibOffset(data, scanStart)
	if !ok {
		return 0, newZlibScanFailedError(scanStart)
	}
	logger.Debug().Int("offset", off).Msg("located zlib stream by magic-byte scan")
	return uint64(off), nil
}

// ParseHeaderOnly parses just the fixed header, without touching the event
// stream or results block — a cheap convenience for callers that only need
// metadata.
func ParseHeaderOnly(data []byte) (*ReplayHeader, error) {
	return ParseHeader(data)
}

// DecodeStream runs the packet loop directly against an already-positioned
// reader, skipping header parsing and offset resolution entirely. Useful
// when the caller has already located and wrapped the event stream (e.g.
// via NewStreamReader) and only wants packets and chat messages.
func DecodeStream(r io.Reader, logger zerolog.Logger, traceHook func(subtypeByte byte)) (*Replay, error) {
	dec := &Decoder{Logger: logger, TraceHook: traceHook}
	streamRes, err := dec.run(r)
	if err != nil {
		return nil, err
	}
	return &Replay{
		Packets:      streamRes.packets,
		ChatMessages: streamRes.chatMessages,
		PacketCount:  streamRes.packetCount,
		DecodedBytes: streamRes.decodedBytes,
	}, nil
}
