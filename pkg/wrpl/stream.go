package wrpl

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"io"

	"github.com/rs/zerolog"
)

// NewStreamReader wraps data starting at startOffset as a sequential byte
// source (§4.5). When skipZlib is false the bytes are passed through a
// zlib inflater; when true they're read directly. An empty input is read
// as an empty stream either way. The returned reader is
// buffered so short reads from the underlying source never get
// misreported as EOF.
//
// It fails with OffsetBeyondEOFError if startOffset is past the end of
// data. A loose sanity check peeks the first three decompressed bytes and
// logs a warning (never fatal) if they don't look like a typical wrpl
// stream header.
func NewStreamReader(data []byte, startOffset uint64, skipZlib bool, logger zerolog.Logger) (*bufio.Reader, error) {
	if startOffset > uint64(len(data)) {
		return nil, newOffsetBeyondEOFError(int(startOffset), len(data))
	}
	input := data[startOffset:]

	var src io.Reader = bytes.NewReader(input)
	if !skipZlib && len(input) > 0 {
		zr, err := zlib.NewReader(src)
		if err != nil {
			return nil, err
		}
		src = zr
	}

	reader := bufio.NewReader(src)

	if !skipZlib {
		peeked, _ := reader.Peek(3)
		if len(peeked) >= 3 {
			if peeked[0] != 0x40 || peeked[2] != 0x08 {
				logger.Warn().Msg("decompressed replay stream does not start with expected bytes")
			}
		}
	}

	return reader, nil
}

// FindZlibOffset scans data for the earliest of the three known zlib magic
// byte pairs (§6), starting no earlier than searchStart. It scans in
// zlibSearchChunkSize windows with a 1-byte overlap so a magic pair split
// across a chunk boundary is never missed, and returns the absolute offset
// of the first match across all three patterns.
func FindZlibOffset(data []byte, searchStart int) (int, bool) {
	if searchStart < 0 {
		searchStart = 0
	}
	if searchStart >= len(data) {
		return 0, false
	}

	const overlap = 1 // max magic length (2) - 1

	pos := searchStart
	for pos < len(data) {
		end := pos + zlibSearchChunkSize
		if end > len(data) {
			end = len(data)
		}
		window := data[pos:end]

		best := -1
		for _, magic := range zlibMagics {
			if idx := bytes.Index(window, magic[:]); idx != -1 {
				if best == -1 || idx < best {
					best = idx
				}
			}
		}
		if best != -1 {
			return pos + best, true
		}

		if end >= len(data) {
			break
		}
		pos = end - overlap
	}

	return 0, false
}
