package wrpl

import (
	"encoding/binary"
	"errors"
	"io"
)

// ReadVarSize reads the bespoke 1-5 byte variable-length unsigned size
// prefix used to frame every packet in the event stream (§4.1).
//
// It returns io.EOF if zero bytes were available before the first read —
// callers treat that as a clean end of stream, not a failure. A
// TruncatedPrefixError (a continuation byte missing) is also treated as end
// of stream by the packet loop; every other error is fatal to it.
//
// The XOR masks below are the format, not a derivation: each one clears the
// marker bit of its length class, leaving the remaining bits as the value,
// and the masks must be reproduced verbatim.
func ReadVarSize(r io.Reader) (size uint32, bytesConsumed int, err error) {
	var b0buf [1]byte
	n, err := r.Read(b0buf[:])
	if n == 0 {
		if err == nil || err == io.EOF {
			return 0, 0, io.EOF
		}
		return 0, 0, err
	}
	b0 := b0buf[0]
	consumed := 1

	var value int64

	switch {
	case b0&0x80 != 0 && b0&0x40 == 0:
		// 10xxxxxx -> 1 byte total
		value = int64(b0 & 0x7F)
	case b0&0x80 != 0:
		// 11xxxxxx -> invalid
		return 0, 0, newInvalidPrefixError(b0, 0)
	case b0&0x40 != 0:
		// 01xxxxxx -> 2 bytes total
		var b1 [1]byte
		if _, err := io.ReadFull(r, b1[:]); err != nil {
			return 0, 0, wrapTruncatedPrefix(err, "2nd byte of 2-byte size prefix")
		}
		consumed++
		value = ((int64(b0) << 8) | int64(b1[0])) ^ 0x4000
	case b0&0x20 != 0:
		// 001xxxxx -> 3 bytes total
		var rest [2]byte
		if _, err := io.ReadFull(r, rest[:]); err != nil {
			return 0, 0, wrapTruncatedPrefix(err, "bytes 2-3 of 3-byte size prefix")
		}
		consumed += 2
		value = ((int64(b0) << 16) | (int64(rest[0]) << 8) | int64(rest[1])) ^ 0x200000
	case b0&0x10 != 0:
		// 0001xxxx -> 4 bytes total
		var rest [3]byte
		if _, err := io.ReadFull(r, rest[:]); err != nil {
			return 0, 0, wrapTruncatedPrefix(err, "bytes 2-4 of 4-byte size prefix")
		}
		consumed += 3
		value = ((int64(b0) << 24) | (int64(rest[0]) << 16) | (int64(rest[1]) << 8) | int64(rest[2])) ^ 0x10000000
	default:
		// 0000xxxx -> 5 bytes total; b0's low nibble is discarded.
		var rest [4]byte
		if _, err := io.ReadFull(r, rest[:]); err != nil {
			return 0, 0, wrapTruncatedPrefix(err, "bytes 2-5 of 5-byte size prefix")
		}
		consumed += 4
		value = int64(binary.LittleEndian.Uint32(rest[:]))
	}

	if value < 0 || value > int64(^uint32(0)) {
		return 0, 0, newNegativeSizeError(value, 0)
	}

	return uint32(value), consumed, nil
}

func wrapTruncatedPrefix(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return newTruncatedPrefixError("failed to read " + what)
	}
	return err
}
