package wrpl

import (
	"encoding/binary"
	"errors"
	"io"
)

// ReadPacketHeader reads the 1- or 5-byte packet header (§4.2). Bit 0x10 of
// the leading byte elides the timestamp: when set, the packet inherits
// lastTimestampMs and only 1 byte is consumed; when clear, the next 4
// little-endian bytes are an absolute timestamp and 5 bytes are consumed.
//
// Returns io.EOF if zero bytes were available before the first read. A
// truncated timestamp read is not fatal: the packet type is still returned
// with lastTimestampMs retained, matching the non-fatal-warning contract.
func ReadPacketHeader(r io.Reader, lastTimestampMs uint32) (packetType uint8, timestampMs uint32, bytesConsumed int, err error) {
	var b0buf [1]byte
	n, err := r.Read(b0buf[:])
	if n == 0 {
		if err == nil || err == io.EOF {
			return 0, lastTimestampMs, 0, io.EOF
		}
		return 0, lastTimestampMs, 0, err
	}
	b0 := b0buf[0]

	if b0&0x10 != 0 {
		return b0 ^ 0x10, lastTimestampMs, 1, nil
	}

	var tsBuf [4]byte
	if _, err := io.ReadFull(r, tsBuf[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return b0, lastTimestampMs, 1, nil
		}
		return b0, lastTimestampMs, 1, err
	}

	return b0, binary.LittleEndian.Uint32(tsBuf[:]), 5, nil
}
