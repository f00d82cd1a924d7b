package wrpl

import "fmt"

// ParseError is the base error type for decode failures.
type ParseError struct {
	Message string
	Offset  *int
}

func (e *ParseError) Error() string {
	if e.Offset != nil {
		return fmt.Sprintf("%s at offset 0x%x", e.Message, *e.Offset)
	}
	return e.Message
}

// ShortFileError indicates the input is shorter than the fixed header length.
type ShortFileError struct{ ParseError }

// InvalidPrefixError indicates a VarSize leading byte of 11xxxxxx.
type InvalidPrefixError struct{ ParseError }

// NegativeSizeError indicates a VarSize decode produced a value outside u32.
type NegativeSizeError struct{ ParseError }

// TruncatedPrefixError indicates a VarSize continuation byte could not be read.
type TruncatedPrefixError struct{ ParseError }

// TruncatedFrameError indicates a declared frame size was not fully available.
type TruncatedFrameError struct{ ParseError }

// BadPacketHeaderError indicates a packet header failed to parse on a complete frame.
type BadPacketHeaderError struct{ ParseError }

// OffsetBeyondEOFError indicates a start offset beyond the end of the input.
type OffsetBeyondEOFError struct{ ParseError }

// ZlibScanFailedError indicates no zlib magic pair was found during the scan.
type ZlibScanFailedError struct{ ParseError }

// ResultsDecodeFailedError indicates the external blk decompression step failed.
type ResultsDecodeFailedError struct{ ParseError }

func newShortFileError(msg string) *ShortFileError {
	return &ShortFileError{ParseError{Message: msg}}
}

func newInvalidPrefixError(b byte, offset int) *InvalidPrefixError {
	return &InvalidPrefixError{ParseError{
		Message: fmt.Sprintf("invalid size prefix leading byte 0x%02x", b),
		Offset:  &offset,
	}}
}

func newNegativeSizeError(value int64, offset int) *NegativeSizeError {
	return &NegativeSizeError{ParseError{
		Message: fmt.Sprintf("size prefix decoded to out-of-range value %d", value),
		Offset:  &offset,
	}}
}

func newTruncatedPrefixError(msg string) *TruncatedPrefixError {
	return &TruncatedPrefixError{ParseError{Message: msg}}
}

func newTruncatedFrameError(msg string, offset int) *TruncatedFrameError {
	return &TruncatedFrameError{ParseError{Message: msg, Offset: &offset}}
}

func newBadPacketHeaderError(msg string) *BadPacketHeaderError {
	return &BadPacketHeaderError{ParseError{Message: msg}}
}

func newOffsetBeyondEOFError(offset, length int) *OffsetBeyondEOFError {
	return &OffsetBeyondEOFError{ParseError{
		Message: fmt.Sprintf("start offset is beyond input length (%d)", length),
		Offset:  &offset,
	}}
}

func newZlibScanFailedError(searchStart int) *ZlibScanFailedError {
	return &ZlibScanFailedError{ParseError{
		Message: "no zlib magic header found",
		Offset:  &searchStart,
	}}
}

func newResultsDecodeFailedError(msg string) *ResultsDecodeFailedError {
	return &ResultsDecodeFailedError{ParseError{Message: msg}}
}
