package wrpl

import (
	"encoding/binary"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// illFormedUTF8Fixer replaces invalid UTF-8 byte sequences with the Unicode
// replacement rune, the same lossy semantics as Rust's
// String::from_utf8_lossy that the original decoder relies on.
var illFormedUTF8Fixer = runes.ReplaceIllFormed()

// ParseHeader parses the fixed-layout file header (§3) from the start of
// data. It fails with ShortFileError if data is shorter than HeaderSize;
// otherwise it always succeeds — malformed string bytes are lossily
// decoded, never rejected. The magic signature is read but not validated
// here; callers (the Orchestrator) decide what to do with it.
func ParseHeader(data []byte) (*ReplayHeader, error) {
	if len(data) < HeaderSize {
		return nil, newShortFileError("input shorter than the fixed replay header")
	}

	rd := &headerCursor{b: data}

	h := &ReplayHeader{}
	copy(h.Magic[:], rd.take(headerMagicSize))
	h.Version = binary.LittleEndian.Uint32(rd.take(headerVersionSize))
	h.Level = rd.takeString(headerLevelSize)
	h.LevelSettings = rd.takeString(headerLevelSettingsSize)
	h.BattleType = rd.takeString(headerBattleTypeSize)
	h.Environment = rd.takeString(headerEnvironmentSize)
	h.Visibility = rd.takeString(headerVisibilitySize)
	h.RezOffset = binary.LittleEndian.Uint32(rd.take(headerRezOffsetSize))
	h.Difficulty = difficultyFromByte(rd.take(headerDifficultySize)[0])
	rd.skip(headerPad1Size)
	h.SessionType = binary.LittleEndian.Uint32(rd.take(headerSessionTypeSize))
	rd.skip(headerPad2Size)
	h.SessionID = binary.LittleEndian.Uint64(rd.take(headerSessionIDSize))
	rd.skip(headerPad3Size)
	h.MSetSize = binary.LittleEndian.Uint32(rd.take(headerMSetSizeSize))
	rd.skip(headerPad4Size)
	h.LocName = rd.takeString(headerLocNameSize)
	h.StartTime = binary.LittleEndian.Uint32(rd.take(headerStartTimeSize))
	h.TimeLimit = binary.LittleEndian.Uint32(rd.take(headerTimeLimitSize))
	h.ScoreLimit = binary.LittleEndian.Uint32(rd.take(headerScoreLimitSize))
	rd.skip(headerPad5Size)
	h.BattleClass = rd.takeString(headerBattleClassSize)
	h.BattleKillStreak = rd.takeString(headerBattleKillStreak)

	return h, nil
}

// HasMagic reports whether data begins with the standard .wrpl signature.
func HasMagic(data []byte) bool {
	return len(data) >= 2 && data[0] == wrplMagic[0] && data[1] == wrplMagic[1]
}

// headerCursor walks a fixed-layout byte slice field by field.
type headerCursor struct {
	b   []byte
	pos int
}

func (c *headerCursor) take(n int) []byte {
	b := c.b[c.pos : c.pos+n]
	c.pos += n
	return b
}

func (c *headerCursor) skip(n int) {
	c.pos += n
}

// takeString reads n NUL-padded bytes and returns the prefix up to the
// first NUL, lossily decoded as UTF-8.
func (c *headerCursor) takeString(n int) string {
	raw := c.take(n)
	nullPos := n
	for i, b := range raw {
		if b == 0 {
			nullPos = i
			break
		}
	}
	fixed, _, _ := transform.Bytes(illFormedUTF8Fixer, raw[:nullPos])
	return string(fixed)
}
