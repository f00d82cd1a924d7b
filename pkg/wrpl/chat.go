package wrpl

import "unicode/utf8"

// ParseChatPayload decodes the inner payload of a type-3 (Chat) packet
// (§4.4). It returns nil on any failure — empty payload, truncation,
// non-UTF-8 bytes, or a declared length overrunning the payload — since
// chat-parse failures are local and never fatal to the surrounding loop.
func ParseChatPayload(payload []byte, timestampMs uint32) *ChatInfo {
	if len(payload) == 0 {
		return nil
	}

	// Leading subtype/flag byte: read and discarded (Open Question, §9 —
	// preserved verbatim, not interpreted).
	pos := 1
	if pos >= len(payload) {
		return nil
	}

	senderLen := int(payload[pos])
	pos++
	sender, pos, ok := readChatString(payload, pos, senderLen)
	if !ok {
		return nil
	}

	if pos >= len(payload) {
		return nil
	}
	messageLen := int(payload[pos])
	pos++
	message, pos, ok := readChatString(payload, pos, messageLen)
	if !ok {
		return nil
	}

	info := &ChatInfo{
		TimestampMs: timestampMs,
		Sender:      sender,
		Message:     message,
	}

	remaining := len(payload) - pos
	if remaining >= 1 {
		v := payload[pos]
		info.ChannelType = &v
		pos++
	}
	remaining = len(payload) - pos
	if remaining >= 1 {
		v := payload[pos]
		info.IsEnemy = &v
	}

	return info
}

func readChatString(payload []byte, pos, n int) (string, int, bool) {
	if pos+n > len(payload) {
		return "", pos, false
	}
	b := payload[pos : pos+n]
	if !utf8.Valid(b) {
		return "", pos, false
	}
	return string(b), pos + n, true
}
