// Command find_offset brute-forces candidate event-stream start offsets by
// looking for bytes that parse as a plausible chat packet. Purely a
// debugging aid — it is not meant to be a reliable offset detector.
package main

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/llama-for3ver/wrpl-decoder/pkg/wrpl"
)

var (
	flagReplayFile  string
	flagSkipZlib    bool
	flagSearchStart string
	flagSearchEnd   string
)

type candidate struct {
	offset    uint64
	sender    string
	message   string
	packetHex string
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find_offset",
		Short: "Brute-force search a replay file for a plausible event-stream start offset",
		RunE:  runFindOffset,
	}

	cmd.Flags().StringVarP(&flagReplayFile, "replay-file", "r", "", "path to the replay file (required)")
	cmd.Flags().BoolVar(&flagSkipZlib, "skip-zlib", false, "scan without zlib decompression")
	cmd.Flags().StringVar(&flagSearchStart, "search-start", "0", "offset to start searching from (hex 0x... or decimal)")
	cmd.Flags().StringVar(&flagSearchEnd, "search-end", "0", "offset to stop searching at, exclusive (0 means end of file)")
	_ = cmd.MarkFlagRequired("replay-file")

	return cmd
}

func runFindOffset(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	data, err := os.ReadFile(flagReplayFile)
	if err != nil {
		logger.Error().Err(err).Msg("couldn't read replay file")
		os.Exit(1)
	}

	searchStart, err := wrpl.ParseOffset(flagSearchStart)
	if err != nil {
		logger.Error().Err(err).Msg("invalid --search-start")
		os.Exit(1)
	}
	searchEndArg, err := wrpl.ParseOffset(flagSearchEnd)
	if err != nil {
		logger.Error().Err(err).Msg("invalid --search-end")
		os.Exit(1)
	}

	fileLen := uint64(len(data))
	searchEnd := searchEndArg
	if searchEnd == 0 {
		searchEnd = fileLen
	}

	if searchStart >= searchEnd || searchEnd > fileLen {
		logger.Error().Uint64("start", searchStart).Uint64("end", searchEnd).Msg("invalid search range")
		os.Exit(1)
	}

	logger.Info().Uint64("start", searchStart).Uint64("end", searchEnd).Str("path", flagReplayFile).Msg("searching offsets")

	var candidates []candidate
	for offset := searchStart; offset < searchEnd; offset++ {
		if cand, ok := tryParseChatAtOffset(data, offset, flagSkipZlib); ok {
			logger.Info().
				Str("offset", fmt.Sprintf("%#x", cand.offset)).
				Str("sender", cand.sender).
				Str("message", cand.message).
				Msg("potential chat packet")
			candidates = append(candidates, cand)
		}
	}

	if len(candidates) == 0 {
		logger.Warn().Str("start", fmt.Sprintf("%#x", searchStart)).Str("end", fmt.Sprintf("%#x", searchEnd)).Msg("couldn't find anything in that range")
		return nil
	}

	fmt.Println("\nSearch complete - top candidates:")
	for _, cand := range candidates {
		fmt.Printf("  Offset %#08x  | '%s': '%s'\n    Raw chat packet: %s\n", cand.offset, cand.sender, cand.message, cand.packetHex)
	}
	fmt.Printf("\nFirst likely stream offset: %#x (%d)\n", candidates[0].offset, candidates[0].offset)

	return nil
}

// tryParseChatAtOffset attempts to read up to six packets starting at
// offset and reports whether any chat-typed one among them parses as a
// plausible, human-authored message.
func tryParseChatAtOffset(data []byte, offset uint64, skipZlib bool) (candidate, bool) {
	if offset+10 >= uint64(len(data)) {
		return candidate{}, false
	}

	tail := data[offset:]
	var r io.Reader = bytes.NewReader(tail)
	if !skipZlib {
		zr, err := zlib.NewReader(bytes.NewReader(tail))
		if err != nil {
			return candidate{}, false
		}
		defer zr.Close()
		r = zr
	}
	reader := bufio.NewReader(r)

	var lastTimestamp uint32
	for i := 0; i < 6; i++ {
		size, _, err := wrpl.ReadVarSize(reader)
		if err != nil || size == 0 || size >= 0x2000 {
			return candidate{}, false
		}

		packetBuf := make([]byte, size)
		if _, err := io.ReadFull(reader, packetBuf); err != nil {
			return candidate{}, false
		}

		rawType, timestamp, headerSize, err := wrpl.ReadPacketHeader(bytes.NewReader(packetBuf), lastTimestamp)
		if err != nil {
			return candidate{}, false
		}
		lastTimestamp = timestamp

		if rawType != uint8(wrpl.Chat) {
			continue
		}

		payload := packetBuf[headerSize:]
		chat := wrpl.ParseChatPayload(payload, timestamp)
		if chat == nil {
			continue
		}

		if looksLikeChat(chat.Sender, chat.Message) {
			return candidate{
				offset:    offset,
				sender:    chat.Sender,
				message:   chat.Message,
				packetHex: hex.EncodeToString(packetBuf),
			}, true
		}
	}

	return candidate{}, false
}

func looksLikeChat(sender, message string) bool {
	if sender == "" || message == "" || len(sender) > 32 || len(message) > 128 {
		return false
	}
	if !allGraphic(sender) {
		return false
	}
	return strings.IndexFunc(message, unicode.IsLetter) >= 0 || strings.IndexFunc(message, unicode.IsDigit) >= 0
}

func allGraphic(s string) bool {
	for _, r := range s {
		if !unicode.IsGraphic(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
