// Command parse_replay decodes a .wrpl file, printing its header, chat
// transcript, and (optionally) post-battle results.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/llama-for3ver/wrpl-decoder/pkg/wrpl"
)

var (
	flagReplayFile     string
	flagOffset         string
	flagSkipZlib       bool
	flagParseResults   bool
	flagBlkDecompCmd   string
	flagVerbose        bool
)

func humanizeStatus(status string) string {
	switch status {
	case "fail":
		return "Victory"
	case "success":
		return "Defeat"
	case "left":
		return "Draw"
	default:
		return "Unknown"
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse_replay",
		Short: "Parse a War Thunder replay file, extracting header, chat messages, and results",
		RunE:  runParseReplay,
	}

	cmd.Flags().StringVarP(&flagReplayFile, "replay-file", "r", "", "path to the replay file to decode (required)")
	cmd.Flags().StringVarP(&flagOffset, "offset", "o", "", "manually specify the stream start offset (hex 0x... or decimal); overrides auto-detection")
	cmd.Flags().BoolVar(&flagSkipZlib, "skip-zlib", false, "skip zlib decompression and read raw packet data directly from the offset")
	cmd.Flags().BoolVar(&flagParseResults, "parse-results", false, "attempt to parse the trailing results block")
	cmd.Flags().StringVar(&flagBlkDecompCmd, "blk-decompress-cmd", "", "path to the blk_decompress executable (defaults to blk_decompress on PATH)")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug-level logging")
	_ = cmd.MarkFlagRequired("replay-file")

	return cmd
}

func runParseReplay(cmd *cobra.Command, args []string) error {
	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	fileData, err := os.ReadFile(flagReplayFile)
	if err != nil {
		logger.Error().Err(err).Str("path", flagReplayFile).Msg("failed to read replay file")
		os.Exit(1)
	}

	opts := wrpl.DecodeOptions{
		SkipZlib:     flagSkipZlib,
		ParseResults: flagParseResults,
		Logger:       logger,
	}
	if flagParseResults {
		opts.Decompressor = &wrpl.ExternalBlkDecompressor{Command: flagBlkDecompCmd}
	}
	if flagOffset != "" {
		off, err := wrpl.ParseOffset(flagOffset)
		if err != nil {
			logger.Error().Err(err).Str("offset", flagOffset).Msg("invalid --offset value")
			os.Exit(1)
		}
		opts.Offset = &off
		logger.Info().Str("offset", flagOffset).Msg("using manually provided offset")
	}

	replay, err := wrpl.Decode(context.Background(), fileData, opts)
	if err != nil {
		logger.Error().Err(err).Msg("error during replay decoding")
		os.Exit(1)
	}

	if replay.Header != nil {
		fmt.Println(replay.Header.String())
	}

	if len(replay.ChatMessages) > 0 {
		logger.Info().Int("count", len(replay.ChatMessages)).Msg("found chat messages")
		for i, chat := range replay.ChatMessages {
			fmt.Printf("%d: %s says '%s'\n", i+1, chat.Sender, chat.Message)
		}
	}

	if replay.Results != nil {
		logger.Info().Int("count", len(replay.Results.Players)).Msg("found players")
		fmt.Printf("Status: %s\n", humanizeStatus(replay.Results.Status))
		fmt.Printf("Time Played: %.1f seconds\n", replay.Results.TimePlayed)
		fmt.Printf("Author: %s [%s]\n", replay.Results.Author, replay.Results.AuthorUserID)
	} else if flagParseResults {
		logger.Warn().Msg("results parsing was requested but no results were found")
	}

	logger.Debug().Uint64("packets", replay.PacketCount).Uint64("bytes", replay.DecodedBytes).Msg("processing stats")
	logger.Info().Msg("successfully finished processing")
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
