// Command decom_from_addr seeks to a byte offset in an input file and
// inflates the zlib stream found there into an output file.
package main

import (
	"compress/zlib"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/llama-for3ver/wrpl-decoder/pkg/wrpl"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decom_from_addr <input-file> <offset> <output-file>",
		Short: "Seek to an offset in a file and inflate the zlib stream found there",
		Args:  cobra.ExactArgs(3),
		RunE:  runDecomFromAddr,
	}
	return cmd
}

func runDecomFromAddr(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	inputPath, offsetArg, outputPath := args[0], args[1], args[2]

	offset, err := wrpl.ParseOffset(offsetArg)
	if err != nil {
		logger.Error().Err(err).Str("offset", offsetArg).Msg("invalid offset")
		os.Exit(1)
	}

	in, err := os.Open(inputPath)
	if err != nil {
		logger.Error().Err(err).Str("path", inputPath).Msg("failed to open input file")
		os.Exit(1)
	}
	defer in.Close()

	if _, err := in.Seek(int64(offset), io.SeekStart); err != nil {
		logger.Error().Err(err).Msg("failed to seek to offset")
		os.Exit(1)
	}

	decoder, err := zlib.NewReader(in)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open zlib stream at offset")
		os.Exit(1)
	}
	defer decoder.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		logger.Error().Err(err).Str("path", outputPath).Msg("failed to create output file")
		os.Exit(1)
	}
	defer out.Close()

	if _, err := io.Copy(out, decoder); err != nil {
		logger.Error().Err(err).Msg("failed to inflate stream")
		os.Exit(1)
	}

	logger.Info().Str("output", outputPath).Msg("successfully wrote decompressed stream")
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
