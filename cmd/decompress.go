package cmd

import (
	"fmt"
	"os"

	"github.com/bigtools/pkg/refpack"
	"github.com/spf13/cobra"
)

var decompressIgnoreMismatch bool

var decompressCmd = &cobra.Command{
	Use:   "decompress <input> <output>",
	Short: "Decompress a RefPack file",
	Long: `Decompress a RefPack stream, framed or headerless.

If the stream carries a header, the decoded length is checked against the
declared size; --ignore-mismatch suppresses that check for streams with a
damaged size field.

Examples:
  bigtools decompress weapon.ini.ref weapon.ini`,
	Args: cobra.ExactArgs(2),
	RunE: runDecompress,
}

func init() {
	rootCmd.AddCommand(decompressCmd)

	decompressCmd.Flags().BoolVar(&decompressIgnoreMismatch, "ignore-mismatch", false,
		"tolerate a declared size that disagrees with the decoded length")
}

func runDecompress(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	decompress := refpack.Decompress
	if decompressIgnoreMismatch {
		decompress = refpack.DecompressIgnoreMismatch
	}

	decompressed, err := decompress(data)
	if err != nil {
		return fmt.Errorf("decompression failed: %w", err)
	}

	if err := os.WriteFile(args[1], decompressed, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Printf("%d -> %d bytes\n", len(data), len(decompressed))
	return nil
}
