package cmd

import (
	"fmt"
	"os"

	"github.com/bigtools/pkg/refpack"
	"github.com/spf13/cobra"
)

var compressCmd = &cobra.Command{
	Use:   "compress <input> <output>",
	Short: "Compress a file to RefPack format",
	Long: `Compress a file into a framed RefPack stream.

The output carries the 5-byte RefPack header with the uncompressed size,
so any compliant decoder can verify its own result.

Examples:
  bigtools compress weapon.ini weapon.ini.ref`,
	Args: cobra.ExactArgs(2),
	RunE: runCompress,
}

func init() {
	rootCmd.AddCommand(compressCmd)
}

func runCompress(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	compressed := refpack.Compress(data)
	if err := os.WriteFile(args[1], compressed, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Printf("%d -> %d bytes\n", len(data), len(compressed))
	return nil
}
