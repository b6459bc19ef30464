package cmd

import (
	"fmt"
	"os"

	"github.com/bigtools/pkg/big"
	"github.com/spf13/cobra"
)

var (
	packHeader  string
	packVerbose bool
)

var packCmd = &cobra.Command{
	Use:   "pack <input_dir> <archive>",
	Short: "Pack a directory tree into a BIG archive",
	Long: `Pack every file under a directory into a new BIG4/BIGF archive.

Each file becomes an entry named by its path relative to the input
directory, with separators normalized to '\'. Every file is read into memory
before the archive is written through a temporary file and moved into place.

Examples:
  # Pack a directory into a BIG4 archive
  bigtools pack data/ INI.big

  # Pack with the BIGF header variant
  bigtools pack data/ INI.big --header BIGF`,
	Args: cobra.ExactArgs(2),
	RunE: runPack,
}

func init() {
	rootCmd.AddCommand(packCmd)

	packCmd.Flags().StringVar(&packHeader, "header", big.HeaderBIG4,
		"archive header tag (BIG4 or BIGF)")
	packCmd.Flags().BoolVarP(&packVerbose, "verbose", "v", false,
		"print verbose progress information")
}

func runPack(cmd *cobra.Command, args []string) error {
	inputDir := args[0]
	outputPath := args[1]

	if info, err := os.Stat(inputDir); err != nil {
		return fmt.Errorf("input directory not found: %s", inputDir)
	} else if !info.IsDir() {
		return fmt.Errorf("input path is not a directory: %s", inputDir)
	}

	archive, err := big.CreateFromDirectory(inputDir, outputPath, packHeader)
	if err != nil {
		return fmt.Errorf("packing failed: %w", err)
	}

	if packVerbose {
		for _, name := range archive.List() {
			fmt.Printf("\t%s\n", name)
		}
	}

	fmt.Printf("Packed %d files into %s\n", len(archive.Entries()), outputPath)
	return nil
}
