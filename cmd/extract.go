package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/bigtools/pkg/big"
	"github.com/spf13/cobra"
)

var (
	extractFilter  string
	extractOutput  string
	extractVerbose bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <archive>",
	Short: "Extract files from a BIG archive",
	Long: `Extract files from a BIG4/BIGF archive to a directory tree.

Entry names use '\' as directory separator; extraction maps them to host
paths and creates parent directories as needed.

Examples:
  # Extract all files
  bigtools extract INI.big

  # Extract only .ini files
  bigtools extract INI.big -f .ini

  # Extract to a custom output directory
  bigtools extract INI.big -o extracted/`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractFilter, "filter", "f", "",
		"filter extracted files (case-insensitive substring match)")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "data",
		"output directory for extracted files")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false,
		"print verbose progress information")
}

func runExtract(cmd *cobra.Command, args []string) error {
	archive, err := big.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}

	for _, warning := range archive.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	names := archive.List()
	if extractFilter != "" {
		filtered := names[:0]
		for _, name := range names {
			if strings.Contains(strings.ToLower(name), strings.ToLower(extractFilter)) {
				filtered = append(filtered, name)
			}
		}
		names = filtered
	}

	if len(names) == 0 {
		if extractFilter != "" {
			return fmt.Errorf("no files match filter %q", extractFilter)
		}
		return fmt.Errorf("archive contains no files")
	}

	if extractVerbose {
		for _, name := range names {
			fmt.Printf("\t%s\n", name)
		}
	}

	if err := archive.Extract(extractOutput, names...); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	fmt.Printf("Extracted %d files to %s\n", len(names), extractOutput)
	return nil
}
