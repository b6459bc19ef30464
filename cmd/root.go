package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bigtools",
	Short: "Tools for BIG4/BIGF game archives",
	Long: `bigtools provides utilities for working with BIG container archives.

Supported operations:
  - List and extract files from BIG4/BIGF archives
  - Pack a directory tree into a new archive
  - Compress and decompress RefPack payloads`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
