package cmd

import (
	"fmt"
	"os"

	"github.com/bigtools/pkg/big"
	"github.com/spf13/cobra"
)

var listLong bool

var listCmd = &cobra.Command{
	Use:   "list <archive>",
	Short: "List files in a BIG archive",
	Long: `List the logical files in a BIG4/BIGF archive without extracting them.

Only the index is read, so listing is cheap even for very large archives.

Examples:
  # List file names
  bigtools list INI.big

  # Include payload sizes
  bigtools list INI.big -l`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVarP(&listLong, "long", "l", false,
		"print payload sizes next to file names")
}

func runList(cmd *cobra.Command, args []string) error {
	archive, err := big.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}

	for _, warning := range archive.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	entries := archive.Entries()
	for _, name := range archive.List() {
		if listLong {
			fmt.Printf("%10d  %s\n", entries[name].Size, name)
		} else {
			fmt.Println(name)
		}
	}

	fmt.Fprintf(os.Stderr, "%d files (%s)\n", len(entries), archive.Header())
	return nil
}
