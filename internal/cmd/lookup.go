package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"termvec/internal/output"
)

// lookupCmd prints the vectors of single words
var lookupCmd = &cobra.Command{
	Use:   "lookup WORD...",
	Short: "Print the embedding vector of each word",
	Long: `Load the embedding table and print one "<word>: <vector>" line per argument.
Words are matched exactly, case included. Missing words are reported on the
same stream and do not fail the command.

Examples:
  termvec lookup cell cycle
  termvec lookup --store sqlite --reuse protein`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

var notFoundStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

func init() {
	rootCmd.AddCommand(lookupCmd)
	addStoreFlags(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	sess, err := openTable(cmd, nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	table := sess.svc.Table()
	w := cmd.OutOrStdout()
	for _, word := range args {
		vec, ok, err := table.Lookup(word)
		if err != nil {
			return fmt.Errorf("lookup %q: %w", word, err)
		}
		if !ok {
			fmt.Fprintf(w, "%s: %s\n", word, notFoundStyle.Render("not found"))
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", word, output.FormatVector(vec))
	}
	return nil
}
