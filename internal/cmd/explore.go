package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"termvec/internal/tui"
)

// exploreCmd starts the interactive explorer
var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Look up terms interactively",
	Long: `Load the embedding table once and open an interactive prompt. Each term
typed is mapped in word or phrase mode; Tab switches the mode, Up and Down
move between entries, Ctrl+C quits.`,
	Args: cobra.NoArgs,
	RunE: runExplore,
}

var explorePhrase bool

func init() {
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.Flags().BoolVar(&explorePhrase, "phrase", false, "Start in phrase mode")
	addStoreFlags(exploreCmd)
}

func runExplore(cmd *cobra.Command, args []string) error {
	sess, err := openTable(cmd, &explorePhrase)
	if err != nil {
		return err
	}
	defer sess.Close()

	summary := fmt.Sprintf("%d embeddings from %s", sess.stats.Entries, sess.cfg.Embeddings.Path)
	if sess.stats.Dimension > 0 {
		summary += fmt.Sprintf(" (dim %d)", sess.stats.Dimension)
	}
	p := tea.NewProgram(tui.New(sess.svc, summary, sess.cfg.Mapper.PhraseLevel), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
