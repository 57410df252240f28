package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"termvec/internal/config"
	"termvec/internal/diagnostics"
	"termvec/internal/service"
	"termvec/internal/vectorstore"
)

// mapCmd runs the full load, map and write pipeline
var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Map the corpus terms to embedding vectors and write the result",
	Long: `Load the embedding table, read the corpus (one term per line), map every
term and write one "<key>: <vectors>" line per entry.

Word mode (default) keys the output by single words; a word keeps the vector
of its first occurrence. Phrase mode (--phrase) keys the output by whole term
and lists the vectors of the words that were found, in order.

Words or terms without any embedding are logged as warnings and summarized at
the end; they never fail the run. A malformed table line does, and nothing is
written in that case.

Examples:
  termvec map
  termvec map --phrase --output data/intermediate/phrase_vectors.txt
  termvec map --store sqlite --sqlite-path glove.db --reuse`,
	Args: cobra.NoArgs,
	RunE: runMap,
}

var (
	mapPhrase bool
	mapCorpus string
	mapOutput string
	mapFormat string
	mapStrict bool
)

func init() {
	rootCmd.AddCommand(mapCmd)

	mapCmd.Flags().BoolVar(&mapPhrase, "phrase", false, "Key the output by whole term instead of by word")
	mapCmd.Flags().StringVar(&mapCorpus, "corpus", "", "Corpus file, one term per line (overrides config)")
	mapCmd.Flags().StringVarP(&mapOutput, "output", "o", "", "Output file (overrides config)")
	mapCmd.Flags().StringVar(&mapFormat, "format", "", "Output format: text|yaml (overrides config)")
	mapCmd.Flags().BoolVar(&mapStrict, "strict", false, "Fail when a vector length differs from the first one")
	addStoreFlags(mapCmd)
}

// applyMapFlags copies explicitly set flags over the config.
func applyMapFlags(cmd *cobra.Command, cfg *config.AppConfig) {
	f := cmd.Flags()
	if f.Changed("phrase") {
		cfg.Mapper.PhraseLevel = mapPhrase
	}
	if f.Changed("corpus") {
		cfg.Corpus.Path = mapCorpus
	}
	if f.Changed("output") {
		cfg.Output.Path = mapOutput
	}
	if f.Changed("format") {
		cfg.Output.Format = mapFormat
	}
	if f.Changed("strict") {
		cfg.Embeddings.StrictDimension = mapStrict
	}
	applyStoreFlags(f, cfg)
}

func runMap(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyMapFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	store, err := vectorstore.New(storeConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize table store: %w", err)
	}
	defer store.Close()

	svc := service.New(store, diagnostics.NewLogSink(log), log, service.Options{
		PhraseLevel:     cfg.Mapper.PhraseLevel,
		StrictDimension: cfg.Embeddings.StrictDimension,
		OutputFormat:    cfg.Output.Format,
		TopMisses:       cfg.Log.TopMisses,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := svc.Run(ctx, service.Paths{
		Embeddings: cfg.Embeddings.Path,
		Corpus:     cfg.Corpus.Path,
		Output:     cfg.Output.Path,
	})
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), sum, cfg.Output.Path)
	return nil
}

func printSummary(w io.Writer, sum *service.Summary, outPath string) {
	if sum.Reused {
		fmt.Fprintf(w, "Reused table with %d embeddings.\n", sum.Loaded)
	} else {
		fmt.Fprintf(w, "Loaded %d embeddings (dim %d, %d duplicates).\n", sum.Loaded, sum.Dimension, sum.Duplicates)
	}
	fmt.Fprintf(w, "Mapped %d terms to %d %s entries -> %s\n", sum.Terms, sum.Entries, sum.Mode, outPath)
	fmt.Fprintf(w, "Words not found: %d, terms not found: %d\n", sum.WordMisses, sum.TermMisses)
	if len(sum.TopMisses) > 0 {
		fmt.Fprintln(w, "Most frequent misses:")
		for _, m := range sum.TopMisses {
			fmt.Fprintf(w, "  %6d  %s\n", m.Count, m.Context)
		}
	}
}
