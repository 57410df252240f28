// Package cmd contains all CLI commands for termvec.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"termvec/internal/config"
	"termvec/internal/vectorstore"
)

var (
	// Version is the current version of termvec
	Version = "0.1.0"

	// Global flags
	verbose    bool
	configPath string

	// Table store flags, shared by every command that loads a table
	storeType       string
	storeSQLitePath string
	storeReuse      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "termvec",
	Short: "Map corpus terms to pre-trained word embeddings",
	Long: `termvec loads a GloVe-style word embedding table and maps the terms of a
corpus to their vectors, either word by word or one entry per multi-word term.

Configuration is read from --config, ./termvec.yaml or
~/.config/termvec/config.yaml, in that order. A .env file in the working
directory is loaded first; TERMVEC_EMBEDDINGS, TERMVEC_CORPUS, TERMVEC_OUTPUT,
TERMVEC_PHRASE_LEVEL and TERMVEC_LOG_LEVEL override the file.

Examples:
  termvec map                               # Map the configured corpus word by word
  termvec map --phrase -o phrases.txt       # One entry per multi-word term
  termvec lookup cell cycle                 # Print vectors of single words
  termvec explore                           # Interactive lookups`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ./termvec.yaml)")
}

// loadConfig resolves the configuration for a command: .env, config file,
// then environment overrides.
func loadConfig() (*config.AppConfig, error) {
	_ = godotenv.Load()

	var cfg *config.AppConfig
	var err error
	if configPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from the log section of the config.
func newLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(os.Stderr)

	level := cfg.Level
	if verbose {
		level = "debug"
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	l.SetLevel(lvl)

	switch cfg.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l, nil
}

func storeConfig(cfg *config.AppConfig) vectorstore.Config {
	sc := vectorstore.Config{Type: cfg.Embeddings.Store.Type}
	if s := cfg.Embeddings.Store.SQLite; s != nil {
		sc.SQLitePath = s.Path
		sc.Reuse = s.Reuse
	}
	return sc
}

func addStoreFlags(c *cobra.Command) {
	c.Flags().String("embeddings", "", "Embedding table file (overrides config)")
	c.Flags().StringVar(&storeType, "store", "", "Table store: memory|sqlite (overrides config)")
	c.Flags().StringVar(&storeSQLitePath, "sqlite-path", "", "SQLite table file for --store sqlite")
	c.Flags().BoolVar(&storeReuse, "reuse", false, "Reuse a complete SQLite table from an earlier run")
}

// applyStoreFlags copies explicitly set table flags over the config.
func applyStoreFlags(f *pflag.FlagSet, cfg *config.AppConfig) {
	if f.Changed("embeddings") {
		cfg.Embeddings.Path, _ = f.GetString("embeddings")
	}
	if f.Changed("store") {
		cfg.Embeddings.Store.Type = storeType
	}
	if f.Changed("sqlite-path") || f.Changed("reuse") {
		if cfg.Embeddings.Store.SQLite == nil {
			cfg.Embeddings.Store.SQLite = &config.SQLiteStoreConfig{}
		}
		if f.Changed("sqlite-path") {
			cfg.Embeddings.Store.SQLite.Path = storeSQLitePath
		}
		if f.Changed("reuse") {
			cfg.Embeddings.Store.SQLite.Reuse = storeReuse
		}
	}
}
