package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SQLiteStoreConfig holds the on-disk table location.
type SQLiteStoreConfig struct {
	Path  string `yaml:"path"`
	Reuse bool   `yaml:"reuse"`
}

// StoreConfig selects and configures the table backend.
type StoreConfig struct {
	Type   string             `yaml:"type"`
	SQLite *SQLiteStoreConfig `yaml:"sqlite,omitempty"`
}

// EmbeddingsConfig describes the embedding table file and how it is loaded.
type EmbeddingsConfig struct {
	Path            string      `yaml:"path"`
	StrictDimension bool        `yaml:"strict_dimension"`
	Store           StoreConfig `yaml:"store"`
}

// CorpusConfig points at the term list.
type CorpusConfig struct {
	Path string `yaml:"path"`
}

// MapperConfig selects word or phrase mapping.
type MapperConfig struct {
	PhraseLevel bool `yaml:"phrase_level"`
}

// OutputConfig configures where results are written.
type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// LogConfig configures logging and the end-of-run report.
type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	TopMisses int    `yaml:"top_misses"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Mapper     MapperConfig     `yaml:"mapper"`
	Output     OutputConfig     `yaml:"output"`
	Log        LogConfig        `yaml:"log"`
}

// Environment variables that override file settings.
const (
	EnvEmbeddings = "TERMVEC_EMBEDDINGS"
	EnvCorpus     = "TERMVEC_CORPUS"
	EnvOutput     = "TERMVEC_OUTPUT"
	EnvLogLevel   = "TERMVEC_LOG_LEVEL"
	EnvPhrase     = "TERMVEC_PHRASE_LEVEL"
)

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./termvec.yaml first, then ~/.config/termvec/config.yaml.
// If neither exists, it writes defaults to ~/.config/termvec/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "termvec.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides paths and flags from the environment. Call it after
// godotenv has populated the process environment.
func (c *AppConfig) ApplyEnv() error {
	if v := os.Getenv(EnvEmbeddings); v != "" {
		c.Embeddings.Path = v
	}
	if v := os.Getenv(EnvCorpus); v != "" {
		c.Corpus.Path = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvPhrase); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPhrase, err)
		}
		c.Mapper.PhraseLevel = b
	}
	return nil
}

// Validate reports settings that cannot be run.
func (c *AppConfig) Validate() error {
	if c.Embeddings.Path == "" {
		return errors.New("embeddings.path is required")
	}
	switch c.Embeddings.Store.Type {
	case "memory":
	case "sqlite":
		if c.Embeddings.Store.SQLite == nil || c.Embeddings.Store.SQLite.Path == "" {
			return errors.New("embeddings.store.sqlite.path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown table store: %s", c.Embeddings.Store.Type)
	}
	switch c.Output.Format {
	case "text", "yaml":
	default:
		return fmt.Errorf("unknown output format: %s", c.Output.Format)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s", c.Log.Format)
	}
	return nil
}

// DefaultUserConfigPath is ~/.config/termvec/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "termvec", "config.yaml"), nil
}

// Default returns a fresh default configuration.
func Default() *AppConfig { return defaultConfig() }

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embeddings: EmbeddingsConfig{
			Path:  "data/embeddings/glove.42B.300d.txt",
			Store: StoreConfig{Type: "memory"},
		},
		Corpus: CorpusConfig{Path: "data/intermediate/corpus.txt"},
		Output: OutputConfig{Path: "data/intermediate/split_term_vectors.txt", Format: "text"},
		Log:    LogConfig{Level: "info", Format: "text", TopMisses: 10},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Embeddings.Path == "" {
		cfg.Embeddings.Path = def.Embeddings.Path
	}
	if cfg.Embeddings.Store.Type == "" {
		cfg.Embeddings.Store.Type = "memory"
	}
	if cfg.Embeddings.Store.Type == "sqlite" {
		if cfg.Embeddings.Store.SQLite == nil {
			cfg.Embeddings.Store.SQLite = &SQLiteStoreConfig{}
		}
		if cfg.Embeddings.Store.SQLite.Path == "" {
			cfg.Embeddings.Store.SQLite.Path = "data/embeddings/table.db"
		}
	}
	if cfg.Corpus.Path == "" {
		cfg.Corpus.Path = def.Corpus.Path
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = def.Output.Path
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "text"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Log.TopMisses == 0 {
		cfg.Log.TopMisses = 10
	}
}
