package vectorstore

import (
	"fmt"

	"termvec/internal/domain"
	"termvec/internal/vectorstore/memory"
	"termvec/internal/vectorstore/sqlite"
)

// Storage holds an embedding table while it is built and read.
type Storage = domain.Storage

// Config selects the table backend.
type Config struct {
	Type string // "memory" or "sqlite"

	// SQLite
	SQLitePath string
	// Reuse keeps a table sealed by an earlier run instead of rebuilding it.
	Reuse bool
}

// New creates a Storage implementation based on config.
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "memory", "":
		return memory.NewStorage(), nil
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite path is required")
		}
		st, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if !cfg.Reuse {
			if err := st.Reset(); err != nil {
				st.Close()
				return nil, err
			}
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown table store: %s", cfg.Type)
	}
}
