package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"termvec/internal/config"
	"termvec/internal/domain"
	"termvec/internal/embedding"
	"termvec/internal/service"
	"termvec/internal/vectorstore"
)

// tableSession is a loaded table shared by the lookup and explore commands.
type tableSession struct {
	cfg   *config.AppConfig
	store domain.Storage
	svc   *service.Service
	stats embedding.Stats
}

func (s *tableSession) Close() error { return s.store.Close() }

// openTable resolves config and flags, then loads the embedding table.
func openTable(c *cobra.Command, phraseLevel *bool) (*tableSession, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	applyStoreFlags(c.Flags(), cfg)
	if phraseLevel != nil && c.Flags().Changed("phrase") {
		cfg.Mapper.PhraseLevel = *phraseLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	store, err := vectorstore.New(storeConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize table store: %w", err)
	}
	svc := service.New(store, nil, log, service.Options{
		PhraseLevel:     cfg.Mapper.PhraseLevel,
		StrictDimension: cfg.Embeddings.StrictDimension,
	})
	stats, err := svc.LoadTable(cfg.Embeddings.Path)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load embeddings: %w", err)
	}
	return &tableSession{cfg: cfg, store: store, svc: svc, stats: stats}, nil
}
