package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"termvec/internal/corpus"
	"termvec/internal/diagnostics"
	"termvec/internal/domain"
	"termvec/internal/embedding"
	"termvec/internal/mapper"
	"termvec/internal/output"
)

// Options tunes a mapping run.
type Options struct {
	PhraseLevel     bool
	StrictDimension bool
	OutputFormat    string
	// TopMisses is how many of the most frequent misses the summary lists.
	TopMisses int
}

// Paths names the files a full run reads and writes.
type Paths struct {
	Embeddings string
	Corpus     string
	Output     string
}

// Summary reports what a run did.
type Summary struct {
	Loaded     int                `yaml:"loaded" json:"loaded"`
	Duplicates int                `yaml:"duplicates" json:"duplicates"`
	Dimension  int                `yaml:"dimension" json:"dimension"`
	Reused     bool               `yaml:"reused" json:"reused"`
	Terms      int                `yaml:"terms" json:"terms"`
	Entries    int                `yaml:"entries" json:"entries"`
	WordMisses int                `yaml:"word_misses" json:"word_misses"`
	TermMisses int                `yaml:"term_misses" json:"term_misses"`
	TopMisses  []diagnostics.Miss `yaml:"top_misses,omitempty" json:"top_misses,omitempty"`
	Mode       domain.Mode        `yaml:"mode" json:"mode"`
}

// Service wires the loader, mapper and writer around one table store.
type Service struct {
	store domain.Storage
	sink  domain.Sink
	log   logrus.FieldLogger
	opts  Options

	loadStats embedding.Stats
	reused    bool
}

// New creates a Service. sink receives every diagnostic in addition to the
// run's own tally; it may be nil.
func New(store domain.Storage, sink domain.Sink, log logrus.FieldLogger, opts Options) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.OutputFormat == "" {
		opts.OutputFormat = output.FormatText
	}
	return &Service{store: store, sink: sink, log: log, opts: opts}
}

// Table exposes the loaded table for read-only use.
func (s *Service) Table() domain.Table { return s.store }

// LoadTable streams the embedding file into the store. A sealed persistent
// store is reused only when it was built from the same, unchanged file;
// otherwise it is reset and rebuilt.
func (s *Service) LoadTable(path string) (embedding.Stats, error) {
	pst, persistent := s.store.(domain.PersistentStorage)
	var source string
	if persistent {
		var err error
		if source, err = embedding.SourceOf(path); err != nil {
			return embedding.Stats{}, err
		}
	}

	if s.store.Sealed() {
		if !persistent || pst.Source() == source {
			return s.reuse()
		}
		s.log.WithFields(logrus.Fields{
			"path":     path,
			"previous": pst.Source(),
		}).Warn("embedding table was built from another file, rebuilding")
		if err := pst.Reset(); err != nil {
			return embedding.Stats{}, fmt.Errorf("reset table: %w", err)
		}
	}
	if persistent {
		if err := pst.SetSource(source); err != nil {
			return embedding.Stats{}, err
		}
	}

	s.log.WithField("path", path).Info("loading embeddings")
	stats, err := embedding.LoadFile(path, s.store, embedding.Options{
		StrictDimension: s.opts.StrictDimension,
		Logger:          s.log,
	})
	if err != nil {
		return stats, err
	}
	s.loadStats = stats
	s.log.WithFields(logrus.Fields{
		"entries":    stats.Entries,
		"duplicates": stats.Duplicates,
		"dimension":  stats.Dimension,
	}).Info("loaded embeddings")
	return stats, nil
}

func (s *Service) reuse() (embedding.Stats, error) {
	n, err := s.store.Len()
	if err != nil {
		return embedding.Stats{}, err
	}
	s.reused = true
	s.loadStats = embedding.Stats{Entries: n}
	s.log.WithField("entries", n).Info("reusing sealed embedding table")
	return s.loadStats, nil
}

// MapTerms maps terms with the configured mode and returns the result with
// a tally of the misses it reported.
func (s *Service) MapTerms(terms []string) (*domain.Result, *diagnostics.Tally, error) {
	tally := diagnostics.NewTally()
	res, err := mapper.Map(terms, s.store, s.opts.PhraseLevel, diagnostics.Multi(tally, s.sink))
	if err != nil {
		return nil, nil, err
	}
	return res, tally, nil
}

// MapTerm maps a single term in the given mode. Diagnostics are returned
// instead of being sent to the service sink.
func (s *Service) MapTerm(term string, phraseLevel bool) (*domain.Result, []domain.Diagnostic, error) {
	var rec diagnostics.Recorder
	res, err := mapper.Map([]string{term}, s.store, phraseLevel, &rec)
	if err != nil {
		return nil, nil, err
	}
	return res, rec.Diagnostics(), nil
}

// Run loads the table, reads the corpus, maps it and writes the output.
// Nothing is written when any step fails.
func (s *Service) Run(ctx context.Context, paths Paths) (*Summary, error) {
	if _, err := s.LoadTable(paths.Embeddings); err != nil {
		return nil, fmt.Errorf("load embeddings: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.log.WithField("path", paths.Corpus).Info("loading corpus")
	terms, err := corpus.ReadFile(paths.Corpus)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"terms": len(terms),
		"mode":  domain.ModeFor(s.opts.PhraseLevel),
	}).Info("mapping terms")
	res, tally, err := s.MapTerms(terms)
	if err != nil {
		return nil, fmt.Errorf("map terms: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.log.WithField("path", paths.Output).Info("saving term vectors")
	if err := output.WriteFile(paths.Output, res, s.opts.OutputFormat); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	sum := s.summarize(len(terms), res, tally)
	s.log.WithFields(logrus.Fields{
		"loaded":      sum.Loaded,
		"entries":     sum.Entries,
		"word_misses": sum.WordMisses,
		"term_misses": sum.TermMisses,
	}).Info("processing completed")
	return sum, nil
}

func (s *Service) summarize(terms int, res *domain.Result, tally *diagnostics.Tally) *Summary {
	kind := domain.WordNotFound
	if res.Mode() == domain.PhraseMode {
		kind = domain.TermNotFound
	}
	return &Summary{
		Loaded:     s.loadStats.Entries,
		Duplicates: s.loadStats.Duplicates,
		Dimension:  s.loadStats.Dimension,
		Reused:     s.reused,
		Terms:      terms,
		Entries:    res.Len(),
		WordMisses: tally.Total(domain.WordNotFound),
		TermMisses: tally.Total(domain.TermNotFound),
		TopMisses:  tally.Top(kind, s.opts.TopMisses),
		Mode:       res.Mode(),
	}
}
