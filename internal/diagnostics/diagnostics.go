// Package diagnostics provides sinks for lookup misses reported by the mapper.
package diagnostics

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"termvec/internal/domain"
)

// LogSink writes each diagnostic as a warning.
type LogSink struct {
	log logrus.FieldLogger
}

func NewLogSink(log logrus.FieldLogger) *LogSink {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Report(kind domain.DiagnosticKind, context string) {
	switch kind {
	case domain.WordNotFound:
		s.log.WithField("word", context).Warn("no embedding found for word")
	case domain.TermNotFound:
		s.log.WithField("term", context).Warn("no embeddings found for term")
	default:
		s.log.WithFields(logrus.Fields{"kind": kind, "context": context}).Warn("diagnostic")
	}
}

// Recorder keeps every diagnostic in arrival order.
type Recorder struct {
	mu    sync.Mutex
	items []domain.Diagnostic
}

func (r *Recorder) Report(kind domain.DiagnosticKind, context string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, domain.Diagnostic{Kind: kind, Context: context})
}

// Diagnostics returns a copy of what has been recorded so far.
func (r *Recorder) Diagnostics() []domain.Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Diagnostic, len(r.items))
	copy(out, r.items)
	return out
}

// Reset forgets recorded diagnostics.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

// Miss is a missing word or term with how often it was reported.
type Miss struct {
	Context string `yaml:"context" json:"context"`
	Count   int    `yaml:"count" json:"count"`
}

// Tally counts diagnostics per kind and per context.
type Tally struct {
	mu     sync.Mutex
	counts map[domain.DiagnosticKind]map[string]int
	totals map[domain.DiagnosticKind]int
}

func NewTally() *Tally {
	return &Tally{
		counts: make(map[domain.DiagnosticKind]map[string]int),
		totals: make(map[domain.DiagnosticKind]int),
	}
}

func (t *Tally) Report(kind domain.DiagnosticKind, context string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.counts[kind]
	if !ok {
		m = make(map[string]int)
		t.counts[kind] = m
	}
	m[context]++
	t.totals[kind]++
}

// Total is the number of reports of kind.
func (t *Tally) Total(kind domain.DiagnosticKind) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totals[kind]
}

// Distinct is the number of different contexts reported for kind.
func (t *Tally) Distinct(kind domain.DiagnosticKind) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.counts[kind])
}

// Top returns the n most frequently reported contexts of kind, most frequent
// first. Equal counts are ordered lexically. n <= 0 returns all of them.
func (t *Tally) Top(kind domain.DiagnosticKind, n int) []Miss {
	t.mu.Lock()
	out := make([]Miss, 0, len(t.counts[kind]))
	for ctx, c := range t.counts[kind] {
		out = append(out, Miss{Context: ctx, Count: c})
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Context < out[j].Context
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

type multi []domain.Sink

func (m multi) Report(kind domain.DiagnosticKind, context string) {
	for _, s := range m {
		s.Report(kind, context)
	}
}

// Multi fans diagnostics out to every non-nil sink.
func Multi(sinks ...domain.Sink) domain.Sink {
	var m multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}
