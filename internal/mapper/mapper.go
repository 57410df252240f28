// Package mapper turns a sequence of terms into word or phrase vectors
// using an embedding table.
package mapper

import (
	"fmt"
	"strings"

	"termvec/internal/domain"
)

// Map looks up the words of every term in table.
//
// With phraseLevel false the result is keyed by word: the first occurrence of
// a word wins and a word missing from the table is reported as
// domain.WordNotFound each time it is seen; diagnostics.Tally.Distinct gives
// the number of distinct missing words. With phraseLevel true the result
// is keyed by the full term and holds the vectors of its words that were found,
// in order; a term with no found words is reported as domain.TermNotFound and
// left out.
//
// Lookup misses never fail the run. The only error returned comes from the
// table backend itself.
func Map(terms []string, table domain.Table, phraseLevel bool, sink domain.Sink) (*domain.Result, error) {
	if sink == nil {
		sink = domain.Discard
	}
	result := domain.NewResult(domain.ModeFor(phraseLevel))
	for _, term := range terms {
		var err error
		if phraseLevel {
			err = mapPhrase(term, table, sink, result)
		} else {
			err = mapWords(term, table, sink, result)
		}
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func mapWords(term string, table domain.Table, sink domain.Sink, result *domain.Result) error {
	for _, word := range strings.Fields(term) {
		if result.Has(word) {
			continue
		}
		vec, ok, err := table.Lookup(word)
		if err != nil {
			return fmt.Errorf("lookup %q: %w", word, err)
		}
		if !ok {
			sink.Report(domain.WordNotFound, word)
			continue
		}
		result.SetWord(word, vec)
	}
	return nil
}

func mapPhrase(term string, table domain.Table, sink domain.Sink, result *domain.Result) error {
	var vectors []domain.Vector
	for _, word := range strings.Fields(term) {
		vec, ok, err := table.Lookup(word)
		if err != nil {
			return fmt.Errorf("lookup %q in term %q: %w", word, term, err)
		}
		if ok {
			vectors = append(vectors, vec)
		}
	}
	if len(vectors) == 0 {
		sink.Report(domain.TermNotFound, term)
		return nil
	}
	result.SetPhrase(term, vectors)
	return nil
}
