package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"termvec/internal/domain"
)

// ParseLine splits a text-format line back into its key and vectors.
// In word mode the returned entry holds a single vector.
func ParseLine(line string, mode domain.Mode) (domain.Entry, error) {
	line = strings.TrimRight(line, "\r\n")
	idx := strings.LastIndex(line, ": [")
	if idx < 0 {
		return domain.Entry{}, fmt.Errorf("missing value separator in %q", line)
	}
	key, value := line[:idx], line[idx+2:]

	if mode == domain.PhraseMode {
		var raw [][]string
		if err := yaml.Unmarshal([]byte(value), &raw); err != nil {
			return domain.Entry{}, fmt.Errorf("parse vectors for %q: %w", key, err)
		}
		vecs := make([]domain.Vector, len(raw))
		for i, r := range raw {
			v, err := parseComponents(r)
			if err != nil {
				return domain.Entry{}, fmt.Errorf("parse vectors for %q: %w", key, err)
			}
			vecs[i] = v
		}
		return domain.Entry{Key: key, Vectors: vecs}, nil
	}

	var raw []string
	if err := yaml.Unmarshal([]byte(value), &raw); err != nil {
		return domain.Entry{}, fmt.Errorf("parse vector for %q: %w", key, err)
	}
	v, err := parseComponents(raw)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("parse vector for %q: %w", key, err)
	}
	return domain.Entry{Key: key, Vectors: []domain.Vector{v}}, nil
}

func parseComponents(raw []string) (domain.Vector, error) {
	v := make(domain.Vector, len(raw))
	for i, s := range raw {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		v[i] = f
	}
	return v, nil
}

// ReadText parses a whole text-format result.
func ReadText(r io.Reader, mode domain.Mode) (*domain.Result, error) {
	res := domain.NewResult(mode)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		e, err := ParseLine(sc.Text(), mode)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if mode == domain.PhraseMode {
			res.SetPhrase(e.Key, e.Vectors)
		} else {
			res.SetWord(e.Key, e.Vectors[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
