package embedding

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"termvec/internal/domain"
)

// DefaultProgressEvery is how many lines pass between progress log entries.
const DefaultProgressEvery = 100000

// Options tunes a table load.
type Options struct {
	// StrictDimension rejects any vector whose length differs from the first
	// parsed vector. Off by default: rows of any length are accepted.
	StrictDimension bool
	// ProgressEvery logs progress at debug level every N lines; 0 uses the default.
	ProgressEvery int
	Logger        logrus.FieldLogger
}

// Stats describes a completed load.
type Stats struct {
	Lines      int
	Entries    int
	Duplicates int
	Blank      int
	// Dimension is the length of the first parsed vector.
	Dimension int
}

// LoadFile streams a GloVe-style text table from path into dst and seals it.
// The file is closed before LoadFile returns, whether or not parsing succeeded.
func LoadFile(path string, dst domain.Storage, opts Options) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, &ResourceError{Path: path, Err: err}
	}
	defer f.Close()

	return load(f, path, dst, opts)
}

// Load reads lines of the form "word v1 v2 ... vD" from r into dst.
// Duplicate words are overwritten: the last occurrence wins. On any error dst
// is left unsealed and must be discarded by the caller.
func Load(r io.Reader, dst domain.Storage, opts Options) (Stats, error) {
	return load(r, "input", dst, opts)
}

func load(r io.Reader, name string, dst domain.Storage, opts Options) (Stats, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	every := opts.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}

	var stats Stats
	dimKnown := false
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, rerr := br.ReadString('\n')
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return stats, &ResourceError{Path: name, Err: rerr}
		}
		if line != "" {
			stats.Lines++
			word, vec, err := parseLine(line, stats.Lines)
			if err != nil {
				return stats, err
			}
			if word == "" {
				stats.Blank++
			} else {
				if !dimKnown {
					stats.Dimension = len(vec)
					dimKnown = true
				} else if opts.StrictDimension && len(vec) != stats.Dimension {
					return stats, &DimensionError{Line: stats.Lines, Word: word, Want: stats.Dimension, Got: len(vec)}
				}
				replaced, err := dst.Put(word, vec)
				if err != nil {
					return stats, fmt.Errorf("store %q: %w", word, err)
				}
				if replaced {
					stats.Duplicates++
				} else {
					stats.Entries++
				}
			}
			if stats.Lines%every == 0 {
				log.WithField("lines", stats.Lines).Debug("loading embeddings")
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
	}

	if err := dst.Seal(); err != nil {
		return stats, fmt.Errorf("seal table: %w", err)
	}
	return stats, nil
}

// parseLine splits one table row. A whitespace-only line yields an empty word.
func parseLine(line string, lineNo int) (string, domain.Vector, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil, nil
	}
	word := fields[0]
	vec := make(domain.Vector, len(fields)-1)
	for i, tok := range fields[1:] {
		if isHexFloat(tok) {
			return "", nil, &ParseError{Line: lineNo, Word: word, Column: i + 2, Token: tok, Err: errHexFloat}
		}
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return "", nil, &ParseError{Line: lineNo, Word: word, Column: i + 2, Token: tok, Err: err}
		}
		vec[i] = f
	}
	return word, vec, nil
}

// errHexFloat rejects hexadecimal literals, which strconv parses but
// decimal table files never contain.
var errHexFloat = errors.New("hexadecimal float not accepted")

func isHexFloat(tok string) bool {
	if len(tok) > 0 && (tok[0] == '+' || tok[0] == '-') {
		tok = tok[1:]
	}
	return len(tok) >= 2 && tok[0] == '0' && (tok[1] == 'x' || tok[1] == 'X')
}
