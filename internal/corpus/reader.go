// Package corpus reads the term list fed to the mapper.
package corpus

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"termvec/internal/embedding"
)

// ReadFile reads one term per line from path.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &embedding.ResourceError{Path: path, Err: err}
	}
	defer f.Close()

	terms, err := Read(f)
	if err != nil {
		return nil, &embedding.ResourceError{Path: path, Err: err}
	}
	return terms, nil
}

// Read returns every line of r with surrounding whitespace removed. Blank
// lines are kept as empty terms so line numbers stay aligned with the input.
func Read(r io.Reader) ([]string, error) {
	var terms []string
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if line != "" {
			terms = append(terms, strings.TrimSpace(line))
		}
		if errors.Is(err, io.EOF) {
			return terms, nil
		}
	}
}
