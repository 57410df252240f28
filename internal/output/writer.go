package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"termvec/internal/domain"
)

type wordItem struct {
	Key    string    `yaml:"key"`
	Vector []float64 `yaml:"vector,flow"`
}

type phraseItem struct {
	Key     string      `yaml:"key"`
	Vectors [][]float64 `yaml:"vectors,flow"`
}

// Write renders res to w in the given format.
func Write(w io.Writer, res *domain.Result, format string) error {
	switch format {
	case FormatText, "":
		return writeText(w, res)
	case FormatYAML:
		return writeYAML(w, res)
	default:
		return ValidateFormat(format)
	}
}

func writeText(w io.Writer, res *domain.Result) error {
	bw := bufio.NewWriter(w)
	for _, e := range res.Entries() {
		if _, err := bw.WriteString(FormatEntry(res.Mode(), e)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeYAML(w io.Writer, res *domain.Result) error {
	var doc any
	entries := res.Entries()
	if res.Mode() == domain.PhraseMode {
		items := make([]phraseItem, len(entries))
		for i, e := range entries {
			vs := make([][]float64, len(e.Vectors))
			for j, v := range e.Vectors {
				vs[j] = v
			}
			items[i] = phraseItem{Key: e.Key, Vectors: vs}
		}
		doc = items
	} else {
		items := make([]wordItem, len(entries))
		for i, e := range entries {
			items[i] = wordItem{Key: e.Key, Vector: e.Vectors[0]}
		}
		doc = items
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// WriteFile writes res to path atomically: the content goes to a temporary
// file in the same directory which is renamed into place only after every
// entry has been written.
func WriteFile(path string, res *domain.Result, format string) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".termvec-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, res, format); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
