package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"termvec/internal/diagnostics"
	"termvec/internal/domain"
	"termvec/internal/embedding"
	"termvec/internal/vectorstore/memory"
	"termvec/internal/vectorstore/sqlite"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func setupPaths(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	return Paths{
		Embeddings: writeFile(t, dir, "glove.txt", "a 1 0\nb 0 1\n"),
		Corpus:     writeFile(t, dir, "corpus.txt", "a b\n  a c  \nc d\n"),
		Output:     filepath.Join(dir, "out", "vectors.txt"),
	}
}

func TestRun_WordMode(t *testing.T) {
	paths := setupPaths(t)
	var rec diagnostics.Recorder
	svc := New(memory.NewStorage(), &rec, quietLogger(), Options{TopMisses: 5})

	sum, err := svc.Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(paths.Output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "a: [1.0, 0.0]\nb: [0.0, 1.0]\n" {
		t.Errorf("unexpected output %q", data)
	}

	want := &Summary{
		Loaded:     2,
		Dimension:  2,
		Terms:      3,
		Entries:    2,
		WordMisses: 3,
		TopMisses:  []diagnostics.Miss{{Context: "c", Count: 2}, {Context: "d", Count: 1}},
		Mode:       domain.WordMode,
	}
	if diff := cmp.Diff(want, sum); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	if n := len(rec.Diagnostics()); n != 3 {
		t.Errorf("expected external sink to see 3 diagnostics, got %d", n)
	}
}

func TestRun_PhraseMode(t *testing.T) {
	paths := setupPaths(t)
	svc := New(memory.NewStorage(), nil, quietLogger(), Options{PhraseLevel: true})

	sum, err := svc.Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	data, _ := os.ReadFile(paths.Output)
	if string(data) != "a b: [[1.0, 0.0], [0.0, 1.0]]\na c: [[1.0, 0.0]]\n" {
		t.Errorf("unexpected output %q", data)
	}
	if sum.TermMisses != 1 || sum.Entries != 2 || sum.Mode != domain.PhraseMode {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestRun_ParseErrorWritesNothing(t *testing.T) {
	paths := setupPaths(t)
	os.WriteFile(paths.Embeddings, []byte("a 1 0\nb zero 1\n"), 0o644)

	svc := New(memory.NewStorage(), nil, quietLogger(), Options{})
	_, err := svc.Run(context.Background(), paths)

	var pe *embedding.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if _, err := os.Stat(paths.Output); !os.IsNotExist(err) {
		t.Error("output must not be written after a failed load")
	}
}

func TestRun_MissingCorpus(t *testing.T) {
	paths := setupPaths(t)
	paths.Corpus = filepath.Join(t.TempDir(), "absent.txt")

	svc := New(memory.NewStorage(), nil, quietLogger(), Options{})
	_, err := svc.Run(context.Background(), paths)

	var re *embedding.ResourceError
	if !errors.As(err, &re) {
		t.Fatalf("expected ResourceError, got %v", err)
	}
}

func TestRun_Canceled(t *testing.T) {
	paths := setupPaths(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := New(memory.NewStorage(), nil, quietLogger(), Options{})
	if _, err := svc.Run(ctx, paths); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(paths.Output); !os.IsNotExist(err) {
		t.Error("output must not be written after cancellation")
	}
}

func TestRun_ReusesSealedSQLiteTable(t *testing.T) {
	paths := setupPaths(t)
	dbPath := filepath.Join(t.TempDir(), "table.db")

	st, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("open table: %v", err)
	}
	first := New(st, nil, quietLogger(), Options{})
	if _, err := first.Run(context.Background(), paths); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	st.Close()

	// same size and mtime, unparseable content: a reused table never reads it
	fi, err := os.Stat(paths.Embeddings)
	if err != nil {
		t.Fatal(err)
	}
	os.WriteFile(paths.Embeddings, []byte("garbage x y\n"), 0o644)
	if err := os.Chtimes(paths.Embeddings, fi.ModTime(), fi.ModTime()); err != nil {
		t.Fatal(err)
	}

	st, err = sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen table: %v", err)
	}
	defer st.Close()
	second := New(st, nil, quietLogger(), Options{})
	sum, err := second.Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if !sum.Reused || sum.Loaded != 2 || sum.Entries != 2 {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestRun_RebuildsSQLiteTableFromOtherFile(t *testing.T) {
	paths := setupPaths(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "table.db")
	paths.Embeddings = writeFile(t, dir, "a.txt", "a 1 0\n")

	run := func(embeddings string) *Summary {
		t.Helper()
		st, err := sqlite.Open(dbPath)
		if err != nil {
			t.Fatalf("open table: %v", err)
		}
		defer st.Close()
		p := paths
		p.Embeddings = embeddings
		sum, err := New(st, nil, quietLogger(), Options{}).Run(context.Background(), p)
		if err != nil {
			t.Fatalf("Run with %s failed: %v", embeddings, err)
		}
		return sum
	}

	run(paths.Embeddings)
	other := writeFile(t, dir, "b.txt", "a 9 9\n")
	sum := run(other)

	if sum.Reused {
		t.Error("table built from a.txt must not be reused for b.txt")
	}
	data, err := os.ReadFile(paths.Output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "a: [9.0, 9.0]\n" {
		t.Errorf("unexpected output %q", data)
	}

	if sum := run(other); !sum.Reused {
		t.Error("expected the rebuilt table to be reused for the same file")
	}
}

func TestLoadTable_MissingFileWithPersistentStore(t *testing.T) {
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "table.db"))
	if err != nil {
		t.Fatalf("open table: %v", err)
	}
	defer st.Close()

	_, err = New(st, nil, quietLogger(), Options{}).LoadTable(filepath.Join(t.TempDir(), "absent.txt"))
	var re *embedding.ResourceError
	if !errors.As(err, &re) {
		t.Fatalf("expected ResourceError, got %v", err)
	}
}

func TestMapTerm(t *testing.T) {
	st := memory.FromMap(map[string]domain.Vector{"a": {1, 0}})
	svc := New(st, nil, quietLogger(), Options{})

	res, diags, err := svc.MapTerm("a z", false)
	if err != nil {
		t.Fatalf("MapTerm failed: %v", err)
	}
	if res.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", res.Len())
	}
	want := []domain.Diagnostic{{Kind: domain.WordNotFound, Context: "z"}}
	if diff := cmp.Diff(want, diags); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}
