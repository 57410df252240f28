package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags puts every flag of c and its children back to its default.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

// setupWorkspace writes a small table, a corpus and a config pointing at
// both, and returns the config path and the output path.
func setupWorkspace(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	emb := filepath.Join(dir, "glove.txt")
	corpus := filepath.Join(dir, "corpus.txt")
	out := filepath.Join(dir, "out", "vectors.txt")
	cfgPath := filepath.Join(dir, "termvec.yaml")

	writeFile(t, emb, "cell 1 0\ncycle 0 1\n")
	writeFile(t, corpus, "cell cycle\ncell wall\n")
	writeFile(t, cfgPath, fmt.Sprintf(`embeddings:
  path: %s
corpus:
  path: %s
output:
  path: %s
log:
  level: error
`, emb, corpus, out))
	return cfgPath, out
}

func TestMapCommand_WordMode(t *testing.T) {
	cfgPath, outPath := setupWorkspace(t)

	stdout, err := execute(t, "map", "--config", cfgPath)
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "cell: [1.0, 0.0]\ncycle: [0.0, 1.0]\n"
	if string(data) != want {
		t.Errorf("output = %q, want %q", data, want)
	}
	if !strings.Contains(stdout, "Loaded 2 embeddings") || !strings.Contains(stdout, "Words not found: 1") {
		t.Errorf("unexpected summary:\n%s", stdout)
	}
}

func TestMapCommand_PhraseMode(t *testing.T) {
	cfgPath, _ := setupWorkspace(t)
	outPath := filepath.Join(t.TempDir(), "phrase.txt")

	if _, err := execute(t, "map", "--config", cfgPath, "--phrase", "-o", outPath); err != nil {
		t.Fatalf("map failed: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "cell cycle: [[1.0, 0.0], [0.0, 1.0]]\ncell wall: [[1.0, 0.0]]\n"
	if string(data) != want {
		t.Errorf("output = %q, want %q", data, want)
	}
}

func TestMapCommand_BadTableWritesNothing(t *testing.T) {
	cfgPath, outPath := setupWorkspace(t)
	bad := filepath.Join(t.TempDir(), "bad.txt")
	writeFile(t, bad, "cell 1 x\n")

	if _, err := execute(t, "map", "--config", cfgPath, "--embeddings", bad); err == nil {
		t.Fatal("expected error for malformed table")
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Errorf("output should not exist, stat err = %v", err)
	}
}

func TestLookupCommand(t *testing.T) {
	cfgPath, _ := setupWorkspace(t)

	stdout, err := execute(t, "lookup", "--config", cfgPath, "cycle", "Cell")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !strings.Contains(stdout, "cycle: [0.0, 1.0]") {
		t.Errorf("missing cycle vector:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Cell: ") || !strings.Contains(stdout, "not found") {
		t.Errorf("expected Cell to be reported missing:\n%s", stdout)
	}
}

func TestLookupCommand_SQLiteReuse(t *testing.T) {
	cfgPath, _ := setupWorkspace(t)
	db := filepath.Join(t.TempDir(), "table.db")

	if _, err := execute(t, "lookup", "--config", cfgPath, "--store", "sqlite", "--sqlite-path", db, "cell"); err != nil {
		t.Fatalf("first lookup failed: %v", err)
	}
	stdout, err := execute(t, "lookup", "--config", cfgPath, "--store", "sqlite", "--sqlite-path", db, "--reuse", "cell")
	if err != nil {
		t.Fatalf("reused lookup failed: %v", err)
	}
	if !strings.Contains(stdout, "cell: [1.0, 0.0]") {
		t.Errorf("unexpected output:\n%s", stdout)
	}

	other := filepath.Join(t.TempDir(), "other.txt")
	writeFile(t, other, "cell 7 7\n")
	stdout, err = execute(t, "lookup", "--config", cfgPath, "--store", "sqlite", "--sqlite-path", db, "--reuse", "--embeddings", other, "cell")
	if err != nil {
		t.Fatalf("lookup with another table failed: %v", err)
	}
	if !strings.Contains(stdout, "cell: [7.0, 7.0]") {
		t.Errorf("expected the table to be rebuilt from the new file:\n%s", stdout)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "termvec.yaml")

	if _, err := execute(t, "config", "init", path); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if _, err := execute(t, "config", "init", path); err == nil {
		t.Error("expected error for existing file")
	}
	if _, err := execute(t, "config", "init", "--force", path); err != nil {
		t.Errorf("config init --force failed: %v", err)
	}
}
