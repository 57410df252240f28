package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"termvec/internal/diagnostics"
	"termvec/internal/domain"
	"termvec/internal/mapper"
	"termvec/internal/vectorstore/memory"
)

type fakePort struct {
	table domain.Table
	err   error
	calls []bool
}

func (f *fakePort) MapTerm(term string, phraseLevel bool) (*domain.Result, []domain.Diagnostic, error) {
	f.calls = append(f.calls, phraseLevel)
	if f.err != nil {
		return nil, nil, f.err
	}
	var rec diagnostics.Recorder
	res, err := mapper.Map([]string{term}, f.table, phraseLevel, &rec)
	return res, rec.Diagnostics(), err
}

func newPort() *fakePort {
	return &fakePort{table: memory.FromMap(map[string]domain.Vector{
		"a": {1, 0},
		"b": {0, 1},
	})}
}

func typeTerm(m Model, term string) Model {
	for _, r := range term {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model)
}

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func TestModel_WordLookup(t *testing.T) {
	port := newPort()
	m := typeTerm(sized(New(port, "2 embeddings", false)), "a c b")

	if len(m.entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m.entries))
	}
	if len(m.diagnostics) != 1 || m.diagnostics[0].Context != "c" {
		t.Errorf("expected one miss for c, got %v", m.diagnostics)
	}
	if !strings.Contains(m.status, "word mode") {
		t.Errorf("unexpected status %q", m.status)
	}
	if !strings.Contains(m.renderCurrent(), "[1.0, 0.0]") {
		t.Errorf("expected first vector in view, got:\n%s", m.renderCurrent())
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	if m.cursor != 0 {
		t.Errorf("cursor should wrap to 0, got %d", m.cursor)
	}
}

func TestModel_TabTogglesMode(t *testing.T) {
	port := newPort()
	m := typeTerm(sized(New(port, "", false)), "a b")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)

	if !m.phraseLevel {
		t.Fatal("expected phrase mode after tab")
	}
	if len(m.entries) != 1 || m.entries[0].Key != "a b" || len(m.entries[0].Vectors) != 2 {
		t.Errorf("unexpected phrase entries: %+v", m.entries)
	}
	if len(port.calls) != 2 || port.calls[0] || !port.calls[1] {
		t.Errorf("unexpected call modes: %v", port.calls)
	}
}

func TestModel_Error(t *testing.T) {
	port := newPort()
	port.err = errors.New("table closed")
	m := typeTerm(sized(New(port, "", false)), "a")

	if !strings.HasPrefix(m.status, "Error: ") {
		t.Errorf("expected error status, got %q", m.status)
	}
	if m.entries != nil {
		t.Error("expected entries to be cleared")
	}
}

func TestModel_Quit(t *testing.T) {
	m := New(newPort(), "", false)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestPreviewVector(t *testing.T) {
	v := domain.Vector{1, 2, 3, 4}
	if got := PreviewVector(v, 2); got != "[1.0, 2.0, ...]  (dim 4)" {
		t.Errorf("PreviewVector = %q", got)
	}
	if got := PreviewVector(v, 10); got != "[1.0, 2.0, 3.0, 4.0]  (dim 4)" {
		t.Errorf("PreviewVector = %q", got)
	}
}
