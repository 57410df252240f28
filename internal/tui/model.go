package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"termvec/internal/domain"
	"termvec/internal/output"
)

// MapperPort is the TUI-facing subset of the service.
type MapperPort interface {
	MapTerm(term string, phraseLevel bool) (*domain.Result, []domain.Diagnostic, error)
}

// previewLen is how many vector components are shown per vector.
const previewLen = 8

// Model is the Bubble Tea model for the table explorer.
type Model struct {
	service     MapperPort
	input       textinput.Model
	viewport    viewport.Model
	entries     []domain.Entry
	diagnostics []domain.Diagnostic
	phraseLevel bool
	summary     string
	status      string
	cursor      int
	ready       bool
	lastTerm    string
}

// New creates a new explorer model. summary is shown under the header.
func New(service MapperPort, summary string, phraseLevel bool) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a term and press Enter (Tab switches mode)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:     service,
		input:       ti,
		viewport:    vp,
		summary:     summary,
		phraseLevel: phraseLevel,
		status:      "Loaded. Type a term to look up.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2 // header + summary
		totalFooterLines := 1 // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			term := strings.TrimSpace(m.input.Value())
			if term != "" {
				m.lastTerm = term
				m.lookup()
				return m, nil
			}
		case "tab":
			m.phraseLevel = !m.phraseLevel
			if m.lastTerm != "" {
				m.lookup()
			} else {
				m.status = fmt.Sprintf("Mode: %s", domain.ModeFor(m.phraseLevel))
			}
			return m, nil
		case "down":
			if len(m.entries) > 0 {
				m.cursor = (m.cursor + 1) % len(m.entries)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "up":
			if len(m.entries) > 0 {
				m.cursor = (m.cursor - 1 + len(m.entries)) % len(m.entries)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) lookup() {
	mode := domain.ModeFor(m.phraseLevel)
	res, diags, err := m.service.MapTerm(m.lastTerm, m.phraseLevel)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.entries = nil
		m.diagnostics = nil
	} else {
		m.entries = res.Entries()
		m.diagnostics = diags
		m.status = fmt.Sprintf("%s mode: %d mapped, %d missing for %q", mode, len(m.entries), len(diags), m.lastTerm)
	}
	m.cursor = 0
	m.viewport.SetContent(m.renderCurrent())
}

// View renders the TUI layout and current entry.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Term Vector Explorer")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrent() string {
	var b strings.Builder
	if len(m.entries) == 0 {
		if m.lastTerm == "" {
			b.WriteString("No lookups yet.")
		} else {
			b.WriteString("Nothing found.")
		}
	} else {
		e := m.entries[m.cursor]
		fmt.Fprintf(&b, "Entry %d/%d  %s\n\n", m.cursor+1, len(m.entries), keyStyle.Render(e.Key))
		for i, v := range e.Vectors {
			if len(e.Vectors) > 1 {
				fmt.Fprintf(&b, "%d. ", i+1)
			}
			b.WriteString(PreviewVector(v, previewLen))
			b.WriteString("\n")
		}
	}
	for _, d := range m.diagnostics {
		b.WriteString("\n")
		b.WriteString(missStyle.Render(describe(d)))
	}
	return b.String()
}

// PreviewVector renders at most n components of v followed by the dimension.
func PreviewVector(v domain.Vector, n int) string {
	if n <= 0 || len(v) <= n {
		return fmt.Sprintf("%s  (dim %d)", output.FormatVector(v), len(v))
	}
	head := output.FormatVector(v[:n])
	return fmt.Sprintf("%s, ...]  (dim %d)", strings.TrimSuffix(head, "]"), len(v))
}

func describe(d domain.Diagnostic) string {
	switch d.Kind {
	case domain.WordNotFound:
		return fmt.Sprintf("No embedding found for word %q.", d.Context)
	case domain.TermNotFound:
		return fmt.Sprintf("No embeddings found for term %q.", d.Context)
	default:
		return fmt.Sprintf("%s: %s", d.Kind, d.Context)
	}
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	missStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
