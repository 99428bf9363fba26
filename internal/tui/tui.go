// Package tui provides a Bubble Tea browser over a directory of album
// records, plus the lipgloss summary the CLI prints after a run.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/ranksim/internal/report"
)

// State represents the current UI state.
type State int

const (
	StateLoading State = iota
	StateList
	StateDetail
	StateError
)

// Model is the Bubble Tea model for the TUI.
type Model struct {
	dir     string
	state   State
	spinner spinner.Model
	table   table.Model
	index   *report.Index
	record  *report.Record
	err     error

	width  int
	height int
}

// NewModel creates a model that browses the records in dir.
func NewModel(dir string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	return Model{
		dir:     dir,
		state:   StateLoading,
		spinner: sp,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadIndex(m.dir))
}

// Message types
type (
	// IndexLoadedMsg is sent when index.json has been read.
	IndexLoadedMsg struct {
		Index *report.Index
		Err   error
	}

	// RecordLoadedMsg is sent when an album record has been read.
	RecordLoadedMsg struct {
		Record *report.Record
		Err    error
	}
)

func loadIndex(dir string) tea.Cmd {
	return func() tea.Msg {
		idx, err := report.ReadIndex(dir)
		return IndexLoadedMsg{Index: idx, Err: err}
	}
}

func loadRecord(path string) tea.Cmd {
	return func() tea.Msg {
		rec, err := report.ReadRecord(path)
		return RecordLoadedMsg{Record: rec, Err: err}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.state != StateLoading {
			m.table.SetHeight(m.tableHeight())
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "esc":
			if m.state == StateDetail {
				m.state = StateList
				m.record = nil
				return m, nil
			}
			return m, tea.Quit

		case "enter":
			if m.state == StateList && len(m.index.Albums) > 0 {
				entry := m.index.Albums[m.table.Cursor()]
				return m, loadRecord(filepath.Join(m.dir, entry.File))
			}
		}

	case spinner.TickMsg:
		if m.state != StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case IndexLoadedMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			return m, nil
		}
		m.index = msg.Index
		m.table = newAlbumTable(msg.Index, m.tableHeight())
		m.state = StateList
		return m, nil

	case RecordLoadedMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			return m, nil
		}
		m.record = msg.Record
		m.state = StateDetail
		return m, nil
	}

	if m.state == StateList {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) tableHeight() int {
	if m.height == 0 {
		return 15
	}
	return max(3, m.height-12)
}

func newAlbumTable(idx *report.Index, height int) table.Model {
	columns := []table.Column{
		{Title: "Album", Width: 32},
		{Title: "Artist", Width: 20},
	}
	var pairs int
	if len(idx.Albums) > 0 {
		pairs = len(idx.Albums[0].Comparisons)
		for _, c := range idx.Albums[0].Comparisons {
			columns = append(columns, table.Column{Title: c.Pair, Width: max(14, len(c.Pair))})
		}
	}
	columns = append(columns, table.Column{Title: "Score", Width: 6})

	rows := make([]table.Row, 0, len(idx.Albums))
	for _, a := range idx.Albums {
		row := table.Row{a.Album, a.Artist}
		for i := range pairs {
			if i < len(a.Comparisons) {
				c := a.Comparisons[i]
				row = append(row, fmt.Sprintf("%s / %s", formatLoss(c.Loss), formatFloat(c.Similarity)))
			} else {
				row = append(row, undefined)
			}
		}
		row = append(row, formatFloat(a.MeanScore))
		rows = append(rows, row)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#4ECDC4")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#1B1B1B")).
		Background(lipgloss.Color("#F8B500")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ranksim"))
	b.WriteString("\n")

	switch m.state {
	case StateLoading:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("Reading " + filepath.Join(m.dir, report.IndexFile)))
		b.WriteString("\n")
	case StateList:
		b.WriteString(m.viewList())
	case StateDetail:
		b.WriteString(m.viewDetail())
	case StateError:
		b.WriteString(negativeStyle.Render("Error:"))
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString("  " + m.err.Error())
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"run %s | top %d | %d trials | seed %d",
		m.index.RunID, m.index.Params.TopN, m.index.Params.Trials, m.index.Params.Seed,
	)))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n\n")

	for _, s := range m.index.Summary {
		value := dimStyle.Render(undefined)
		if s.Count > 0 {
			mean := s.MeanSimilarity
			value = similarityStyle(&mean).Render(fmt.Sprintf("%+.2f", mean))
		}
		b.WriteString(fmt.Sprintf("%s %s  ", subtitleStyle.Render(s.Pair), value))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewDetail() string {
	rec := m.record
	var b strings.Builder

	header := fmt.Sprintf("%s by %s", rec.Album, rec.Artist)
	if rec.ReleaseDate != "" {
		header += " (" + rec.ReleaseDate + ")"
	}
	b.WriteString(albumStyle.Render(header))
	b.WriteString("\n")
	if rec.RankingDate != "" {
		b.WriteString(dimStyle.Render("ranked " + rec.RankingDate))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	columns := make([]string, 0, len(rec.Rankings))
	for _, r := range rec.Rankings {
		columns = append(columns, renderRanking(r))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	b.WriteString("\n\n")

	for _, c := range rec.Comparisons {
		b.WriteString(fmt.Sprintf("%-28s loss %-4s similarity %s\n",
			c.Pair,
			formatLoss(c.Loss),
			similarityStyle(c.Similarity).Render(formatFloat(c.Similarity)),
		))
	}

	return b.String()
}

func renderRanking(r report.Ranking) string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render(r.Rater))
	for i, s := range r.Songs {
		b.WriteString(fmt.Sprintf("\n%d. %s", i+1, s.Name))
	}
	if len(r.Songs) == 0 {
		b.WriteString("\n" + dimStyle.Render("no ranking"))
	}
	if len(r.Dropped) > 0 {
		b.WriteString("\n" + warningStyle.Render(fmt.Sprintf("dropped %v", r.Dropped)))
	}
	return boxStyle.Width(30).Render(b.String())
}

func (m Model) helpText() string {
	switch m.state {
	case StateList:
		return "↑/↓: move • enter: rankings • q: quit"
	case StateDetail:
		return "esc: back • q: quit"
	default:
		return "q: quit"
	}
}

// Run starts the TUI application.
func Run(dir string) error {
	p := tea.NewProgram(NewModel(dir), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
