package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/layout"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// VizListModel - Interactive visualization type selection
// =============================================================================

// vizChoice pairs a visualization type with a one-line description.
type vizChoice struct {
	Type        string
	Description string
}

var vizChoices = []vizChoice{
	{layout.VizTypeTreemap, "nested rectangles sized by value"},
	{layout.VizTypeForce, "force-directed entity graph"},
	{layout.VizTypeTimeline, "outputs bucketed along a time axis"},
	{layout.VizTypeFlow, "funding-to-address value flows"},
}

// VizListModel is the bubbletea model for interactive viz type selection.
type VizListModel struct {
	Choices  []vizChoice
	Cursor   int
	Selected string
}

// NewVizListModel creates a new viz type list model.
func NewVizListModel() VizListModel {
	return VizListModel{Choices: vizChoices}
}

func (m VizListModel) Init() tea.Cmd {
	return nil
}

func (m VizListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Choices)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = m.Choices[m.Cursor].Type
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m VizListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Visualization"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, c := range m.Choices {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%-10s  %s", cursor, c.Type, listDimStyle.Render(c.Description))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// selectVizType runs the interactive viz type picker and returns the
// chosen type, or an empty string if the user quit without selecting.
func selectVizType() (string, error) {
	p := tea.NewProgram(NewVizListModel())
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	fm, ok := finalModel.(VizListModel)
	if !ok {
		return "", nil
	}
	return fm.Selected, nil
}

// =============================================================================
// RecordListModel - Scrollable UTXO record browser
// =============================================================================

// RecordListModel is the bubbletea model for browsing fetched records.
type RecordListModel struct {
	Records []entity.Record
	Cursor  int
	Height  int
	Offset  int
}

// NewRecordListModel creates a new record browser model.
func NewRecordListModel(records []entity.Record) RecordListModel {
	return RecordListModel{
		Records: records,
		Cursor:  0,
		Height:  15,
		Offset:  0,
	}
}

func (m RecordListModel) Init() tea.Cmd {
	return nil
}

func (m RecordListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Records)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m RecordListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Unspent Outputs"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Records) {
		end = len(m.Records)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Records[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		risk := string(r.Risk)
		if risk == "" {
			risk = "—"
		}

		change := ""
		if r.Change {
			change = "✓"
		}

		rows = append(rows, []string{
			cursor,
			shortRef(r.Ref()),
			fmt.Sprintf("%.8f", r.Amount),
			risk,
			change,
			formatRecordAge(r.Received),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Outpoint", "Amount", "Risk", "Change", "Received").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Records) {
				return lipgloss.NewStyle()
			}
			r := m.Records[actualIdx]
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if col == 3 {
				switch r.Risk {
				case entity.RiskHigh:
					base = base.Foreground(colorRed)
				case entity.RiskMedium:
					base = base.Foreground(colorYellow)
				case entity.RiskLow:
					base = base.Foreground(colorGreen)
				default:
					base = base.Foreground(colorDim)
				}
			} else if col == 5 {
				base = base.Foreground(colorDim)
			}

			if isCurrent {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Records))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// shortRef abbreviates a txid:vout outpoint for table display.
func shortRef(ref string) string {
	if len(ref) <= 20 {
		return ref
	}
	idx := strings.LastIndex(ref, ":")
	if idx < 0 || idx < 16 {
		return ref[:20] + "…"
	}
	return ref[:8] + "…" + ref[idx-4:]
}

func formatRecordAge(t time.Time) string {
	if t.IsZero() {
		return "—"
	}

	diff := time.Since(t)
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
