package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/utxoscope/pkg/layout"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestVizListModelSelect(t *testing.T) {
	m := NewVizListModel()

	next, _ := m.Update(keyMsg("down"))
	next, _ = next.Update(keyMsg("enter"))

	fm, ok := next.(VizListModel)
	if !ok {
		t.Fatal("Update() did not return a VizListModel")
	}
	if fm.Selected != layout.VizTypeForce {
		t.Errorf("Selected = %q, want %q", fm.Selected, layout.VizTypeForce)
	}
}

func TestVizListModelQuitWithoutSelection(t *testing.T) {
	m := NewVizListModel()

	next, _ := m.Update(keyMsg("esc"))
	fm := next.(VizListModel)
	if fm.Selected != "" {
		t.Errorf("Selected = %q, want empty after quit", fm.Selected)
	}
}

func TestVizListModelCursorBounds(t *testing.T) {
	m := NewVizListModel()

	next, _ := m.Update(keyMsg("up"))
	fm := next.(VizListModel)
	if fm.Cursor != 0 {
		t.Errorf("Cursor = %d, want 0 at top", fm.Cursor)
	}

	var model tea.Model = fm
	for i := 0; i < len(vizChoices)+3; i++ {
		model, _ = model.Update(keyMsg("down"))
	}
	fm = model.(VizListModel)
	if fm.Cursor != len(vizChoices)-1 {
		t.Errorf("Cursor = %d, want %d at bottom", fm.Cursor, len(vizChoices)-1)
	}
}

func TestVizListModelView(t *testing.T) {
	view := NewVizListModel().View()

	for _, c := range vizChoices {
		if !strings.Contains(view, c.Type) {
			t.Errorf("View() missing viz type %q", c.Type)
		}
	}
}

func TestRecordListModelScrolling(t *testing.T) {
	records := testCommandRecords()
	m := NewRecordListModel(records)
	m.Height = 2

	var model tea.Model = m
	model, _ = model.Update(keyMsg("down"))
	model, _ = model.Update(keyMsg("down"))

	fm := model.(RecordListModel)
	if fm.Cursor != 2 {
		t.Errorf("Cursor = %d, want 2", fm.Cursor)
	}
	if fm.Offset != 1 {
		t.Errorf("Offset = %d, want 1 after scrolling past height", fm.Offset)
	}
}

func TestShortRef(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"abcd:0", "abcd:0"},
		{strings.Repeat("a", 64) + ":12", "aaaaaaaa…aaaa:12"},
	}

	for _, tt := range tests {
		got := shortRef(tt.ref)
		if got != tt.want {
			t.Errorf("shortRef(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestFormatRecordAge(t *testing.T) {
	if got := formatRecordAge(time.Time{}); got != "—" {
		t.Errorf("formatRecordAge(zero) = %q, want —", got)
	}
	if got := formatRecordAge(time.Now().Add(-30 * time.Minute)); got != "30m ago" {
		t.Errorf("formatRecordAge(30m) = %q, want 30m ago", got)
	}
	if got := formatRecordAge(time.Now().Add(-3 * time.Hour)); got != "3h ago" {
		t.Errorf("formatRecordAge(3h) = %q, want 3h ago", got)
	}
	old := time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC)
	if got := formatRecordAge(old); got != "Jun 15, 2020" {
		t.Errorf("formatRecordAge(old) = %q, want Jun 15, 2020", got)
	}
}
