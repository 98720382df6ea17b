package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/zonemap/pkg/config"
	"github.com/matzehuels/zonemap/pkg/pipeline"
)

func testPreviewModel(t *testing.T) previewModel {
	t.Helper()
	c := newTestCLI(t)
	input := writeFile(t, t.TempDir(), "markets.csv", marketsCSV)
	opts := pipeline.Options{Title: "Preview"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	s, skipped, err := c.buildScene(t.Context(), input, config.Default(), opts, true)
	if err != nil {
		t.Fatalf("buildScene() error: %v", err)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	return newPreviewModel(s, skipped)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPreviewNavigation(t *testing.T) {
	m := testPreviewModel(t)
	n := len(m.scene.Points)
	if n != 4 {
		t.Fatalf("points = %d, want 4", n)
	}

	steps := []struct {
		key  string
		want int
	}{
		{"tab", 1},
		{"n", 2},
		{"p", 1},
		{"shift+tab", 0},
		{"p", n - 1},
		{"n", 0},
	}
	for _, s := range steps {
		next, _ := m.Update(key(s.key))
		m = next.(previewModel)
		if m.cursor != s.want {
			t.Errorf("after %q cursor = %d, want %d", s.key, m.cursor, s.want)
		}
	}

	next, _ := m.Update(key("t"))
	m = next.(previewModel)
	if m.showLabels {
		t.Error("t should hide labels")
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestPreviewView(t *testing.T) {
	m := testPreviewModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(previewModel)

	view := m.View()
	for _, want := range []string{"Preview", "4 points", "1 rows skipped", m.scene.Points[0].Label} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if got := strings.Count(view, "\n"); got < 25 {
		t.Errorf("view has %d lines, want the canvas to fill the window", got)
	}
}
