package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{correct: 3, incorrect: 1}
	out := m.renderFooter()
	if !containsAll(out, []string{"Session 4", "75.0%", "f1 help"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}

	empty := (&Model{}).renderFooter()
	if strings.Contains(empty, "%") {
		t.Fatalf("empty session should not show accuracy: %s", empty)
	}
}

func TestBarColumnsWraps(t *testing.T) {
	rows := []string{"A", "B", "C", "D", "E"}
	out := barColumns(rows, 2)
	if h := lipgloss.Height(out); h != 2 {
		t.Fatalf("expected 2 rows, got %d:\n%s", h, out)
	}
	if !containsAll(out, rows) {
		t.Fatalf("missing rows:\n%s", out)
	}
	if barColumns(nil, 3) != "" {
		t.Fatalf("expected empty output")
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
