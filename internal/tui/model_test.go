package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/morsedrill/internal/drill"
	"github.com/verte-zerg/morsedrill/internal/model"
	"github.com/verte-zerg/morsedrill/internal/morse"
	"github.com/verte-zerg/morsedrill/internal/store"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	alphabet, err := drill.NewAlphabet("KM")
	if err != nil {
		t.Fatalf("alphabet: %v", err)
	}
	cfg := model.Config{Course: "test", TimelyMs: 500}
	m, err := NewModel(cfg, alphabet, nil, nil, nil, drill.WithSeed(1))
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	m.Update(m.Init()())
	return m
}

func TestModelStartsFromInit(t *testing.T) {
	alphabet, err := drill.NewAlphabet("KM")
	if err != nil {
		t.Fatalf("alphabet: %v", err)
	}
	m, err := NewModel(model.Config{Course: "test", TimelyMs: 500}, alphabet, nil, nil, nil)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	if m.sched.State() != drill.StateIdle {
		t.Fatalf("drill must not start before the program runs")
	}
	cmd := m.Init()
	if cmd == nil {
		t.Fatalf("expected a start command")
	}
	m.Update(cmd())
	if m.sched.State() != drill.StateRunning {
		t.Fatalf("start message should begin the drill")
	}
	if _, ok := m.sched.Pending(); !ok {
		t.Fatalf("expected a pending symbol")
	}
}

func TestModelScoresKeyedSymbols(t *testing.T) {
	m := newTestModel(t)
	if !strings.Contains(m.View(), "— · —") {
		t.Fatalf("expected K pattern in view:\n%s", m.View())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	if m.correct != 1 || m.percents['K'] != 1 {
		t.Fatalf("expected one correct answer, got correct=%d percent=%v", m.correct, m.percents['K'])
	}
	if !strings.Contains(m.renderLast(), "K ✓") {
		t.Fatalf("unexpected last line %q", m.renderLast())
	}

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	if m.incorrect != 1 {
		t.Fatalf("space should score a miss, got incorrect=%d", m.incorrect)
	}
	if m.stats['K'].correct+m.stats['K'].incorrect != 2 {
		t.Fatalf("unexpected session tally: %+v", m.stats['K'])
	}
}

func TestModelLateAnswerIsMiss(t *testing.T) {
	m := newTestModel(t)
	base := time.Unix(100, 0)
	m.now = func() time.Time { return base }
	m.sched.Replay()
	m.now = func() time.Time { return base.Add(700 * time.Millisecond) }

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'K'}})
	if m.incorrect != 1 || m.correct != 0 {
		t.Fatalf("late answer must be a miss: correct=%d incorrect=%d", m.correct, m.incorrect)
	}
}

func TestModelPauseIgnoresInput(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.sched.State() != drill.StateIdle {
		t.Fatalf("tab should pause")
	}
	if !strings.Contains(m.renderPattern(), "paused") {
		t.Fatalf("expected paused view, got %q", m.renderPattern())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'K'}})
	if m.correct+m.incorrect != 0 {
		t.Fatalf("input while paused must be ignored")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.sched.State() != drill.StateRunning {
		t.Fatalf("tab should resume")
	}
}

func TestModelHelpToggle(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyF1})
	if !strings.Contains(m.View(), "Accuracy matters more than speed") {
		t.Fatalf("expected help text")
	}
}

func TestModelSwitchesCourses(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "drill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()

	alphabet, err := drill.NewAlphabet(morse.KochOrder)
	if err != nil {
		t.Fatalf("alphabet: %v", err)
	}
	cfg := model.Config{Course: "koch", Mastery: 90, MinTries: 5, MaxWeak: 4, TimelyMs: 500}
	m, err := NewModel(cfg, alphabet, st, nil, nil, drill.WithSeed(1))
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	m.Update(m.Init()())
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	if got := m.sched.Stats('K').Attempts; got != 1 {
		t.Fatalf("expected one attempt on K, got %d", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.config.Course != "letters" {
		t.Fatalf("expected letters course, got %q", m.config.Course)
	}
	if m.sched.Alphabet().String() != "ETIANMSURWDKGOHVFLPJBXCYZQ" {
		t.Fatalf("unexpected alphabet %q", m.sched.Alphabet().String())
	}
	if m.sched.State() != drill.StateRunning {
		t.Fatalf("drill should restart after switching")
	}
	if got := m.sched.Stats('K').Attempts; got != 0 {
		t.Fatalf("letters course must start with its own stats, got %d attempts", got)
	}
	if !strings.Contains(m.renderHeader(), "letters") {
		t.Fatalf("header should name the new course: %q", m.renderHeader())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.config.Course != "koch" {
		t.Fatalf("expected to cycle back to koch, got %q", m.config.Course)
	}
	if got := m.sched.Stats('K'); got.Attempts != 1 || got.Successes != 1 {
		t.Fatalf("koch stats should be restored from the store, got %+v", got)
	}
	if m.percents['K'] != 1 {
		t.Fatalf("progress bars should reflect restored stats, got %v", m.percents['K'])
	}
}

func TestNextCourse(t *testing.T) {
	if got := nextCourse("digits"); got != "koch" {
		t.Fatalf("expected koch after digits, got %q", got)
	}
	if got := nextCourse("letters"); got != "digits" {
		t.Fatalf("expected wrap to digits, got %q", got)
	}
	if got := nextCourse("custom"); got != "digits" {
		t.Fatalf("custom curriculum should move to the first course, got %q", got)
	}
}

func TestFooterCountsPresentations(t *testing.T) {
	m := newTestModel(t)
	m.sched.Replay()
	if !strings.Contains(m.renderFooter(), "shown 2") {
		t.Fatalf("replay should count as a presentation: %q", m.renderFooter())
	}
}
