package tui

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/typespeed/internal/engine"
	"github.com/verte-zerg/typespeed/internal/generator"
	"github.com/verte-zerg/typespeed/internal/model"
)

type memRecorder struct {
	results []model.Result
}

func (r *memRecorder) InsertResult(_ context.Context, res model.Result) (int64, error) {
	r.results = append(r.results, res)
	return int64(len(r.results)), nil
}

func newTestModel(t *testing.T, words string, count int, rec ResultRecorder) *Model {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	if words != "" {
		if err := os.WriteFile(path, []byte(words), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	cfg := model.Config{
		Words:        count,
		MinWords:     1,
		MaxWords:     40,
		CharLimit:    engine.DefaultCharLimit,
		FPS:          60,
		WordListPath: path,
	}
	return NewModel(cfg, generator.NewWithSource(rand.NewSource(1)), rec, zerolog.Nop())
}

func runeKey(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(runeKey(string(r)))
	}
}

func TestStartArmsSession(t *testing.T) {
	m := newTestModel(t, "cat dog bird", 2, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.session.Armed() {
		t.Fatalf("expected armed session after enter")
	}
	if got := len(strings.Fields(m.session.Passage())); got != 2 {
		t.Fatalf("expected 2-word passage, got %q", m.session.Passage())
	}
	if m.session.Running() {
		t.Fatalf("clock must not start before the first keystroke")
	}
}

func TestTypingWholePassageFinishesAndRecords(t *testing.T) {
	rec := &memRecorder{}
	m := newTestModel(t, "cat dog bird", 3, rec)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeText(m, m.session.Passage())

	if m.session.State() != engine.StateFinished {
		t.Fatalf("expected finished, got %s", m.session.State())
	}
	if m.mode != passageFinished {
		t.Fatalf("expected congratulation text")
	}
	if m.input.Value() != "" {
		t.Fatalf("expected cleared field, got %q", m.input.Value())
	}
	if len(rec.results) != 1 {
		t.Fatalf("expected 1 recorded result, got %d", len(rec.results))
	}
	if rec.results[0].Correct != rec.results[0].Total {
		t.Fatalf("expected perfect accuracy, got %+v", rec.results[0])
	}
}

func TestWordConsumedClearsField(t *testing.T) {
	m := newTestModel(t, "cat dog", 2, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	first := m.session.TargetWord()
	typeText(m, first)
	if m.input.Value() != "" {
		t.Fatalf("expected cleared field, got %q", m.input.Value())
	}
	if m.visible {
		t.Fatalf("expected hidden underline after word consumed")
	}
	if len(strings.Fields(m.session.Remaining())) != 1 {
		t.Fatalf("expected one word left, got %q", m.session.Remaining())
	}
}

func TestRejectedChangeKeepsField(t *testing.T) {
	m := newTestModel(t, "cat dog", 2, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeText(m, strings.Repeat("x", engine.DefaultCharLimit))
	before := m.input.Value()
	m.Update(runeKey("x"))
	if m.input.Value() != before {
		t.Fatalf("expected rejected change to keep field, got %q", m.input.Value())
	}
	if m.color != engine.ColorIncorrect {
		t.Fatalf("expected incorrect color")
	}
}

func TestRejectedFirstChangeStartsStatsTick(t *testing.T) {
	m := newTestModel(t, "cat dog", 2, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	startID := m.tickID
	paste := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(strings.Repeat("x", engine.DefaultCharLimit+5)), Paste: true}
	_, cmd := m.Update(paste)
	if m.input.Value() != "" {
		t.Fatalf("expected over-long paste rejected, got %q", m.input.Value())
	}
	if !m.session.Running() {
		t.Fatalf("expected run to start on the first change")
	}
	if cmd == nil {
		t.Fatalf("expected stats tick scheduled")
	}
	if m.tickID == startID {
		t.Fatalf("expected tick id to advance")
	}
	if strings.Contains(m.timerText, placeholder) {
		t.Fatalf("expected timer refreshed, got %q", m.timerText)
	}
	if _, cmd = m.Update(tickMsg{id: m.tickID}); cmd == nil {
		t.Fatalf("expected tick to keep rescheduling")
	}
}

func TestStopRestoresDefaultText(t *testing.T) {
	m := newTestModel(t, "cat dog", 2, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeText(m, "c")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.session.State() != engine.StateStopped {
		t.Fatalf("expected stopped, got %s", m.session.State())
	}
	if !strings.Contains(m.View(), "Press") {
		t.Fatalf("expected default text after stop")
	}
	if m.input.Value() != "" {
		t.Fatalf("expected cleared field")
	}
}

func TestTickStopsAfterFinish(t *testing.T) {
	m := newTestModel(t, "go", 1, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := m.Update(tickMsg{id: m.tickID})
	if cmd != nil {
		t.Fatalf("tick before running must not reschedule")
	}
	m.Update(runeKey("g"))
	_, cmd = m.Update(tickMsg{id: m.tickID})
	if cmd == nil {
		t.Fatalf("expected tick to reschedule while running")
	}
	stale := m.tickID
	m.Update(runeKey("o"))
	if m.session.State() != engine.StateFinished {
		t.Fatalf("expected finished")
	}
	if _, cmd = m.Update(tickMsg{id: stale}); cmd != nil {
		t.Fatalf("expected stray tick not to reschedule")
	}
}

func TestSliderClampsAndLocks(t *testing.T) {
	m := newTestModel(t, "cat dog", 2, nil)
	m.config.MinWords = 1
	m.config.MaxWords = 3
	for i := 0; i < 5; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyRight})
	}
	if m.wordCount != 3 {
		t.Fatalf("expected max 3, got %d", m.wordCount)
	}
	for i := 0; i < 5; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	}
	if m.wordCount != 1 {
		t.Fatalf("expected min 1, got %d", m.wordCount)
	}
	if !strings.Contains(m.renderSlider(), "1 word") || strings.Contains(m.renderSlider(), "1 words") {
		t.Fatalf("expected singular label: %s", m.renderSlider())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.wordCount != 1 {
		t.Fatalf("slider must not move during a test")
	}
}

func TestMissingCorpusBecomesPassage(t *testing.T) {
	m := newTestModel(t, "", 2, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.session.Passage() != generator.MissingCorpusText {
		t.Fatalf("expected missing corpus text, got %q", m.session.Passage())
	}
}

func TestStatsPlaceholdersAndRefresh(t *testing.T) {
	m := newTestModel(t, "cat dog", 2, nil)
	if !strings.Contains(m.renderStats(), "Accuracy: -- %") {
		t.Fatalf("expected placeholder: %s", m.renderStats())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeText(m, "x")
	if !strings.Contains(m.accuracyText, "Accuracy: 0.0%") {
		t.Fatalf("expected zero accuracy, got %q", m.accuracyText)
	}
	if !strings.HasPrefix(m.timerText, "Time taken: ") {
		t.Fatalf("unexpected timer text %q", m.timerText)
	}
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t, "cat dog", 2, nil)
	m.Update(runeKey("?"))
	if !m.showHelp || !strings.Contains(m.View(), "Press ? again") {
		t.Fatalf("expected help text shown")
	}
	m.Update(runeKey("?"))
	if m.showHelp {
		t.Fatalf("expected help text hidden")
	}
}

func TestQuitKeysFollowTypingState(t *testing.T) {
	m := newTestModel(t, "quip", 1, nil)
	if _, cmd := m.Update(runeKey("q")); cmd == nil {
		t.Fatalf("expected q to quit while idle")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(runeKey("q"))
	if m.input.Value() != "q" {
		t.Fatalf("expected q typed while armed, got %q", m.input.Value())
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Fatalf("expected ctrl+c to quit while armed")
	}
}
