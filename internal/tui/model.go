// Package tui provides the Bubble Tea typing test interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/typespeed/internal/engine"
	"github.com/verte-zerg/typespeed/internal/generator"
	"github.com/verte-zerg/typespeed/internal/model"
)

const (
	title        = "Typing Test"
	defaultText  = "Press enter to begin! Type the passage as quickly and accurately as you can."
	congratsText = "Congratulations! You finished!"
	placeholder  = " -- "
	helpText     = "Press enter to start the typing test. Type the passage above as " +
		"accurately and quickly as you can; each word moves on once it is typed " +
		"correctly, including the space after it. Use the arrow keys to change " +
		"the number of words. Press ? again to hide this text."
)

type passageMode int

const (
	passageDefault passageMode = iota
	passageActive
	passageFinished
)

// ResultRecorder stores finished tests.
type ResultRecorder interface {
	InsertResult(ctx context.Context, r model.Result) (int64, error)
}

type tickMsg struct {
	id int
	t  time.Time
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	config   model.Config
	session  *engine.Session
	gen      *generator.Generator
	recorder ResultRecorder
	logger   zerolog.Logger
	now      func() time.Time

	keys  keyMap
	help  help.Model
	input textinput.Model

	width  int
	height int

	wordCount int
	showHelp  bool
	mode      passageMode
	tickID    int

	progress int
	visible  bool
	color    engine.Color

	timerText    string
	speedText    string
	accuracyText string
}

var (
	titleStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	defaultTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	passageStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ECAFF"))
	finishedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#14E04B"))
	correctMarkStyle   = passageStyle.Underline(true).Foreground(lipgloss.Color("#14E04B"))
	incorrectMarkStyle = passageStyle.Underline(true).Foreground(lipgloss.Color("#ED263D"))
	statStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	sliderStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ECAFF"))
	sliderLockedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))
	helpTextStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))
	inputBoxStyle      = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A")).
				Padding(0, 1)
)

// NewModel constructs a typing test model. recorder may be nil.
func NewModel(cfg model.Config, gen *generator.Generator, recorder ResultRecorder, logger zerolog.Logger) *Model {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "type here"
	input.Width = cfg.CharLimit + 1

	m := &Model{
		config:    cfg,
		session:   engine.NewSession(cfg.CharLimit),
		gen:       gen,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
		keys:      newKeyMap(),
		help:      help.New(),
		input:     input,
		wordCount: generator.Clamp(cfg.Words, cfg.MinWords, cfg.MaxWords),
	}
	m.keys.setTyping(false)
	m.resetStatsText()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		return m, m.handleTick(msg)
	case tea.KeyMsg:
		if m.session.Armed() {
			return m, m.handleTypingKey(msg)
		}
		return m, m.handleIdleKey(msg)
	default:
		if m.session.Armed() {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) handleIdleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Start):
		return m.start()
	case key.Matches(msg, m.keys.Fewer):
		m.setWordCount(m.wordCount - 1)
	case key.Matches(msg, m.keys.More):
		m.setWordCount(m.wordCount + 1)
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	}
	return nil
}

func (m *Model) handleTypingKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return tea.Quit
	case key.Matches(msg, m.keys.Stop):
		m.stop()
		return nil
	}

	before := m.input.Value()
	next, cmd := m.input.Update(msg)
	after := next.Value()
	if after == before {
		// Cursor movement and other non-edits.
		m.input = next
		return cmd
	}

	wasRunning := m.session.Running()
	res := m.session.Validate(changeKind(before, after), after)
	m.progress = res.Progress
	m.visible = res.Visible
	m.color = res.Color

	// The run starts on the first validated change, accepted or not.
	var tick tea.Cmd
	if !wasRunning && m.session.Running() {
		tick = m.beginRun()
	}
	if !res.Accept {
		return tick
	}
	m.input = next
	if res.ClearInput {
		m.input.SetValue("")
	}

	if res.State == engine.StateFinished {
		m.finish()
		return nil
	}
	return tea.Batch(cmd, tick)
}

func (m *Model) beginRun() tea.Cmd {
	m.tickID++
	m.logger.Debug().Int("words", m.wordCount).Msg("test started")
	m.refreshStats(m.now())
	return m.tickCmd()
}

func changeKind(before, after string) engine.ChangeKind {
	b := utf8.RuneCountInString(before)
	a := utf8.RuneCountInString(after)
	switch {
	case a > b:
		return engine.ChangeInsert
	case a < b:
		return engine.ChangeDelete
	default:
		return engine.ChangeOther
	}
}

func (m *Model) tickCmd() tea.Cmd {
	fps := m.config.FPS
	if fps <= 0 {
		fps = 60
	}
	id := m.tickID
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return tickMsg{id: id, t: t}
	})
}

// handleTick refreshes the stats and reschedules only while the run that
// scheduled it is still going.
func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if msg.id != m.tickID || !m.session.Running() {
		return nil
	}
	m.refreshStats(msg.t)
	return m.tickCmd()
}

func (m *Model) start() tea.Cmd {
	passage, err := m.gen.FromFile(m.config.WordListPath, m.wordCount)
	if err != nil {
		m.logger.Warn().Err(err).Str("path", m.config.WordListPath).Msg("word list unavailable")
	}
	m.session.Start(passage)
	m.mode = passageActive
	m.clearMark()
	m.resetStatsText()
	m.input.Reset()
	m.keys.setTyping(true)
	return m.input.Focus()
}

func (m *Model) stop() {
	m.session.Stop()
	m.mode = passageDefault
	m.endTyping()
}

func (m *Model) finish() {
	m.mode = passageFinished
	m.refreshStats(m.session.EndedAt())
	m.endTyping()
	m.record()
}

func (m *Model) endTyping() {
	m.tickID++
	m.clearMark()
	m.input.Reset()
	m.input.Blur()
	m.keys.setTyping(false)
}

func (m *Model) record() {
	correct, total := m.session.Counts()
	started := m.session.StartedAt()
	ended := m.session.EndedAt()
	m.logger.Debug().Int("correct", correct).Int("total", total).Msg("test finished")
	if m.recorder == nil {
		return
	}
	result := model.Result{
		StartedAt:    started,
		EndedAt:      ended,
		Words:        m.wordCount,
		CharLimit:    m.session.CharLimit(),
		WordListPath: m.config.WordListPath,
		Correct:      correct,
		Total:        total,
		DurationMs:   ended.Sub(started).Milliseconds(),
	}
	if _, err := m.recorder.InsertResult(context.Background(), result); err != nil {
		m.logger.Error().Err(err).Msg("failed to save result")
	}
}

func (m *Model) clearMark() {
	m.progress = 0
	m.visible = false
	m.color = engine.ColorCorrect
}

func (m *Model) setWordCount(n int) {
	m.wordCount = generator.Clamp(n, m.config.MinWords, m.config.MaxWords)
}

func (m *Model) resetStatsText() {
	m.timerText = fmt.Sprintf("Time taken:%ss", placeholder)
	m.speedText = fmt.Sprintf("Speed:%swpm", placeholder)
	m.accuracyText = fmt.Sprintf("Accuracy:%s%%", placeholder)
}

func (m *Model) refreshStats(now time.Time) {
	st := m.session.Snapshot(now)
	m.timerText = fmt.Sprintf("Time taken: %.1fs", st.Elapsed.Seconds())
	if st.HasSpeed {
		m.speedText = fmt.Sprintf("Speed: %.0f wpm", st.WPM)
	}
	if st.HasAccuracy {
		m.accuracyText = fmt.Sprintf("Accuracy: %.1f%%", st.Accuracy)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := int(float64(m.width) * 0.70)

	sections := []string{
		titleStyle.Render(title),
		"",
		m.renderPassage(contentWidth),
		"",
		inputBoxStyle.Render(m.input.View()),
		"",
		m.renderStats(),
		m.renderSlider(),
	}
	if m.showHelp {
		body := helpText
		if contentWidth > 0 {
			body = lipgloss.NewStyle().Width(contentWidth).Render(helpText)
		}
		sections = append(sections, "", helpTextStyle.Render(body))
	}
	sections = append(sections, "", m.help.View(m.keys))
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderPassage(width int) string {
	var text []rune
	base := defaultTextStyle
	underline := 0
	switch m.mode {
	case passageActive:
		text = []rune(m.session.Remaining())
		base = passageStyle
		if m.visible {
			underline = underlineRunes(text, m.progress)
		}
	case passageFinished:
		text = []rune(congratsText)
		base = finishedStyle
	default:
		text = []rune(defaultText)
	}
	return wrapStyledRunes(buildStyledRunes(text, underline, m.color, base), width)
}

func (m *Model) renderStats() string {
	lines := []string{m.timerText, m.speedText, m.accuracyText}
	return statStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderSlider() string {
	label := fmt.Sprintf("%d words", m.wordCount)
	if m.wordCount == 1 {
		label = "1 word"
	}
	span := m.config.MaxWords - m.config.MinWords
	filled := 0
	if span > 0 {
		filled = (m.wordCount - m.config.MinWords) * 20 / span
	}
	bar := "◀ " + strings.Repeat("━", filled) + "●" + strings.Repeat("─", 20-filled) + " ▶  " + label
	if m.session.Armed() {
		return sliderLockedStyle.Render(bar)
	}
	return sliderStyle.Render(bar)
}
