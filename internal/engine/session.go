// Package engine implements the typing test scoring state machine.
package engine

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// DefaultCharLimit caps the text field length for words shorter than it.
const DefaultCharLimit = 15

// State is the lifecycle position of a session.
type State int

const (
	// StateIdle means no keystroke has been validated since the last reset.
	StateIdle State = iota
	// StateRunning means the clock is ticking.
	StateRunning
	// StateFinished means the whole passage was typed.
	StateFinished
	// StateStopped means the test was abandoned.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ChangeKind describes a proposed edit to the text field.
type ChangeKind int

const (
	// ChangeOther covers edits that neither add nor remove characters.
	ChangeOther ChangeKind = iota
	// ChangeInsert adds characters.
	ChangeInsert
	// ChangeDelete removes characters.
	ChangeDelete
)

// Color marks whether the field content is on track for the target word.
type Color int

const (
	// ColorCorrect means the content is a prefix of the target word.
	ColorCorrect Color = iota
	// ColorIncorrect means the content diverged from the target word.
	ColorIncorrect
)

// Result is what the shell applies after a validation.
type Result struct {
	Accept     bool
	Color      Color
	Progress   int
	Visible    bool
	ClearInput bool
	Consumed   string
	State      State
}

// Stats is a point-in-time view used by the live reporter.
type Stats struct {
	Elapsed     time.Duration
	WPM         float64
	HasSpeed    bool
	Accuracy    float64
	HasAccuracy bool
	Correct     int
	Total       int
}

// Session owns all mutable typing test state.
type Session struct {
	now func() time.Time

	state     State
	armed     bool
	startedAt time.Time
	endedAt   time.Time

	total       int
	correct     int
	accuracy    float64
	hasAccuracy bool

	charLimit int
	passage   string
	remaining string
}

// NewSession returns an idle session with no passage armed.
func NewSession(charLimit int) *Session {
	return NewSessionWithClock(charLimit, time.Now)
}

// NewSessionWithClock is NewSession with an injectable clock.
func NewSessionWithClock(charLimit int, now func() time.Time) *Session {
	if charLimit < 1 {
		charLimit = DefaultCharLimit
	}
	if now == nil {
		now = time.Now
	}
	return &Session{now: now, charLimit: charLimit}
}

// Start resets counters and arms a new passage. The clock starts on the
// first validated change.
func (s *Session) Start(passage string) {
	s.state = StateIdle
	s.armed = passage != ""
	s.startedAt = time.Time{}
	s.endedAt = time.Time{}
	s.total = 0
	s.correct = 0
	s.accuracy = 0
	s.hasAccuracy = false
	s.passage = passage
	s.remaining = passage
}

// Stop abandons an armed or running test.
func (s *Session) Stop() {
	if !s.armed {
		return
	}
	s.finish(StateStopped)
}

func (s *Session) finish(state State) {
	s.armed = false
	s.state = state
	if !s.startedAt.IsZero() {
		s.endedAt = s.now()
	}
	if state == StateStopped {
		s.remaining = ""
	}
}

// Validate scores a proposed text field content. A rejected change must
// leave the field untouched.
func (s *Session) Validate(kind ChangeKind, proposed string) Result {
	if !s.armed {
		return Result{State: s.state}
	}
	if s.state == StateIdle {
		s.state = StateRunning
		s.startedAt = s.now()
	}

	target := s.TargetWord()
	inputLen := utf8.RuneCountInString(proposed)
	targetLen := utf8.RuneCountInString(target)

	res := Result{
		Progress: progressWidth(target, inputLen),
		Visible:  inputLen > 0,
		Color:    ColorIncorrect,
		State:    s.state,
	}

	if inputLen > max(s.charLimit, targetLen) {
		return res
	}

	onTrack := strings.HasPrefix(target, proposed)
	if onTrack {
		res.Color = ColorCorrect
	}
	if kind == ChangeInsert {
		s.total++
		if onTrack {
			s.correct++
		}
	}
	if s.total > 0 {
		s.accuracy = float64(s.correct) / float64(s.total) * 100
		s.hasAccuracy = true
	}

	if proposed == target {
		s.remaining = s.remaining[len(target):]
		res.Consumed = target
		res.ClearInput = true
		res.Visible = false
		res.Progress = 0
	}
	if s.remaining == "" {
		s.finish(StateFinished)
	}

	res.Accept = true
	res.State = s.state
	return res
}

// TargetWord returns the first remaining word, with its trailing space when
// more words follow.
func (s *Session) TargetWord() string {
	fields := strings.Fields(s.remaining)
	if len(fields) == 0 {
		return ""
	}
	word := fields[0]
	if len(s.remaining) > len(word) {
		word += " "
	}
	return word
}

func progressWidth(target string, inputLen int) int {
	runes := []rune(strings.TrimSpace(target))
	if inputLen < len(runes) {
		runes = runes[:inputLen]
	}
	return runewidth.StringWidth(string(runes))
}

// Snapshot computes elapsed time, speed and accuracy at now.
func (s *Session) Snapshot(now time.Time) Stats {
	st := Stats{
		Accuracy:    s.accuracy,
		HasAccuracy: s.hasAccuracy,
		Correct:     s.correct,
		Total:       s.total,
	}
	if s.startedAt.IsZero() {
		return st
	}
	end := now
	if s.state != StateRunning && !s.endedAt.IsZero() {
		end = s.endedAt
	}
	st.Elapsed = end.Sub(s.startedAt)
	if secs := st.Elapsed.Seconds(); secs > 0 {
		st.WPM = float64(s.correct) / 5 / secs * 60
		st.HasSpeed = true
	}
	return st
}

// State reports the lifecycle state.
func (s *Session) State() State { return s.state }

// Armed reports whether the session accepts input.
func (s *Session) Armed() bool { return s.armed }

// Running reports whether the clock is ticking.
func (s *Session) Running() bool { return s.state == StateRunning }

// Remaining returns the untyped suffix of the passage.
func (s *Session) Remaining() string { return s.remaining }

// Passage returns the passage given to Start.
func (s *Session) Passage() string { return s.passage }

// CharLimit returns the configured text field cap.
func (s *Session) CharLimit() int { return s.charLimit }

// StartedAt returns the time of the first validated change.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// EndedAt returns the time the session finished or stopped.
func (s *Session) EndedAt() time.Time { return s.endedAt }

// Counts returns correct and total keystrokes.
func (s *Session) Counts() (correct, total int) { return s.correct, s.total }
