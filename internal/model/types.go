// Package model defines shared data structures.
package model

import "time"

// Config defines typing test settings.
type Config struct {
	Words        int
	MinWords     int
	MaxWords     int
	CharLimit    int
	FPS          int
	WordListPath string
	History      bool
}

// HistoryConfig defines filters and options for history output.
type HistoryConfig struct {
	Since  *time.Time
	Last   int
	Window int
}

// Result captures a finished typing test.
type Result struct {
	ID           int64
	StartedAt    time.Time
	EndedAt      time.Time
	Words        int
	CharLimit    int
	WordListPath string
	Correct      int
	Total        int
	DurationMs   int64
}

// Incorrect returns keystrokes that were not on track.
func (r Result) Incorrect() int {
	return r.Total - r.Correct
}
