// Package generator builds typing passages.
package generator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/verte-zerg/typespeed/internal/wordlist"
)

// MissingCorpusText is typed in place of a passage when the corpus is unavailable.
const MissingCorpusText = "Error: Text file not found. Please check the file name."

// Generator produces randomized passages.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource returns a Generator drawing from src.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// Passage draws n distinct words uniformly from words and joins them with
// single spaces. n is clamped to [1, number of distinct words].
func (g *Generator) Passage(words []string, n int) string {
	unique := wordlist.Unique(words)
	if len(unique) == 0 {
		return MissingCorpusText
	}
	n = Clamp(n, 1, len(unique))

	// Partial Fisher-Yates over a copy keeps the corpus read-only.
	pool := append([]string(nil), unique...)
	for i := 0; i < n; i++ {
		j := i + g.rnd.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return strings.Join(pool[:n], " ")
}

// FromFile loads the corpus at path and returns a passage. The returned text
// is always displayable: on failure it is MissingCorpusText and err explains why.
func (g *Generator) FromFile(path string, n int) (string, error) {
	words, err := wordlist.LoadWords(path)
	if err != nil {
		return MissingCorpusText, fmt.Errorf("failed to load word list %s: %w", path, err)
	}
	return g.Passage(words, n), nil
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	if n > hi {
		n = hi
	}
	if n < lo {
		n = lo
	}
	return n
}
