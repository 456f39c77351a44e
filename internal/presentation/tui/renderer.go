package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
)

// Summary describes a finished run.
type Summary struct {
	Frames     uint64
	Ticks      uint64
	Score      int
	Collisions int
	Dropped    uint64
	Elapsed    time.Duration
	Sinks      []string
	Err        error
}

// Markdown returns the summary as a markdown document.
func (s Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("# Run summary\n\n")
	b.WriteString("| metric | value |\n|---|---|\n")
	fmt.Fprintf(&b, "| frames | %d |\n", s.Frames)
	fmt.Fprintf(&b, "| ticks | %d |\n", s.Ticks)
	fmt.Fprintf(&b, "| score | %d |\n", s.Score)
	fmt.Fprintf(&b, "| collisions | %d |\n", s.Collisions)
	fmt.Fprintf(&b, "| dropped frames | %d |\n", s.Dropped)
	fmt.Fprintf(&b, "| elapsed | %s |\n", s.Elapsed.Round(time.Millisecond))
	if len(s.Sinks) > 0 {
		fmt.Fprintf(&b, "\nSinks: `%s`\n", strings.Join(s.Sinks, "`, `"))
	}
	if s.Err != nil {
		fmt.Fprintf(&b, "\n> **stopped with error:** %v\n", s.Err)
	}
	return b.String()
}

// NewRenderer returns a function that renders markdown using glamour.
// It falls back to the raw markdown when no renderer can be built.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
