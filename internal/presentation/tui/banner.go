package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the flock ASCII art banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Night sky gradient (Sky/Indigo/Violet)
	lines := []struct {
		text, color string
	}{
		{"   __ _            _    ", "#38bdf8"},
		{"  / _| | ___   ___| | __", "#60a5fa"},
		{" | |_| |/ _ \\ / __| |/ /", "#818cf8"},
		{" |  _| | (_) | (__|   < ", "#a78bfa"},
		{" |_| |_|\\___/ \\___|_|\\_\\", "#c084fc"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// StatusLine formats a one-line frame summary: frame number, live counts and
// score, with the score highlighted.
func StatusLine(frame uint64, enemies, shots, score int) string {
	p := termenv.ColorProfile()
	label := termenv.String("frame").Faint()
	pts := termenv.String(fmt.Sprintf("%d", score)).Bold().Foreground(p.Color("#fbbf24"))
	return fmt.Sprintf("%s %-6d enemies %-3d shots %-3d score %s", label, frame, enemies, shots, pts)
}
