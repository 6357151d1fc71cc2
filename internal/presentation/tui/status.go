package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Status is the one-line outcome of a command.
type Status struct {
	OK      bool
	Message string
	Details []string
}

// PrintStatus writes the status with a coloured marker. Colours are dropped
// when out is not a terminal.
func PrintStatus(out io.Writer, s Status) {
	p := termenv.NewOutput(out).Profile

	marker := p.String("✔").Foreground(p.Color("#34d399")).Bold()
	if !s.OK {
		marker = p.String("✘").Foreground(p.Color("#f87171")).Bold()
	}
	fmt.Fprintf(out, "%s %s\n", marker, s.Message)

	for _, d := range s.Details {
		fmt.Fprintf(out, "  %s\n", p.String(d).Foreground(p.Color("#a78bfa")))
	}
}
