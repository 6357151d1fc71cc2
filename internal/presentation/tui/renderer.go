package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)

	return func(markdown string) (string, error) {
		if err != nil {
			return "", err
		}
		return r.Render(markdown)
	}
}

// WriteMarkdown writes md to out, rendered when styled is set and raw otherwise.
// Rendering failures fall back to the raw markdown.
func WriteMarkdown(out io.Writer, md string, styled bool) error {
	if styled {
		if rendered, err := NewRenderer()(md); err == nil {
			md = rendered
		}
	}
	_, err := fmt.Fprint(out, md)
	return err
}
