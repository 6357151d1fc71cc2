// Package layout arranges job artifacts into the paginated report.
//
// Artifacts are grouped into fixed-size rows in the order the caller supplies
// them; that order is part of the report's presentation and is never changed.
package layout

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/grbflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// PageFile is the page description written into every section directory.
const PageFile = "layout.yaml"

// ArtifactGroup is one row of a section page.
type ArtifactGroup []domain.Artifact

// Group partitions artifacts into groups of arity, preserving order. The last
// group is short when len(artifacts) is not a multiple of arity.
func Group(artifacts []domain.Artifact, arity int) ([]ArtifactGroup, error) {
	if arity < 1 {
		return nil, fmt.Errorf("group arity must be positive, got %d", arity)
	}

	groups := make([]ArtifactGroup, 0, (len(artifacts)+arity-1)/arity)
	for start := 0; start < len(artifacts); start += arity {
		end := min(start+arity, len(artifacts))
		g := make(ArtifactGroup, end-start)
		copy(g, artifacts[start:end])
		groups = append(groups, g)
	}
	return groups, nil
}

// Page is the description of one section page.
type Page struct {
	Section   string     `json:"section" yaml:"section"`
	Title     string     `json:"title" yaml:"title"`
	Directory string     `json:"directory" yaml:"directory"`
	Groups    [][]string `json:"groups" yaml:"groups"`
}

// Files returns every file of the page in presentation order.
func (p Page) Files() []string {
	var out []string
	for _, g := range p.Groups {
		out = append(out, g...)
	}
	return out
}

// Book collects the emitted pages of a report. Safe for concurrent use.
type Book struct {
	mu     sync.Mutex
	pages  []*Page
	index  map[string]*Page
	logger *slog.Logger
}

// NewBook creates an empty book.
func NewBook(logger *slog.Logger) *Book {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Book{
		index:  make(map[string]*Page),
		logger: logger,
	}
}

// Emit records groups for the section directory and writes its page
// description. Emitting the same section again appends the new groups.
func (b *Book) Emit(dir domain.Directory, groups []ArtifactGroup) (Page, error) {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		row := make([]string, 0, len(g))
		for _, a := range g {
			rel, err := filepath.Rel(dir.Path, a.Path)
			if err != nil {
				rel = a.Path
			}
			row = append(row, filepath.ToSlash(rel))
		}
		rows = append(rows, row)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	page, ok := b.index[dir.Section]
	if !ok {
		page = &Page{Section: dir.Section, Title: dir.Title, Directory: dir.Path}
		b.index[dir.Section] = page
		b.pages = append(b.pages, page)
	}
	page.Groups = append(page.Groups, rows...)

	if err := writeYAML(filepath.Join(dir.Path, PageFile), page); err != nil {
		return Page{}, err
	}
	b.logger.Debug("Emitted section page.", "section", dir.Section, "groups", len(page.Groups))

	return *page, nil
}

// Pages returns the pages in first-emission order.
func (b *Book) Pages() []Page {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Page, len(b.pages))
	for i, p := range b.pages {
		out[i] = *p
	}
	return out
}

// WriteFile writes the whole book as a YAML list of pages.
func (b *Book) WriteFile(path string) error {
	return writeYAML(path, b.Pages())
}

// ReadBook loads pages previously written with Book.WriteFile.
func ReadBook(path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report book: %w", err)
	}
	var pages []Page
	if err := yaml.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("failed to parse report book: %w", err)
	}
	return pages, nil
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
