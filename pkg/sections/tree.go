package sections

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/grbflow/pkg/domain"
)

// Spec declares one section and its children.
type Spec struct {
	Name     string
	Title    string
	Children []Spec
}

type entry struct {
	dir     domain.Directory
	created bool
}

// Tree is the declared section hierarchy. Safe for concurrent use.
type Tree struct {
	mu       sync.Mutex
	base     string
	declared bool
	entries  map[string]*entry
	order    []string
	resolved []domain.Directory
	mkdir    func(string, os.FileMode) error
	logger   *slog.Logger
}

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the logger used to report directory creation.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		t.logger = logger
	}
}

// WithMkdir replaces the directory creation function (default os.MkdirAll).
func WithMkdir(fn func(string, os.FileMode) error) Option {
	return func(t *Tree) {
		t.mkdir = fn
	}
}

// New creates an empty tree rooted at base.
func New(base string, opts ...Option) *Tree {
	t := &Tree{
		base:    base,
		entries: make(map[string]*entry),
		mkdir:   os.MkdirAll,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Declare registers the full section hierarchy. It may only be called once.
func (t *Tree) Declare(specs ...Spec) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.declared {
		return fmt.Errorf("section tree already declared")
	}

	entries := make(map[string]*entry)
	var order []string
	for i, s := range specs {
		if err := declare(entries, &order, "", t.base, fmt.Sprintf("%d.", i+1), s); err != nil {
			return err
		}
	}

	t.entries = entries
	t.order = order
	t.declared = true
	return nil
}

func declare(entries map[string]*entry, order *[]string, parent, parentDir, number string, s Spec) error {
	if s.Name == "" || strings.ContainsAny(s.Name, `/\`) {
		return fmt.Errorf("invalid section name %q", s.Name)
	}

	logical := s.Name
	if parent != "" {
		logical = parent + "/" + s.Name
	}
	if _, exists := entries[logical]; exists {
		return fmt.Errorf("section %q declared twice", logical)
	}

	title := s.Title
	if title == "" {
		title = titleize(s.Name)
	}

	dir := filepath.Join(parentDir, number+"_"+s.Name)
	entries[logical] = &entry{dir: domain.Directory{Section: logical, Path: dir, Title: title}}
	*order = append(*order, logical)

	for i, child := range s.Children {
		childNumber := fmt.Sprintf("%s.%02d", strings.TrimSuffix(number, "."), i+1)
		if err := declare(entries, order, logical, dir, childNumber, child); err != nil {
			return err
		}
	}
	return nil
}

// Check verifies that every path was declared, without creating anything.
func (t *Tree) Check(paths ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range paths {
		if _, ok := t.entries[clean(p)]; !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnknownSection, p)
		}
	}
	return nil
}

// Resolve returns the directory of a declared section, creating it on first use.
// Resolving the same path again returns the same directory and creates nothing.
func (t *Tree) Resolve(p string) (domain.Directory, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[clean(p)]
	if !ok {
		return domain.Directory{}, fmt.Errorf("%w: %q", domain.ErrUnknownSection, p)
	}
	if e.created {
		return e.dir, nil
	}

	if err := t.mkdir(e.dir.Path, 0o755); err != nil {
		return domain.Directory{}, fmt.Errorf("failed to create section directory %s: %w", e.dir.Path, err)
	}
	e.created = true
	t.resolved = append(t.resolved, e.dir)
	t.logger.Debug("Created section directory.", "section", e.dir.Section, "path", e.dir.Path)

	return e.dir, nil
}

// Base returns the root of the tree.
func (t *Tree) Base() domain.Directory {
	return domain.Directory{Section: ".", Path: t.base, Title: "Results"}
}

// Restrict applies mode to an already resolved section directory.
func (t *Tree) Restrict(p string, mode os.FileMode) error {
	t.mu.Lock()
	e, ok := t.entries[clean(p)]
	var dir domain.Directory
	created := false
	if ok {
		dir, created = e.dir, e.created
	}
	t.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownSection, p)
	}
	if !created {
		return fmt.Errorf("section %q has not been resolved", p)
	}
	if err := os.Chmod(dir.Path, mode); err != nil {
		return fmt.Errorf("failed to restrict %s: %w", dir.Path, err)
	}
	t.logger.Info("Restricted section directory.", "section", dir.Section, "mode", fmt.Sprintf("%#o", mode))
	return nil
}

// Resolved returns the directories created so far, in resolution order.
func (t *Tree) Resolved() []domain.Directory {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.Directory, len(t.resolved))
	copy(out, t.resolved)
	return out
}

// Declared returns every declared section path in declaration order.
func (t *Tree) Declared() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Lookup returns the directory of a declared section without creating it.
func (t *Tree) Lookup(p string) (domain.Directory, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[clean(p)]
	if !ok {
		return domain.Directory{}, false
	}
	return e.dir, true
}

// IsResolved reports whether d is a directory handed out by Resolve.
func (t *Tree) IsResolved(d domain.Directory) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[clean(d.Section)]
	return ok && e.created && e.dir.Path == d.Path
}

func clean(p string) string {
	return strings.Trim(path.Clean("/"+p), "/")
}

func titleize(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
