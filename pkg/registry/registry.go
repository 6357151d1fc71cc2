package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/grbflow/pkg/domain"
)

// ExecutablesSection is the config section binding template names to executables.
const ExecutablesSection = "executables"

// Template describes an external job the workflow can schedule.
// It declares the outputs the job produces, one extension per output.
type Template struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Extensions  []string `json:"extensions" yaml:"extensions"`
	Executable  string   `json:"executable" yaml:"executable"`
}

// Arity returns the number of outputs the template declares.
func (t Template) Arity() int {
	return len(t.Extensions)
}

// FileDescription returns the description used in output file names.
func (t Template) FileDescription() string {
	if t.Description != "" {
		return t.Description
	}
	return strings.ToUpper(t.Name)
}

// Registry manages the available job templates.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[string]Template),
	}
}

// Register adds a template to the registry.
// If a template with the same name exists, it is overwritten.
func (r *Registry) Register(t Template) error {
	if t.Name == "" {
		return errors.New("template name cannot be empty")
	}
	if t.Arity() < 1 {
		return fmt.Errorf("template %s must declare at least one output", t.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.Name] = t
	return nil
}

// Lookup returns the template registered under name.
func (r *Registry) Lookup(name string) (Template, error) {
	r.mu.RLock()
	t, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return Template{}, fmt.Errorf("%w: %s", domain.ErrUnknownTemplate, name)
	}
	return t, nil
}

// Names returns the registered template names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load registers every known template that has an executable bound in the
// executables section. Templates without an executable stay unregistered, so
// using them fails at enumeration time.
func Load(cfg domain.ConfigReader, known []Template) (*Registry, error) {
	r := NewRegistry()
	if !cfg.HasSection(ExecutablesSection) {
		return r, nil
	}

	for _, t := range known {
		exe, err := cfg.Get(ExecutablesSection, t.Name)
		if err != nil || exe == "" {
			continue
		}
		t.Executable = exe
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}
