// Package config loads the analysis configuration.
//
// The configuration is a YAML document whose top-level keys are sections and
// whose values are flat key/value maps. A section named "parent-child" is a
// subsection of "parent", which is how injection sets are declared:
//
//	injections-bnslininj:
//	  injection-file-tag: BNSLININJ
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/grbflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Store is the ordered, read-only configuration. It implements domain.ConfigReader.
type Store struct {
	order    []string
	sections map[string]map[string]string
	keys     map[string][]string
	raw      []byte
}

var _ domain.ConfigReader = (*Store)(nil)

// Load reads and parses a configuration file.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse builds a store from YAML. Section and key order is preserved.
func Parse(data []byte) (*Store, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", domain.ErrConfig, err)
	}

	s := &Store{
		sections: make(map[string]map[string]string),
		keys:     make(map[string][]string),
		raw:      data,
	}
	if len(doc.Content) == 0 {
		return s, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping of sections", domain.ErrConfig)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		name, body := root.Content[i].Value, root.Content[i+1]
		if _, dup := s.sections[name]; dup {
			return nil, fmt.Errorf("%w: section %q defined twice", domain.ErrConfig, name)
		}
		values := make(map[string]string)
		s.sections[name] = values
		s.order = append(s.order, name)

		// An empty section ("workflow-ifos:" with no body) is allowed.
		if body.Kind == yaml.ScalarNode && body.Value == "" {
			continue
		}
		if body.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: section %q must be a mapping", domain.ErrConfig, name)
		}

		for j := 0; j+1 < len(body.Content); j += 2 {
			key, val := body.Content[j].Value, body.Content[j+1]
			str, err := scalarString(val)
			if err != nil {
				return nil, fmt.Errorf("%w: [%s] %s: %v", domain.ErrConfig, name, key, err)
			}
			values[key] = str
			s.keys[name] = append(s.keys[name], key)
		}
	}
	return s, nil
}

// scalarString flattens a value: scalars as-is, sequences of scalars joined by spaces.
func scalarString(n *yaml.Node) (string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Value, nil
	case yaml.SequenceNode:
		parts := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return "", fmt.Errorf("nested values are not supported")
			}
			parts = append(parts, item.Value)
		}
		return strings.Join(parts, " "), nil
	}
	return "", fmt.Errorf("nested values are not supported")
}

// Get returns the value of key in section.
func (s *Store) Get(section, key string) (string, error) {
	values, ok := s.sections[section]
	if !ok {
		return "", fmt.Errorf("%w: missing section [%s]", domain.ErrConfig, section)
	}
	v, ok := values[key]
	if !ok {
		return "", fmt.Errorf("%w: missing option %q in [%s]", domain.ErrConfig, key, section)
	}
	return v, nil
}

// GetDefault returns the value of key in section, or def when it is not set.
func (s *Store) GetDefault(section, key, def string) string {
	v, err := s.Get(section, key)
	if err != nil {
		return def
	}
	return v
}

// GetList splits a value on whitespace and commas.
func (s *Store) GetList(section, key string) ([]string, error) {
	v, err := s.Get(section, key)
	if err != nil {
		return nil, err
	}
	return SplitList(v), nil
}

// GetInt parses an integer option.
func (s *Store) GetInt(section, key string) (int64, error) {
	v, err := s.Get(section, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: option %q in [%s] is not an integer", domain.ErrConfig, key, section)
	}
	return n, nil
}

// Subsections returns the child names of section ("injections-bns" -> "bns"),
// in declaration order.
func (s *Store) Subsections(section string) []string {
	prefix := section + "-"
	var out []string
	for _, name := range s.order {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			out = append(out, strings.TrimPrefix(name, prefix))
		}
	}
	return out
}

// HasSection reports whether the section exists.
func (s *Store) HasSection(name string) bool {
	_, ok := s.sections[name]
	return ok
}

// Sections returns every section name in declaration order.
func (s *Store) Sections() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Keys returns the options of a section in declaration order.
func (s *Store) Keys(section string) []string {
	out := make([]string, len(s.keys[section]))
	copy(out, s.keys[section])
	return out
}

// Section returns a copy of a section's options.
func (s *Store) Section(name string) map[string]string {
	out := make(map[string]string, len(s.sections[name]))
	for k, v := range s.sections[name] {
		out[k] = v
	}
	return out
}

// Snapshot writes the configuration as it was loaded.
func (s *Store) Snapshot(path string) error {
	if err := os.WriteFile(path, s.raw, 0o644); err != nil {
		return fmt.Errorf("failed to write config snapshot: %w", err)
	}
	return nil
}

// SplitList splits a list option on whitespace and commas, dropping empties.
func SplitList(v string) []string {
	return strings.Fields(strings.ReplaceAll(v, ",", " "))
}
