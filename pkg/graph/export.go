package graph

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a serialization format for exported workflows.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses "json" or "yaml" (also "yml").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported workflow format %q", s)
}

// Encode writes the workflow in the given format.
func (w *Workflow) Encode(out io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(w)
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(w); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported workflow format %q", format)
}

// WriteFile writes the workflow to path, choosing the format from the extension.
func (w *Workflow) WriteFile(path string) error {
	format, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create workflow file: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := w.Encode(bw, format); err != nil {
		return fmt.Errorf("failed to encode workflow: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write workflow: %w", err)
	}
	return f.Close()
}

// ReadFile loads an exported workflow, choosing the format from the extension.
func ReadFile(path string) (*Workflow, error) {
	format, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	var wf Workflow
	if format == FormatJSON {
		err = json.Unmarshal(data, &wf)
	} else {
		err = yaml.Unmarshal(data, &wf)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse workflow file: %w", err)
	}
	return &wf, nil
}

// WriteInputMap writes one "lfn pfn site" line per file consumed by the
// workflow but produced by none of its nodes.
func (w *Workflow) WriteInputMap(out io.Writer) error {
	produced := make(map[string]bool)
	for _, n := range w.Nodes {
		if n.Kind == KindMarker {
			continue
		}
		for _, a := range n.Outputs {
			produced[a.Path] = true
		}
	}

	seen := make(map[string]bool)
	for _, n := range w.Nodes {
		for _, in := range n.allInputs() {
			if in == "" || produced[in] || seen[in] {
				continue
			}
			seen[in] = true
			if err := writeMapLine(out, in); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteOutputMap writes one "lfn pfn site" line per file produced by a node.
func (w *Workflow) WriteOutputMap(out io.Writer) error {
	for _, n := range w.Nodes {
		if n.Kind == KindMarker {
			continue
		}
		for _, a := range n.Outputs {
			if err := writeMapLine(out, a.Path); err != nil {
				return err
			}
		}
	}
	return nil
}

func (n Node) allInputs() []string {
	out := make([]string, 0, len(n.Inputs)+2)
	if n.TriggerFile != "" {
		out = append(out, n.TriggerFile)
	}
	if n.InjectionFile != "" {
		out = append(out, n.InjectionFile)
	}
	return append(out, n.Inputs...)
}

func writeMapLine(out io.Writer, path string) error {
	pfn := path
	if abs, err := filepath.Abs(path); err == nil {
		pfn = abs
	}
	_, err := fmt.Fprintf(out, "%s file://%s site=\"local\"\n", filepath.Base(path), pfn)
	return err
}
