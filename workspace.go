package grbflow

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Workspace is the reserved workflow/ subtree of an output directory. It holds
// the scheduler bookkeeping, the configuration snapshot and the logs.
type Workspace struct {
	Root          string
	Workflow      string
	Configuration string
	Logs          string
	DAX           string
	InputMap      string
	OutputMap     string
	Planning      string
}

// NewWorkspace returns the workspace layout under root. Nothing is created.
func NewWorkspace(root string) Workspace {
	wf := filepath.Join(root, "workflow")
	return Workspace{
		Root:          root,
		Workflow:      wf,
		Configuration: filepath.Join(wf, "configuration"),
		Logs:          filepath.Join(wf, "logs"),
		DAX:           filepath.Join(wf, "dax"),
		InputMap:      filepath.Join(wf, "input_map"),
		OutputMap:     filepath.Join(wf, "output_map"),
		Planning:      filepath.Join(wf, "planning"),
	}
}

// Create makes every workspace directory. It is idempotent.
func (w Workspace) Create() error {
	for _, dir := range []string{w.Configuration, w.Logs, w.DAX, w.InputMap, w.OutputMap, w.Planning} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create workspace directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPath is the workflow log written during a build.
func (w Workspace) LogPath() string {
	return filepath.Join(w.Logs, "grbflow.log")
}

// BookPath is the report book listing every section page.
func (w Workspace) BookPath() string {
	return filepath.Join(w.Workflow, "book.yaml")
}

// MetricsPath is the Prometheus textfile of the build.
func (w Workspace) MetricsPath() string {
	return filepath.Join(w.Workflow, "metrics.prom")
}

// InputMapPath lists the files the workflow consumes but does not produce.
func (w Workspace) InputMapPath() string {
	return filepath.Join(w.InputMap, "input.map")
}

// OutputMapPath lists every file the workflow produces.
func (w Workspace) OutputMapPath() string {
	return filepath.Join(w.OutputMap, "output.map")
}

// DAXPath is the exported workflow for the given name and format extension.
func (w Workspace) DAXPath(name, ext string) string {
	return filepath.Join(w.DAX, name+"."+ext)
}

// Exports lists the exported workflow files in the DAX directory, in lexical order.
func (w Workspace) Exports() ([]string, error) {
	var found []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(w.DAX, pattern))
		if err != nil {
			return nil, err
		}
		found = append(found, matches...)
	}
	sort.Strings(found)
	return found, nil
}

// removeExports deletes every export except keep.
func (w Workspace) removeExports(keep string) error {
	found, err := w.Exports()
	if err != nil {
		return err
	}
	for _, path := range found {
		if path == keep {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale export %s: %w", path, err)
		}
	}
	return nil
}
