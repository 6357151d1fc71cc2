package grbflow

import (
	"fmt"
	"os"
	"time"

	"github.com/aretw0/grbflow/pkg/domain"
	"github.com/aretw0/grbflow/pkg/graph"
	"github.com/aretw0/grbflow/pkg/layout"
)

// Report is a built report read back from its output directory.
type Report struct {
	root  string
	pages []layout.Page
	wf    *graph.Workflow
}

// OpenReport loads the report book and the exported workflow under root.
func OpenReport(root string) (*Report, error) {
	ws := NewWorkspace(root)

	pages, err := layout.ReadBook(ws.BookPath())
	if err != nil {
		return nil, err
	}

	path, err := FindWorkflow(root)
	if err != nil {
		return nil, err
	}
	wf, err := graph.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &Report{root: root, pages: pages, wf: wf}, nil
}

// FindWorkflow returns the exported workflow file under root. When several
// exports exist the most recently written one wins.
func FindWorkflow(root string) (string, error) {
	ws := NewWorkspace(root)
	found, err := ws.Exports()
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return "", fmt.Errorf("no exported workflow in %s: %w", ws.DAX, os.ErrNotExist)
	}

	newest, newestTime := found[0], time.Time{}
	for _, path := range found {
		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		if info.ModTime().After(newestTime) {
			newest, newestTime = path, info.ModTime()
		}
	}
	return newest, nil
}

// Title returns the workflow name.
func (r *Report) Title() string {
	return r.wf.Name
}

// Root returns the output directory.
func (r *Report) Root() string {
	return r.root
}

// Pages returns the section pages in report order.
func (r *Report) Pages() []layout.Page {
	return r.pages
}

// Workflow returns the exported workflow.
func (r *Report) Workflow() *graph.Workflow {
	return r.wf
}

// JobNodes returns the job nodes of the exported workflow.
func (r *Report) JobNodes() []*domain.JobNode {
	var out []*domain.JobNode
	for _, n := range r.wf.Jobs() {
		out = append(out, &domain.JobNode{
			ID:            n.ID,
			Template:      n.Template,
			Executable:    n.Executable,
			Section:       n.Section,
			Directory:     n.Directory,
			Detector:      n.Detector,
			TriggerFile:   n.TriggerFile,
			InjectionFile: n.InjectionFile,
			Tags:          n.Tags,
			Inputs:        n.Inputs,
			Outputs:       n.Outputs,
		})
	}
	return out
}
