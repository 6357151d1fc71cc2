package graph

import (
	"fmt"

	"github.com/aretw0/grbflow/pkg/domain"
)

// Node kinds in an exported workflow.
const (
	KindJob      = "job"
	KindMarker   = "marker"
	KindTerminal = "terminal"
)

// Node is one vertex of the exported workflow.
type Node struct {
	ID            string            `json:"id" yaml:"id"`
	Kind          string            `json:"kind" yaml:"kind"`
	Template      string            `json:"template,omitempty" yaml:"template,omitempty"`
	Executable    string            `json:"executable,omitempty" yaml:"executable,omitempty"`
	Section       string            `json:"section,omitempty" yaml:"section,omitempty"`
	Directory     string            `json:"directory,omitempty" yaml:"directory,omitempty"`
	Detector      string            `json:"detector,omitempty" yaml:"detector,omitempty"`
	TriggerFile   string            `json:"trigger_file,omitempty" yaml:"trigger_file,omitempty"`
	InjectionFile string            `json:"injection_file,omitempty" yaml:"injection_file,omitempty"`
	Tags          []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Inputs        []string          `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs       []domain.Artifact `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// Edge states that To depends on From.
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Workflow is the finalized graph in the form handed to the scheduler.
type Workflow struct {
	Name  string `json:"name" yaml:"name"`
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Node returns the node with the given ID.
func (w *Workflow) Node(id string) (Node, bool) {
	for _, n := range w.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Predecessors returns the direct dependencies of a node, in edge order.
func (w *Workflow) Predecessors(id string) []string {
	var out []string
	for _, e := range w.Edges {
		if e.To == id {
			out = append(out, e.From)
		}
	}
	return out
}

// Successors returns the nodes depending directly on id, in edge order.
func (w *Workflow) Successors(id string) []string {
	var out []string
	for _, e := range w.Edges {
		if e.From == id {
			out = append(out, e.To)
		}
	}
	return out
}

// Jobs returns only the job nodes.
func (w *Workflow) Jobs() []Node {
	var out []Node
	for _, n := range w.Nodes {
		if n.Kind == KindJob {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks the scheduler contract: unique node IDs, edges between
// known nodes, exactly one terminal node without successors, and no cycles.
func (w *Workflow) Validate() error {
	ids := make(map[string]bool, len(w.Nodes))
	terminals := 0
	for _, n := range w.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node with empty id")
		}
		if ids[n.ID] {
			return fmt.Errorf("duplicate node id %s", n.ID)
		}
		ids[n.ID] = true
		if n.Kind == KindTerminal {
			terminals++
		}
	}
	if terminals != 1 {
		return fmt.Errorf("expected exactly one terminal node, found %d", terminals)
	}

	dependents := make(map[string][]string)
	for _, e := range w.Edges {
		if !ids[e.From] {
			return fmt.Errorf("edge source not found: %s", e.From)
		}
		if !ids[e.To] {
			return fmt.Errorf("edge destination not found: %s", e.To)
		}
		if e.From == e.To {
			return fmt.Errorf("%w: self-referential edge on %s", domain.ErrCycle, e.From)
		}
		dependents[e.From] = append(dependents[e.From], e.To)
	}

	for _, n := range w.Nodes {
		if n.Kind == KindTerminal && len(dependents[n.ID]) > 0 {
			return fmt.Errorf("terminal node %s has successors", n.ID)
		}
	}

	// Classic depth-first search:
	// permanent: fully visited nodes known not to be part of a cycle.
	// temporary: nodes on the current recursion stack.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(id string) error
	visit = func(id string) error {
		if permanent[id] {
			return nil
		}
		if temporary[id] {
			return fmt.Errorf("%w involving node '%s'", domain.ErrCycle, id)
		}
		temporary[id] = true
		for _, next := range dependents[id] {
			if err := visit(next); err != nil {
				return err
			}
		}
		delete(temporary, id)
		permanent[id] = true
		return nil
	}

	for _, n := range w.Nodes {
		if err := visit(n.ID); err != nil {
			return err
		}
	}
	return nil
}
