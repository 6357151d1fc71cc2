package graph

import (
	"fmt"
	"sync"

	"github.com/aretw0/grbflow/pkg/domain"
)

// TerminalID is the ID of the synthetic final-report node.
const TerminalID = "final-report"

// Appender receives job nodes from the job factory.
type Appender interface {
	Append(n *domain.JobNode) (*domain.JobNode, error)
}

// Marker is a completion marker the terminal node depends on even though no
// job produces it, e.g. the configuration snapshot or the workflow log.
type Marker struct {
	ID        string            `json:"id" yaml:"id"`
	Artifacts []domain.Artifact `json:"artifacts" yaml:"artifacts"`
}

// Graph is the append-only dependency graph. Safe for concurrent use.
type Graph struct {
	mu        sync.Mutex
	name      string
	nodes     []*domain.JobNode
	producers map[string]string
	deps      map[string][]string
	finalized bool

	terminalTemplate string
	terminalOutputs  []domain.Artifact
}

// Option configures a Graph.
type Option func(*Graph)

// WithTerminal sets the template and outputs of the terminal node.
func WithTerminal(template string, outputs ...domain.Artifact) Option {
	return func(g *Graph) {
		g.terminalTemplate = template
		g.terminalOutputs = outputs
	}
}

// New creates an empty graph.
func New(name string, opts ...Option) *Graph {
	g := &Graph{
		name:             name,
		producers:        make(map[string]string),
		deps:             make(map[string][]string),
		terminalTemplate: "results_page",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns the workflow name.
func (g *Graph) Name() string {
	return g.name
}

// Append adds a node, assigning its ID. The node must not be modified afterwards.
func (g *Graph) Append(n *domain.JobNode) (*domain.JobNode, error) {
	if n == nil {
		return nil, fmt.Errorf("cannot append nil node")
	}
	if len(n.Outputs) == 0 {
		return nil, fmt.Errorf("node %s declares no outputs", n.Template)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.finalized {
		return nil, domain.ErrFinalized
	}

	for _, out := range n.Outputs {
		if owner, ok := g.producers[out.Path]; ok {
			return nil, fmt.Errorf("%w: %s already produced by %s", domain.ErrDuplicateOutput, out.Path, owner)
		}
	}

	n.ID = fmt.Sprintf("%05d-%s", len(g.nodes)+1, n.Template)

	// Only inputs produced by earlier nodes become edges.
	for _, in := range n.Inputs {
		if from, ok := g.producers[in]; ok {
			g.deps[n.ID] = append(g.deps[n.ID], from)
		}
	}
	for _, out := range n.Outputs {
		g.producers[out.Path] = n.ID
	}
	g.nodes = append(g.nodes, n)
	return n, nil
}

// Commit appends every node of a batch in batch order.
func (g *Graph) Commit(b *Batch) error {
	for _, n := range b.Nodes() {
		if _, err := g.Append(n); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of job nodes.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// Nodes returns the job nodes in append order.
func (g *Graph) Nodes() []*domain.JobNode {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*domain.JobNode, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Producer returns the ID of the node producing path.
func (g *Graph) Producer(path string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, ok := g.producers[path]
	return id, ok
}

// Finalize closes the graph and exports it with a terminal node depending on
// every job node and every marker. A graph can only be finalized once.
func (g *Graph) Finalize(extras ...Marker) (*Workflow, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.finalized {
		return nil, domain.ErrFinalized
	}

	wf := &Workflow{Name: g.name}
	seen := make(map[string]bool)

	for _, n := range g.nodes {
		node := Node{
			ID:            n.ID,
			Kind:          KindJob,
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
		}
		wf.Nodes = append(wf.Nodes, node)
		seen[n.ID] = true

		for _, from := range g.deps[n.ID] {
			wf.Edges = append(wf.Edges, Edge{From: from, To: n.ID})
		}
	}

	terminal := Node{
		ID:       TerminalID,
		Kind:     KindTerminal,
		Template: g.terminalTemplate,
		Outputs:  g.terminalOutputs,
	}

	for _, m := range extras {
		if m.ID == "" || seen[m.ID] || m.ID == TerminalID {
			return nil, fmt.Errorf("invalid or duplicate marker id %q", m.ID)
		}
		seen[m.ID] = true
		wf.Nodes = append(wf.Nodes, Node{ID: m.ID, Kind: KindMarker, Outputs: m.Artifacts})
		for _, a := range m.Artifacts {
			terminal.Inputs = append(terminal.Inputs, a.Path)
		}
	}

	for _, n := range wf.Nodes {
		wf.Edges = append(wf.Edges, Edge{From: n.ID, To: TerminalID})
	}
	wf.Nodes = append(wf.Nodes, terminal)

	g.finalized = true
	return wf, nil
}
