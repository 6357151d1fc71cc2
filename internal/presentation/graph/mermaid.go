package graph

import (
	"fmt"
	"strings"

	dag "github.com/aretw0/grbflow/pkg/graph"
)

// GraphOverlay contains extra state to highlight on the graph.
type GraphOverlay struct {
	// Highlight lists node IDs drawn with the highlighted style.
	Highlight []string
}

// GenerateMermaid produces a Mermaid flowchart from an exported workflow.
// It applies semantic styling:
// - Terminal: ((Circle))
// - Marker: [/Parallelogram/]
// - Job: [Rectangle], grouped into one subgraph per report section
// Data-flow edges are solid; edges into the terminal node are dotted.
func GenerateMermaid(wf *dag.Workflow, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var sections []string
	bySection := make(map[string][]dag.Node)
	for _, n := range wf.Nodes {
		if n.Kind != dag.KindJob {
			continue
		}
		if _, ok := bySection[n.Section]; !ok {
			sections = append(sections, n.Section)
		}
		bySection[n.Section] = append(bySection[n.Section], n)
	}

	for _, section := range sections {
		sb.WriteString(fmt.Sprintf("    subgraph %s[\"%s\"]\n", sanitizeMermaidID("section/"+section), section))
		for _, n := range bySection[section] {
			sb.WriteString("    " + nodeLine(n))
		}
		sb.WriteString("    end\n")
	}
	for _, n := range wf.Nodes {
		if n.Kind != dag.KindJob {
			sb.WriteString(nodeLine(n))
		}
	}

	for _, e := range wf.Edges {
		arrow := "-->"
		if e.To == dag.TerminalID {
			arrow = "-.->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(e.From), arrow, sanitizeMermaidID(e.To)))
	}

	if overlay != nil && len(overlay.Highlight) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef highlight fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Highlight {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s highlight;\n", safeID))
			}
		}
	}

	return sb.String()
}

func nodeLine(n dag.Node) string {
	safeID := sanitizeMermaidID(n.ID)

	opener, closer := "[", "]"
	label := n.Template
	switch n.Kind {
	case dag.KindTerminal:
		opener, closer = "((", "))"
	case dag.KindMarker:
		opener, closer = "[/", "/]"
		label = n.ID
	}
	if n.Detector != "" {
		label += " <br/> " + n.Detector
	}
	if len(n.Tags) > 0 {
		label += " <br/> " + strings.Join(n.Tags, " ")
	}

	return fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, strings.ReplaceAll(label, "\"", "'"), closer)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
