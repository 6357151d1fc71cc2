package main

import (
	"fmt"
	"os"

	"github.com/aretw0/grbflow"
	"github.com/aretw0/grbflow/internal/presentation/graph"
	dag "github.com/aretw0/grbflow/pkg/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [workflow-file]",
	Short: "Export the workflow graph visualization",
	Long:  `Reads an exported workflow and outputs a Mermaid diagram (graph TD) with one subgraph per report section.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		wf, err := loadWorkflow(cmd, args)
		if err != nil {
			fmt.Printf("Error loading workflow: %v\n", err)
			os.Exit(1)
		}

		var overlay *graph.GraphOverlay
		if section, _ := cmd.Flags().GetString("highlight"); section != "" {
			overlay = &graph.GraphOverlay{}
			for _, n := range wf.Jobs() {
				if n.Section == section {
					overlay.Highlight = append(overlay.Highlight, n.ID)
				}
			}
		}

		// Generate and print Mermaid graph
		fmt.Print(graph.GenerateMermaid(wf, overlay))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("highlight", "", "Highlight the jobs of a section")
}

// loadWorkflow reads the workflow named in args, or the export found under
// the output directory.
func loadWorkflow(cmd *cobra.Command, args []string) (*dag.Workflow, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		outputDir, _ := cmd.Flags().GetString("output-dir")
		found, err := grbflow.FindWorkflow(outputDir)
		if err != nil {
			return nil, err
		}
		path = found
	}
	return dag.ReadFile(path)
}
