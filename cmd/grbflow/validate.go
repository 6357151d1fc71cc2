package main

import (
	"fmt"
	"os"

	"github.com/aretw0/grbflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [workflow-file]",
	Short: "Check an exported workflow for consistency",
	Long:  `Checks that the exported workflow is a DAG with a single terminal node and no dangling edges.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		wf, err := loadWorkflow(cmd, args)
		if err == nil {
			err = wf.Validate()
		}
		if err != nil {
			tui.PrintStatus(os.Stdout, tui.Status{Message: "Validation failed"})
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		tui.PrintStatus(os.Stdout, tui.Status{
			OK:      true,
			Message: "Workflow is valid",
			Details: []string{fmt.Sprintf("%d nodes, %d edges", len(wf.Nodes), len(wf.Edges))},
		})
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
