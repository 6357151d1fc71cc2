package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/grbflow"
	"github.com/aretw0/grbflow/internal/presentation/tui"
	"github.com/aretw0/grbflow/pkg/layout"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the report outline",
	Long:  `Renders the section pages of a built report as markdown. The open box section is omitted unless --unblind is set.`,
	Run: func(cmd *cobra.Command, args []string) {
		outputDir, _ := cmd.Flags().GetString("output-dir")
		unblind, _ := cmd.Flags().GetBool("unblind")
		raw, _ := cmd.Flags().GetBool("raw")

		report, err := grbflow.OpenReport(outputDir)
		if err != nil {
			fmt.Printf("Error opening report: %v\n", err)
			os.Exit(1)
		}

		var pages []layout.Page
		for _, p := range report.Pages() {
			if !unblind && strings.HasPrefix(p.Section, "open_box") {
				continue
			}
			pages = append(pages, p)
		}

		md := layout.Markdown(report.Title(), pages)
		styled := !raw && tui.IsTerminal(os.Stdout)
		if err := tui.WriteMarkdown(os.Stdout, md, styled); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().Bool("unblind", false, "Include the open box section")
	summaryCmd.Flags().Bool("raw", false, "Print markdown without terminal styling")
}
