package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "grbflow",
	Short: "grbflow builds the post-processing workflow of a GRB search",
	Long: `grbflow enumerates the plotting and table jobs of a GRB results report,
wires them into a DAG for an external batch scheduler and lays out the
report sections. No job is executed.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("output-dir", "o", ".", "Report output directory")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}
