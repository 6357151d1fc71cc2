package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/grbflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of grbflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("grbflow version %s\n", strings.TrimSpace(grbflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
