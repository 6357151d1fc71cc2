package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/grbflow"
	"github.com/aretw0/grbflow/internal/logging"
	"github.com/aretw0/grbflow/internal/presentation/tui"
	"github.com/aretw0/grbflow/pkg/graph"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the workflow and the report layout",
	Long: `Loads the configuration, enumerates every report job and writes the
section tree, the exported DAG and the scheduler maps under the output directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runBuild(cmd); err != nil {
			tui.PrintStatus(os.Stdout, tui.Status{Message: "Build failed"})
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().String("config", "", "Analysis configuration file (YAML)")
	buildCmd.Flags().String("trigger-file", "", "Trigger dataset")
	buildCmd.Flags().StringArray("injection-file", nil, "Injection dataset (repeatable)")
	buildCmd.Flags().Int("workers", 1, "Report stages built concurrently")
	buildCmd.Flags().String("format", "json", "Workflow export format (json or yaml)")
	_ = buildCmd.MarkFlagRequired("config")
	_ = buildCmd.MarkFlagRequired("trigger-file")
}

func runBuild(cmd *cobra.Command) error {
	outputDir, _ := cmd.Flags().GetString("output-dir")
	verbose, _ := cmd.Flags().GetBool("verbose")
	configPath, _ := cmd.Flags().GetString("config")
	triggerFile, _ := cmd.Flags().GetString("trigger-file")
	injectionFiles, _ := cmd.Flags().GetStringArray("injection-file")
	workers, _ := cmd.Flags().GetInt("workers")
	formatName, _ := cmd.Flags().GetString("format")

	format, err := graph.ParseFormat(formatName)
	if err != nil {
		return err
	}

	ws := grbflow.NewWorkspace(outputDir)
	if err := ws.Create(); err != nil {
		return err
	}
	logFile, err := os.Create(ws.LogPath())
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	logger := logging.Tee(logFile, logging.Level(verbose))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := grbflow.New(
		grbflow.WithOutputDir(outputDir),
		grbflow.WithWorkers(workers),
		grbflow.WithFormat(format),
		grbflow.WithLogFile(ws.LogPath()),
		grbflow.WithLogger(logger),
	)

	res, err := b.Build(ctx, grbflow.Request{
		ConfigPath:     configPath,
		TriggerFile:    triggerFile,
		InjectionFiles: injectionFiles,
	})
	if err != nil {
		logger.Error("Build failed.", "error", err)
		return err
	}

	details := []string{
		fmt.Sprintf("%d jobs, %d pages", len(res.Workflow.Jobs()), len(res.Pages)),
		res.DAXPath,
	}
	if res.Degraded {
		details = append(details, "tuning injection set unavailable, overlays disabled")
	}
	tui.PrintStatus(os.Stdout, tui.Status{OK: true, Message: "Workflow written", Details: details})
	return nil
}
