package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/grbflow"
	"github.com/aretw0/grbflow/internal/logging"
	"github.com/aretw0/grbflow/internal/metrics"
	httpAdapter "github.com/aretw0/grbflow/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Preview a built report over HTTP",
	Long:  `Serves the section pages, the exported workflow, the artifact files and build metrics of a report.`,
	Run: func(cmd *cobra.Command, args []string) {
		outputDir, _ := cmd.Flags().GetString("output-dir")
		verbose, _ := cmd.Flags().GetBool("verbose")
		port, _ := cmd.Flags().GetString("port")
		unblind, _ := cmd.Flags().GetBool("unblind")

		logger := logging.New(logging.Level(verbose))

		report, err := grbflow.OpenReport(outputDir)
		if err != nil {
			fmt.Printf("Error opening report: %v\n", err)
			os.Exit(1)
		}

		rec := metrics.New()
		for _, n := range report.JobNodes() {
			rec.JobCreated(n)
		}
		rec.SetPages(len(report.Pages()))

		handler := httpAdapter.NewHandler(report,
			httpAdapter.WithUnblind(unblind),
			httpAdapter.WithMetrics(rec.Handler()),
			httpAdapter.WithLogger(logger),
		)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting report preview on %s\n", srv.Addr)
			fmt.Printf("Serving report from: %s\n", outputDir)
			if unblind {
				fmt.Println("Open box section is visible")
			}
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Report preview stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Bool("unblind", false, "Expose the open box section")
}
