// Package main is the entry point for the threatshare IOC sharing server.
package main

import (
	"context"
	"fmt"
	"os"

	"threatshare/bootstrap"
	"threatshare/cmd"
	_ "threatshare/docs"
)

// run initializes and starts the threatshare server.
func run() error {
	ctx := context.Background()

	// Create and initialize application
	app, err := bootstrap.NewApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	// Start all services
	if err := app.Start(ctx); err != nil {
		app.Shutdown()
		return fmt.Errorf("failed to start application: %w", err)
	}

	// Wait for shutdown signal
	app.WaitForShutdown()

	// Graceful shutdown
	app.Shutdown()

	return nil
}

// main is the entry point.
func main() {
	// Check if running as CLI command
	if len(os.Args) > 1 && os.Args[1] == "iocs" {
		// The iocs command already knows its own name
		os.Args = append([]string{os.Args[0]}, os.Args[2:]...)

		iocsCmd := cmd.NewIOCsCmd()
		if err := iocsCmd.Execute(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Otherwise run as normal server
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
