package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/amigo-insight/surveydash/internal/config"
)

// Cfg is the global variable that will contain the loaded configuration.
// It is accessible to all Cobra commands throughout the application.
var Cfg *config.Config

// RootCmd is the base command for the CLI application.
// All other commands (run-server, migrate, create-project, create-vendor,
// stats) are added as subcommands.
var RootCmd = &cobra.Command{
	Use:   "surveydash",
	Short: "A survey routing and vendor management backend",
	Long: `A survey routing backend that validates inbound vendor clicks,
tracks each survey attempt through its lifecycle, reconciles terminal
statuses against project and vendor counters and notifies vendor callbacks.`,
}

// Execute is the main entry point for the Cobra application.
// It is called from 'main.go' and handles command execution and error handling.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Load configuration before any command executes. Subcommands register
	// themselves via their own init() functions, which keeps this package
	// free of import cycles.
	cobra.OnInitialize(initConfig)
}

// initConfig loads the application configuration for every command.
func initConfig() {
	var err error
	Cfg, err = config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Warn("Problem loading configuration, using default values")
	}
}
