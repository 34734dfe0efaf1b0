package cmd

import (
	"fmt"
	"os"

	"github.com/sitpractice/sit-api/pkg/config"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sit-api",
	Short: "Sit API server",
	Long: `Sit API - A meditation practice tracking backend

The service records timed sits and flow-guided check-ins (optionally
with a voice note), transcribes voice notes asynchronously through a
durable job queue, and exposes the practice history to a conversational
assistant that can query it live.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

// loadConfig initializes the configuration for commands that need it
func loadConfig() error {
	if err := config.Init(); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
