package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sitpractice/sit-api/internal/database"
	"github.com/sitpractice/sit-api/pkg/config"
	"github.com/spf13/cobra"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the transcription worker pool",
	Long: `Run only the transcription worker pool, without the HTTP server.

Workers poll the job queue, claim pending voice-note transcription jobs
exclusively, and write results back to the owning check-in. Multiple
worker processes can run concurrently against the same database; the
claim step guarantees no job is processed twice.

Example:
  sit-api worker
  sit-api worker --count 4`,
	RunE: runWorkers,
}

var workerCount int

func init() {
	rootCmd.AddCommand(workerCmd)

	workerCmd.Flags().IntVar(&workerCount, "count", 0, "number of workers (overrides config)")
}

func runWorkers(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	if workerCount > 0 {
		cfg.Worker.Count = workerCount
	}
	if cfg.AI.OpenAIAPIKey == "" {
		return fmt.Errorf("ai.openai_api_key is required to run transcription workers")
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	deps, err := buildDependencies(cfg, db)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := deps.WorkerPool.Start(ctx); err != nil {
		return fmt.Errorf("starting worker pool: %w", err)
	}

	fmt.Printf("Worker pool running with %d workers\n", cfg.Worker.Count)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	fmt.Println("\nStopping workers...")
	deps.WorkerPool.Stop()
	fmt.Println("Workers stopped")

	return nil
}
