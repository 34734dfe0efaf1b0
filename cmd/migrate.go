package cmd

import (
	"fmt"

	"github.com/sitpractice/sit-api/internal/database"
	"github.com/sitpractice/sit-api/pkg/config"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long: `Manage the database schema for the Sit API.

Available subcommands:
  up      - Apply the schema (create or update all tables)
  status  - Show which tables exist`,
}

// migrateUpCmd applies the schema
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply the schema",
	Long: `Create or update all tables to match the current models.

Safe to run repeatedly; existing data is preserved.`,
	RunE: runMigrateUp,
}

// migrateStatusCmd shows which tables exist
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show schema status",
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func openDatabase() (*database.DB, *config.Config, error) {
	if err := loadConfig(); err != nil {
		return nil, nil, err
	}

	cfg, err := config.GetConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing database: %w", err)
	}

	return db, cfg, nil
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	db, cfg, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.AutoMigrate(migrationModels()...); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	fmt.Printf("Schema applied to %s\n", cfg.Database.Path)
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, cfg, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Printf("Database: %s\n", cfg.Database.Path)
	for _, model := range migrationModels() {
		name := ""
		if t, ok := model.(interface{ TableName() string }); ok {
			name = t.TableName()
		}
		exists := db.DB.Migrator().HasTable(model)
		fmt.Printf("  %-15s %v\n", name, exists)
	}

	return nil
}
