package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/mochiyoru/internal/config"
	"github.com/mmynk/mochiyoru/internal/storage"
	"github.com/mmynk/mochiyoru/internal/storage/mysql"
	"github.com/mmynk/mochiyoru/internal/storage/sqlite"
	"github.com/mmynk/mochiyoru/pkg/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mochiyoru",
	Short: "Packing lists for groups",
	Long: `mochiyoru serves the packing-list pages and the JSON API behind them.

Running it without a subcommand starts the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database tables and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logging.Setup(cfg.Log.Level)
	return cfg, nil
}

// openStore opens the configured store. Both drivers create missing tables.
func openStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case "mysql":
		return mysql.Open(ctx, cfg.MySQLDSN)
	default:
		return sqlite.New(cfg.SQLitePath)
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cmd.Context(), cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	slog.Info("Migrations applied", "driver", cfg.Storage.Driver)
	return nil
}
