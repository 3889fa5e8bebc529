package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/active-heroes/directory-cli/internal/config"
	"github.com/active-heroes/directory-cli/internal/db"
	"github.com/active-heroes/directory-cli/internal/directory"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "directory-cli",
	Short: "Veteran-owned business directory",
	Long:  "Ingests business records from registry exports and spreadsheets, resolves duplicates across sources, and scores data quality for the Active Heroes directory.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// openStore opens the configured store backend. Callers own Close.
func openStore(ctx context.Context) (directory.Store, error) {
	if cfg.Store.Driver == "postgres" {
		pool, err := db.Connect(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return directory.NewPostgres(pool), nil
	}
	return directory.NewSQLite(cfg.Store.Path)
}

func newIngestor(store directory.Store) *directory.Ingestor {
	return directory.NewIngestor(store, nil, directory.IngestOptions{
		MaxConcurrent:       cfg.Ingest.MaxConcurrent,
		RecordsPerSecond:    cfg.Ingest.RecordsPerSecond,
		SimilarityThreshold: cfg.Ingest.SimilarityThreshold,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
