package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/active-heroes/directory-cli/internal/feed"
)

var (
	importSource string
	importSheet  string
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv|file.xlsx>",
	Short: "Import businesses from a CSV or XLSX file",
	Long:  "Reads a spreadsheet of businesses and runs each row through resolve-and-merge. Rows matching an existing record back-fill its empty fields; nothing is overwritten.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		var f feed.Feed
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			f = feed.NewCSVFeed(path)
		case ".xlsx":
			f = feed.NewXLSXFeed(path, importSheet)
		default:
			return eris.Errorf("unsupported file type: %s", path)
		}

		records, err := f.Records(cmd.Context())
		if err != nil {
			return err
		}

		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		source := importSource
		if source == "" {
			source = f.Name()
		}

		rep, err := newIngestor(store).IngestBatch(cmd.Context(), records, source)
		if err != nil {
			return err
		}

		fmt.Printf("processed %d: %d created, %d updated, %d unchanged, %d skipped, %d failed\n",
			rep.Processed, rep.Created, rep.Updated, rep.Unchanged, rep.Skipped, rep.Failed)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importSource, "source", "Manual Import", "source label stamped on imported records")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	rootCmd.AddCommand(importCmd)
}
