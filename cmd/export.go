package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/active-heroes/directory-cli/internal/feed"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the directory to CSV, nearest businesses first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		businesses, err := store.ListAll(cmd.Context())
		if err != nil {
			return err
		}

		w := os.Stdout
		if exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return eris.Wrap(err, "create export file")
			}
			defer f.Close() //nolint:errcheck
			w = f
		}
		if err := feed.WriteCSV(w, businesses); err != nil {
			return err
		}

		if exportOut != "-" {
			fmt.Printf("exported %d businesses to %s\n", len(businesses), exportOut)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "veteran_businesses_export.csv", "output path, or - for stdout")
	rootCmd.AddCommand(exportCmd)
}
