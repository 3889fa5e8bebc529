package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsIngests int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the directory and recent ingest runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("businesses: %d (%d with UEI)\n", stats.Total, stats.WithUEI)
		fmt.Printf("contact: %d phone, %d email, %d website\n",
			stats.HasPhone, stats.HasEmail, stats.HasWebsite)
		printCounts("by state", stats.ByState)
		printCounts("by type", stats.ByType)
		printCounts("by source", stats.BySource)

		if statsIngests > 0 {
			entries, err := store.ListIngests(cmd.Context(), statsIngests)
			if err != nil {
				return err
			}
			fmt.Println("recent ingests:")
			for _, e := range entries {
				fmt.Printf("  %s  %-10s %-8s", e.StartedAt.Format("2006-01-02 15:04"), e.Source, e.Status)
				if e.Report != nil {
					fmt.Printf(" %d processed, %d created, %d updated",
						e.Report.Processed, e.Report.Created, e.Report.Updated)
				}
				fmt.Println()
			}
		}
		return nil
	},
}

func printCounts(label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	fmt.Printf("%s:\n", label)
	for _, k := range keys {
		fmt.Printf("  %-30s %d\n", k, counts[k])
	}
}

func init() {
	statsCmd.Flags().IntVar(&statsIngests, "ingests", 5, "number of recent ingest runs to show (0 to hide)")
	rootCmd.AddCommand(statsCmd)
}
