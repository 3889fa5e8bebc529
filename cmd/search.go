package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/active-heroes/directory-cli/internal/directory"
)

var (
	searchState   string
	searchType    string
	searchMaxDist float64
	searchSort    string
	searchPage    int
	searchPerPage int
)

var searchCmd = &cobra.Command{
	Use:   "search [terms...]",
	Short: "Search the directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		f := directory.SearchFilter{
			Query:        strings.Join(args, " "),
			State:        searchState,
			BusinessType: searchType,
			SortBy:       searchSort,
			Page:         searchPage,
			PerPage:      searchPerPage,
		}
		if searchMaxDist > 0 {
			f.MaxDistance = &searchMaxDist
		}

		res, err := store.Search(cmd.Context(), f)
		if err != nil {
			return err
		}

		for _, b := range res.Businesses {
			dist := ""
			if b.DistanceMiles != nil {
				dist = fmt.Sprintf(" (%.1f mi)", *b.DistanceMiles)
			}
			fmt.Printf("%6d  %-40s %s, %s %s%s\n",
				b.ID, b.LegalName, b.City, b.State, b.ZipCode, dist)
		}
		fmt.Printf("page %d/%d, %d total\n", res.Page, res.TotalPages, res.Total)
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchState, "state", "", "filter by state")
	searchCmd.Flags().StringVar(&searchType, "type", "", "filter by business type")
	searchCmd.Flags().Float64Var(&searchMaxDist, "max-distance", 0, "maximum distance in miles")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "sort order: distance, name, city, state, date_added")
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "page number")
	searchCmd.Flags().IntVar(&searchPerPage, "per-page", 25, "results per page")
	rootCmd.AddCommand(searchCmd)
}
