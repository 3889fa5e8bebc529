// Package feed reads incoming business records from external files.
//
// Feeds are deliberately dumb: they map rows to model.Business and leave
// resolution, merging, and validation to the ingest pipeline.
package feed

import (
	"context"
	"strings"

	"github.com/active-heroes/directory-cli/internal/model"
)

// Feed is a source of incoming business records.
type Feed interface {
	Name() string
	Records(ctx context.Context) ([]model.Business, error)
}

// headerAliases maps canonical field names to the spreadsheet headers that
// carry them. Matching is case-insensitive after trimming.
var headerAliases = map[string][]string{
	model.FieldUEI:          {"uei"},
	model.FieldLegalName:    {"legal_business_name", "business name", "name"},
	model.FieldDBAName:      {"dba_name", "dba"},
	model.FieldAddressLine1: {"physical_address_line1", "address"},
	model.FieldCity:         {"city"},
	model.FieldState:        {"state"},
	model.FieldZipCode:      {"zip_code", "zip", "zip code"},
	model.FieldPhone:        {"phone"},
	model.FieldEmail:        {"email"},
	model.FieldWebsite:      {"website", "url"},
	model.FieldBusinessType: {"business_type", "type"},
	model.FieldNAICSCodes:   {"naics_codes", "naics"},
	model.FieldNotes:        {"notes"},
}

// defaultBusinessType tags rows whose feed carries no type column.
const defaultBusinessType = "VOB"

// columnIndex maps canonical field names to column positions in a header row.
func columnIndex(header []string) map[string]int {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idx := make(map[string]int)
	for field, aliases := range headerAliases {
		for _, a := range aliases {
			if i, ok := byName[a]; ok {
				idx[field] = i
				break
			}
		}
	}
	return idx
}

// recordFromRow builds a business from one data row.
func recordFromRow(idx map[string]int, row []string) model.Business {
	var b model.Business
	for field, i := range idx {
		if i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			model.SetField(&b, field, v)
		}
	}
	if b.BusinessType == "" {
		b.BusinessType = defaultBusinessType
	}
	return b
}
