package main

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/active-heroes/directory-cli/internal/model"
	"github.com/active-heroes/directory-cli/internal/quality"
)

// qualityReport bundles every quality output for one record.
type qualityReport struct {
	Business     *model.Business       `json:"business"`
	Confidence   quality.Confidence    `json:"confidence"`
	RuleGrade    quality.RuleGrade     `json:"rule_grade"`
	Completeness int                   `json:"completeness_pct"`
	Breakdown    []quality.GroupDetail `json:"breakdown"`
}

func buildQualityReport(b *model.Business) *qualityReport {
	conf := quality.Score(b, quality.DefaultCatalog())
	return &qualityReport{
		Business:     b,
		Confidence:   conf,
		RuleGrade:    quality.Classify(b),
		Completeness: quality.Completeness(b),
		Breakdown:    quality.Breakdown(b),
	}
}

var scoreCmd = &cobra.Command{
	Use:   "score <business-id>",
	Short: "Report confidence score, grade, and completeness for a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Wrapf(err, "invalid business id %q", args[0])
		}

		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		b, err := store.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		if b == nil {
			return eris.Errorf("business not found: %d", id)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(buildQualityReport(b))
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
