package quality

import (
	"math"

	"github.com/active-heroes/directory-cli/internal/model"
)

// TierDetail reports per-tier fill statistics for one record.
type TierDetail struct {
	Filled int     `json:"filled"`
	Total  int     `json:"total"`
	Weight float64 `json:"weight"`
	Pct    int     `json:"pct"`
}

// Confidence is the tier-weighted score and grade for one record.
type Confidence struct {
	Score int                   `json:"score"`
	Grade string                `json:"grade"`
	Label string                `json:"label"`
	Tiers map[string]TierDetail `json:"tiers"`
}

// confidenceGrades maps score thresholds to letter grades, scanned
// high-to-low; the first threshold the score meets wins.
var confidenceGrades = []struct {
	Min   int
	Grade string
	Label string
}{
	{40, "A", "Well Documented"},
	{25, "B", "Good Coverage"},
	{15, "C", "Core Data"},
	{5, "D", "Basic Info"},
	{0, "F", "Needs Data"},
}

// Score computes the weighted confidence score for a record.
//
// Each tier contributes (filled / total) * weight; the score is the
// contribution sum over the maximum possible, scaled to 0-100. Tier weight
// dominates field count on purpose: presence of official registration data
// is the strongest trust signal even though that tier has few fields.
func Score(b *model.Business, c *Catalog) Confidence {
	var weighted float64
	details := make(map[string]TierDetail, len(c.Tiers()))

	for _, tier := range c.Tiers() {
		filled := 0
		for _, f := range tier.Fields {
			if b.Has(f) {
				filled++
			}
		}
		total := len(tier.Fields)
		weighted += float64(filled) / float64(total) * tier.Weight
		details[tier.Key] = TierDetail{
			Filled: filled,
			Total:  total,
			Weight: tier.Weight,
			Pct:    int(math.Round(float64(filled) / float64(total) * 100)),
		}
	}

	score := int(math.Round(weighted / c.TotalWeight() * 100))

	out := Confidence{Score: score, Tiers: details}
	for _, g := range confidenceGrades {
		if score >= g.Min {
			out.Grade = g.Grade
			out.Label = g.Label
			break
		}
	}
	return out
}
