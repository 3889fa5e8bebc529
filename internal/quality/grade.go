package quality

import "github.com/active-heroes/directory-cli/internal/model"

// RuleGrade is the rule-based letter grade, assigned from boolean presence
// checks over field groups. It uses different inputs and boundaries than
// the weighted confidence score and can legitimately disagree with it;
// both are displayed side by side, never reconciled.
type RuleGrade struct {
	Grade       string `json:"grade"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var ruleGrades = map[string]RuleGrade{
	"A": {"A", "Comprehensive", "Has address, contact info, and industry data"},
	"B": {"B", "Strong", "Has address plus contact or industry data"},
	"C": {"C", "Core Data", "Has name, city, and state"},
	"D": {"D", "Partial", "Has name plus state or city"},
	"F": {"F", "Sparse", "Missing most key fields"},
}

// Classify assigns a rule-based grade. The decision table is evaluated
// top-down; first match wins.
func Classify(b *model.Business) RuleGrade {
	hasName := b.Has(model.FieldLegalName)
	hasCity := b.Has(model.FieldCity)
	hasState := b.Has(model.FieldState)
	hasAddress := hasCity && hasState && b.Has(model.FieldAddressLine1)
	hasIndustry := b.Has(model.FieldNAICSCodes) || b.Has(model.FieldNAICSDescriptions)
	hasContact := b.Has(model.FieldPhone) || b.Has(model.FieldEmail) || b.Has(model.FieldWebsite)

	switch {
	case hasAddress && hasContact && hasIndustry:
		return ruleGrades["A"]
	case hasAddress && (hasContact || hasIndustry):
		return ruleGrades["B"]
	case hasName && hasCity && hasState:
		return ruleGrades["C"]
	case hasName && (hasState || hasCity):
		return ruleGrades["D"]
	default:
		return ruleGrades["F"]
	}
}

// FieldGroup names a display grouping of related fields with a provenance hint.
type FieldGroup struct {
	Key    string
	Label  string
	Source string
	Fields []string
}

// fieldGroups drives the per-group breakdown shown alongside the grade.
var fieldGroups = []FieldGroup{
	{"identity", "Identity", "SAM.gov", []string{
		model.FieldLegalName, model.FieldDBAName, model.FieldBusinessType}},
	{"registration", "Registration", "SAM.gov", []string{
		model.FieldUEI, model.FieldCAGECode, model.FieldRegistrationStatus,
		model.FieldRegistrationExpiration, model.FieldEntityStartDate}},
	{"location", "Location", "SAM.gov", []string{
		model.FieldAddressLine1, model.FieldCity, model.FieldState, model.FieldZipCode}},
	{"industry", "Industry", "SAM.gov", []string{
		model.FieldNAICSCodes, model.FieldNAICSDescriptions}},
	{"service", "Service Info", "SAM.gov / Manual", []string{
		model.FieldServiceBranch, model.FieldCertificationDate}},
	{"contact", "Contact", "Web Enrichment", []string{
		model.FieldPhone, model.FieldEmail, model.FieldWebsite}},
	{"geography", "Geography", "Geocoded", []string{
		model.FieldLatitude, model.FieldLongitude, model.FieldDistanceMiles}},
}

// GroupDetail reports fill state for one field group.
type GroupDetail struct {
	Key    string          `json:"key"`
	Label  string          `json:"label"`
	Filled int             `json:"filled"`
	Total  int             `json:"total"`
	Source string          `json:"source"`
	Fields map[string]bool `json:"fields"`
}

// Breakdown returns per-group fill details in display order.
func Breakdown(b *model.Business) []GroupDetail {
	out := make([]GroupDetail, 0, len(fieldGroups))
	for _, g := range fieldGroups {
		d := GroupDetail{
			Key:    g.Key,
			Label:  g.Label,
			Total:  len(g.Fields),
			Source: g.Source,
			Fields: make(map[string]bool, len(g.Fields)),
		}
		for _, f := range g.Fields {
			has := b.Has(f)
			d.Fields[f] = has
			if has {
				d.Filled++
			}
		}
		out = append(out, d)
	}
	return out
}
