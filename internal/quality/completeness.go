package quality

import (
	"math"

	"github.com/active-heroes/directory-cli/internal/model"
)

// completenessFields is the fixed 17-field checklist. Unlike the confidence
// score, every field counts equally regardless of tier.
var completenessFields = []string{
	model.FieldLegalName, model.FieldDBAName, model.FieldBusinessType,
	model.FieldAddressLine1, model.FieldCity, model.FieldState, model.FieldZipCode,
	model.FieldPhone, model.FieldEmail, model.FieldWebsite,
	model.FieldNAICSCodes, model.FieldNAICSDescriptions,
	model.FieldUEI, model.FieldCAGECode,
	model.FieldRegistrationStatus, model.FieldOwnerName, model.FieldServiceBranch,
}

// Completeness returns the 0-100 percentage of checklist fields filled.
func Completeness(b *model.Business) int {
	filled := 0
	for _, f := range completenessFields {
		if b.Has(f) {
			filled++
		}
	}
	return int(math.Round(float64(filled) / float64(len(completenessFields)) * 100))
}
