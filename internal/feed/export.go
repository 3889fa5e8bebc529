package feed

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/active-heroes/directory-cli/internal/model"
)

// exportColumns is the fixed CSV export layout.
var exportColumns = []string{
	model.FieldLegalName, model.FieldDBAName, model.FieldBusinessType,
	model.FieldAddressLine1, model.FieldAddressLine2,
	model.FieldCity, model.FieldState, model.FieldZipCode,
	model.FieldPhone, model.FieldEmail, model.FieldWebsite,
	model.FieldNAICSCodes, model.FieldNAICSDescriptions,
	model.FieldUEI, model.FieldCAGECode,
	model.FieldRegistrationStatus, model.FieldRegistrationExpiration,
	model.FieldEntityStartDate, model.FieldDistanceMiles,
	model.FieldSource, model.FieldNotes,
}

// WriteCSV writes businesses as CSV with a header row. Callers pass records
// in the order they should appear.
func WriteCSV(w io.Writer, businesses []model.Business) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportColumns); err != nil {
		return eris.Wrap(err, "feed: write csv header")
	}
	row := make([]string, len(exportColumns))
	for i := range businesses {
		for j, col := range exportColumns {
			row[j] = businesses[i].DisplayValue(col)
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "feed: write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "feed: flush csv")
	}
	return nil
}
