package feed

import (
	"context"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/active-heroes/directory-cli/internal/model"
)

// XLSXFeed reads businesses from the first sheet of an XLSX workbook.
type XLSXFeed struct {
	path  string
	sheet string
}

// NewXLSXFeed creates a feed for the given workbook. sheet may be empty to
// use the first sheet.
func NewXLSXFeed(path, sheet string) *XLSXFeed {
	return &XLSXFeed{path: path, sheet: sheet}
}

// Name returns the file's base name.
func (f *XLSXFeed) Name() string {
	return filepath.Base(f.path)
}

// Records reads the sheet into business records. The first row is the header.
func (f *XLSXFeed) Records(ctx context.Context) ([]model.Business, error) {
	wb, err := xlsx.OpenFile(f.path)
	if err != nil {
		return nil, eris.Wrap(err, "feed: open xlsx")
	}

	sheet, err := f.pickSheet(wb)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	idx := columnIndex(rowToStrings(sheet.Rows[0]))
	if _, ok := idx[model.FieldLegalName]; !ok {
		return nil, eris.Errorf("feed: %s has no business name column", f.Name())
	}

	var out []model.Business
	for _, row := range sheet.Rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, recordFromRow(idx, rowToStrings(row)))
	}
	return out, nil
}

func (f *XLSXFeed) pickSheet(wb *xlsx.File) (*xlsx.Sheet, error) {
	if f.sheet != "" {
		sheet, ok := wb.Sheet[f.sheet]
		if !ok {
			return nil, eris.Errorf("feed: sheet %q not found", f.sheet)
		}
		return sheet, nil
	}
	if len(wb.Sheets) == 0 {
		return nil, eris.New("feed: workbook has no sheets")
	}
	return wb.Sheets[0], nil
}

func rowToStrings(row *xlsx.Row) []string {
	out := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		out[i] = cell.String()
	}
	return out
}
