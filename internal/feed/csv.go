package feed

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/active-heroes/directory-cli/internal/model"
)

// CSVFeed reads businesses from a CSV file with a header row.
type CSVFeed struct {
	path string
}

// NewCSVFeed creates a feed for the given CSV file.
func NewCSVFeed(path string) *CSVFeed {
	return &CSVFeed{path: path}
}

// Name returns the file's base name.
func (f *CSVFeed) Name() string {
	return filepath.Base(f.path)
}

// Records reads the whole file into business records.
func (f *CSVFeed) Records(ctx context.Context) ([]model.Business, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, eris.Wrap(err, "feed: open csv")
	}
	defer file.Close() //nolint:errcheck

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "feed: read csv header")
	}
	idx := columnIndex(header)
	if _, ok := idx[model.FieldLegalName]; !ok {
		return nil, eris.Errorf("feed: %s has no business name column", f.Name())
	}

	var out []model.Business
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "feed: read csv row")
		}
		out = append(out, recordFromRow(idx, row))
	}
	return out, nil
}
