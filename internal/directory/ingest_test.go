package directory

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/active-heroes/directory-cli/internal/geo"
	"github.com/active-heroes/directory-cli/internal/model"
)

type stubLocator struct {
	locs  map[string]geo.Location
	err   error
	calls atomic.Int32
}

func (s *stubLocator) Locate(_ context.Context, zip string) (geo.Location, bool, error) {
	s.calls.Add(1)
	if s.err != nil {
		return geo.Location{}, false, s.err
	}
	loc, ok := s.locs[zip]
	return loc, ok, nil
}

func TestResolveAndMergeCreates(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	in := NewIngestor(st, nil, IngestOptions{})

	rec := model.Business{LegalName: "Acme Contracting", ZipCode: "40165"}
	res, err := in.ResolveAndMerge(context.Background(), &rec, "SAM.gov")
	require.NoError(t, err)

	assert.Equal(t, model.MergeStatusNew, res.Status)
	assert.NotZero(t, res.BusinessID)

	stored, err := st.Get(context.Background(), res.BusinessID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "SAM.gov", stored.Source)
	assert.False(t, stored.DateAdded.IsZero())
	assert.Equal(t, stored.DateAdded, stored.DateUpdated)
}

func TestResolveAndMergeMissingName(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	in := NewIngestor(st, nil, IngestOptions{})

	_, err := in.ResolveAndMerge(context.Background(), &model.Business{ZipCode: "40165"}, "SAM.gov")
	assert.ErrorIs(t, err, model.ErrMissingName)

	_, err = in.ResolveAndMerge(context.Background(), &model.Business{LegalName: "   "}, "SAM.gov")
	assert.ErrorIs(t, err, model.ErrMissingName)
}

func TestResolveAndMergeEnrichesExisting(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	in := NewIngestor(st, nil, IngestOptions{})
	ctx := context.Background()

	first := model.Business{
		UEI:       "ABC123DEF456",
		LegalName: "Acme Contracting LLC",
		ZipCode:   "40165",
		City:      "Shepherdsville",
	}
	res, err := in.ResolveAndMerge(ctx, &first, "SAM.gov")
	require.NoError(t, err)
	require.Equal(t, model.MergeStatusNew, res.Status)
	id := res.BusinessID

	// Same business from a second source, different name casing, new fields.
	second := model.Business{
		LegalName: "ACME CONTRACTING, INC",
		ZipCode:   "40165-1234",
		Phone:     "502-555-0100",
		Email:     "info@acme.example",
	}
	res, err = in.ResolveAndMerge(ctx, &second, "VetBiz")
	require.NoError(t, err)
	assert.Equal(t, model.MergeStatusUpdated, res.Status)
	assert.Equal(t, id, res.BusinessID)
	assert.Equal(t, []string{model.FieldEmail, model.FieldPhone, model.FieldSource},
		res.FieldsChanged)

	stored, err := st.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Acme Contracting LLC", stored.LegalName)
	assert.Equal(t, "502-555-0100", stored.Phone)
	assert.Equal(t, "SAM.gov, VetBiz", stored.Source)
	assert.True(t, stored.DateUpdated.After(stored.DateAdded) || stored.DateUpdated.Equal(stored.DateAdded))

	// Third pass with the same data is a no-op.
	third := second
	third.ID = 0
	res, err = in.ResolveAndMerge(ctx, &third, "VetBiz")
	require.NoError(t, err)
	assert.Equal(t, model.MergeStatusUnchanged, res.Status)
	assert.Equal(t, id, res.BusinessID)
}

func TestResolveAndMergeUEIBeatsName(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	in := NewIngestor(st, nil, IngestOptions{})
	ctx := context.Background()

	first := model.Business{
		UEI:       "ABC123DEF456",
		LegalName: "Acme Contracting",
		ZipCode:   "40165",
	}
	res, err := in.ResolveAndMerge(ctx, &first, "SAM.gov")
	require.NoError(t, err)
	id := res.BusinessID

	// Renamed business, same UEI: resolves to the same record.
	renamed := model.Business{
		UEI:       "ABC123DEF456",
		LegalName: "Patriot Builders",
		ZipCode:   "40205",
	}
	res, err = in.ResolveAndMerge(ctx, &renamed, "VetBiz")
	require.NoError(t, err)
	assert.Equal(t, id, res.BusinessID)

	stored, err := st.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Acme Contracting", stored.LegalName)
}

func TestResolveAndMergeFillsLocation(t *testing.T) {
	t.Parallel()

	loc := &stubLocator{locs: map[string]geo.Location{
		"40165": {Latitude: 37.9884, Longitude: -85.7138, DistanceMiles: 18.2},
	}}
	st := newMemStore()
	in := NewIngestor(st, loc, IngestOptions{})
	ctx := context.Background()

	rec := model.Business{LegalName: "Acme Contracting", ZipCode: "40165"}
	res, err := in.ResolveAndMerge(ctx, &rec, "SAM.gov")
	require.NoError(t, err)

	stored, err := st.Get(ctx, res.BusinessID)
	require.NoError(t, err)
	require.NotNil(t, stored.Latitude)
	assert.Equal(t, 37.9884, *stored.Latitude)
	require.NotNil(t, stored.DistanceMiles)
	assert.Equal(t, 18.2, *stored.DistanceMiles)
	assert.EqualValues(t, 1, loc.calls.Load())

	// Unknown zip stores the record without coordinates.
	rec2 := model.Business{LegalName: "Bravo Logistics", ZipCode: "99999"}
	res, err = in.ResolveAndMerge(ctx, &rec2, "SAM.gov")
	require.NoError(t, err)
	stored, err = st.Get(ctx, res.BusinessID)
	require.NoError(t, err)
	assert.Nil(t, stored.Latitude)
}

func TestResolveAndMergeLocatorFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	loc := &stubLocator{err: eris.New("geocoder down")}
	st := newMemStore()
	in := NewIngestor(st, loc, IngestOptions{})

	rec := model.Business{LegalName: "Acme Contracting", ZipCode: "40165"}
	res, err := in.ResolveAndMerge(context.Background(), &rec, "SAM.gov")
	require.NoError(t, err)
	assert.Equal(t, model.MergeStatusNew, res.Status)

	stored, err := st.Get(context.Background(), res.BusinessID)
	require.NoError(t, err)
	assert.Nil(t, stored.Latitude)
}

func TestIngestBatch(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	in := NewIngestor(st, nil, IngestOptions{MaxConcurrent: 4})

	records := []model.Business{
		{LegalName: "Acme Contracting", ZipCode: "40165"},
		{LegalName: "Acme Contracting LLC", ZipCode: "40165", Email: "info@acme.example"},
		{LegalName: "Bravo Logistics", ZipCode: "40205"},
		{ZipCode: "40165"}, // no name
	}

	rep, err := in.IngestBatch(context.Background(), records, "SAM.gov")
	require.NoError(t, err)

	assert.Equal(t, 4, rep.Processed)
	assert.Equal(t, 2, rep.Created)
	assert.Equal(t, 1, rep.Updated+rep.Unchanged)
	assert.Equal(t, 1, rep.Skipped)
	assert.Zero(t, rep.Failed)

	all, err := st.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestIngestBatchConcurrentDuplicates(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	in := NewIngestor(st, nil, IngestOptions{MaxConcurrent: 8})

	records := make([]model.Business, 10)
	for i := range records {
		records[i] = model.Business{LegalName: "Acme Contracting", ZipCode: "40165"}
	}

	rep, err := in.IngestBatch(context.Background(), records, "SAM.gov")
	require.NoError(t, err)

	assert.Equal(t, 10, rep.Processed)
	assert.Equal(t, 1, rep.Created)
	assert.Equal(t, 9, rep.Unchanged)

	all, err := st.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestIngestBatchCountsFailures(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	st.failInsert = eris.New("disk full")
	in := NewIngestor(st, nil, IngestOptions{MaxConcurrent: 2})

	records := []model.Business{
		{LegalName: "Acme Contracting", ZipCode: "40165"},
		{LegalName: "Bravo Logistics", ZipCode: "40205"},
	}

	rep, err := in.IngestBatch(context.Background(), records, "SAM.gov")
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Processed)
	assert.Equal(t, 2, rep.Failed)
	assert.Zero(t, rep.Created)
}

func TestIngestBatchWritesLog(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	in := NewIngestor(st, nil, IngestOptions{})

	_, err := in.IngestBatch(context.Background(),
		[]model.Business{{LegalName: "Acme Contracting", ZipCode: "40165"}}, "SAM.gov")
	require.NoError(t, err)

	entries, err := st.ListIngests(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "SAM.gov", entries[0].Source)
	assert.Equal(t, IngestStatusComplete, entries[0].Status)
	require.NotNil(t, entries[0].Report)
	assert.Equal(t, 1, entries[0].Report.Created)
	assert.NotNil(t, entries[0].CompletedAt)
}

func TestIdentityKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "uei:ABC123DEF456",
		identityKey(&model.Business{UEI: "ABC123DEF456", LegalName: "Acme", ZipCode: "40165"}))
	assert.Equal(t, "name:acme contracting|40165",
		identityKey(&model.Business{LegalName: "Acme Contracting, LLC", ZipCode: "40165-1234"}))
}
