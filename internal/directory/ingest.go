package directory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/active-heroes/directory-cli/internal/geo"
	"github.com/active-heroes/directory-cli/internal/match"
	"github.com/active-heroes/directory-cli/internal/model"
)

// IngestOptions tunes the batch ingest pipeline.
type IngestOptions struct {
	// MaxConcurrent bounds the number of records resolved at once.
	// Zero or negative means serial.
	MaxConcurrent int
	// RecordsPerSecond throttles the whole batch. Zero disables the limiter.
	RecordsPerSecond float64
	// SimilarityThreshold overrides DefaultSimilarityThreshold when positive.
	SimilarityThreshold float64
}

// Ingestor runs incoming records through resolve-then-merge against a Store.
type Ingestor struct {
	store    Store
	resolver *Resolver
	locator  geo.Locator
	limiter  *rate.Limiter
	workers  int
	locks    keyedLocks
}

// NewIngestor creates an Ingestor. locator may be nil to skip location fill.
func NewIngestor(store Store, locator geo.Locator, opts IngestOptions) *Ingestor {
	workers := opts.MaxConcurrent
	if workers < 1 {
		workers = 1
	}
	var limiter *rate.Limiter
	if opts.RecordsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RecordsPerSecond), 1)
	}
	return &Ingestor{
		store:    store,
		resolver: NewResolver(store, opts.SimilarityThreshold),
		locator:  locator,
		limiter:  limiter,
		workers:  workers,
		locks:    keyedLocks{entries: make(map[string]*lockEntry)},
	}
}

// ResolveAndMerge processes one incoming record: resolve it to an existing
// business and back-fill, or insert it as new. source, when non-empty,
// overrides the record's own source label. Records without a legal name
// return model.ErrMissingName.
func (in *Ingestor) ResolveAndMerge(ctx context.Context, incoming *model.Business, source string) (*model.MergeResult, error) {
	if strings.TrimSpace(incoming.LegalName) == "" {
		return nil, model.ErrMissingName
	}
	if source != "" {
		incoming.Source = source
	}

	existing, err := in.resolver.Resolve(ctx, incoming)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if existing == nil {
		in.fillLocation(ctx, incoming)
		incoming.DateAdded = now
		incoming.DateUpdated = now
		if err := in.store.Insert(ctx, incoming); err != nil {
			return nil, eris.Wrap(err, "ingest: insert")
		}
		zap.L().Debug("business created",
			zap.Int64("business_id", incoming.ID),
			zap.String("name", incoming.LegalName))
		return &model.MergeResult{Status: model.MergeStatusNew, BusinessID: incoming.ID}, nil
	}

	changes := Merge(existing, incoming)
	if len(changes) == 0 {
		return &model.MergeResult{Status: model.MergeStatusUnchanged, BusinessID: existing.ID}, nil
	}

	fields := changedFields(changes)
	changes["date_updated"] = now
	if err := in.store.Update(ctx, existing.ID, changes); err != nil {
		return nil, eris.Wrapf(err, "ingest: update %d", existing.ID)
	}
	zap.L().Debug("business updated",
		zap.Int64("business_id", existing.ID),
		zap.Strings("fields", fields))
	return &model.MergeResult{
		Status:        model.MergeStatusUpdated,
		BusinessID:    existing.ID,
		FieldsChanged: fields,
	}, nil
}

// IngestBatch processes records concurrently with skip-and-continue
// semantics: one bad record never aborts the batch. The run is recorded in
// the ingest log. The returned error is non-nil only for batch-level
// failures (context cancellation, ingest-log access).
func (in *Ingestor) IngestBatch(ctx context.Context, records []model.Business, source string) (*model.IngestReport, error) {
	runID, err := in.store.StartIngest(ctx, source)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: start log")
	}
	zap.L().Info("ingest started",
		zap.String("run_id", runID),
		zap.String("source", source),
		zap.Int("records", len(records)))

	rep := &model.IngestReport{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.workers)
	for i := range records {
		rec := records[i]
		g.Go(func() error {
			if in.limiter != nil {
				if err := in.limiter.Wait(gctx); err != nil {
					return err
				}
			}

			// Records that resolve to the same identity must not race a
			// duplicate insert past each other.
			unlock := in.locks.lock(identityKey(&rec))
			res, err := in.ResolveAndMerge(gctx, &rec, source)
			unlock()

			mu.Lock()
			defer mu.Unlock()
			rep.Processed++
			switch {
			case errors.Is(err, model.ErrMissingName):
				rep.Skipped++
				zap.L().Warn("record skipped: missing legal name", zap.String("source", source))
			case err != nil:
				rep.Failed++
				zap.L().Warn("record failed",
					zap.String("name", rec.LegalName),
					zap.Error(err))
			case res.Status == model.MergeStatusNew:
				rep.Created++
			case res.Status == model.MergeStatusUpdated:
				rep.Updated++
			default:
				rep.Unchanged++
			}
			return nil
		})
	}

	batchErr := g.Wait()
	status, errMsg := IngestStatusComplete, ""
	if batchErr != nil {
		status, errMsg = IngestStatusFailed, batchErr.Error()
	}
	if err := in.store.CompleteIngest(ctx, runID, status, rep, errMsg); err != nil {
		zap.L().Warn("ingest log not closed", zap.String("run_id", runID), zap.Error(err))
	}

	zap.L().Info("ingest finished",
		zap.String("run_id", runID),
		zap.String("status", status),
		zap.Int("processed", rep.Processed),
		zap.Int("created", rep.Created),
		zap.Int("updated", rep.Updated),
		zap.Int("unchanged", rep.Unchanged),
		zap.Int("skipped", rep.Skipped),
		zap.Int("failed", rep.Failed))
	return rep, batchErr
}

// fillLocation sets coordinates and distance on a new record from its zip
// code. Locator errors degrade to a warning; the record is stored anyway.
func (in *Ingestor) fillLocation(ctx context.Context, b *model.Business) {
	if in.locator == nil || b.ZipCode == "" {
		return
	}
	if b.Latitude != nil && b.Longitude != nil && b.DistanceMiles != nil {
		return
	}
	loc, ok, err := in.locator.Locate(ctx, b.ZipCode)
	if err != nil {
		zap.L().Warn("location lookup failed", zap.String("zip", b.ZipCode), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	if b.Latitude == nil {
		b.Latitude = &loc.Latitude
	}
	if b.Longitude == nil {
		b.Longitude = &loc.Longitude
	}
	if b.DistanceMiles == nil {
		b.DistanceMiles = &loc.DistanceMiles
	}
}

// identityKey is the per-record serialization key: UEI when present,
// otherwise normalized name plus 5-digit zip.
func identityKey(b *model.Business) string {
	if uei := strings.TrimSpace(b.UEI); uei != "" {
		return "uei:" + uei
	}
	zip := strings.TrimSpace(b.ZipCode)
	if len(zip) > zipPrefixLen {
		zip = zip[:zipPrefixLen]
	}
	return "name:" + match.NormalizeName(b.LegalName) + "|" + zip
}

// keyedLocks hands out per-key mutexes, dropping entries once unused.
type keyedLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedLocks) lock(key string) (unlock func()) {
	k.mu.Lock()
	e := k.entries[key]
	if e == nil {
		e = &lockEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
