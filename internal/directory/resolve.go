package directory

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/active-heroes/directory-cli/internal/match"
	"github.com/active-heroes/directory-cli/internal/model"
)

// DefaultSimilarityThreshold is the minimum name-similarity ratio for a
// fuzzy match to count as the same business.
const DefaultSimilarityThreshold = 0.85

// zipPrefixLen narrows fuzzy candidates to the 5-digit zip.
const zipPrefixLen = 5

// Resolver decides whether an incoming record is an existing business.
// Passes run in order: exact UEI match, then fuzzy name match among
// candidates sharing the incoming record's 5-digit zip.
type Resolver struct {
	store     Store
	threshold float64
}

// NewResolver creates a Resolver. A non-positive threshold falls back to
// DefaultSimilarityThreshold.
func NewResolver(store Store, threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Resolver{store: store, threshold: threshold}
}

// Resolve returns the existing record the incoming one refers to, or nil
// when no pass produces a match.
func (r *Resolver) Resolve(ctx context.Context, incoming *model.Business) (*model.Business, error) {
	if uei := strings.TrimSpace(incoming.UEI); uei != "" {
		existing, err := r.store.FindByUEI(ctx, uei)
		if err != nil {
			return nil, eris.Wrap(err, "resolve: find by uei")
		}
		if existing != nil {
			zap.L().Debug("resolved by uei",
				zap.String("uei", uei),
				zap.Int64("business_id", existing.ID))
			return existing, nil
		}
	}

	name := match.NormalizeName(incoming.LegalName)
	zip := strings.TrimSpace(incoming.ZipCode)
	if name == "" || zip == "" {
		return nil, nil
	}
	if len(zip) > zipPrefixLen {
		zip = zip[:zipPrefixLen]
	}

	candidates, err := r.store.FindByZipPrefix(ctx, zip)
	if err != nil {
		return nil, eris.Wrap(err, "resolve: find by zip prefix")
	}

	// Strictly-greater comparison: on a ratio tie the earliest candidate wins.
	var best *model.Business
	bestRatio := 0.0
	for i := range candidates {
		cand := match.NormalizeName(candidates[i].LegalName)
		if cand == "" {
			continue
		}
		if ratio := match.Ratio(name, cand); ratio > bestRatio {
			bestRatio = ratio
			best = &candidates[i]
		}
	}
	if best == nil || bestRatio < r.threshold {
		return nil, nil
	}

	zap.L().Debug("resolved by fuzzy name",
		zap.String("name", incoming.LegalName),
		zap.String("zip", zip),
		zap.Int64("business_id", best.ID),
		zap.Float64("ratio", bestRatio))
	return best, nil
}
