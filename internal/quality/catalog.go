// Package quality computes data-quality signals for resolved business
// records: a tier-weighted confidence score, an independent rule-based
// letter grade, and a flat completeness percentage.
package quality

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/active-heroes/directory-cli/internal/model"
)

//go:embed tiers.yaml
var tiersYAML []byte

// Tier is a named trust level grouping fields by provenance trustworthiness.
type Tier struct {
	Key    string   `yaml:"key"`
	Label  string   `yaml:"label"`
	Weight float64  `yaml:"weight"`
	Fields []string `yaml:"fields"`
}

// Catalog is the immutable tier configuration. Build it once at process
// start and share it; it is never mutated after construction.
type Catalog struct {
	tiers       []Tier
	fieldTier   map[string]string
	totalWeight float64
}

// NewCatalog parses and validates a tier catalog definition.
func NewCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Tiers []Tier `yaml:"tiers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "quality: parse tier catalog")
	}
	if len(doc.Tiers) == 0 {
		return nil, eris.New("quality: tier catalog is empty")
	}

	c := &Catalog{
		tiers:     doc.Tiers,
		fieldTier: make(map[string]string),
	}
	for _, t := range doc.Tiers {
		if t.Key == "" {
			return nil, eris.New("quality: tier with empty key")
		}
		if t.Weight <= 0 {
			return nil, eris.New(fmt.Sprintf("quality: tier %s has non-positive weight", t.Key))
		}
		if len(t.Fields) == 0 {
			return nil, eris.New(fmt.Sprintf("quality: tier %s has no fields", t.Key))
		}
		for _, f := range t.Fields {
			if !model.KnownField(f) {
				return nil, eris.New(fmt.Sprintf("quality: tier %s lists unknown field %s", t.Key, f))
			}
			if prev, dup := c.fieldTier[f]; dup {
				return nil, eris.New(fmt.Sprintf("quality: field %s in both %s and %s", f, prev, t.Key))
			}
			c.fieldTier[f] = t.Key
		}
		c.totalWeight += t.Weight
	}

	return c, nil
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the catalog built from the embedded tiers.yaml.
// The embedded definition is validated at first use; a broken embed is a
// build defect and panics.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := NewCatalog(tiersYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Tiers returns the tiers in catalog order.
func (c *Catalog) Tiers() []Tier {
	return c.tiers
}

// TierOf returns the tier key owning a field.
func (c *Catalog) TierOf(field string) (string, bool) {
	k, ok := c.fieldTier[field]
	return k, ok
}

// TotalWeight is the sum of all tier weights.
func (c *Catalog) TotalWeight() float64 {
	return c.totalWeight
}
