package match

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"both empty", "", "", 1},
		{"one empty", "acme", "", 0},
		{"identical", "acme contracting", "acme contracting", 1},
		{"disjoint", "abcd", "efgh", 0},
		// cont + t match: 2*5/14
		{"partial overlap", "context", "contact", 10.0 / 14.0},
		// 17 shared + 3 differing runes each side: 2*17/40 = 0.85 exactly
		{
			"threshold boundary",
			strings.Repeat("a", 17) + "xyz",
			strings.Repeat("a", 17) + "qrs",
			0.85,
		},
		{
			"just under threshold",
			strings.Repeat("a", 16) + "wxyz",
			strings.Repeat("a", 16) + "pqrs",
			0.80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-12)
		})
	}
}

func TestRatioSymmetricOnEqualLengths(t *testing.T) {
	t.Parallel()

	a, b := "acme contracting", "acme plumbing llc"
	assert.InDelta(t, Ratio(a, b), Ratio(b, a), 1e-12)
}

func TestRatioNormalizedNamesMatchExactly(t *testing.T) {
	t.Parallel()

	// Two raw names that normalize to the same string must score 1.0.
	a := NormalizeName("ACME CONTRACTING LLC")
	b := NormalizeName("Acme Contracting")
	assert.Equal(t, a, b)
	assert.Equal(t, 1.0, Ratio(a, b))
}
