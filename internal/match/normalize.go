// Package match provides business-name normalization and string similarity
// for fuzzy identity resolution.
package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// legalSuffixRe matches common legal entity suffixes as whole words.
// Punctuation is stripped before this runs, so "L.L.C." and "L.P." arrive
// here as "llc" and "lp".
var legalSuffixRe = regexp.MustCompile(
	`\b(?:llc|incorporated|inc|corporation|corp|company|co|limited|ltd|lp)\b`)

var (
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9\s]`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
)

// foldMarks decomposes accented runes and drops the combining marks, so
// "Café" compares equal to "Cafe".
var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName canonicalizes a business name for comparison:
//  1. Trim and lowercase
//  2. Fold diacritics
//  3. Strip all non-alphanumeric, non-whitespace characters
//  4. Remove legal entity suffixes (LLC, Inc, Corp, Co, Ltd, ...)
//  5. Collapse whitespace runs to a single space
//
// Empty input yields an empty string. Idempotent.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}

	if folded, _, err := transform.String(foldMarks, name); err == nil {
		name = folded
	}

	name = nonAlnumRe.ReplaceAllString(name, "")
	name = legalSuffixRe.ReplaceAllString(name, " ")
	name = multiSpaceRe.ReplaceAllString(name, " ")

	return strings.TrimSpace(name)
}
