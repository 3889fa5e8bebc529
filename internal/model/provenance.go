package model

import "strings"

// AppendSource appends a contributing source name to a comma-joined source
// list, returning the new list and whether it changed.
//
// Dedup is a substring-containment check, not a token match, so a source
// name contained inside another (e.g. "SAM" in "USASpending SAM") is
// treated as already present. The intended source names are short and
// non-overlapping in practice.
func AppendSource(existing, incoming string) (string, bool) {
	incoming = strings.TrimSpace(incoming)
	if incoming == "" {
		return existing, false
	}
	if existing == "" {
		return incoming, true
	}
	if strings.Contains(existing, incoming) {
		return existing, false
	}
	return existing + ", " + incoming, true
}

// AppendNote appends a free-text annotation to the notes field with a "; "
// separator. Notes are never overwritten; the same containment check as
// AppendSource keeps repeated annotations out.
func AppendNote(existing, note string) (string, bool) {
	note = strings.TrimSpace(note)
	if note == "" {
		return existing, false
	}
	if existing == "" {
		return note, true
	}
	if strings.Contains(existing, note) {
		return existing, false
	}
	return existing + "; " + note, true
}
