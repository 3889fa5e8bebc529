package directory

import (
	"sort"

	"github.com/active-heroes/directory-cli/internal/model"
)

// Merge back-fills empty fields on existing from incoming and appends
// provenance. Existing values are never overwritten. It mutates existing
// in place and returns the column -> value map to persist; an empty map
// means the incoming record added nothing.
func Merge(existing, incoming *model.Business) map[string]any {
	changes := make(map[string]any)

	for _, f := range model.MergeableFields {
		if existing.Has(f) || !incoming.Has(f) {
			continue
		}
		model.CopyField(existing, incoming, f)
		changes[f] = existing.Value(f)
	}

	if merged, changed := model.AppendSource(existing.Source, incoming.Source); changed {
		existing.Source = merged
		changes[model.FieldSource] = merged
	}
	if merged, changed := model.AppendNote(existing.Notes, incoming.Notes); changed {
		existing.Notes = merged
		changes[model.FieldNotes] = merged
	}

	return changes
}

// changedFields returns the sorted field names of a merge delta.
func changedFields(changes map[string]any) []string {
	if len(changes) == 0 {
		return nil
	}
	fields := make([]string, 0, len(changes))
	for f := range changes {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
