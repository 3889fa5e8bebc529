package model

import "github.com/rotisserie/eris"

// MergeStatus describes the outcome of resolving and merging one incoming record.
type MergeStatus string

const (
	MergeStatusNew       MergeStatus = "new"
	MergeStatusUpdated   MergeStatus = "updated"
	MergeStatusUnchanged MergeStatus = "unchanged"
)

// MergeResult is returned by the ingest pipeline for each incoming record.
type MergeResult struct {
	Status        MergeStatus `json:"status"`
	BusinessID    int64       `json:"business_id"`
	FieldsChanged []string    `json:"fields_changed,omitempty"`
}

// ErrMissingName rejects incoming records with no legal business name.
// Such records cannot be resolved and are skipped, not fatal.
var ErrMissingName = eris.New("model: legal business name is required")

// IngestReport aggregates per-record outcomes of a batch ingest.
type IngestReport struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}
