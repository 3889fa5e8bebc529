// Package directory implements the business directory: identity resolution,
// non-destructive merge, persistence, and the ingest pipeline that ties them
// together.
package directory

import (
	"context"
	"time"

	"github.com/active-heroes/directory-cli/internal/model"
)

// SearchFilter narrows and orders a directory search. Zero values mean
// "no constraint"; Page is 1-based.
type SearchFilter struct {
	Query        string
	State        string
	BusinessType string
	MaxDistance  *float64
	SortBy       string
	Page         int
	PerPage      int
}

// SearchResult is one page of matches plus paging metadata.
type SearchResult struct {
	Businesses []model.Business `json:"businesses"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int              `json:"total_pages"`
}

// Stats summarizes the directory's contents.
type Stats struct {
	Total      int            `json:"total"`
	ByType     map[string]int `json:"by_type"`
	ByState    map[string]int `json:"by_state"`
	BySource   map[string]int `json:"by_source"`
	WithUEI    int            `json:"with_uei"`
	HasPhone   int            `json:"has_phone"`
	HasEmail   int            `json:"has_email"`
	HasWebsite int            `json:"has_website"`
}

// IngestEntry is one row of the ingest log.
type IngestEntry struct {
	ID          string              `json:"id"`
	Source      string              `json:"source"`
	Status      string              `json:"status"`
	Report      *model.IngestReport `json:"report,omitempty"`
	Error       string              `json:"error,omitempty"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// Ingest log statuses.
const (
	IngestStatusRunning  = "running"
	IngestStatusComplete = "complete"
	IngestStatusFailed   = "failed"
)

// Store is the persistence contract for the directory. SQLite and Postgres
// both implement it; the resolver and ingest pipeline depend only on this.
type Store interface {
	// Migrate creates or updates the schema. Idempotent.
	Migrate(ctx context.Context) error
	Close() error

	// Insert persists a new business and sets its ID.
	Insert(ctx context.Context, b *model.Business) error
	// Update applies a field-name -> value map to one record. Keys must be
	// registered field names (date_updated included).
	Update(ctx context.Context, id int64, fields map[string]any) error
	Get(ctx context.Context, id int64) (*model.Business, error)
	Delete(ctx context.Context, id int64) error

	// FindByUEI returns the record with the given UEI, or nil when absent.
	FindByUEI(ctx context.Context, uei string) (*model.Business, error)
	// FindByZipPrefix returns all records whose zip code starts with prefix.
	FindByZipPrefix(ctx context.Context, prefix string) ([]model.Business, error)

	Search(ctx context.Context, f SearchFilter) (*SearchResult, error)
	ListAll(ctx context.Context) ([]model.Business, error)
	Stats(ctx context.Context) (*Stats, error)

	// StartIngest opens an ingest-log row and returns its ID.
	StartIngest(ctx context.Context, source string) (string, error)
	// CompleteIngest closes an ingest-log row with its final status and counts.
	CompleteIngest(ctx context.Context, id, status string, rep *model.IngestReport, errMsg string) error
	ListIngests(ctx context.Context, limit int) ([]IngestEntry, error)
}
