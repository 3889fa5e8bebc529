// Package geo defines the geocoding collaborator used by the ingest pipeline.
package geo

import "context"

// Location is a resolved zip-code centroid with its distance from the
// directory's configured center point.
type Location struct {
	Latitude      float64
	Longitude     float64
	DistanceMiles float64
}

// Locator resolves a zip code to coordinates and distance from center.
// The second return is false when the zip is unknown to the locator.
// Implementations are pluggable (offline centroid table, HTTP geocoder);
// a nil Locator on the ingest pipeline disables location fill entirely.
type Locator interface {
	Locate(ctx context.Context, zip string) (Location, bool, error)
}
