// Package store persists extracted feature vectors. The FeatureStore port
// keeps callers independent of the SQLite adapter.
package store

import (
	"context"

	"github.com/MattaKruger/timbre/features"
)

// DuplicatePolicy controls how an ingest treats a filename that is already
// stored. Filenames are the natural dedup key but never a hard constraint:
// force deliberately inserts a second vector alongside the old one.
type DuplicatePolicy string

const (
	// DuplicateSkip drops vectors whose filename already exists, in the
	// table or earlier in the same batch. The default.
	DuplicateSkip DuplicatePolicy = "skip"

	// DuplicateForce inserts regardless of existing filenames
	DuplicateForce DuplicatePolicy = "force"
)

// IngestSummary reports what a batch insert actually did, making the skip
// policy observable to callers.
type IngestSummary struct {
	Inserted int
	Skipped  int
}

// FeatureStore is the persistence port for feature vectors. Vectors are
// immutable once stored: there is no update operation, only insert and read.
type FeatureStore interface {
	// Insert persists one vector unconditionally, assigning ID and
	// CreatedAt when unset.
	Insert(ctx context.Context, fv *features.AudioFeatures) error

	// InsertBatch stages every accepted vector in one transaction. The
	// commit is all-or-nothing; on error nothing persists.
	InsertBatch(ctx context.Context, fvs []*features.AudioFeatures, policy DuplicatePolicy) (*IngestSummary, error)

	// FindByID returns the vector with the given id, or an error wrapping
	// features.ErrNotFound.
	FindByID(ctx context.Context, id string) (*features.AudioFeatures, error)

	// FindByFilename returns every vector stored under the filename, newest
	// first. An unknown filename yields an empty slice, not an error.
	FindByFilename(ctx context.Context, filename string) ([]*features.AudioFeatures, error)

	// List returns stored vectors newest first. A non-positive limit means
	// no limit.
	List(ctx context.Context, limit, offset int) ([]*features.AudioFeatures, error)

	// Count returns the number of stored vectors
	Count(ctx context.Context) (int, error)

	Close() error
}
