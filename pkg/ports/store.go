package ports

import (
	"context"

	"github.com/aretw0/intake/pkg/domain"
)

// ResultStore persists validation records.
type ResultStore interface {
	// Save appends a record. Records are never updated in place.
	Save(ctx context.Context, rec domain.Record) error

	// List returns records matching the filter, newest first.
	// An empty result is not an error.
	List(ctx context.Context, filter domain.Filter) ([]domain.Record, error)

	// Close releases the underlying connection, if any.
	Close() error
}
