// internal/domain/trend/store.go

package trend

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store lookups for names that have no record.
var ErrNotFound = errors.New("trend record not found")

// Store defines persistence for trend records
type Store interface {
	// FindByName returns the record for a trend name, or ErrNotFound
	FindByName(ctx context.Context, name string) (*Record, error)

	// Upsert inserts the record or replaces the one with the same name
	Upsert(ctx context.Context, record Record) error

	// DeleteAbsent removes every record whose name is not in names and
	// returns how many records were removed
	DeleteAbsent(ctx context.Context, names []string) (int64, error)

	// List returns all records ordered by rank
	List(ctx context.Context) ([]Record, error)
}
