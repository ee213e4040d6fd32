// Package cvs stores CV documents uploaded by offline clients through the
// sync endpoint. Conflicts are resolved by last write wins.
package cvs

import "context"

// Repository persists CV records keyed by id.
type Repository interface {
	Upsert(ctx context.Context, rec CVRecord) error
	// Get returns common.ErrorNotFound for an unknown id.
	Get(ctx context.Context, id string) (*CVRecord, error)
}
