// Package cvs is the local object store for CV drafts, keyed by CV id.
package cvs

import (
	"context"

	"github.com/dmitrijs2005/cvgenius/internal/client/models"
)

// Repository describes the offline CV store.
type Repository interface {
	// Upsert inserts cv or replaces the stored record with the same id.
	Upsert(ctx context.Context, cv *models.CV) error

	// GetByID returns the CV or nil, nil when it does not exist.
	GetByID(ctx context.Context, id string) (*models.CV, error)

	// GetAll returns every stored CV, most recently modified first.
	GetAll(ctx context.Context) ([]*models.CV, error)

	// DeleteByID removes the CV. Deleting a missing id is not an error.
	DeleteByID(ctx context.Context, id string) error

	// ListDrafts returns CVs flagged as drafts, most recently modified first.
	ListDrafts(ctx context.Context) ([]*models.CV, error)
}
