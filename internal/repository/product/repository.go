package product

import (
	"context"

	"favorites-catalog/internal/domain"
)

// Repository is the local cache of external products.
type Repository interface {
	FindByExternalID(ctx context.Context, externalID int64) (*domain.Product, error)
	// Save inserts or updates the record keyed by ExternalProductID and returns
	// the stored row.
	Save(ctx context.Context, p domain.Product) (*domain.Product, error)
}
