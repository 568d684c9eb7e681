package favorite

import (
	"context"

	"favorites-catalog/internal/domain"
)

// Repository stores the products a customer marked as favorite.
type Repository interface {
	Create(ctx context.Context, customerID, productID int64) (*domain.FavoriteProduct, error)
	FindByCustomerAndExternalProduct(ctx context.Context, customerID, externalProductID int64) (*domain.FavoriteProduct, error)
	// Delete removes the favorite only when it belongs to customerID.
	Delete(ctx context.Context, customerID, id int64) error
	ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.FavoriteProduct, int, error)
}
