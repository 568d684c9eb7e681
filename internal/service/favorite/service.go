// Package favorite manages the products customers mark as favorite. Products
// are resolved through the product cache so a favorite always points at a
// locally stored copy.
package favorite

import (
	"context"
	"errors"

	"favorites-catalog/internal/domain"
	"favorites-catalog/internal/pagination"
	favrepo "favorites-catalog/internal/repository/favorite"
)

type CustomerGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
}

type ProductGetter interface {
	GetByID(ctx context.Context, externalID int64) (*domain.Product, error)
}

type Service struct {
	repo            favrepo.Repository
	customers       CustomerGetter
	products        ProductGetter
	defaultPageSize int
}

func New(repo favrepo.Repository, customers CustomerGetter, products ProductGetter, defaultPageSize int) *Service {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	return &Service{repo: repo, customers: customers, products: products, defaultPageSize: defaultPageSize}
}

// Create adds the product with external id productID to the customer's favorites.
func (s *Service) Create(ctx context.Context, customerID, productID int64) (*domain.FavoriteProduct, error) {
	if customerID <= 0 {
		return nil, domain.NewValidationError("customerId is required")
	}
	if productID <= 0 {
		return nil, domain.NewValidationError("productId is required")
	}

	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, err
	}

	_, err := s.repo.FindByCustomerAndExternalProduct(ctx, customerID, productID)
	switch {
	case err == nil:
		return nil, errDuplicate
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	fav, err := s.repo.Create(ctx, customerID, product.ID)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return nil, errDuplicate
	case errors.Is(err, domain.ErrNotFound):
		return nil, domain.NewNotFoundError("customer not found")
	case err != nil:
		return nil, err
	}
	return fav, nil
}

var errDuplicate = domain.NewConflictError("product already added as favorite for this customer")

// DeleteByID removes a favorite owned by customerID.
func (s *Service) DeleteByID(ctx context.Context, customerID, favoriteID int64) error {
	if customerID <= 0 {
		return domain.NewValidationError("customerId is required")
	}
	if favoriteID <= 0 {
		return domain.NewValidationError("favoriteId is required")
	}
	if err := s.repo.Delete(ctx, customerID, favoriteID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewNotFoundError("favorite product not found")
		}
		return err
	}
	return nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID int64, page, size int) (domain.Page[domain.FavoriteProduct], error) {
	var empty domain.Page[domain.FavoriteProduct]
	if customerID <= 0 {
		return empty, domain.NewValidationError("customerId is required")
	}
	p, err := pagination.Parse(page, size, s.defaultPageSize)
	if err != nil {
		return empty, err
	}
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return empty, err
	}
	favs, total, err := s.repo.ListByCustomer(ctx, customerID, p.Limit(), p.Offset())
	if err != nil {
		return empty, err
	}
	return pagination.NewPage(favs, p, total), nil
}
