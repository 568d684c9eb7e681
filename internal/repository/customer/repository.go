package customer

import (
	"context"

	"favorites-catalog/internal/domain"
)

// Repository persists and fetches customers.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	Update(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	Delete(ctx context.Context, id int64) error
	// List returns one page ordered by id together with the total row count.
	List(ctx context.Context, limit, offset int) ([]domain.Customer, int, error)
}
