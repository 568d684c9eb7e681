package domain

import "time"

// FavoriteProduct links a customer to a cached product.
type FavoriteProduct struct {
	ID         int64
	CustomerID int64
	Product    Product
	CreatedAt  time.Time
}
