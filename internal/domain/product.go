package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the locally persisted copy of an item served by the external product API.
// ExternalProductID is the lookup key; LastUpdateDate is written together with every
// other non-identity field.
type Product struct {
	ID                int64               `json:"-"`
	ExternalProductID int64               `json:"id"`
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	Image             string              `json:"image"`
	Price             decimal.Decimal     `json:"price"`
	Rating            decimal.NullDecimal `json:"rating"`
	LastUpdateDate    time.Time           `json:"-"`
}

// FreshAt reports whether the record is still inside the ttl window at now.
func (p Product) FreshAt(now time.Time, ttl time.Duration) bool {
	if p.LastUpdateDate.IsZero() {
		return false
	}
	return now.Sub(p.LastUpdateDate) < ttl
}
