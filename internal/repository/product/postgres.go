package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"favorites-catalog/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) FindByExternalID(ctx context.Context, externalID int64) (*domain.Product, error) {
	const q = `
SELECT id, external_product_id, title, description, image, price::text, rating::text, last_update_date
FROM products
WHERE external_product_id = $1
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: find external_id=%d not found", externalID)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: find external_id=%d error=%v", externalID, err)
		return nil, err
	}
	return p, nil
}

// Save upserts p keyed on its external id and returns the stored row, so
// values carry the column precision. A non-zero p.ID must match the stored id;
// on mismatch nothing is written.
func (r *postgresRepo) Save(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (external_product_id, title, description, image, price, rating, last_update_date)
VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7)
ON CONFLICT (external_product_id) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    image = EXCLUDED.image,
    price = EXCLUDED.price,
    rating = EXCLUDED.rating,
    last_update_date = EXCLUDED.last_update_date
WHERE $8::bigint = 0 OR products.id = $8::bigint
RETURNING id, external_product_id, title, description, image, price::text, rating::text, last_update_date
`
	var rating *string
	if p.Rating.Valid {
		s := p.Rating.Decimal.String()
		rating = &s
	}

	saved, err := scanProduct(r.pool.QueryRow(ctx, q,
		p.ExternalProductID,
		p.Title,
		p.Description,
		p.Image,
		p.Price.String(),
		rating,
		p.LastUpdateDate,
		p.ID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		r.logger.Printf("product repo: save external_id=%d id mismatch given_id=%d", p.ExternalProductID, p.ID)
		return nil, fmt.Errorf("product repo: id mismatch for external_id=%d given_id=%d", p.ExternalProductID, p.ID)
	}
	if err != nil {
		r.logger.Printf("product repo: save external_id=%d error=%v", p.ExternalProductID, err)
		return nil, err
	}
	if p.ID != 0 && saved.ID != p.ID {
		return nil, fmt.Errorf("product repo: id mismatch for external_id=%d existing_id=%d given_id=%d", p.ExternalProductID, saved.ID, p.ID)
	}
	r.logger.Printf("product repo: saved external_id=%d id=%d", saved.ExternalProductID, saved.ID)
	return saved, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p      domain.Product
		price  string
		rating *string
	)
	if err := row.Scan(&p.ID, &p.ExternalProductID, &p.Title, &p.Description, &p.Image, &price, &rating, &p.LastUpdateDate); err != nil {
		return nil, err
	}
	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("decode price: %w", err)
	}
	if rating != nil {
		d, err := decimal.NewFromString(*rating)
		if err != nil {
			return nil, fmt.Errorf("decode rating: %w", err)
		}
		p.Rating = decimal.NewNullDecimal(d)
	}
	return &p, nil
}
