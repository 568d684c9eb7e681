package favorite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"favorites-catalog/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

const favoriteSelect = `
SELECT f.id, f.customer_id, f.created_at,
       p.id, p.external_product_id, p.title, p.description, p.image, p.price::text, p.rating::text, p.last_update_date
FROM customer_favorite_products f
JOIN products p ON p.id = f.product_id
`

func (r *postgresRepo) Create(ctx context.Context, customerID, productID int64) (*domain.FavoriteProduct, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO customer_favorite_products (customer_id, product_id)
VALUES ($1, $2)
RETURNING id
`, customerID, productID).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, domain.ErrAlreadyExists
			case "23503":
				return nil, domain.ErrNotFound
			}
		}
		r.logger.Printf("favorite repo: create customer_id=%d product_id=%d error=%v", customerID, productID, err)
		return nil, err
	}

	fav, err := scanFavorite(r.pool.QueryRow(ctx, favoriteSelect+`WHERE f.id = $1`, id))
	if err != nil {
		r.logger.Printf("favorite repo: reload id=%d error=%v", id, err)
		return nil, err
	}
	r.logger.Printf("favorite repo: created id=%d customer_id=%d product_id=%d", id, customerID, productID)
	return fav, nil
}

func (r *postgresRepo) FindByCustomerAndExternalProduct(ctx context.Context, customerID, externalProductID int64) (*domain.FavoriteProduct, error) {
	fav, err := scanFavorite(r.pool.QueryRow(ctx,
		favoriteSelect+`WHERE f.customer_id = $1 AND p.external_product_id = $2`,
		customerID, externalProductID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("favorite repo: find customer_id=%d external_id=%d error=%v", customerID, externalProductID, err)
		return nil, err
	}
	return fav, nil
}

func (r *postgresRepo) Delete(ctx context.Context, customerID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customer_favorite_products WHERE id = $1 AND customer_id = $2`, id, customerID)
	if err != nil {
		r.logger.Printf("favorite repo: delete id=%d customer_id=%d error=%v", id, customerID, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("favorite repo: deleted id=%d customer_id=%d", id, customerID)
	return nil
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.FavoriteProduct, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM customer_favorite_products WHERE customer_id = $1`, customerID).Scan(&total); err != nil {
		r.logger.Printf("favorite repo: count customer_id=%d error=%v", customerID, err)
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, favoriteSelect+`
WHERE f.customer_id = $1
ORDER BY f.created_at DESC, f.id DESC
LIMIT $2 OFFSET $3
`, customerID, limit, offset)
	if err != nil {
		r.logger.Printf("favorite repo: list customer_id=%d error=%v", customerID, err)
		return nil, 0, err
	}
	defer rows.Close()

	result := []domain.FavoriteProduct{}
	for rows.Next() {
		fav, err := scanFavorite(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *fav)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("favorite repo: list rows customer_id=%d error=%v", customerID, err)
		return nil, 0, err
	}
	r.logger.Printf("favorite repo: list customer_id=%d count=%d total=%d", customerID, len(result), total)
	return result, total, nil
}

func scanFavorite(row pgx.Row) (*domain.FavoriteProduct, error) {
	var (
		f      domain.FavoriteProduct
		price  string
		rating *string
	)
	err := row.Scan(
		&f.ID, &f.CustomerID, &f.CreatedAt,
		&f.Product.ID, &f.Product.ExternalProductID, &f.Product.Title, &f.Product.Description, &f.Product.Image,
		&price, &rating, &f.Product.LastUpdateDate,
	)
	if err != nil {
		return nil, err
	}
	if f.Product.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("decode price: %w", err)
	}
	if rating != nil {
		d, err := decimal.NewFromString(*rating)
		if err != nil {
			return nil, fmt.Errorf("decode rating: %w", err)
		}
		f.Product.Rating = decimal.NewNullDecimal(d)
	}
	return &f, nil
}
