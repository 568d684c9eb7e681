package seed

import (
	"context"
	"os"
	"testing"

	"favorites-catalog/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestApply_Idempotent(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE customer_favorite_products, products, customers RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	first, err := Apply(ctx, pool)
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if first != 3 {
		t.Fatalf("expected 3 inserted customers, got %d", first)
	}

	second, err := Apply(ctx, pool)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if second != 0 {
		t.Fatalf("expected no inserts on rerun, got %d", second)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&count); err != nil {
		t.Fatalf("count customers: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 customers, got %d", count)
	}
}
