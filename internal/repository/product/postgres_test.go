package product

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"favorites-catalog/internal/domain"
	"favorites-catalog/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func TestPostgres_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	if _, err := repo.FindByExternalID(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	updated := time.Now().UTC().Truncate(time.Microsecond)
	saved, err := repo.Save(ctx, domain.Product{
		ExternalProductID: 1,
		Title:             "Backpack",
		Description:       "Fits laptops",
		Image:             "https://img/1.jpg",
		Price:             decimal.RequireFromString("109.95"),
		Rating:            decimal.NewNullDecimal(decimal.RequireFromString("3.9")),
		LastUpdateDate:    updated,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	got, err := repo.FindByExternalID(ctx, 1)
	if err != nil {
		t.Fatalf("FindByExternalID: %v", err)
	}
	if got.ID != saved.ID || got.Title != "Backpack" || !got.Price.Equal(decimal.RequireFromString("109.95")) {
		t.Fatalf("unexpected product %+v", got)
	}
	if !got.Rating.Valid || !got.Rating.Decimal.Equal(decimal.RequireFromString("3.9")) {
		t.Fatalf("unexpected rating %+v", got.Rating)
	}
	if !got.LastUpdateDate.Equal(updated) {
		t.Fatalf("expected last_update_date %v, got %v", updated, got.LastUpdateDate)
	}
}

func TestPostgres_SaveUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	first, err := repo.Save(ctx, domain.Product{ExternalProductID: 2, Title: "Old", Price: decimal.NewFromInt(100), LastUpdateDate: time.Now()})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	second, err := repo.Save(ctx, domain.Product{ID: first.ID, ExternalProductID: 2, Title: "New", Price: decimal.NewFromInt(150), LastUpdateDate: time.Now()})
	if err != nil {
		t.Fatalf("Save update: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same id after update")
	}
	got, err := repo.FindByExternalID(ctx, 2)
	if err != nil {
		t.Fatalf("FindByExternalID: %v", err)
	}
	if got.Title != "New" || !got.Price.Equal(decimal.NewFromInt(150)) || got.Rating.Valid {
		t.Fatalf("unexpected updated product %+v", got)
	}

	if _, err := repo.Save(ctx, domain.Product{ID: first.ID + 1000, ExternalProductID: 2, LastUpdateDate: time.Now()}); err == nil {
		t.Fatalf("expected id mismatch error")
	}
	got, err = repo.FindByExternalID(ctx, 2)
	if err != nil {
		t.Fatalf("FindByExternalID after mismatch: %v", err)
	}
	if got.Title != "New" {
		t.Fatalf("id mismatch must not overwrite the stored row, got %+v", got)
	}
}

func TestPostgres_SaveReturnsStoredRow(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	saved, err := repo.Save(ctx, domain.Product{
		ExternalProductID: 3,
		Title:             "Jacket",
		Price:             decimal.RequireFromString("109.955"),
		Rating:            decimal.NewNullDecimal(decimal.RequireFromString("4.125")),
		LastUpdateDate:    time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC),
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !saved.Price.Equal(decimal.RequireFromString("109.96")) {
		t.Fatalf("expected price rounded by the column, got %s", saved.Price)
	}

	got, err := repo.FindByExternalID(ctx, 3)
	if err != nil {
		t.Fatalf("FindByExternalID: %v", err)
	}
	if !got.Price.Equal(saved.Price) || !got.Rating.Decimal.Equal(saved.Rating.Decimal) {
		t.Fatalf("saved %s/%s differs from stored %s/%s", saved.Price, saved.Rating.Decimal, got.Price, got.Rating.Decimal)
	}
	if !got.LastUpdateDate.Equal(saved.LastUpdateDate) {
		t.Fatalf("saved time %v differs from stored %v", saved.LastUpdateDate, got.LastUpdateDate)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE customer_favorite_products, products, customers RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
