package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type customerSeed struct {
	Name  string
	Email string
}

// Apply inserts demo customers for manual testing. It is idempotent via ON CONFLICT
// on the case-insensitive email index and returns how many rows it inserted.
func Apply(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	customers := []customerSeed{
		{Name: "Ana Souza", Email: "ana.souza@example.com"},
		{Name: "Bruno Lima", Email: "bruno.lima@example.com"},
		{Name: "Carla Mendes", Email: "carla.mendes@example.com"},
	}

	inserted := 0
	for _, c := range customers {
		ok, err := insertCustomer(ctx, pool, c)
		if err != nil {
			return inserted, fmt.Errorf("insert customer %s: %w", c.Email, err)
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

func insertCustomer(ctx context.Context, pool *pgxpool.Pool, c customerSeed) (bool, error) {
	const q = `
INSERT INTO customers (name, email)
VALUES ($1, lower($2))
ON CONFLICT ((lower(email))) DO NOTHING
`
	tag, err := pool.Exec(ctx, q, c.Name, c.Email)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
