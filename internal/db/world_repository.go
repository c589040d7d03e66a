package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/waypoint/internal/world"
)

// PostgresWorldRepository persists world identities.
type PostgresWorldRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresWorldRepository creates a new world repository
func NewPostgresWorldRepository(pool *pgxpool.Pool) *PostgresWorldRepository {
	return &PostgresWorldRepository{pool: pool}
}

// LoadAll loads all known worlds
func (r *PostgresWorldRepository) LoadAll(ctx context.Context) ([]world.Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, uid FROM worlds ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("loading all worlds: %w", err)
	}
	defer rows.Close()

	entries := make([]world.Entry, 0, 4)
	for rows.Next() {
		var (
			name string
			uid  uuid.UUID
		)
		if err := rows.Scan(&name, &uid); err != nil {
			return nil, fmt.Errorf("scanning world row: %w", err)
		}
		entries = append(entries, world.Entry{Name: name, UID: uid.String()})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating world rows: %w", err)
	}
	return entries, nil
}

// Save records a world identity. Existing names are left untouched.
func (r *PostgresWorldRepository) Save(ctx context.Context, ref world.Ref) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO worlds (name, uid) VALUES ($1, $2)
		 ON CONFLICT (name) DO NOTHING`,
		ref.Name, ref.ID,
	)
	if err != nil {
		return fmt.Errorf("saving world %q: %w", ref.Name, err)
	}
	return nil
}
