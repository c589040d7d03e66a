package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/waypoint/internal/position"
	"github.com/udisondev/waypoint/internal/warp"
)

// PostgresWarpRepository реализует warp.Store для PostgreSQL.
// Позиция хранится в JSON (не JSONB) в structured форме, байт в байт.
type PostgresWarpRepository struct {
	pool  *pgxpool.Pool
	codec position.Codec
}

// NewPostgresWarpRepository создаёт новый PostgreSQL repository.
func NewPostgresWarpRepository(pool *pgxpool.Pool, codec position.Codec) *PostgresWarpRepository {
	return &PostgresWarpRepository{pool: pool, codec: codec}
}

// Save создаёт или обновляет варп.
// Thread-safe: INSERT ... ON CONFLICT DO UPDATE.
func (r *PostgresWarpRepository) Save(ctx context.Context, w warp.Warp) error {
	payload, err := r.codec.Marshal(w.Position)
	if err != nil {
		return fmt.Errorf("encoding warp %q: %w", w.Name, err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO warps (name, world, position, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (name) DO UPDATE SET
		   world = EXCLUDED.world,
		   position = EXCLUDED.position,
		   updated_at = now()`,
		w.Name, w.Position.World().Name, string(payload),
	)
	if err != nil {
		return fmt.Errorf("saving warp %q: %w", w.Name, err)
	}
	return nil
}

// Load возвращает варп по имени или warp.ErrNotFound.
func (r *PostgresWarpRepository) Load(ctx context.Context, name string) (warp.Warp, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx,
		`SELECT position FROM warps WHERE name = $1`, name,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return warp.Warp{}, warp.ErrNotFound
		}
		return warp.Warp{}, fmt.Errorf("querying warp %q: %w", name, err)
	}

	p, err := r.codec.Unmarshal(payload)
	if err != nil {
		return warp.Warp{}, fmt.Errorf("decoding warp %q: %w", name, err)
	}
	return warp.Warp{Name: name, Position: p}, nil
}

// Delete удаляет варп. Возвращает warp.ErrNotFound если удалять нечего.
func (r *PostgresWarpRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM warps WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting warp %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return warp.ErrNotFound
	}
	return nil
}

// List возвращает все варпы, отсортированные по имени.
func (r *PostgresWarpRepository) List(ctx context.Context) ([]warp.Warp, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, position FROM warps ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing warps: %w", err)
	}
	defer rows.Close()

	warps := make([]warp.Warp, 0, 16)
	for rows.Next() {
		var (
			name    string
			payload []byte
		)
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, fmt.Errorf("scanning warp row: %w", err)
		}

		p, err := r.codec.Unmarshal(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding warp %q: %w", name, err)
		}
		warps = append(warps, warp.Warp{Name: name, Position: p})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating warp rows: %w", err)
	}
	return warps, nil
}
