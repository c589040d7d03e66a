package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/udisondev/waypoint/internal/position"
	"github.com/udisondev/waypoint/internal/warp"
	"github.com/udisondev/waypoint/internal/world"
)

// OpenSQLite opens (creating if needed) a SQLite database at path and
// applies migrations. Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// Один writer; для :memory: ещё и одна общая база
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("pinging sqlite %s: %w", path, err)
	}
	if err := RunSQLiteMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return sqlDB, nil
}

// SQLiteWarpRepository реализует warp.Store поверх SQLite.
type SQLiteWarpRepository struct {
	db    *sql.DB
	codec position.Codec
}

// NewSQLiteWarpRepository создаёт SQLite repository.
func NewSQLiteWarpRepository(db *sql.DB, codec position.Codec) *SQLiteWarpRepository {
	return &SQLiteWarpRepository{db: db, codec: codec}
}

func (r *SQLiteWarpRepository) Save(ctx context.Context, w warp.Warp) error {
	payload, err := r.codec.Marshal(w.Position)
	if err != nil {
		return fmt.Errorf("encoding warp %q: %w", w.Name, err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO warps(name, world, position, updated_at)
		 VALUES(?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name) DO UPDATE SET
		   world=excluded.world,
		   position=excluded.position,
		   updated_at=CURRENT_TIMESTAMP`,
		w.Name, w.Position.World().Name, string(payload),
	)
	if err != nil {
		return fmt.Errorf("saving warp %q: %w", w.Name, err)
	}
	return nil
}

func (r *SQLiteWarpRepository) Load(ctx context.Context, name string) (warp.Warp, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT position FROM warps WHERE name = ?`, name).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return warp.Warp{}, warp.ErrNotFound
		}
		return warp.Warp{}, fmt.Errorf("querying warp %q: %w", name, err)
	}

	p, err := r.codec.Unmarshal([]byte(payload))
	if err != nil {
		return warp.Warp{}, fmt.Errorf("decoding warp %q: %w", name, err)
	}
	return warp.Warp{Name: name, Position: p}, nil
}

func (r *SQLiteWarpRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM warps WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting warp %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting warp %q: %w", name, err)
	}
	if n == 0 {
		return warp.ErrNotFound
	}
	return nil
}

func (r *SQLiteWarpRepository) List(ctx context.Context) ([]warp.Warp, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, position FROM warps ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing warps: %w", err)
	}
	defer rows.Close()

	var warps []warp.Warp
	for rows.Next() {
		var name, payload string
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, fmt.Errorf("scanning warp row: %w", err)
		}
		p, err := r.codec.Unmarshal([]byte(payload))
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

// SQLiteWorldRepository persists world identities in SQLite.
type SQLiteWorldRepository struct {
	db *sql.DB
}

func NewSQLiteWorldRepository(db *sql.DB) *SQLiteWorldRepository {
	return &SQLiteWorldRepository{db: db}
}

func (r *SQLiteWorldRepository) LoadAll(ctx context.Context) ([]world.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, uid FROM worlds ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("loading all worlds: %w", err)
	}
	defer rows.Close()

	var entries []world.Entry
	for rows.Next() {
		var e world.Entry
		if err := rows.Scan(&e.Name, &e.UID); err != nil {
			return nil, fmt.Errorf("scanning world row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating world rows: %w", err)
	}
	return entries, nil
}

func (r *SQLiteWorldRepository) Save(ctx context.Context, ref world.Ref) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO worlds(name, uid) VALUES(?, ?) ON CONFLICT(name) DO NOTHING`,
		ref.Name, ref.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("saving world %q: %w", ref.Name, err)
	}
	return nil
}
