package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS rooms (
		room_name  TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// Postgres keeps the registry in a `rooms` table shared by every server node.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to connStr, pings, and creates the rooms table if needed.
func NewPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if _, err := pool.Exec(pingCtx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create rooms table: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// RegisterRoom upserts the room row, refreshing created_at when a name is reused.
func (p *Postgres) RegisterRoom(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	q := `
		INSERT INTO rooms (room_name)
		VALUES ($1)
		ON CONFLICT (room_name)
		DO UPDATE SET created_at = NOW()
	`
	return pgx.BeginTxFunc(ctx, p.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, name)
		return err
	})
}

func (p *Postgres) DeregisterRoom(ctx context.Context, name string) error {
	q := `DELETE FROM rooms WHERE room_name = $1`
	return pgx.BeginTxFunc(ctx, p.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, name)
		return err
	})
}

func (p *Postgres) Rooms(ctx context.Context) ([]Entry, error) {
	rows, err := p.pool.Query(ctx, `SELECT room_name, created_at FROM rooms ORDER BY room_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
