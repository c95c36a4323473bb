// Package postgres provides PostgreSQL battle snapshot persistence using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/warband/internal/config"
)

// ApplicationName tags every snapshot-store connection in pg_stat_activity.
const ApplicationName = "warband"

// ErrSchemaMissing is returned by SchemaReady when the snapshot table has not
// been created by cmd/migrate.
var ErrSchemaMissing = errors.New("battle_snapshots table is missing; run cmd/migrate")

// Pool is the connection pool behind the snapshot repository. It is owned by
// whoever opened it: the storage backend in the simulator, the container
// fixture in tests.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the snapshot database described by cfg and pings it.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool or a non-nil error. The pool is ready
// for queries upon successful return.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging snapshot database: %w", err)
	}

	return &Pool{pool: pool}, nil
}

// Health pings the snapshot database within timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// SchemaReady reports whether the snapshot table exists.
//
// Postcondition: Returns nil, ErrSchemaMissing, or a query error.
func (p *Pool) SchemaReady(ctx context.Context) error {
	var ok bool
	if err := p.pool.QueryRow(ctx, `SELECT to_regclass('battle_snapshots') IS NOT NULL`).Scan(&ok); err != nil {
		return fmt.Errorf("checking snapshot schema: %w", err)
	}
	if !ok {
		return ErrSchemaMissing
	}
	return nil
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool for the snapshot repository.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
