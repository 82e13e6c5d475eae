package db

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// defaultPoolCap is the outlet connection pool's cap (spec §5: default 10).
const defaultPoolCap = 10

// NewPool opens the outlet store connection pool from SQL_URL (spec §6). A
// separate SQL_KEY, when set, is used as the connection password, replacing
// any password in SQL_URL; some
// managed Postgres providers issue the DSN and credential separately.
func NewPool(ctx context.Context) (*pgxpool.Pool, error) {
	connStr := os.Getenv("SQL_URL")
	if connStr == "" {
		return nil, fmt.Errorf("SQL_URL environment variable not set")
	}

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse SQL_URL: %w", err)
	}
	if key := os.Getenv("SQL_KEY"); key != "" {
		config.ConnConfig.Password = key
	}
	config.MaxConns = defaultPoolCap

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}
