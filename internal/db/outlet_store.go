package db

import (
	"context"
	"fmt"

	"catalog-agent/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OutletStore executes Outlet SQL Gate-generated statements against the
// read-only outlets table (spec §4.3, §6). It implements core.SQLExecutor,
// app.OutletRowCounter, and app.DatabasePinger.
type OutletStore struct {
	pool *pgxpool.Pool
}

// NewOutletStore wraps an existing connection pool.
func NewOutletStore(pool *pgxpool.Pool) *OutletStore {
	return &OutletStore{pool: pool}
}

// QueryRows runs sql (already validated by core.validateOutletSQL) and scans
// the ten-column Outlet shape the Gate's prompt requires.
func (s *OutletStore) QueryRows(ctx context.Context, sql string) ([]core.Outlet, error) {
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("outlet query: %w", err)
	}
	defer rows.Close()

	var outlets []core.Outlet
	for rows.Next() {
		var o core.Outlet
		if err := rows.Scan(
			&o.ID, &o.Name, &o.Address, &o.City, &o.State, &o.PostalCode,
			&o.MapsURL, &o.LocationCategory, &o.Source, &o.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outlet row: %w", err)
		}
		outlets = append(outlets, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("outlet query: %w", err)
	}
	return outlets, nil
}

// QueryCount runs sql (expected to select one column aliased "count") and
// returns the scalar result.
func (s *OutletStore) QueryCount(ctx context.Context, sql string) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, sql).Scan(&count); err != nil {
		return 0, fmt.Errorf("outlet count query: %w", err)
	}
	return count, nil
}

// CountAll returns the total outlet row count for GET /api/stats.
func (s *OutletStore) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM outlets").Scan(&count); err != nil {
		return 0, fmt.Errorf("count outlets: %w", err)
	}
	return count, nil
}

// Ping reports outlet-store reachability for GET /health.
func (s *OutletStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var _ core.SQLExecutor = (*OutletStore)(nil)
