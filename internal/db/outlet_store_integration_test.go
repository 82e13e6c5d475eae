package db_test

import (
	"context"
	"os"
	"testing"

	"catalog-agent/internal/core"
	"catalog-agent/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE outlets;

		INSERT INTO outlets (id, name, address, city, state, postal_code, maps_url, location_category, source)
		VALUES
		(1, 'Pavilion KL', '168 Jalan Bukit Bintang', 'Kuala Lumpur', 'Kuala Lumpur', '55100', 'https://maps.example/1', 'mall', 'seed'),
		(2, 'Sunway Pyramid', '3 Jalan PJS 11/15', 'Subang Jaya', 'Selangor', '47500', 'https://maps.example/2', 'mall', 'seed'),
		(3, 'Gurney Plaza', '170 Persiaran Gurney', 'George Town', 'Penang', '10250', 'https://maps.example/3', 'mall', 'seed');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func TestOutletStore_QueryRows(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := db.NewOutletStore(pool)
	ctx := context.Background()

	rows, err := store.QueryRows(ctx, "SELECT id, name, address, city, state, postal_code, maps_url, location_category, source, fetched_at FROM outlets WHERE state = 'Selangor' LIMIT 20")
	if err != nil {
		t.Fatalf("QueryRows failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Sunway Pyramid" {
		t.Errorf("expected exactly Sunway Pyramid, got %+v", rows)
	}
}

func TestOutletStore_QueryCount(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := db.NewOutletStore(pool)
	ctx := context.Background()

	count, err := store.QueryCount(ctx, "SELECT COUNT(*) AS count FROM outlets WHERE city = 'Kuala Lumpur'")
	if err != nil {
		t.Fatalf("QueryCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}
}

func TestOutletStore_CountAll(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := db.NewOutletStore(pool)
	ctx := context.Background()

	count, err := store.CountAll(ctx)
	if err != nil {
		t.Fatalf("CountAll failed: %v", err)
	}
	if count != 3 {
		t.Errorf("CountAll = %d, want 3", count)
	}
}

func TestOutletStore_Ping(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	store := db.NewOutletStore(pool)
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

var _ core.SQLExecutor = (*db.OutletStore)(nil)
