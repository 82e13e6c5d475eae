// restore-seed is a one-shot tool to restore a small known-good set of
// outlet rows. Run it when the outlets table has been accidentally wiped or
// when seeding a fresh database for local development.
//
// Usage: go run ./cmd/restore-seed
package main

import (
	"context"
	"log"
	"os"

	"catalog-agent/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Restoring seed outlets...")
	_, err = tx.Exec(ctx, `
		INSERT INTO outlets (id, name, address, city, state, postal_code, maps_url, location_category, source, fetched_at)
		VALUES
		  (1, 'Pavilion KL',       'Jalan Bukit Bintang', 'Kuala Lumpur', 'Kuala Lumpur', '55100', 'https://maps.google.com/?q=Pavilion+KL',       'mall',        'seed', now()),
		  (2, 'Sunway Pyramid',    'Persiaran Lagoon',    'Subang Jaya',  'Selangor',     '47500', 'https://maps.google.com/?q=Sunway+Pyramid',    'mall',        'seed', now()),
		  (3, 'Gurney Plaza',      'Persiaran Gurney',    'George Town',  'Penang',       '10250', 'https://maps.google.com/?q=Gurney+Plaza',      'mall',        'seed', now()),
		  (4, 'KLCC Suria',        'Jalan Ampang',        'Kuala Lumpur', 'Kuala Lumpur', '50088', 'https://maps.google.com/?q=Suria+KLCC',        'mall',        'seed', now()),
		  (5, 'Mid Valley Megamall','Lingkaran Syed Putra','Kuala Lumpur', 'Kuala Lumpur', '59200', 'https://maps.google.com/?q=Mid+Valley',        'mall',        'seed', now()),
		  (6, 'IOI City Mall',     'Lebuh IRC',           'Putrajaya',    'Putrajaya',    '62502', 'https://maps.google.com/?q=IOI+City+Mall',     'mall',        'seed', now()),
		  (7, 'Johor Bahru City Square', 'Jalan Wong Ah Fook', 'Johor Bahru', 'Johor',    '80000', 'https://maps.google.com/?q=JB+City+Square',    'mall',        'seed', now()),
		  (8, 'Ipoh Parade',       'Jalan Sultan Abdul Jalil', 'Ipoh',   'Perak',        '30000', 'https://maps.google.com/?q=Ipoh+Parade',       'mall',        'seed', now()),
		  (9, 'KK Times Square',   'Coastal Highway',     'Kota Kinabalu','Sabah',        '88100', 'https://maps.google.com/?q=KK+Times+Square',   'mall',        'seed', now()),
		  (10,'Vivacity Megamall', 'Jalan Wan Alwi',      'Kuching',     'Sarawak',       '93350', 'https://maps.google.com/?q=Vivacity+Megamall', 'mall',        'seed', now())
		ON CONFLICT (id) DO UPDATE
		  SET name = EXCLUDED.name,
		      address = EXCLUDED.address,
		      city = EXCLUDED.city,
		      state = EXCLUDED.state,
		      postal_code = EXCLUDED.postal_code,
		      maps_url = EXCLUDED.maps_url,
		      location_category = EXCLUDED.location_category,
		      source = EXCLUDED.source,
		      fetched_at = EXCLUDED.fetched_at;
	`)
	if err != nil {
		log.Fatalf("Failed to restore outlets: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed outlets restored successfully.")
	os.Exit(0)
}
