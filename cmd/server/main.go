package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	webAdapter "catalog-agent/internal/adapters/web"
	"catalog-agent/internal/ai"
	"catalog-agent/internal/app"
	"catalog-agent/internal/config"
	"catalog-agent/internal/core"
	"catalog-agent/internal/db"

	"github.com/joho/godotenv"
)

// knownOutletLocations is the closed city/state vocabulary the Planner uses
// to set the location_mentioned entity flag (spec §4.5).
var knownOutletLocations = []string{
	"Kuala Lumpur", "Selangor", "Petaling Jaya", "Subang Jaya", "Shah Alam",
	"Penang", "George Town", "Johor Bahru", "Johor", "Malacca", "Melaka",
	"Ipoh", "Perak", "Kota Kinabalu", "Sabah", "Kuching", "Sarawak",
	"Seremban", "Negeri Sembilan", "Kuantan", "Pahang", "Alor Setar", "Kedah",
	"Kangar", "Perlis", "Kota Bharu", "Kelantan", "Putrajaya",
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	outletStore := db.NewOutletStore(pool)

	catalog, err := core.LoadCatalogFile(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}

	rateLimitedClient := ai.NewClient(cfg.LLMAPIKey, 30)
	embedder := ai.NewEmbedder(cfg.LLMAPIKey, rateLimitedClient)

	products := core.NewProductIndex(embedder)
	if err := products.Build(ctx, catalog); err != nil {
		log.Fatalf("product index: %v", err)
	}

	outletSchema, err := ai.GenerateSchema[ai.OutletQuery]()
	if err != nil {
		log.Fatalf("outlet schema: %v", err)
	}
	outlets := core.NewOutletGate(rateLimitedClient, outletStore, outletSchema)

	planner := core.NewPlanner(knownOutletLocations)
	sessions := core.NewSessionStore(cfg.SessionWindow, cfg.SessionTTL)
	sessions.StartEvictionLoop(ctx)

	orchestrator := app.NewOrchestrator(
		planner, sessions, products, outlets, rateLimitedClient,
		cfg.SessionWindow, outletStore, outletStore,
	)

	handler := webAdapter.NewHandler(orchestrator, strings.Join(cfg.CORSOrigins, ","))

	log.Printf("server starting on :%s (catalog=%d products)", cfg.Port, products.Size())
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
