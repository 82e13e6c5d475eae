package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"catalog-agent/internal/adapters/cli"
	"catalog-agent/internal/adapters/repl"
	"catalog-agent/internal/ai"
	"catalog-agent/internal/app"
	"catalog-agent/internal/config"
	"catalog-agent/internal/core"
	"catalog-agent/internal/db"

	"github.com/joho/godotenv"
)

var knownOutletLocations = []string{
	"Kuala Lumpur", "Selangor", "Petaling Jaya", "Subang Jaya", "Shah Alam",
	"Penang", "George Town", "Johor Bahru", "Johor", "Malacca", "Melaka",
	"Ipoh", "Perak", "Kota Kinabalu", "Sabah", "Kuching", "Sarawak",
}

// main wires the same components as cmd/server but exposes them through a
// terminal interface instead of HTTP: a one-shot subcommand when os.Args
// carries one, an interactive REPL otherwise.
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

	svc := app.NewOrchestrator(
		planner, sessions, products, outlets, rateLimitedClient,
		cfg.SessionWindow, outletStore, outletStore,
	)

	if len(os.Args) > 1 {
		cli.Run(ctx, svc, os.Args[1:])
		return
	}

	repl.Run(ctx, svc, bufio.NewReader(os.Stdin))
}
