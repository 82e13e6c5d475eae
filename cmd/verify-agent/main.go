package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"catalog-agent/internal/ai"

	"github.com/joho/godotenv"
)

// verify-agent is a manual smoke test against the live language-model and
// embedding endpoints: one plain completion, one structured outlet-query
// generation, and one embedding call.
func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		log.Fatal("LLM_API_KEY not set")
	}

	ctx := context.Background()
	client := ai.NewClient(apiKey, 30)
	embedder := ai.NewEmbedder(apiKey, client)

	fmt.Println("--- COMPLETE ---")
	answer, err := client.Complete(ctx,
		"You are a helpful assistant for a drinkware catalog and retail outlet directory.",
		"In one sentence, what kinds of questions can you answer?")
	if err != nil {
		log.Fatalf("Complete: %v", err)
	}
	fmt.Println(answer)

	fmt.Println("\n--- COMPLETE STRUCTURED ---")
	schema, err := ai.GenerateSchema[ai.OutletQuery]()
	if err != nil {
		log.Fatalf("GenerateSchema: %v", err)
	}
	var query ai.OutletQuery
	err = client.CompleteStructured(ctx,
		"Translate the question into a single read-only SELECT against the outlets table "+
			"(id, name, address, city, state, postal_code, maps_url, location_category, source, fetched_at).",
		"How many outlets are in Selangor?",
		"outlet_query", schema, &query)
	if err != nil {
		log.Fatalf("CompleteStructured: %v", err)
	}
	fmt.Printf("kind=%s sql=%s\n", query.Kind, query.SQL)

	fmt.Println("\n--- EMBED ---")
	vec, err := embedder.Embed(ctx, "insulated stainless steel tumbler, 500ml")
	if err != nil {
		log.Fatalf("Embed: %v", err)
	}
	fmt.Printf("embedding dimensions: %d\n", len(vec))
}
