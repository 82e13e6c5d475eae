package cli

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strconv"

	"catalog-agent/internal/app"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	if len(args) == 0 {
		log.Fatal("Usage: catalog-agent <chat|products|outlets|calculate|stats|health> ...")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	switch args[0] {
	case "chat":
		if len(args) < 2 {
			log.Fatal(`Usage: catalog-agent chat "<question>" [session-id]`)
		}
		sessionID := ""
		if len(args) >= 3 {
			sessionID = args[2]
		}
		result, err := svc.Chat(ctx, app.ChatRequest{Question: args[1], SessionID: sessionID})
		if err != nil {
			log.Fatalf("chat failed: %v", err)
		}
		enc.Encode(result)

	case "products":
		if len(args) < 2 {
			log.Fatal(`Usage: catalog-agent products "<query>" [k]`)
		}
		k := -1 // unset: let the product index apply its own default
		if len(args) >= 3 {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				log.Fatalf("invalid k: %v", err)
			}
			k = n
		}
		result, err := svc.SearchProducts(ctx, args[1], k)
		if err != nil {
			log.Fatalf("product search failed: %v", err)
		}
		enc.Encode(result)

	case "outlets":
		if len(args) < 2 {
			log.Fatal(`Usage: catalog-agent outlets "<query>"`)
		}
		result, err := svc.SearchOutlets(ctx, args[1])
		if err != nil {
			log.Fatalf("outlet search failed: %v", err)
		}
		enc.Encode(result)

	case "calculate", "calc":
		if len(args) < 2 {
			log.Fatal(`Usage: catalog-agent calculate "<expression>"`)
		}
		result, err := svc.Calculate(ctx, args[1])
		if err != nil {
			log.Fatalf("calculation failed: %v", err)
		}
		enc.Encode(result)

	case "stats":
		result, err := svc.Stats(ctx)
		if err != nil {
			log.Fatalf("stats failed: %v", err)
		}
		enc.Encode(result)

	case "health":
		result, err := svc.Health(ctx)
		if err != nil {
			log.Fatalf("health check failed: %v", err)
		}
		enc.Encode(result)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: chat, products, outlets, calculate, stats, health", args[0])
	}
}
