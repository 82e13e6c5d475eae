package repl

import (
	"fmt"
	"strings"

	"catalog-agent/internal/app"
)

func printChatResponse(resp *app.ResponseEnvelope) {
	fmt.Println()
	fmt.Printf("[%s]  (session %s)\n", resp.PlanningInfo.PrimaryAction, resp.SessionID)
	fmt.Println(strings.Repeat("-", 62))
	fmt.Println(resp.Response)
	fmt.Println(strings.Repeat("-", 62))
	fmt.Printf("confidence=%.2f  reasoning=%q\n", resp.PlanningInfo.Confidence, resp.PlanningInfo.Reasoning)
	if resp.ProductCount > 0 {
		fmt.Printf("matched %d product(s)\n", resp.ProductCount)
	}
	if resp.OutletCount > 0 {
		fmt.Printf("matched %d outlet(s)\n", resp.OutletCount)
	}
	if resp.CalculationResult != nil && resp.CalculationResult.Ok {
		fmt.Printf("calculation: %s = %s\n", resp.CalculationResult.Expression, resp.CalculationResult.Formatted)
	}
}

func printProductMatches(result *app.ProductSearchResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  PRODUCTS  (%d match%s)\n", result.Count, plural(result.Count))
	fmt.Println(strings.Repeat("=", 72))
	if result.Count == 0 {
		fmt.Println("  No matching products.")
		fmt.Println(strings.Repeat("=", 72))
		return
	}
	fmt.Printf("  %-28s %10s  %8s  %s\n", "NAME", "PRICE", "SIM", "CAPACITY")
	fmt.Println(strings.Repeat("-", 72))
	for _, m := range result.Matches {
		capacity := "-"
		if m.Product.CapacityML != nil {
			capacity = fmt.Sprintf("%dml", *m.Product.CapacityML)
		}
		fmt.Printf("  %-28s %10s  %8.3f  %s\n",
			m.Product.Name, m.Product.Price.StringFixed(2), m.Similarity, capacity)
	}
	fmt.Println(strings.Repeat("=", 72))
}

func printOutletAnswer(result *app.OutletSearchResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  OUTLETS  (kind=%s)\n", result.Kind)
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println(result.FormattedText)
	if result.SQL != "" {
		fmt.Println(strings.Repeat("-", 72))
		fmt.Printf("  sql: %s\n", result.SQL)
	}
	fmt.Println(strings.Repeat("=", 72))
}

func printCalcResult(result *app.CalcResultView) {
	fmt.Println()
	if !result.Ok {
		fmt.Printf("calculation failed: %s (%s)\n", result.ErrorMessage, result.ErrorKind)
		return
	}
	fmt.Printf("%s = %s\n", result.Expression, result.Formatted)
}

func printStats(result *app.StatsResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 42))
	fmt.Println("  STATS")
	fmt.Println(strings.Repeat("=", 42))
	fmt.Printf("  catalog size   : %d\n", result.CatalogSize)
	fmt.Printf("  outlet rows    : %d\n", result.OutletCount)
	fmt.Printf("  active sessions: %d\n", result.SessionCount)
	fmt.Println(strings.Repeat("=", 42))
}

func printHealth(result *app.HealthResult) {
	fmt.Println()
	fmt.Printf("status=%s  catalog_empty=%v  database_up=%v\n",
		result.Status, result.CatalogEmpty, result.DatabaseUp)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func printHelp() {
	fmt.Println()
	fmt.Println("CATALOG AGENT — COMMANDS")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Println()
	fmt.Println("  /products <query>     Search the product catalog directly")
	fmt.Println("  /outlets  <query>     Query the outlet directory directly")
	fmt.Println("  /calculate <expr>     Evaluate an arithmetic expression directly")
	fmt.Println("  /stats                Catalog size, outlet rows, session count")
	fmt.Println("  /health               Subsystem status")
	fmt.Println("  /help                 Show this help")
	fmt.Println("  /exit                 Exit")
	fmt.Println()
	fmt.Println("  CHAT MODE  (no / prefix)")
	fmt.Println("  Type any question about products, outlets, or arithmetic.")
	fmt.Println("  Example: \"what's the cheapest tumbler you have?\"")
	fmt.Println(strings.Repeat("=", 62))
}
