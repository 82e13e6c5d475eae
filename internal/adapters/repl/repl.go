package repl

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"catalog-agent/internal/app"
)

// Run starts the interactive REPL loop.
// It reads commands from reader, dispatches slash commands deterministically
// against the direct-access endpoints, and routes everything else through the
// orchestrator's full chat pipeline.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader) {
	fmt.Println("Catalog Agent")
	fmt.Println("Ask about products, outlets, or arithmetic, or use /help for commands.")
	fmt.Println(strings.Repeat("-", 70))

	var sessionID string
	errExit := fmt.Errorf("exit")

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		rest := strings.TrimSpace(strings.TrimPrefix(input, "/"+tokens[0]))

		switch cmd {
		case "products":
			if rest == "" {
				fmt.Println("Usage: /products <query>")
				return nil
			}
			result, err := svc.SearchProducts(ctx, rest, -1)
			if err != nil {
				return err
			}
			printProductMatches(result)

		case "outlets":
			if rest == "" {
				fmt.Println("Usage: /outlets <query>")
				return nil
			}
			result, err := svc.SearchOutlets(ctx, rest)
			if err != nil {
				return err
			}
			printOutletAnswer(result)

		case "calculate", "calc":
			if rest == "" {
				fmt.Println("Usage: /calculate <expression>")
				return nil
			}
			result, err := svc.Calculate(ctx, rest)
			if err != nil {
				return err
			}
			printCalcResult(result)

		case "stats":
			result, err := svc.Stats(ctx)
			if err != nil {
				return err
			}
			printStats(result)

		case "health":
			result, err := svc.Health(ctx)
			if err != nil {
				return err
			}
			printHealth(result)

		case "help", "h":
			printHelp()

		case "exit", "quit", "e", "q":
			return errExit

		default:
			fmt.Printf("Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("\n> ")
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if err := dispatchSlash(input); err != nil {
				if err == errExit {
					fmt.Println("Goodbye!")
					break
				}
				fmt.Printf("Error: %v\n", err)
			}
			continue
		}

		resp, err := svc.Chat(ctx, app.ChatRequest{Question: input, SessionID: sessionID})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		sessionID = resp.SessionID
		printChatResponse(resp)
	}
}
