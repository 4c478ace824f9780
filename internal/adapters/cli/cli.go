package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"inventory-costing/internal/app"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	if len(args) == 0 {
		log.Fatal("Usage: app <calc|reset|goods|ask> ...")
	}

	switch args[0] {
	case "calc", "calculate", "c":
		if len(args) < 2 {
			log.Fatal("Usage: app calc <account-id> [as-of-date]")
		}
		asOf := ""
		if len(args) > 2 {
			asOf = args[2]
		}
		result, err := svc.CalculateCostOfSales(ctx, args[1], asOf)
		if err != nil {
			log.Fatalf("Calculation failed: %v", err)
		}
		printSummary(result)

	case "reset", "r":
		if len(args) < 2 {
			log.Fatal("Usage: app reset <account-id>")
		}
		result, err := svc.ResetCostOfSales(ctx, args[1])
		if err != nil {
			log.Fatalf("Reset failed: %v", err)
		}
		printSummary(result)

	case "goods", "g":
		result, err := svc.ListGoods(ctx)
		if err != nil {
			log.Fatalf("Failed to list goods: %v", err)
		}
		printGoods(result)

	case "ask", "a":
		if len(args) < 2 {
			log.Fatal("Usage: app ask \"<request>\"")
		}
		result, err := svc.InterpretOperatorRequest(ctx, args[1])
		if err != nil {
			log.Fatalf("Agent error: %v", err)
		}
		if result.IsQuestion {
			fmt.Fprintln(os.Stderr, "Agent needs clarification:", result.Question)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result.Proposal)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: calc, reset, goods, ask", args[0])
	}
}

func printSummary(result *app.CalculationResult) {
	status := "OK"
	if result.Summary.IsError {
		status = "ERROR"
	}
	fmt.Printf("[%s] account %s: %s\n", status, result.Summary.AccountID, result.Summary.Message)
	if result.Summary.IsError {
		os.Exit(1)
	}
}

func printGoods(result *app.GoodListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  %-20s %-24s %-8s %-14s\n", "ACCOUNT", "NAME", "REBUILD", "LAST CALC")
	fmt.Println(strings.Repeat("-", 72))
	for _, g := range result.Goods {
		rebuild := ""
		if g.NeedsRebuild {
			rebuild = "yes"
		}
		fmt.Printf("  %-20s %-24s %-8s %-14s\n", g.AccountID, g.Name, rebuild, g.LastCalculationDate)
	}
	fmt.Println(strings.Repeat("=", 72))
}
