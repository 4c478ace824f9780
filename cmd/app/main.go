package main

import (
	"context"
	"log"
	"os"

	"inventory-costing/internal/adapters/cli"
	"inventory-costing/internal/ai"
	"inventory-costing/internal/app"
	"inventory-costing/internal/costing"
	"inventory-costing/internal/ledger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	client, err := ledger.NewClientFromEnv(ctx)
	if err != nil {
		log.Fatalf("ledger: %v", err)
	}

	cfg, err := costing.ConfigFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	costingService := costing.NewService(client, cfg)

	var agent *ai.Agent
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		agent = ai.NewAgent(apiKey)
	}

	svc := app.NewAppService(costingService, agent)
	cli.Run(ctx, svc, os.Args[1:])
}
